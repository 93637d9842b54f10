package observable

import (
	"context"
	"sync"
)

// Value holds the latest state of a manager. Watchers always receive the
// current value first and then only the newest value; intermediate values a
// slow watcher missed are dropped.
type Value[T any] struct {
	mu       sync.Mutex
	current  T
	watchers map[int]chan T
	nextID   int
}

func NewValue[T any](initial T) *Value[T] {
	return &Value[T]{
		current:  initial,
		watchers: make(map[int]chan T),
	}
}

func (v *Value[T]) Get() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current
}

func (v *Value[T]) Set(val T) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.setLocked(val)
}

// Update applies fn to the current value atomically and publishes the result.
func (v *Value[T]) Update(fn func(T) T) T {
	v.mu.Lock()
	defer v.mu.Unlock()
	next := fn(v.current)
	v.setLocked(next)
	return next
}

func (v *Value[T]) setLocked(val T) {
	v.current = val
	for _, ch := range v.watchers {
		publish(ch, val)
	}
}

// Watch streams values until ctx is done, then closes the channel.
func (v *Value[T]) Watch(ctx context.Context) <-chan T {
	ch := make(chan T, 1)

	v.mu.Lock()
	id := v.nextID
	v.nextID++
	v.watchers[id] = ch
	ch <- v.current
	v.mu.Unlock()

	go func() {
		<-ctx.Done()
		v.mu.Lock()
		delete(v.watchers, id)
		close(ch)
		v.mu.Unlock()
	}()

	return ch
}

// Watchers returns the number of live watchers.
func (v *Value[T]) Watchers() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.watchers)
}

// publish replaces whatever is pending in ch with val. Only called with the
// owning Value locked, so it is the sole sender.
func publish[T any](ch chan T, val T) {
	select {
	case <-ch:
	default:
	}
	ch <- val
}
