// Package lifecycle binds a state manager's network calls to the manager's
// lifetime and admits one call at a time.
package lifecycle

import (
	"context"
	"errors"
	"sync"
)

var (
	ErrBusy   = errors.New("another request is still in flight")
	ErrClosed = errors.New("manager is closed")
)

// Scope is embedded by every state manager. Callers must not rely on it to
// queue requests: a second Begin while one is outstanding fails with
// ErrBusy instead of waiting.
type Scope struct {
	life   context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	busy   bool
	closed bool
}

func NewScope() *Scope {
	life, cancel := context.WithCancel(context.Background())
	return &Scope{life: life, cancel: cancel}
}

// Begin claims the in-flight slot. The returned context is cancelled when
// either ctx or the scope ends; done must be called to release the slot.
func (s *Scope) Begin(ctx context.Context) (context.Context, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, nil, ErrClosed
	}
	if s.busy {
		return nil, nil, ErrBusy
	}
	s.busy = true

	callCtx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(s.life, cancel)

	var once sync.Once
	done := func() {
		once.Do(func() {
			stop()
			cancel()
			s.mu.Lock()
			s.busy = false
			s.mu.Unlock()
		})
	}
	return callCtx, done, nil
}

// Apply runs fn unless the scope was closed; a late result is dropped.
// It reports whether fn ran.
func (s *Scope) Apply(fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	fn()
	return true
}

// Close cancels outstanding calls. After Close returns no Apply runs.
func (s *Scope) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.cancel()
}

func (s *Scope) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Scope) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}
