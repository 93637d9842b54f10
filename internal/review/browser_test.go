package review

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ObjCodingDevMart/storefront/internal/api"
	"github.com/ObjCodingDevMart/storefront/internal/cache"
	"github.com/ObjCodingDevMart/storefront/internal/domain"
)

type listerMock struct {
	calls   atomic.Int32
	reviews []domain.Review
	err     error
	delay   time.Duration
}

func (l *listerMock) ListReviews(_ context.Context, _ int64) ([]domain.Review, error) {
	l.calls.Add(1)
	time.Sleep(l.delay)
	return l.reviews, l.err
}

func setupBrowser(t *testing.T, l *listerMock) (*Browser, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewBrowser(l, cache.NewRedisCache(client, time.Minute), nil), mr
}

func reviews() []domain.Review {
	return []domain.Review{{ReviewID: 1, ItemID: 7, Rating: 5, Content: "좋아요"}}
}

func TestList_CachesAfterMiss(t *testing.T) {
	l := &listerMock{reviews: reviews()}
	b, mr := setupBrowser(t, l)

	got, err := b.List(context.Background(), 7)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	require.Eventually(t, func() bool { return mr.Exists("reviews:item:7") }, time.Second, 5*time.Millisecond)

	got, err = b.List(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, reviews(), got)
	assert.Equal(t, int32(1), l.calls.Load())
}

func TestList_SingleFlight(t *testing.T) {
	l := &listerMock{reviews: reviews(), delay: 100 * time.Millisecond}
	b, _ := setupBrowser(t, l)

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := b.List(context.Background(), 7)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), l.calls.Load())
}

func TestList_BackendError(t *testing.T) {
	l := &listerMock{err: &api.Error{Message: "상품이 없습니다."}}
	b, mr := setupBrowser(t, l)

	_, err := b.List(context.Background(), 7)
	assert.True(t, api.IsRemote(err))
	assert.False(t, mr.Exists("reviews:item:7"))
}

func TestList_CacheDownFallsThrough(t *testing.T) {
	l := &listerMock{reviews: reviews()}
	b, mr := setupBrowser(t, l)
	mr.Close()

	got, err := b.List(context.Background(), 7)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestList_NoCache(t *testing.T) {
	l := &listerMock{reviews: reviews()}
	b := NewBrowser(l, nil, nil)

	for range 2 {
		_, err := b.List(context.Background(), 7)
		require.NoError(t, err)
	}
	assert.Equal(t, int32(2), l.calls.Load())
	b.Invalidate(context.Background(), 7)
}

func TestSubmitInvalidatesList(t *testing.T) {
	l := &listerMock{reviews: reviews()}
	b, mr := setupBrowser(t, l)

	_, err := b.List(context.Background(), 7)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return mr.Exists("reviews:item:7") }, time.Second, 5*time.Millisecond)

	f := NewFlow(&mockAPI{}, b, nil)
	f.SetTarget(target())
	f.SetContent("새 리뷰")
	require.NoError(t, f.Submit(context.Background()))

	assert.False(t, mr.Exists("reviews:item:7"))
}
