package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ObjCodingDevMart/storefront/internal/domain"
	"github.com/ObjCodingDevMart/storefront/internal/lifecycle"
)

// backendMock is a tiny in-memory backend for one user.
type backendMock struct {
	mu    sync.Mutex
	token string
	items []domain.CartItem
}

func (b *backendMock) GetCart(context.Context) ([]domain.CartItem, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return domain.CloneItems(b.items), nil
}

func (b *backendMock) AddCartItem(_ context.Context, itemID int64, quantity int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = append(b.items, domain.CartItem{CartItemID: itemID + 100, ItemID: itemID, UnitPrice: 1000, Quantity: quantity, LineTotal: 1000 * int64(quantity)})
	return nil
}

func (b *backendMock) UpdateCartItem(context.Context, int64, int) error { return nil }
func (b *backendMock) RemoveCartItem(context.Context, int64) error      { return nil }
func (b *backendMock) ClearCart(context.Context) error                  { return nil }

func (b *backendMock) GetAddress(context.Context) (domain.Address, error) {
	return domain.Address{PostalCode: "06236", RoadAddress: "서울 강남구 테헤란로 152"}, nil
}
func (b *backendMock) UpdateAddress(context.Context, domain.Address) error { return nil }
func (b *backendMock) GetProfile(context.Context) (domain.Profile, error) {
	return domain.Profile{Nickname: b.token, Mileage: 1000}, nil
}
func (b *backendMock) CreateOrder(context.Context, domain.OrderLine, string) (domain.OrderReceipt, error) {
	return domain.OrderReceipt{OrderID: 1}, nil
}
func (b *backendMock) CreateReview(context.Context, domain.ReviewDraft) (string, error) {
	return "", nil
}
func (b *backendMock) ListOrders(context.Context) ([]domain.OrderRecord, error) { return nil, nil }

type factoryMock struct {
	mu     sync.Mutex
	tokens []string
}

func (f *factoryMock) New(token string) Backend {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = append(f.tokens, token)
	return &backendMock{token: token}
}

func TestGet_OneSessionPerToken(t *testing.T) {
	f := &factoryMock{}
	r := NewRegistry(f.New, Config{}, nil)

	a := r.Get("alice")
	assert.Same(t, a, r.Get("alice"))
	assert.NotSame(t, a, r.Get("bob"))
	assert.Equal(t, []string{"alice", "bob"}, f.tokens)
	assert.Equal(t, 2, r.Len())
}

func TestDrop_ClosesManagers(t *testing.T) {
	r := NewRegistry((&factoryMock{}).New, Config{}, nil)
	s := r.Get("alice")

	assert.True(t, r.Drop("alice"))
	assert.False(t, r.Drop("alice"))
	assert.ErrorIs(t, s.Cart.Load(context.Background()), lifecycle.ErrClosed)
	assert.ErrorIs(t, s.Review().Submit(context.Background()), lifecycle.ErrClosed)
	assert.NotSame(t, s, r.Get("alice"))
}

func TestSweep_ClosesIdleSessions(t *testing.T) {
	r := NewRegistry((&factoryMock{}).New, Config{IdleTimeout: time.Minute}, nil)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	idle := r.Get("idle")
	r.Get("active")

	now = now.Add(50 * time.Second)
	r.Get("active")
	now = now.Add(20 * time.Second)

	assert.Equal(t, 1, r.Sweep())
	assert.Equal(t, 1, r.Len())
	assert.ErrorIs(t, idle.Cart.Load(context.Background()), lifecycle.ErrClosed)
}

func TestStartCheckout_SnapshotsCart(t *testing.T) {
	r := NewRegistry((&factoryMock{}).New, Config{}, nil)
	s := r.Get("alice")
	ctx := context.Background()

	_, err := s.Checkout()
	assert.ErrorIs(t, err, ErrNoCheckout)

	require.NoError(t, s.Cart.Add(ctx, 7, 2))
	flow, err := s.StartCheckout(ctx)
	require.NoError(t, err)

	st := flow.State()
	require.Len(t, st.Draft.Products, 1)
	assert.Equal(t, int64(1000), st.Draft.AvailableMileage)

	require.NoError(t, s.Cart.Add(ctx, 8, 1))
	assert.Len(t, flow.State().Draft.Products, 1)

	again, err := s.StartCheckout(ctx)
	require.NoError(t, err)
	assert.ErrorIs(t, flow.Submit(ctx), lifecycle.ErrClosed, "replaced checkout is closed")
	assert.Len(t, again.State().Draft.Products, 2)

	s.EndCheckout()
	_, err = s.Checkout()
	assert.ErrorIs(t, err, ErrNoCheckout)
}

func TestStartCheckout_FreshSessionLoadsCart(t *testing.T) {
	b := &backendMock{items: []domain.CartItem{
		{CartItemID: 11, ItemID: 1, UnitPrice: 10000, Quantity: 1, LineTotal: 10000},
	}}
	r := NewRegistry(func(string) Backend { return b }, Config{}, nil)
	s := r.Get("alice")
	require.False(t, s.Cart.Loaded())

	flow, err := s.StartCheckout(context.Background())
	require.NoError(t, err)

	st := flow.State()
	require.Len(t, st.Draft.Products, 1)
	assert.Equal(t, int64(10000), st.Totals.ProductAmount)
	assert.Equal(t, int64(13000), st.Totals.FinalAmount)
	assert.True(t, s.Cart.Loaded())
	require.NoError(t, flow.Submit(context.Background()))
}

func TestStartCheckout_EmptyCartRejected(t *testing.T) {
	r := NewRegistry((&factoryMock{}).New, Config{}, nil)
	s := r.Get("alice")

	_, err := s.StartCheckout(context.Background())

	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, domain.FieldProducts, vErr.Field)
	_, err = s.Checkout()
	assert.ErrorIs(t, err, ErrNoCheckout)
}

func TestNewReview_ReplacesDraft(t *testing.T) {
	r := NewRegistry((&factoryMock{}).New, Config{}, nil)
	s := r.Get("alice")

	first := s.Review()
	first.SetContent("draft")
	second := s.NewReview()

	assert.NotSame(t, first, second)
	assert.Empty(t, second.State().Draft.Content)
	assert.ErrorIs(t, first.Submit(context.Background()), lifecycle.ErrClosed)
}

func TestRun_StopsOnCancel(t *testing.T) {
	r := NewRegistry((&factoryMock{}).New, Config{IdleTimeout: time.Nanosecond}, nil)
	r.Get("alice")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx, 5*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool { return r.Len() == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done
}

func TestClose_EndsAll(t *testing.T) {
	r := NewRegistry((&factoryMock{}).New, Config{}, nil)
	a := r.Get("a")
	r.Get("b")

	r.Close()
	assert.Equal(t, 0, r.Len())
	assert.ErrorIs(t, a.Cart.Load(context.Background()), lifecycle.ErrClosed)
}
