package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ObjCodingDevMart/storefront/internal/api"
	"github.com/ObjCodingDevMart/storefront/internal/cart"
	"github.com/ObjCodingDevMart/storefront/internal/checkout"
	"github.com/ObjCodingDevMart/storefront/internal/domain"
	"github.com/ObjCodingDevMart/storefront/internal/review"
	"github.com/ObjCodingDevMart/storefront/internal/session"
)

type BackendMock struct {
	mu       sync.Mutex
	items    []domain.CartItem
	cartErr  error
	orderErr error
	orders   []domain.OrderLine
	reviews  []domain.ReviewDraft
	history  []domain.OrderRecord
}

func (b *BackendMock) GetCart(context.Context) ([]domain.CartItem, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.cartErr != nil {
		return nil, b.cartErr
	}
	return domain.CloneItems(b.items), nil
}

func (b *BackendMock) AddCartItem(_ context.Context, itemID int64, quantity int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = append(b.items, domain.CartItem{CartItemID: itemID + 100, ItemID: itemID, UnitPrice: 10000, Quantity: quantity, LineTotal: 10000 * int64(quantity)})
	return nil
}

func (b *BackendMock) UpdateCartItem(_ context.Context, cartItemID int64, quantity int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.items {
		if b.items[i].CartItemID == cartItemID {
			b.items[i] = b.items[i].WithQuantity(quantity)
		}
	}
	return nil
}

func (b *BackendMock) RemoveCartItem(context.Context, int64) error { return nil }

func (b *BackendMock) ClearCart(context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = nil
	return nil
}

func (b *BackendMock) GetAddress(context.Context) (domain.Address, error) {
	return domain.Address{PostalCode: "06236", RoadAddress: "서울 강남구 테헤란로 152"}, nil
}

func (b *BackendMock) UpdateAddress(context.Context, domain.Address) error { return nil }

func (b *BackendMock) GetProfile(context.Context) (domain.Profile, error) {
	return domain.Profile{Nickname: "mart", Mileage: 5000}, nil
}

func (b *BackendMock) CreateOrder(_ context.Context, line domain.OrderLine, _ string) (domain.OrderReceipt, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.orderErr != nil {
		return domain.OrderReceipt{}, b.orderErr
	}
	b.orders = append(b.orders, line)
	return domain.OrderReceipt{OrderID: int64(len(b.orders)), Message: "주문 완료"}, nil
}

func (b *BackendMock) CreateReview(_ context.Context, d domain.ReviewDraft) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reviews = append(b.reviews, d)
	return "리뷰 등록 완료", nil
}

func (b *BackendMock) ListOrders(context.Context) ([]domain.OrderRecord, error) {
	return b.history, nil
}

func (b *BackendMock) ListReviews(_ context.Context, itemID int64) ([]domain.Review, error) {
	return []domain.Review{{ReviewID: 1, ItemID: itemID, Rating: 5, Content: "좋아요"}}, nil
}

func (b *BackendMock) setOrderErr(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.orderErr = err
}

func setupRouter(t *testing.T, backend *BackendMock) http.Handler {
	registry := session.NewRegistry(func(string) session.Backend { return backend }, session.Config{}, nil)
	t.Cleanup(registry.Close)

	h := NewHandler(registry, review.NewBrowser(backend, nil, nil), 5*time.Second, nil)
	r := chi.NewRouter()
	r.Use(RequestIDMiddleware)
	r.Route("/api/v1", h.Routes)
	return r
}

func do(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Authorization", "Bearer token-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), rec.Body.String())
	return v
}

func TestAuth_MissingToken(t *testing.T) {
	router := setupRouter(t, &BackendMock{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	resp := decodeBody[ErrorResponse](t, rec)
	assert.Equal(t, "unauthorized", resp.Code)
}

func TestRequestID_Echoed(t *testing.T) {
	router := setupRouter(t, &BackendMock{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("Authorization", "Bearer t")
	req.Header.Set("X-Request-ID", "req-42")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "req-42", rec.Header().Get("X-Request-ID"))

	rec = do(t, router, http.MethodGet, "/api/v1/cart", nil)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestCart_AddAndIncrement(t *testing.T) {
	router := setupRouter(t, &BackendMock{})

	rec := do(t, router, http.MethodPost, "/api/v1/cart/items", AddItemRequestDTO{ItemID: 7, Quantity: 2})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	st := decodeBody[cart.State](t, rec)
	assert.Equal(t, int64(23000), st.Summary.OrderAmount)

	rec = do(t, router, http.MethodPost, "/api/v1/cart/items/7/increment", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	st = decodeBody[cart.State](t, rec)
	assert.Equal(t, 3, st.Items[0].Quantity)

	rec = do(t, router, http.MethodPost, "/api/v1/cart/items/99/decrement", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, router, http.MethodPost, "/api/v1/cart/items/abc/increment", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCart_LoadFailureIsDegraded(t *testing.T) {
	router := setupRouter(t, &BackendMock{cartErr: &api.Error{Message: "점검 중"}})

	rec := do(t, router, http.MethodGet, "/api/v1/cart", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	st := decodeBody[cart.State](t, rec)
	assert.True(t, st.Degraded)
	assert.Empty(t, st.Items)
	assert.Equal(t, "점검 중", st.Message)
}

func TestCart_InvalidBody(t *testing.T) {
	router := setupRouter(t, &BackendMock{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", bytes.NewBufferString("{"))
	req.Header.Set("Authorization", "Bearer t")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodPost, "/api/v1/cart/items", AddItemRequestDTO{ItemID: 7, Quantity: -1})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCheckout_NotStarted(t *testing.T) {
	router := setupRouter(t, &BackendMock{})

	rec := do(t, router, http.MethodPost, "/api/v1/checkout/submit", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCheckout_Flow(t *testing.T) {
	backend := &BackendMock{items: []domain.CartItem{
		{CartItemID: 11, ItemID: 1, UnitPrice: 10000, Quantity: 1, LineTotal: 10000},
	}}
	router := setupRouter(t, backend)

	require.Equal(t, http.StatusOK, do(t, router, http.MethodGet, "/api/v1/cart", nil).Code)
	rec := do(t, router, http.MethodPost, "/api/v1/checkout", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	st := decodeBody[checkout.State](t, rec)
	assert.Equal(t, int64(13000), st.Totals.FinalAmount)

	rec = do(t, router, http.MethodPut, "/api/v1/checkout/mileage", SetMileageRequestDTO{Input: "6000"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decodeBody[checkout.State](t, rec).Totals.DiscountShown)

	rec = do(t, router, http.MethodPost, "/api/v1/checkout/submit", nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, domain.FieldMileage, decodeBody[ErrorResponse](t, rec).Details)

	rec = do(t, router, http.MethodPost, "/api/v1/checkout/mileage/all", nil)
	assert.Equal(t, int64(8000), decodeBody[checkout.State](t, rec).Totals.FinalAmount)

	backend.setOrderErr(&api.Error{Message: "결제 실패"})
	rec = do(t, router, http.MethodPost, "/api/v1/checkout/submit", nil)
	require.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "결제 실패", decodeBody[ErrorResponse](t, rec).Error)

	rec = do(t, router, http.MethodGet, "/api/v1/checkout", nil)
	assert.Equal(t, domain.Failed("결제 실패"), decodeBody[checkout.State](t, rec).Payment)

	backend.setOrderErr(nil)
	rec = do(t, router, http.MethodPost, "/api/v1/checkout/retry", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.Success("주문 완료"), decodeBody[checkout.State](t, rec).Payment)
	assert.Equal(t, int64(5000), backend.orders[0].MileageToUse)

	rec = do(t, router, http.MethodPost, "/api/v1/checkout/submit", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "already_completed", decodeBody[ErrorResponse](t, rec).Code)

	assert.Equal(t, http.StatusNoContent, do(t, router, http.MethodDelete, "/api/v1/checkout", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, router, http.MethodGet, "/api/v1/checkout", nil).Code)
}

func TestCheckout_BlankAddress(t *testing.T) {
	backend := &BackendMock{items: []domain.CartItem{{CartItemID: 1, ItemID: 1, Quantity: 1, LineTotal: 1000}}}
	router := setupRouter(t, backend)
	do(t, router, http.MethodGet, "/api/v1/cart", nil)
	do(t, router, http.MethodPost, "/api/v1/checkout", nil)

	rec := do(t, router, http.MethodPut, "/api/v1/checkout/address", domain.Address{PostalCode: "06236"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodPost, "/api/v1/checkout/submit", nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, domain.MsgAddressRequired, decodeBody[ErrorResponse](t, rec).Error)
	assert.Empty(t, backend.orders)
}

func TestReview_Flow(t *testing.T) {
	backend := &BackendMock{}
	router := setupRouter(t, backend)

	rec := do(t, router, http.MethodPost, "/api/v1/review/submit", nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(t, router, http.MethodPut, "/api/v1/review/target", domain.ReviewTarget{ItemID: 7, Name: "Runner"})
	require.Equal(t, http.StatusOK, rec.Code)

	content := "   "
	rec = do(t, router, http.MethodPut, "/api/v1/review/draft", UpdateReviewDraftDTO{Content: &content})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, router, http.MethodPost, "/api/v1/review/submit", nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "리뷰 내용을 입력해주세요.", decodeBody[ErrorResponse](t, rec).Error)

	rating, content := 3, "편해요"
	rec = do(t, router, http.MethodPut, "/api/v1/review/draft", UpdateReviewDraftDTO{Rating: &rating, Content: &content})
	require.Equal(t, http.StatusOK, rec.Code)

	bad := 9
	rec = do(t, router, http.MethodPut, "/api/v1/review/draft", UpdateReviewDraftDTO{Rating: &bad})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(t, router, http.MethodPost, "/api/v1/review/submit", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.Success("리뷰 등록 완료"), decodeBody[review.State](t, rec).Submit)
	require.Len(t, backend.reviews, 1)
	assert.Equal(t, 3, backend.reviews[0].Rating)

	rec = do(t, router, http.MethodPost, "/api/v1/review", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, domain.StatusIdle, decodeBody[review.State](t, rec).Submit.Status)
}

func TestListReviews(t *testing.T) {
	router := setupRouter(t, &BackendMock{})

	rec := do(t, router, http.MethodGet, "/api/v1/items/7/reviews", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	reviews := decodeBody[[]domain.Review](t, rec)
	require.Len(t, reviews, 1)
	assert.Equal(t, int64(7), reviews[0].ItemID)
}

func TestOrderHistory(t *testing.T) {
	router := setupRouter(t, &BackendMock{history: []domain.OrderRecord{
		{OrderID: 1, CreatedAt: "2024-05-01T10:00:00"},
		{OrderID: 2, CreatedAt: "2024-05-02T10:00:00"},
	}})

	rec := do(t, router, http.MethodGet, "/api/v1/orders/history", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	groups := decodeBody[[]domain.OrderGroup](t, rec)
	require.Len(t, groups, 2)
	assert.Equal(t, "2024.05.02", groups[0].DateLabel)
}

func TestEndSession(t *testing.T) {
	router := setupRouter(t, &BackendMock{})

	assert.Equal(t, http.StatusNoContent, do(t, router, http.MethodDelete, "/api/v1/session", nil).Code)
}

func TestHandleError_Mapping(t *testing.T) {
	h := NewHandler(nil, nil, time.Second, nil)
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"breaker open", &api.Error{Message: api.MsgGeneric, Err: gobreaker.ErrOpenState}, http.StatusServiceUnavailable},
		{"timeout", context.DeadlineExceeded, http.StatusGatewayTimeout},
		{"remote", &api.Error{Status: 400, Message: "품절"}, http.StatusBadGateway},
		{"unknown", assert.AnError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.handleError(rec, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
