package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ObjCodingDevMart/storefront/internal/api"
	"github.com/ObjCodingDevMart/storefront/internal/cart"
	"github.com/ObjCodingDevMart/storefront/internal/checkout"
	"github.com/ObjCodingDevMart/storefront/internal/domain"
	"github.com/ObjCodingDevMart/storefront/internal/lifecycle"
	"github.com/ObjCodingDevMart/storefront/internal/review"
	"github.com/ObjCodingDevMart/storefront/internal/session"
	"github.com/ObjCodingDevMart/storefront/pkg/circuitbreaker"
	"github.com/ObjCodingDevMart/storefront/pkg/logger"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// Handler exposes the per-user state managers over HTTP.
type Handler struct {
	sessions *session.Registry
	reviews  *review.Browser
	timeout  time.Duration
	log      *zap.Logger
}

func NewHandler(sessions *session.Registry, reviews *review.Browser, timeout time.Duration, log *zap.Logger) *Handler {
	return &Handler{
		sessions: sessions,
		reviews:  reviews,
		timeout:  timeout,
		log:      logger.OrNop(log).Named("http"),
	}
}

// Routes mounts the authenticated API.
func (h *Handler) Routes(r chi.Router) {
	r.Use(AuthMiddleware)

	r.Route("/cart", func(r chi.Router) {
		r.Get("/", h.GetCart)
		r.Delete("/", h.ClearCart)
		r.Post("/items", h.AddItem)
		r.Post("/items/{item_id}/increment", h.IncrementItem)
		r.Post("/items/{item_id}/decrement", h.DecrementItem)
		r.Delete("/items/{item_id}", h.RemoveItem)
	})

	r.Route("/checkout", func(r chi.Router) {
		r.Post("/", h.StartCheckout)
		r.Get("/", h.GetCheckout)
		r.Delete("/", h.EndCheckout)
		r.Put("/address", h.SetAddress)
		r.Post("/address/save", h.SaveAddress)
		r.Get("/address/search", h.SearchAddress)
		r.Put("/mileage", h.SetMileage)
		r.Post("/mileage/all", h.UseAllMileage)
		r.Post("/submit", h.SubmitPayment)
		r.Post("/retry", h.RetryPayment)
		r.Post("/dismiss", h.DismissPayment)
	})

	r.Route("/review", func(r chi.Router) {
		r.Get("/", h.GetReview)
		r.Post("/", h.NewReview)
		r.Put("/target", h.SetReviewTarget)
		r.Put("/draft", h.UpdateReviewDraft)
		r.Post("/submit", h.SubmitReview)
		r.Post("/dismiss", h.DismissReview)
	})

	r.Get("/items/{item_id}/reviews", h.ListReviews)
	r.Get("/orders/history", h.OrderHistory)
	r.Delete("/session", h.EndSession)
}

// withSession resolves the caller's session and a context bounded by the
// handler timeout.
func (h *Handler) withSession(r *http.Request) (context.Context, context.CancelFunc, *session.Session) {
	ctx, cancel := h.requestContext(r)
	return ctx, cancel, h.sessions.Get(getToken(r.Context()))
}

func (h *Handler) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), h.timeout)
}

func (h *Handler) EndSession(w http.ResponseWriter, r *http.Request) {
	h.sessions.Drop(getToken(r.Context()))
	w.WriteHeader(http.StatusNoContent)
}

func itemIDParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "item_id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return false
	}
	return true
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Warn("failed to encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: message, Code: code})
}

// handleError maps manager and backend errors to HTTP statuses. Remote
// messages are already safe to show; anything else is masked.
func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		h.respondJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:   ve.Message,
			Code:    "validation_failed",
			Details: ve.Field,
		})
	case errors.Is(err, lifecycle.ErrBusy):
		respondError(w, http.StatusConflict, "busy", "another request is still in flight")
	case errors.Is(err, lifecycle.ErrClosed):
		respondError(w, http.StatusConflict, "session_closed", "session has ended")
	case errors.Is(err, checkout.ErrTerminal), errors.Is(err, review.ErrTerminal):
		respondError(w, http.StatusConflict, "already_completed", "already completed")
	case errors.Is(err, checkout.ErrIllegalTransition), errors.Is(err, review.ErrIllegalTransition):
		respondError(w, http.StatusConflict, "illegal_transition", err.Error())
	case errors.Is(err, session.ErrNoCheckout):
		respondError(w, http.StatusNotFound, "no_checkout", "no checkout in progress")
	case errors.Is(err, cart.ErrItemNotInCart):
		respondError(w, http.StatusNotFound, "item_not_in_cart", domain.MsgItemNotInCart)
	case circuitbreaker.IsOpen(err):
		respondError(w, http.StatusServiceUnavailable, "service_unavailable", api.UserMessage(err))
	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, http.StatusGatewayTimeout, "timeout", api.MsgGeneric)
	case api.IsRemote(err):
		respondError(w, http.StatusBadGateway, "upstream_error", api.UserMessage(err))
	default:
		logger.FromContext(r.Context(), h.log).Error("unhandled error",
			zap.String("request_id", getRequestID(r.Context())),
			zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
