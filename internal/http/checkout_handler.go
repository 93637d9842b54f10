package http

import (
	"context"
	"net/http"

	"github.com/ObjCodingDevMart/storefront/internal/address"
	"github.com/ObjCodingDevMart/storefront/internal/checkout"
	"github.com/ObjCodingDevMart/storefront/internal/domain"
)

type SetAddressRequestDTO struct {
	domain.Address
	// Candidate, when set, replaces postal code, road and jibun address.
	Candidate *address.Candidate `json:"candidate,omitempty"`
}

type SetMileageRequestDTO struct {
	Input string `json:"input"`
}

// POST /api/v1/checkout starts a checkout over the current cart.
func (h *Handler) StartCheckout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, s := h.withSession(r)
	defer cancel()

	flow, err := s.StartCheckout(ctx)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, flow.State())
}

// withCheckout runs fn against the running checkout and answers with its
// state.
func (h *Handler) withCheckout(w http.ResponseWriter, r *http.Request, fn func(context.Context, *checkout.Flow) error) {
	ctx, cancel, s := h.withSession(r)
	defer cancel()

	flow, err := s.Checkout()
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	if err := fn(ctx, flow); err != nil {
		h.handleError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, flow.State())
}

func (h *Handler) GetCheckout(w http.ResponseWriter, r *http.Request) {
	h.withCheckout(w, r, func(context.Context, *checkout.Flow) error { return nil })
}

func (h *Handler) EndCheckout(w http.ResponseWriter, r *http.Request) {
	_, cancel, s := h.withSession(r)
	defer cancel()

	s.EndCheckout()
	w.WriteHeader(http.StatusNoContent)
}

// PUT /api/v1/checkout/address
func (h *Handler) SetAddress(w http.ResponseWriter, r *http.Request) {
	var req SetAddressRequestDTO
	if !decode(w, r, &req) {
		return
	}
	h.withCheckout(w, r, func(_ context.Context, f *checkout.Flow) error {
		if req.Candidate != nil {
			f.SelectCandidate(*req.Candidate, req.Detail)
			return nil
		}
		f.SetAddress(req.Address)
		return nil
	})
}

// POST /api/v1/checkout/address/save stores the draft address as default.
func (h *Handler) SaveAddress(w http.ResponseWriter, r *http.Request) {
	h.withCheckout(w, r, func(ctx context.Context, f *checkout.Flow) error {
		return f.SaveAddress(ctx)
	})
}

// GET /api/v1/checkout/address/search?q=
func (h *Handler) SearchAddress(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, s := h.withSession(r)
	defer cancel()

	flow, err := s.Checkout()
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	found, err := flow.SearchAddress(ctx, r.URL.Query().Get("q"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, found)
}

// PUT /api/v1/checkout/mileage
func (h *Handler) SetMileage(w http.ResponseWriter, r *http.Request) {
	var req SetMileageRequestDTO
	if !decode(w, r, &req) {
		return
	}
	h.withCheckout(w, r, func(_ context.Context, f *checkout.Flow) error {
		f.SetMileageInput(req.Input)
		return nil
	})
}

func (h *Handler) UseAllMileage(w http.ResponseWriter, r *http.Request) {
	h.withCheckout(w, r, func(_ context.Context, f *checkout.Flow) error {
		f.UseAllMileage()
		return nil
	})
}

// POST /api/v1/checkout/submit
func (h *Handler) SubmitPayment(w http.ResponseWriter, r *http.Request) {
	h.withCheckout(w, r, func(ctx context.Context, f *checkout.Flow) error {
		return f.Submit(ctx)
	})
}

func (h *Handler) RetryPayment(w http.ResponseWriter, r *http.Request) {
	h.withCheckout(w, r, func(ctx context.Context, f *checkout.Flow) error {
		return f.Retry(ctx)
	})
}

func (h *Handler) DismissPayment(w http.ResponseWriter, r *http.Request) {
	h.withCheckout(w, r, func(_ context.Context, f *checkout.Flow) error {
		return f.Dismiss()
	})
}
