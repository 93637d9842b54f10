package http

import (
	"net/http"
)

type AddItemRequestDTO struct {
	ItemID   int64 `json:"item_id"`
	Quantity int   `json:"quantity"`
}

// GET /api/v1/cart reloads the cart from the backend. A failed load still
// answers 200 with an empty, degraded cart.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, s := h.withSession(r)
	defer cancel()

	if err := s.Cart.Load(ctx); err != nil {
		h.handleError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, s.Cart.State())
}

// POST /api/v1/cart/items
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, s := h.withSession(r)
	defer cancel()

	var req AddItemRequestDTO
	if !decode(w, r, &req) {
		return
	}
	if req.ItemID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_item_id", "item_id must be positive")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	if err := s.Cart.Add(ctx, req.ItemID, req.Quantity); err != nil {
		h.handleError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, s.Cart.State())
}

func (h *Handler) IncrementItem(w http.ResponseWriter, r *http.Request) {
	h.changeQuantity(w, r, true)
}

func (h *Handler) DecrementItem(w http.ResponseWriter, r *http.Request) {
	h.changeQuantity(w, r, false)
}

func (h *Handler) changeQuantity(w http.ResponseWriter, r *http.Request, up bool) {
	ctx, cancel, s := h.withSession(r)
	defer cancel()

	itemID, ok := itemIDParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid_item_id", "item_id must be a positive integer")
		return
	}

	var err error
	if up {
		err = s.Cart.Increment(ctx, itemID)
	} else {
		err = s.Cart.Decrement(ctx, itemID)
	}
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, s.Cart.State())
}

// DELETE /api/v1/cart/items/{item_id}
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, s := h.withSession(r)
	defer cancel()

	itemID, ok := itemIDParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid_item_id", "item_id must be a positive integer")
		return
	}
	if err := s.Cart.Remove(ctx, itemID); err != nil {
		h.handleError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, s.Cart.State())
}

// DELETE /api/v1/cart
func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, s := h.withSession(r)
	defer cancel()

	if err := s.Cart.Clear(ctx); err != nil {
		h.handleError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, s.Cart.State())
}
