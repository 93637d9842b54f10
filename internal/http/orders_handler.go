package http

import (
	"net/http"
)

// GET /api/v1/orders/history returns orders bucketed by day, newest first.
func (h *Handler) OrderHistory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, s := h.withSession(r)
	defer cancel()

	groups, err := s.History.Load(ctx)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, groups)
}
