package http

import (
	"context"
	"net/http"

	"github.com/ObjCodingDevMart/storefront/internal/domain"
	"github.com/ObjCodingDevMart/storefront/internal/review"
)

// UpdateReviewDraftDTO carries only the fields being changed.
type UpdateReviewDraftDTO struct {
	Rating   *int    `json:"rating,omitempty"`
	Content  *string `json:"content,omitempty"`
	ImageURL *string `json:"image_url,omitempty"`
	ImageKey *string `json:"image_key,omitempty"`
}

func (h *Handler) withReview(w http.ResponseWriter, r *http.Request, fn func(context.Context, *review.Flow) error) {
	ctx, cancel, s := h.withSession(r)
	defer cancel()

	flow := s.Review()
	if err := fn(ctx, flow); err != nil {
		h.handleError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, flow.State())
}

func (h *Handler) GetReview(w http.ResponseWriter, r *http.Request) {
	h.withReview(w, r, func(context.Context, *review.Flow) error { return nil })
}

// POST /api/v1/review discards the current draft.
func (h *Handler) NewReview(w http.ResponseWriter, r *http.Request) {
	_, cancel, s := h.withSession(r)
	defer cancel()

	h.respondJSON(w, http.StatusCreated, s.NewReview().State())
}

// PUT /api/v1/review/target
func (h *Handler) SetReviewTarget(w http.ResponseWriter, r *http.Request) {
	var req domain.ReviewTarget
	if !decode(w, r, &req) {
		return
	}
	if req.ItemID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_item_id", "item_id must be positive")
		return
	}
	h.withReview(w, r, func(_ context.Context, f *review.Flow) error {
		f.SetTarget(req)
		return nil
	})
}

// PUT /api/v1/review/draft
func (h *Handler) UpdateReviewDraft(w http.ResponseWriter, r *http.Request) {
	var req UpdateReviewDraftDTO
	if !decode(w, r, &req) {
		return
	}
	h.withReview(w, r, func(_ context.Context, f *review.Flow) error {
		if req.Rating != nil {
			if err := f.SetRating(*req.Rating); err != nil {
				return err
			}
		}
		if req.Content != nil {
			f.SetContent(*req.Content)
		}
		if req.ImageURL != nil || req.ImageKey != nil {
			cur := f.State().Draft
			url, key := cur.ImageURL, cur.ImageKey
			if req.ImageURL != nil {
				url = *req.ImageURL
			}
			if req.ImageKey != nil {
				key = *req.ImageKey
			}
			f.SetImage(url, key)
		}
		return nil
	})
}

func (h *Handler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	h.withReview(w, r, func(ctx context.Context, f *review.Flow) error {
		return f.Submit(ctx)
	})
}

func (h *Handler) DismissReview(w http.ResponseWriter, r *http.Request) {
	h.withReview(w, r, func(_ context.Context, f *review.Flow) error {
		return f.Dismiss()
	})
}

// GET /api/v1/items/{item_id}/reviews
func (h *Handler) ListReviews(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	itemID, ok := itemIDParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid_item_id", "item_id must be a positive integer")
		return
	}
	reviews, err := h.reviews.List(ctx, itemID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, reviews)
}
