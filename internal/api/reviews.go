package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ObjCodingDevMart/storefront/internal/domain"
)

type createReviewRequest struct {
	ItemID  int64  `json:"itemId"`
	Rating  int    `json:"rating"`
	Content string `json:"content"`
	ImgURL  string `json:"imgUrl,omitempty"`
	ImgKey  string `json:"imgKey,omitempty"`
}

type reviewDTO struct {
	ReviewID  int64  `json:"reviewId"`
	ItemID    int64  `json:"itemId"`
	Nickname  string `json:"nickname"`
	Rating    int    `json:"rating"`
	Content   string `json:"content"`
	ImgURL    string `json:"imgUrl"`
	CreatedAt string `json:"createdAt"`
}

func (d reviewDTO) toDomain() domain.Review {
	return domain.Review{
		ReviewID:  d.ReviewID,
		ItemID:    d.ItemID,
		Nickname:  d.Nickname,
		Rating:    d.Rating,
		Content:   d.Content,
		ImageURL:  d.ImgURL,
		CreatedAt: d.CreatedAt,
	}
}

// POST /reviews. The draft must already be validated.
func (c *Client) CreateReview(ctx context.Context, draft domain.ReviewDraft) (string, error) {
	if draft.Target == nil {
		return "", domain.NewValidationError(domain.FieldTarget, domain.MsgReviewTargetRequired)
	}
	return c.do(ctx, call{
		method: http.MethodPost,
		path:   "/reviews",
		body: createReviewRequest{
			ItemID:  draft.Target.ItemID,
			Rating:  draft.Rating,
			Content: draft.Content,
			ImgURL:  draft.ImageURL,
			ImgKey:  draft.ImageKey,
		},
	})
}

// GET /reviews/items/{itemId}
func (c *Client) ListReviews(ctx context.Context, itemID int64) ([]domain.Review, error) {
	var dtos []reviewDTO
	path := fmt.Sprintf("/reviews/items/%d", itemID)
	if _, err := c.do(ctx, call{method: http.MethodGet, path: path, out: &dtos}); err != nil {
		return nil, err
	}
	reviews := make([]domain.Review, 0, len(dtos))
	for _, d := range dtos {
		reviews = append(reviews, d.toDomain())
	}
	return reviews, nil
}
