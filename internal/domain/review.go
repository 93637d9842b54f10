package domain

import "strings"

const (
	MinRating     = 1
	MaxRating     = 5
	DefaultRating = 5
)

// ReviewTarget is the purchased item a review is written for.
type ReviewTarget struct {
	ItemID   int64  `json:"item_id"`
	Name     string `json:"name"`
	Brand    string `json:"brand"`
	Price    int64  `json:"price"`
	ImageURL string `json:"image_url,omitempty"`
}

type ReviewDraft struct {
	Target   *ReviewTarget `json:"target,omitempty"`
	Rating   int           `json:"rating"`
	Content  string        `json:"content"`
	ImageURL string        `json:"image_url,omitempty"`
	ImageKey string        `json:"image_key,omitempty"`
}

func NewReviewDraft() ReviewDraft {
	return ReviewDraft{Rating: DefaultRating}
}

func ValidateRating(rating int) error {
	if rating < MinRating || rating > MaxRating {
		return NewValidationError(FieldRating, MsgRatingRange)
	}
	return nil
}

func (d ReviewDraft) Validate() error {
	if d.Target == nil {
		return NewValidationError(FieldTarget, MsgReviewTargetRequired)
	}
	if err := ValidateRating(d.Rating); err != nil {
		return err
	}
	if strings.TrimSpace(d.Content) == "" {
		return NewValidationError(FieldContent, MsgReviewContentRequired)
	}
	return nil
}

// Review is one entry of a product's review list.
type Review struct {
	ReviewID  int64  `json:"review_id"`
	ItemID    int64  `json:"item_id"`
	Nickname  string `json:"nickname"`
	Rating    int    `json:"rating"`
	Content   string `json:"content"`
	ImageURL  string `json:"image_url,omitempty"`
	CreatedAt string `json:"created_at"`
}
