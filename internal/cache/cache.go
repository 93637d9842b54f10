package cache

import (
	"context"
	"errors"

	"github.com/ObjCodingDevMart/storefront/internal/domain"
)

// ReviewCache holds the review list of one item.
type ReviewCache interface {
	Get(ctx context.Context, itemID int64) ([]domain.Review, error)
	Set(ctx context.Context, itemID int64, reviews []domain.Review) error
	Delete(ctx context.Context, itemID int64) error
}

var ErrCacheMiss = errors.New("cache miss")
