package review

import (
	"context"
	"errors"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/ObjCodingDevMart/storefront/internal/cache"
	"github.com/ObjCodingDevMart/storefront/internal/domain"
	"github.com/ObjCodingDevMart/storefront/pkg/logger"
)

type Lister interface {
	ListReviews(ctx context.Context, itemID int64) ([]domain.Review, error)
}

// Browser serves review lists cache-aside. A nil cache reads through to the
// backend every time.
type Browser struct {
	api   Lister
	cache cache.ReviewCache
	log   *zap.Logger
	sfg   singleflight.Group // one backend fetch per item at a time
}

func NewBrowser(api Lister, c cache.ReviewCache, log *zap.Logger) *Browser {
	return &Browser{
		api:   api,
		cache: c,
		log:   logger.OrNop(log).Named("reviews"),
	}
}

func (b *Browser) List(ctx context.Context, itemID int64) ([]domain.Review, error) {
	log := logger.FromContext(ctx, b.log).With(zap.Int64("item_id", itemID))

	v, err, _ := b.sfg.Do(strconv.FormatInt(itemID, 10), func() (any, error) {
		if b.cache != nil {
			reviews, err := b.cache.Get(ctx, itemID)
			if err == nil {
				return reviews, nil
			}
			if !errors.Is(err, cache.ErrCacheMiss) {
				log.Warn("review cache get failed", zap.Error(err))
			}
		}

		reviews, err := b.api.ListReviews(ctx, itemID)
		if err != nil {
			return nil, err
		}

		if b.cache != nil {
			go func() {
				setCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
				defer cancel()
				if err := b.cache.Set(setCtx, itemID, reviews); err != nil {
					log.Warn("review cache set failed", zap.Error(err))
				}
			}()
		}
		return reviews, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.Review), nil
}

// Invalidate drops the cached list of an item so the next List refetches.
func (b *Browser) Invalidate(ctx context.Context, itemID int64) {
	if b.cache == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
	defer cancel()
	if err := b.cache.Delete(ctx, itemID); err != nil {
		logger.FromContext(ctx, b.log).Warn("review cache invalidate failed",
			zap.Int64("item_id", itemID), zap.Error(err))
	}
}
