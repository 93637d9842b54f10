package orders

import (
	"context"

	"go.uber.org/zap"

	"github.com/ObjCodingDevMart/storefront/internal/domain"
	"github.com/ObjCodingDevMart/storefront/pkg/logger"
)

type Lister interface {
	ListOrders(ctx context.Context) ([]domain.OrderRecord, error)
}

// History loads the signed-in user's orders, grouped for display.
type History struct {
	api Lister
	log *zap.Logger
}

func NewHistory(api Lister, log *zap.Logger) *History {
	return &History{api: api, log: logger.OrNop(log).Named("orders")}
}

func (h *History) Load(ctx context.Context) ([]domain.OrderGroup, error) {
	records, err := h.api.ListOrders(ctx)
	if err != nil {
		logger.FromContext(ctx, h.log).Warn("order history load failed", zap.Error(err))
		return nil, err
	}
	return Group(records), nil
}
