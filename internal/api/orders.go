package api

import (
	"context"
	"net/http"

	"github.com/ObjCodingDevMart/storefront/internal/domain"
)

type createOrderRequest struct {
	ItemID       int64 `json:"itemId"`
	Quantity     int   `json:"quantity"`
	MileageToUse int64 `json:"mileageToUse"`
}

type createOrderResult struct {
	OrderID int64 `json:"orderId"`
}

type orderDTO struct {
	OrderID    int64  `json:"orderId"`
	CreatedAt  string `json:"createdAt"`
	ItemID     int64  `json:"itemId"`
	Brand      string `json:"brand"`
	ItemName   string `json:"itemName"`
	Quantity   int    `json:"quantity"`
	Price      int64  `json:"price"`
	FinalPrice int64  `json:"finalPrice"`
	ImgPath    string `json:"imgPath"`
}

func (d orderDTO) toDomain() domain.OrderRecord {
	return domain.OrderRecord{
		OrderID:     d.OrderID,
		CreatedAt:   d.CreatedAt,
		ItemID:      d.ItemID,
		Brand:       d.Brand,
		ProductName: d.ItemName,
		Quantity:    d.Quantity,
		UnitPrice:   d.Price,
		FinalPrice:  d.FinalPrice,
		ImagePath:   d.ImgPath,
	}
}

// POST /orders. idempotencyKey lets the backend collapse a re-sent request.
func (c *Client) CreateOrder(ctx context.Context, line domain.OrderLine, idempotencyKey string) (domain.OrderReceipt, error) {
	var res createOrderResult
	headers := map[string]string{}
	if idempotencyKey != "" {
		headers["Idempotency-Key"] = idempotencyKey
	}
	msg, err := c.do(ctx, call{
		method: http.MethodPost,
		path:   "/orders",
		body: createOrderRequest{
			ItemID:       line.ItemID,
			Quantity:     line.Quantity,
			MileageToUse: line.MileageToUse,
		},
		out:     &res,
		headers: headers,
	})
	if err != nil {
		return domain.OrderReceipt{}, err
	}
	return domain.OrderReceipt{OrderID: res.OrderID, Message: msg}, nil
}

// GET /orders
func (c *Client) ListOrders(ctx context.Context) ([]domain.OrderRecord, error) {
	var dtos []orderDTO
	if _, err := c.do(ctx, call{method: http.MethodGet, path: "/orders", out: &dtos}); err != nil {
		return nil, err
	}
	records := make([]domain.OrderRecord, 0, len(dtos))
	for _, d := range dtos {
		records = append(records, d.toDomain())
	}
	return records, nil
}
