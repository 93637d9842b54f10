package api

import (
	"context"
	"net/http"

	"github.com/ObjCodingDevMart/storefront/internal/domain"
)

type cartDTO struct {
	CartItems  []cartItemDTO `json:"cartItems"`
	TotalPrice int64         `json:"totalPrice"`
}

type cartItemDTO struct {
	CartItemID int64  `json:"cartItemId"`
	ItemID     int64  `json:"itemId"`
	ItemName   string `json:"itemName"`
	Brand      string `json:"brand"`
	Price      int64  `json:"price"`
	Quantity   int    `json:"quantity"`
	TotalPrice int64  `json:"totalPrice"`
	ImgURL     string `json:"imgUrl"`
}

func (d cartItemDTO) toDomain() domain.CartItem {
	lineTotal := d.TotalPrice
	if lineTotal == 0 && d.Quantity > 0 {
		lineTotal = d.Price * int64(d.Quantity)
	}
	return domain.CartItem{
		CartItemID: d.CartItemID,
		ItemID:     d.ItemID,
		Name:       d.ItemName,
		Brand:      d.Brand,
		UnitPrice:  d.Price,
		Quantity:   d.Quantity,
		LineTotal:  lineTotal,
		ImageURL:   d.ImgURL,
	}
}

type addCartItemRequest struct {
	ItemID   int64 `json:"itemId"`
	Quantity int   `json:"quantity"`
}

type updateCartItemRequest struct {
	CartItemID int64 `json:"cartItemId"`
	Quantity   int   `json:"quantity"`
}

type removeCartItemRequest struct {
	CartItemID int64 `json:"cartItemId"`
}

// GET /cart
func (c *Client) GetCart(ctx context.Context) ([]domain.CartItem, error) {
	var dto cartDTO
	if _, err := c.do(ctx, call{method: http.MethodGet, path: "/cart", out: &dto}); err != nil {
		return nil, err
	}
	items := make([]domain.CartItem, 0, len(dto.CartItems))
	for _, it := range dto.CartItems {
		items = append(items, it.toDomain())
	}
	return items, nil
}

// POST /cart/items
func (c *Client) AddCartItem(ctx context.Context, itemID int64, quantity int) error {
	_, err := c.do(ctx, call{
		method: http.MethodPost,
		path:   "/cart/items",
		body:   addCartItemRequest{ItemID: itemID, Quantity: quantity},
	})
	return err
}

// PUT /cart/items
func (c *Client) UpdateCartItem(ctx context.Context, cartItemID int64, quantity int) error {
	_, err := c.do(ctx, call{
		method: http.MethodPut,
		path:   "/cart/items",
		body:   updateCartItemRequest{CartItemID: cartItemID, Quantity: quantity},
	})
	return err
}

// DELETE /cart/items carries the line id in the body.
func (c *Client) RemoveCartItem(ctx context.Context, cartItemID int64) error {
	_, err := c.do(ctx, call{
		method: http.MethodDelete,
		path:   "/cart/items",
		body:   removeCartItemRequest{CartItemID: cartItemID},
	})
	return err
}

// DELETE /cart
func (c *Client) ClearCart(ctx context.Context) error {
	_, err := c.do(ctx, call{method: http.MethodDelete, path: "/cart"})
	return err
}
