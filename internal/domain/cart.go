package domain

// DefaultShippingFee is the flat fee charged on a non-empty cart, in won.
const DefaultShippingFee int64 = 3000

// CartItem mirrors one server-side cart line. The client never creates a
// line identity of its own.
type CartItem struct {
	CartItemID int64  `json:"cart_item_id"`
	ItemID     int64  `json:"item_id"`
	Name       string `json:"name"`
	Brand      string `json:"brand"`
	UnitPrice  int64  `json:"unit_price"`
	Quantity   int    `json:"quantity"`
	LineTotal  int64  `json:"line_total"`
	ImageURL   string `json:"image_url,omitempty"`
}

// WithQuantity returns a copy of the line at quantity q.
func (i CartItem) WithQuantity(q int) CartItem {
	i.Quantity = q
	i.LineTotal = i.UnitPrice * int64(q)
	return i
}

type CartSummary struct {
	ProductAmount int64 `json:"product_amount"`
	ShippingFee   int64 `json:"shipping_fee"`
	OrderAmount   int64 `json:"order_amount"`
}

// Summarize derives the price summary of a cart. It is the only place the
// order amount is computed.
func Summarize(items []CartItem) CartSummary {
	var product int64
	for _, item := range items {
		product += item.LineTotal
	}
	var shipping int64
	if len(items) > 0 {
		shipping = DefaultShippingFee
	}
	return CartSummary{
		ProductAmount: product,
		ShippingFee:   shipping,
		OrderAmount:   product + shipping,
	}
}

// CloneItems copies a slice of lines so callers can keep a snapshot.
func CloneItems(items []CartItem) []CartItem {
	if items == nil {
		return []CartItem{}
	}
	out := make([]CartItem, len(items))
	copy(out, items)
	return out
}
