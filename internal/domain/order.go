package domain

type OrderRecord struct {
	OrderID     int64  `json:"order_id"`
	CreatedAt   string `json:"created_at"`
	ItemID      int64  `json:"item_id"`
	Brand       string `json:"brand"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	UnitPrice   int64  `json:"unit_price"`
	FinalPrice  int64  `json:"final_price"`
	ImagePath   string `json:"image_path,omitempty"`
}

type OrderGroup struct {
	DateLabel string        `json:"date_label"`
	Orders    []OrderRecord `json:"orders"`
}

// OrderLine is one product submitted in POST /orders.
type OrderLine struct {
	ItemID       int64
	Quantity     int
	MileageToUse int64
}

type OrderReceipt struct {
	OrderID int64
	Message string
}

// Profile is the part of the signed-in user the checkout needs.
type Profile struct {
	Nickname string `json:"nickname"`
	Mileage  int64  `json:"mileage"`
}
