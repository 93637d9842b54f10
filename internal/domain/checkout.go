package domain

import (
	"strconv"
	"strings"
)

// CheckoutDraft lives for one checkout session. Products is a snapshot taken
// on entry and is never refreshed from the cart.
type CheckoutDraft struct {
	Products         []CartItem `json:"products"`
	Address          Address    `json:"address"`
	AvailableMileage int64      `json:"available_mileage"`
	MileageInput     string     `json:"mileage_input"`
	DeliveryFee      int64      `json:"delivery_fee"`
}

// NewCheckoutDraft charges shipping the same way Summarize does: only when
// there is something to ship.
func NewCheckoutDraft(products []CartItem) CheckoutDraft {
	d := CheckoutDraft{Products: CloneItems(products)}
	if len(d.Products) > 0 {
		d.DeliveryFee = DefaultShippingFee
	}
	return d
}

func (d CheckoutDraft) ProductAmount() int64 {
	var total int64
	for _, p := range d.Products {
		total += p.LineTotal
	}
	return total
}

// ParseMileage reads the mileage field. Anything that is not a
// non-negative integer counts as 0.
func ParseMileage(input string) int64 {
	v, err := strconv.ParseInt(strings.TrimSpace(input), 10, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

// ClampMileage bounds v to [0, available].
func ClampMileage(v, available int64) int64 {
	if v < 0 {
		return 0
	}
	if available < 0 {
		available = 0
	}
	if v > available {
		return available
	}
	return v
}

// FinalAmount is what the customer pays for the given mileage use.
func FinalAmount(productAmount, deliveryFee, mileage int64) int64 {
	amount := productAmount + deliveryFee - mileage
	if amount < 0 {
		return 0
	}
	return amount
}

// Totals is the price block shown under the checkout form.
type Totals struct {
	ProductAmount   int64 `json:"product_amount"`
	DeliveryFee     int64 `json:"delivery_fee"`
	MileageDiscount int64 `json:"mileage_discount"`
	DiscountShown   bool  `json:"discount_shown"`
	FinalAmount     int64 `json:"final_amount"`
}

// Totals reflects the current, unsubmitted mileage input. Input over the
// available balance shows no discount at all rather than a partial one.
func (d CheckoutDraft) Totals() Totals {
	t := Totals{
		ProductAmount: d.ProductAmount(),
		DeliveryFee:   d.DeliveryFee,
	}
	requested := ParseMileage(d.MileageInput)
	if requested > d.AvailableMileage {
		t.FinalAmount = t.ProductAmount + t.DeliveryFee
		return t
	}
	mileage := ClampMileage(requested, d.AvailableMileage)
	t.MileageDiscount = mileage
	t.DiscountShown = mileage > 0
	t.FinalAmount = FinalAmount(t.ProductAmount, t.DeliveryFee, mileage)
	return t
}

// MileageToUse validates the input and returns the amount to submit.
func (d CheckoutDraft) MileageToUse() (int64, error) {
	requested := ParseMileage(d.MileageInput)
	if requested > d.AvailableMileage {
		return 0, NewValidationError(FieldMileage, MsgMileageExceeded)
	}
	return ClampMileage(requested, d.AvailableMileage), nil
}
