package domain

import "errors"

// User facing messages.
const (
	MsgAddressRequired       = "배송지 주소를 입력해주세요."
	MsgMileageExceeded       = "사용 가능한 마일리지를 초과했습니다."
	MsgReviewContentRequired = "리뷰 내용을 입력해주세요."
	MsgReviewTargetRequired  = "리뷰할 상품 정보가 없습니다."
	MsgRatingRange           = "별점은 1점부터 5점까지 선택할 수 있습니다."
	MsgItemNotInCart         = "장바구니에 없는 상품입니다."
	MsgQuantityPositive      = "수량은 1개 이상이어야 합니다."
	MsgNothingToOrder        = "주문할 상품이 없습니다."
)

// Fields a ValidationError can point at.
const (
	FieldAddress  = "address"
	FieldMileage  = "mileage"
	FieldContent  = "content"
	FieldTarget   = "target"
	FieldRating   = "rating"
	FieldItem     = "item"
	FieldProducts = "products"
)

// ValidationError is raised before any network call and is reported next
// to the offending field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
