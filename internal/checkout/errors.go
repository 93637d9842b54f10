package checkout

import "errors"

var (
	ErrTerminal          = errors.New("checkout already completed")
	ErrIllegalTransition = errors.New("illegal transition of payment state")
)

const (
	MsgOrderCompleted   = "주문이 완료되었습니다."
	MsgCheckoutLoadFail = "배송지 또는 마일리지 정보를 불러오지 못했습니다."
)
