package api

import (
	"errors"
	"fmt"
)

// MsgGeneric is shown when the backend gave no usable message.
const MsgGeneric = "요청을 처리하지 못했습니다. 잠시 후 다시 시도해주세요."

// Error is any remote failure: a non-success envelope or a transport
// problem. Message is always safe to show to the user; Err keeps the
// underlying cause for logs.
type Error struct {
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	if e.Code != "" {
		return fmt.Sprintf("%s (%s)", e.Message, e.Code)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func transportError(err error) *Error {
	return &Error{Message: MsgGeneric, Err: err}
}

func orGeneric(msg string) string {
	if msg == "" {
		return MsgGeneric
	}
	return msg
}

// UserMessage extracts the message to display for err. Non-api errors are
// never shown verbatim.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return orGeneric(apiErr.Message)
	}
	return MsgGeneric
}

func IsRemote(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr)
}
