package domain

type SubmitStatus string

const (
	StatusIdle    SubmitStatus = "IDLE"
	StatusLoading SubmitStatus = "LOADING"
	StatusSuccess SubmitStatus = "SUCCESS"
	StatusError   SubmitStatus = "ERROR"
)

func (s SubmitStatus) IsTerminal() bool {
	return s == StatusSuccess
}

// String representation (for logging)
func (s SubmitStatus) String() string {
	return string(s)
}

// CanTransitionTo encodes Idle -> Loading -> {Success | Error},
// Error -> Loading (retry) and Error -> Idle (dismiss).
func CanTransitionTo(from, to SubmitStatus) bool {
	switch from {
	case StatusIdle:
		return to == StatusLoading
	case StatusLoading:
		return to == StatusSuccess || to == StatusError
	case StatusError:
		return to == StatusLoading || to == StatusIdle
	default:
		return false
	}
}

// SubmitState is the payment and review submission state. Message is only
// meaningful for Success and Error.
type SubmitState struct {
	Status  SubmitStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

type (
	PaymentState = SubmitState
	ReviewState  = SubmitState
)

func Idle() SubmitState { return SubmitState{Status: StatusIdle} }

func Loading() SubmitState { return SubmitState{Status: StatusLoading} }

func Success(message string) SubmitState {
	return SubmitState{Status: StatusSuccess, Message: message}
}

func Failed(message string) SubmitState {
	return SubmitState{Status: StatusError, Message: message}
}
