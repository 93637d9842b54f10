package domain

import "strings"

// Address is a shipping address. Jibun is the lot-number form of the same
// location and is optional.
type Address struct {
	PostalCode  string `json:"postal_code"`
	RoadAddress string `json:"road_address"`
	Detail      string `json:"detail,omitempty"`
	Jibun       string `json:"jibun,omitempty"`
}

func (a Address) IsComplete() bool {
	return strings.TrimSpace(a.PostalCode) != "" && strings.TrimSpace(a.RoadAddress) != ""
}

func (a Address) Validate() error {
	if !a.IsComplete() {
		return NewValidationError(FieldAddress, MsgAddressRequired)
	}
	return nil
}
