// Package address models the external postal address search. The search
// service itself is a black box reached through Finder.
package address

import (
	"context"
	"strings"

	"github.com/ObjCodingDevMart/storefront/internal/domain"
)

// Candidate is one search hit; a location usually has both a road-name and
// a lot-number (jibun) form.
type Candidate struct {
	PostalCode  string `json:"postal_code"`
	RoadAddress string `json:"road_address"`
	Jibun       string `json:"jibun,omitempty"`
	Building    string `json:"building,omitempty"`
}

type Finder interface {
	Find(ctx context.Context, keyword string) ([]Candidate, error)
}

// ToAddress turns the chosen candidate plus the user's detail line into a
// shipping address.
func (c Candidate) ToAddress(detail string) domain.Address {
	return domain.Address{
		PostalCode:  strings.TrimSpace(c.PostalCode),
		RoadAddress: strings.TrimSpace(c.RoadAddress),
		Jibun:       strings.TrimSpace(c.Jibun),
		Detail:      strings.TrimSpace(detail),
	}
}

// Search trims the keyword and skips the lookup for blank input.
func Search(ctx context.Context, f Finder, keyword string) ([]Candidate, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" || f == nil {
		return []Candidate{}, nil
	}
	found, err := f.Find(ctx, keyword)
	if err != nil {
		return nil, err
	}
	if found == nil {
		found = []Candidate{}
	}
	return found, nil
}
