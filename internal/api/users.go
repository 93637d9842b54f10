package api

import (
	"context"
	"net/http"

	"github.com/ObjCodingDevMart/storefront/internal/domain"
)

type addressDTO struct {
	PostalCode    string `json:"postalCode"`
	RoadAddress   string `json:"roadAddress"`
	DetailAddress string `json:"detailAddress,omitempty"`
	JibunAddress  string `json:"jibunAddress,omitempty"`
}

func (d addressDTO) toDomain() domain.Address {
	return domain.Address{
		PostalCode:  d.PostalCode,
		RoadAddress: d.RoadAddress,
		Detail:      d.DetailAddress,
		Jibun:       d.JibunAddress,
	}
}

func addressFromDomain(a domain.Address) addressDTO {
	return addressDTO{
		PostalCode:    a.PostalCode,
		RoadAddress:   a.RoadAddress,
		DetailAddress: a.Detail,
		JibunAddress:  a.Jibun,
	}
}

type profileDTO struct {
	Nickname string `json:"nickname"`
	Mileage  int64  `json:"mileage"`
}

// GET /users/me/address
func (c *Client) GetAddress(ctx context.Context) (domain.Address, error) {
	var dto addressDTO
	if _, err := c.do(ctx, call{method: http.MethodGet, path: "/users/me/address", out: &dto}); err != nil {
		return domain.Address{}, err
	}
	return dto.toDomain(), nil
}

// PUT /users/me/address
func (c *Client) UpdateAddress(ctx context.Context, addr domain.Address) error {
	_, err := c.do(ctx, call{
		method: http.MethodPut,
		path:   "/users/me/address",
		body:   addressFromDomain(addr),
	})
	return err
}

// GET /users/me
func (c *Client) GetProfile(ctx context.Context) (domain.Profile, error) {
	var dto profileDTO
	if _, err := c.do(ctx, call{method: http.MethodGet, path: "/users/me", out: &dto}); err != nil {
		return domain.Profile{}, err
	}
	if dto.Mileage < 0 {
		dto.Mileage = 0
	}
	return domain.Profile{Nickname: dto.Nickname, Mileage: dto.Mileage}, nil
}
