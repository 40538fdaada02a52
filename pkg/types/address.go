package types

import (
	"strings"
)

// Address is the service location a customer picked at checkout.
type Address struct {
	ID           string  `json:"id,omitempty"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	AddressName  string  `json:"addressName"`
	Address      string  `json:"address"`
	BuildingType string  `json:"buildingType,omitempty"`
	FullAddress  string  `json:"fullAddress"`
	Postcode     string  `json:"postcode"`
	AddressLabel string  `json:"addressLabel,omitempty"`
	PhoneNumber  string  `json:"phoneNumber,omitempty"`
}

// Display returns the most complete address line available.
func (a Address) Display() string {
	if full := strings.TrimSpace(a.FullAddress); full != "" {
		return full
	}
	return strings.TrimSpace(strings.Join([]string{a.Address, a.Postcode}, " "))
}
