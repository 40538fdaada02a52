package types

import "github.com/shopspring/decimal"

// SubOption is a priced choice inside a catalogue add-on.
type SubOption struct {
	ID              int             `json:"id,omitempty"`
	Label           string          `json:"label"`
	AdditionalPrice decimal.Decimal `json:"additionalPrice"`
	Notes           string          `json:"notes,omitempty"`
	IsCompleted     bool            `json:"isCompleted,omitempty"`
}

// DynamicOption is a catalogue add-on group such as "sqft" or "extras".
type DynamicOption struct {
	ID             int         `json:"id,omitempty"`
	Name           string      `json:"name"`
	SubOptions     []SubOption `json:"subOptions"`
	MultipleSelect bool        `json:"multipleSelect"`
}

// Catalogue is the snapshot of a catalogue service taken when a booking or a
// settler service is created.
type Catalogue struct {
	ID               string          `json:"id,omitempty"`
	ImageURLs        []string        `json:"imageUrls"`
	Title            string          `json:"title"`
	Description      string          `json:"description"`
	IncludedServices string          `json:"includedServices,omitempty"`
	ExcludedServices string          `json:"excludedServices,omitempty"`
	Category         string          `json:"category"`
	BasePrice        decimal.Decimal `json:"basePrice"`
	DynamicOptions   []DynamicOption `json:"dynamicOptions"`
	IsActive         bool            `json:"isActive"`
}
