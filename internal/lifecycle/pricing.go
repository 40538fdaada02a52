package lifecycle

import (
	"strings"

	"github.com/DevStdio379/settisfy-web/pkg/types"
	"github.com/shopspring/decimal"
)

// PriceInput carries the authoritative amounts a breakdown is built from.
type PriceInput struct {
	BasePrice              decimal.Decimal
	Addons                 []types.DynamicOption
	PlatformFee            decimal.Decimal
	ManualQuoteDescription string
	ManualQuotePrice       decimal.Decimal
}

// PriceLine is one row of the breakdown.
type PriceLine struct {
	Label  string          `json:"label"`
	Amount decimal.Decimal `json:"amount"`
	Note   string          `json:"note,omitempty"`
}

// PriceBreakdown itemises a booking total.
type PriceBreakdown struct {
	BasePrice   decimal.Decimal `json:"basePrice"`
	AddonsTotal decimal.Decimal `json:"addonsTotal"`
	PlatformFee decimal.Decimal `json:"platformFee"`
	ManualQuote decimal.Decimal `json:"manualQuote"`
	Total       decimal.Decimal `json:"total"`
	Lines       []PriceLine     `json:"lines"`
}

// Breakdown sums the base price, completed add-on sub-options, the platform
// fee and the manual quote. The quote only counts when it has a description
// and a positive price.
func Breakdown(in PriceInput) PriceBreakdown {
	out := PriceBreakdown{
		BasePrice:   in.BasePrice,
		AddonsTotal: decimal.Zero,
		PlatformFee: in.PlatformFee,
		ManualQuote: decimal.Zero,
	}
	out.Lines = append(out.Lines, PriceLine{Label: "Base Price", Amount: in.BasePrice})

	for _, addon := range in.Addons {
		for _, opt := range addon.SubOptions {
			if !opt.IsCompleted {
				continue
			}
			out.AddonsTotal = out.AddonsTotal.Add(opt.AdditionalPrice)
			out.Lines = append(out.Lines, PriceLine{
				Label:  addon.Name + ": " + opt.Label,
				Amount: opt.AdditionalPrice,
			})
		}
	}

	if in.PlatformFee.IsPositive() {
		out.Lines = append(out.Lines, PriceLine{Label: "Platform Fee", Amount: in.PlatformFee})
	}

	if desc := strings.TrimSpace(in.ManualQuoteDescription); desc != "" && in.ManualQuotePrice.IsPositive() {
		out.ManualQuote = in.ManualQuotePrice
		out.Lines = append(out.Lines, PriceLine{Label: "Manual Quote", Amount: in.ManualQuotePrice, Note: desc})
	}

	out.Total = out.BasePrice.Add(out.AddonsTotal).Add(out.PlatformFee).Add(out.ManualQuote)
	return out
}

// FormatRM renders an amount the way the dashboard shows prices.
func FormatRM(amount decimal.Decimal) string {
	return "RM" + amount.StringFixed(2)
}
