package parse

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Inferencer decides whether a parsed amount describes a refund and should
// be normalized to a negative value.
type Inferencer struct {
	keywords []string
}

// NewInferencer creates an inferencer over the given keyword table. Keywords
// are matched as case-insensitive substrings of the item description.
func NewInferencer(keywords []string) *Inferencer {
	lowered := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			lowered = append(lowered, kw)
		}
	}
	return &Inferencer{keywords: lowered}
}

// Apply returns the amount with its final sign. When forceNegative is set,
// or the description contains a negative-indicating keyword, the result is
// -abs(amount); otherwise the amount passes through with the sign it was
// parsed with. The normalization is stable: applying it again cannot flip
// the sign back.
func (i *Inferencer) Apply(description string, amount decimal.Decimal, forceNegative bool) decimal.Decimal {
	if forceNegative || i.matches(description) {
		return amount.Abs().Neg()
	}
	return amount
}

func (i *Inferencer) matches(description string) bool {
	description = strings.ToLower(description)
	for _, kw := range i.keywords {
		if strings.Contains(description, kw) {
			return true
		}
	}
	return false
}
