package parse

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// ManualItem is the placeholder description for a leading-amount line that
// carries no description of its own.
const ManualItem = "manual item"

// currency is the optional marker in front of an amount. Its presence never
// changes the extracted value, only where the description ends.
const currency = `(?:(?i:RM|MYR)\s*|\$\s*)`

var (
	trailingAmountRe = regexp.MustCompile(`^(.+?)\s+` + currency + `?(-?\d+(?:\.\d+)?)(\s*\S.*)?$`)
	leadingAmountRe  = regexp.MustCompile(`^` + currency + `?(-?\d+(?:\.\d+)?)\s*(.*)$`)
	explicitTotalRe  = regexp.MustCompile(`=\s*` + currency + `?(-?\d+(?:\.\d+)?)\s*$`)
	multiplierRe     = regexp.MustCompile(`(?i)[x*]\s*(\d+)`)
)

// parseTrailingAmount handles "<description> [CUR] <amount> [suffix]".
// The suffix after the amount is inspected for an explicit total ("= 33.32",
// which overrides everything), then a multiplier ("x2" / "*2"); any other
// suffix is a remark that belongs back on the description.
func parseTrailingAmount(line string) (ParsedLine, bool, error) {
	m := trailingAmountRe.FindStringSubmatch(line)
	if m == nil {
		return ParsedLine{}, false, nil
	}

	description := strings.TrimSpace(m[1])
	amount, err := decimal.NewFromString(m[2])
	if err != nil {
		return ParsedLine{}, false, err
	}

	suffix := strings.TrimSpace(m[3])
	switch {
	case suffix == "":
	case explicitTotalRe.MatchString(suffix):
		total := explicitTotalRe.FindStringSubmatch(suffix)
		amount, err = decimal.NewFromString(total[1])
		if err != nil {
			return ParsedLine{}, false, err
		}
	case multiplierRe.MatchString(suffix):
		count := multiplierRe.FindStringSubmatch(suffix)
		n, err := decimal.NewFromString(count[1])
		if err != nil {
			return ParsedLine{}, false, err
		}
		amount = amount.Mul(n)
	default:
		description = description + " " + suffix
	}

	return ParsedLine{Description: description, Amount: amount}, true, nil
}

// parseLeadingAmount handles "[CUR] <amount> [description]". Used only when
// the trailing form does not match. An empty remainder falls back to the
// generic placeholder description.
func parseLeadingAmount(line string) (ParsedLine, bool, error) {
	m := leadingAmountRe.FindStringSubmatch(line)
	if m == nil {
		return ParsedLine{}, false, nil
	}

	amount, err := decimal.NewFromString(m[1])
	if err != nil {
		return ParsedLine{}, false, err
	}

	description := strings.TrimSpace(m[2])
	if description == "" {
		description = ManualItem
	}

	return ParsedLine{Description: description, Amount: amount}, true, nil
}
