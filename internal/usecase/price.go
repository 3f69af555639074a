package usecase

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// priceTokenRegex matches the first decimal number with at most two
// fraction digits. Thousands-separator commas are stripped before matching.
var priceTokenRegex = regexp.MustCompile(`\d+(?:\.\d{1,2})?`)

// priceMapKeys are the nested-object keys providers hide prices under,
// tried in order.
var priceMapKeys = []string{"value", "raw", "price", "extracted"}

// ParsePrice coerces a heterogeneous price representation into a decimal
// amount. Provider payloads carry prices as numbers, strings with
// currency symbols and surrounding text, or nested objects like
// {"value": 12.34} or {"raw": "$12.34"}. Returns nil when no numeric
// token is found; callers must treat nil as "exclude", never as zero.
func ParsePrice(v any) *decimal.Decimal {
	switch t := v.(type) {
	case nil:
		return nil
	case decimal.Decimal:
		return &t
	case *decimal.Decimal:
		return t
	case float64:
		d := decimal.NewFromFloat(t)
		return &d
	case float32:
		d := decimal.NewFromFloat32(t)
		return &d
	case int:
		d := decimal.NewFromInt(int64(t))
		return &d
	case int64:
		d := decimal.NewFromInt(t)
		return &d
	case json.Number:
		return parsePriceString(t.String())
	case map[string]any:
		// Nested provider shapes: first present key wins, recursively.
		for _, k := range priceMapKeys {
			if inner, ok := t[k]; ok {
				return ParsePrice(inner)
			}
		}
		return nil
	case string:
		return parsePriceString(t)
	default:
		return parsePriceString(fmt.Sprint(v))
	}
}

func parsePriceString(s string) *decimal.Decimal {
	s = strings.ReplaceAll(s, ",", "")
	token := priceTokenRegex.FindString(s)
	if token == "" {
		return nil
	}
	d, err := decimal.NewFromString(token)
	if err != nil {
		return nil
	}
	return &d
}
