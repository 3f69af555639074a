package serp

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/dealradar/backend/internal/domain"
	"github.com/dealradar/backend/internal/usecase"
)

// The provider returns loosely-shaped JSON: ids under several possible
// keys, prices as numbers, strings or nested objects. This file is the
// only place those shapes are touched; everything downstream operates on
// the typed records.

// externalIDKeys in preference order across the walmart/amazon engines.
var externalIDKeys = []string{"product_id", "us_item_id", "item_id", "asin"}

// identifierKeys in preference order within product-detail payloads.
var identifierKeys = []string{"upc", "gtin", "gtin13", "gtin14", "ean"}

// candidatesFromSearch adapts a search payload into candidate records.
// Results without a usable external id are dropped; results without a
// parseable price are kept, since the scorer excludes them itself and
// ingestion still wants the listing.
func candidatesFromSearch(body []byte) ([]domain.Candidate, error) {
	var payload struct {
		OrganicResults []map[string]any `json:"organic_results"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, err
	}

	candidates := make([]domain.Candidate, 0, len(payload.OrganicResults))
	for _, item := range payload.OrganicResults {
		id := firstString(item, externalIDKeys...)
		if id == "" {
			continue
		}

		priceRaw := item["price"]
		if offer, ok := item["primary_offer"].(map[string]any); ok {
			if p, ok := offer["price"]; ok {
				priceRaw = p
			}
		}

		brand := firstString(item, "brand", "seller")

		cand := domain.Candidate{
			ExternalID: id,
			Title:      firstString(item, "title"),
			Brand:      brand,
			Price:      usecase.ParsePrice(priceRaw),
			Link:       firstString(item, "link"),
			Identifier: firstString(item, identifierKeys...),
			Sponsored:  isSponsored(item),
		}
		candidates = append(candidates, cand)
	}
	return candidates, nil
}

// detailFromProduct adapts a product-detail payload. The identifier is
// returned raw; canonicalization to UPC-A happens in the usecase layer.
func detailFromProduct(body []byte) (*domain.ProductDetail, error) {
	var payload struct {
		Product map[string]any `json:"product"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, err
	}

	detail := &domain.ProductDetail{
		Identifier: firstString(payload.Product, identifierKeys...),
		Category:   firstString(payload.Product, "category"),
	}
	if detail.Category == "" {
		if cats, ok := payload.Product["categories"].([]any); ok {
			parts := make([]string, 0, len(cats))
			for _, c := range cats {
				if s := stringValue(c); s != "" {
					parts = append(parts, s)
				}
			}
			detail.Category = strings.Join(parts, " / ")
		}
	}
	return detail, nil
}

// isSponsored detects paid placements, which some engines flag with a
// boolean and others with badge text.
func isSponsored(item map[string]any) bool {
	if b, ok := item["sponsored"].(bool); ok {
		return b
	}
	badge := strings.ToLower(firstString(item, "badge"))
	return strings.Contains(badge, "sponsored") || badge == "ad"
}

// firstString returns the first present, non-empty key stringified.
func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			if s := stringValue(v); s != "" {
				return s
			}
		}
	}
	return ""
}

// stringValue stringifies the scalar shapes providers use for ids:
// strings and JSON numbers (which decode as float64).
func stringValue(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case int:
		return strconv.Itoa(t)
	default:
		return ""
	}
}
