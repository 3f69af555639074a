package serp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCandidatesFromSearch(t *testing.T) {
	t.Run("id key fallback order", func(t *testing.T) {
		body := []byte(`{"organic_results": [
			{"product_id": "p1", "us_item_id": "u1", "title": "a"},
			{"us_item_id": "u2", "title": "b"},
			{"item_id": 12345, "title": "c"},
			{"asin": "B00497Q6R6", "title": "d"},
			{"title": "no id at all"}
		]}`)

		candidates, err := candidatesFromSearch(body)
		require.NoError(t, err)
		require.Len(t, candidates, 4, "id-less results are dropped")
		assert.Equal(t, "p1", candidates[0].ExternalID)
		assert.Equal(t, "u2", candidates[1].ExternalID)
		assert.Equal(t, "12345", candidates[2].ExternalID, "numeric ids stringified")
		assert.Equal(t, "B00497Q6R6", candidates[3].ExternalID)
	})

	t.Run("price shapes", func(t *testing.T) {
		body := []byte(`{"organic_results": [
			{"us_item_id": "a", "price": 3.98},
			{"us_item_id": "b", "price": "$1,299.99"},
			{"us_item_id": "c", "price": {"value": 5.48, "raw": "$5.48"}},
			{"us_item_id": "d", "price": 9.99, "primary_offer": {"price": 7.50}},
			{"us_item_id": "e"}
		]}`)

		candidates, err := candidatesFromSearch(body)
		require.NoError(t, err)
		require.Len(t, candidates, 5)

		wantPrices := map[string]string{"a": "3.98", "b": "1299.99", "c": "5.48", "d": "7.5"}
		for _, cand := range candidates {
			want, priced := wantPrices[cand.ExternalID]
			if !priced {
				assert.Nil(t, cand.Price, "candidate %s should be unpriced", cand.ExternalID)
				continue
			}
			require.NotNil(t, cand.Price, "candidate %s", cand.ExternalID)
			assert.Equal(t, want, cand.Price.String(), "candidate %s", cand.ExternalID)
		}
	})

	t.Run("unpriced results survive adaptation", func(t *testing.T) {
		body := []byte(`{"organic_results": [{"us_item_id": "a", "title": "Out of stock item"}]}`)
		candidates, err := candidatesFromSearch(body)
		require.NoError(t, err)
		require.Len(t, candidates, 1)
		assert.Nil(t, candidates[0].Price)
	})

	t.Run("sponsored detection", func(t *testing.T) {
		body := []byte(`{"organic_results": [
			{"us_item_id": "a", "sponsored": true},
			{"us_item_id": "b", "sponsored": false},
			{"us_item_id": "c", "badge": "Sponsored"},
			{"us_item_id": "d", "badge": "Ad"},
			{"us_item_id": "e", "badge": "Best seller"},
			{"us_item_id": "f"}
		]}`)

		candidates, err := candidatesFromSearch(body)
		require.NoError(t, err)
		want := map[string]bool{"a": true, "b": false, "c": true, "d": true, "e": false, "f": false}
		for _, cand := range candidates {
			assert.Equal(t, want[cand.ExternalID], cand.Sponsored, "candidate %s", cand.ExternalID)
		}
	})

	t.Run("identifier picked from barcode keys", func(t *testing.T) {
		body := []byte(`{"organic_results": [
			{"us_item_id": "a", "upc": "036000291452"},
			{"us_item_id": "b", "gtin": "0036000291452"},
			{"us_item_id": "c"}
		]}`)

		candidates, err := candidatesFromSearch(body)
		require.NoError(t, err)
		assert.Equal(t, "036000291452", candidates[0].Identifier)
		assert.Equal(t, "0036000291452", candidates[1].Identifier, "canonicalization happens upstream")
		assert.Empty(t, candidates[2].Identifier)
	})

	t.Run("brand falls back to seller", func(t *testing.T) {
		body := []byte(`{"organic_results": [
			{"us_item_id": "a", "brand": "Nabisco", "seller": "Walmart"},
			{"us_item_id": "b", "seller": "Walmart"}
		]}`)

		candidates, err := candidatesFromSearch(body)
		require.NoError(t, err)
		assert.Equal(t, "Nabisco", candidates[0].Brand)
		assert.Equal(t, "Walmart", candidates[1].Brand)
	})

	t.Run("malformed payload is an error", func(t *testing.T) {
		_, err := candidatesFromSearch([]byte(`not json`))
		assert.Error(t, err)
	})
}

func TestDetailFromProduct(t *testing.T) {
	t.Run("identifier key fallback order", func(t *testing.T) {
		detail, err := detailFromProduct([]byte(`{"product": {"gtin13": "0036000291452", "ean": "x"}}`))
		require.NoError(t, err)
		assert.Equal(t, "0036000291452", detail.Identifier)
	})

	t.Run("categories list joined when category absent", func(t *testing.T) {
		detail, err := detailFromProduct([]byte(`{"product": {"categories": ["Food", "Snacks", "Cookies"]}}`))
		require.NoError(t, err)
		assert.Equal(t, "Food / Snacks / Cookies", detail.Category)
	})

	t.Run("category field preferred over list", func(t *testing.T) {
		detail, err := detailFromProduct([]byte(`{"product": {"category": "Snacks", "categories": ["Food"]}}`))
		require.NoError(t, err)
		assert.Equal(t, "Snacks", detail.Category)
	})
}
