package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/groupe1-react/storefront-client/internal/domain"
)

func extract(t *testing.T, payload string) ([]domain.CartItem, bool) {
	t.Helper()
	var items []domain.CartItem
	found := ExtractList(json.RawMessage(payload), &items)
	return items, found
}

func TestExtractList_BareArray(t *testing.T) {
	items, found := extract(t, `[{"id":1,"product_id":10,"quantity":2,"price":500}]`)
	assert.True(t, found)
	assert.Len(t, items, 1)
	assert.Equal(t, int64(10), items[0].ProductID)
}

func TestExtractList_DataWrapper(t *testing.T) {
	items, found := extract(t, `{"data":[{"id":1,"product_id":10,"quantity":2}]}`)
	assert.True(t, found)
	assert.Len(t, items, 1)
}

func TestExtractList_ItemsWrapper(t *testing.T) {
	items, found := extract(t, `{"items":[{"id":1,"product_id":10,"quantity":2}]}`)
	assert.True(t, found)
	assert.Len(t, items, 1)
}

func TestExtractList_CartWrapper(t *testing.T) {
	items, found := extract(t, `{"cart":[{"id":1,"product_id":10,"quantity":2}]}`)
	assert.True(t, found)
	assert.Len(t, items, 1)
}

func TestExtractList_ProductsWrapper(t *testing.T) {
	items, found := extract(t, `{"products":[{"id":1,"product_id":10,"quantity":2}]}`)
	assert.True(t, found)
	assert.Len(t, items, 1)
}

func TestExtractList_NestedDataWrapper(t *testing.T) {
	// data.items: one level of nesting is followed
	items, found := extract(t, `{"data":{"items":[{"id":1,"product_id":10,"quantity":2}]}}`)
	assert.True(t, found)
	assert.Len(t, items, 1)
}

func TestExtractList_PrecedenceDataFirst(t *testing.T) {
	items, _ := extract(t, `{"items":[{"id":2,"product_id":20,"quantity":1}],"data":[{"id":1,"product_id":10,"quantity":2}]}`)
	assert.Equal(t, int64(10), items[0].ProductID, "data takes precedence over items")
}

func TestExtractList_EmptyArray(t *testing.T) {
	items, found := extract(t, `[]`)
	assert.True(t, found)
	assert.Empty(t, items)
}

func TestExtractList_Unrecognizable(t *testing.T) {
	for _, payload := range []string{``, `null`, `"just a string"`, `{"message":"ok"}`, `{"data":null}`, `{not json`} {
		items, found := extract(t, payload)
		assert.False(t, found, "payload %q must not be recognized", payload)
		assert.Empty(t, items, "payload %q must default to empty", payload)
	}
}

func TestExtractList_Products(t *testing.T) {
	var products []domain.Product
	found := ExtractList(json.RawMessage(`{"data":[{"id":3,"name":"Hub","price":18000}]}`), &products)
	assert.True(t, found)
	assert.Len(t, products, 1)
	assert.Equal(t, "Hub", products[0].Name)
}
