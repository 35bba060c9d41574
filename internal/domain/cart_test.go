package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestItemCount(t *testing.T) {
	cart := Cart{Items: []CartItem{
		{ID: 1, ProductID: 10, Quantity: 2, UnitPrice: 500},
		{ID: 2, ProductID: 11, Quantity: 3, UnitPrice: 100},
	}}

	assert.Equal(t, 5, cart.ItemCount())
}

func TestTotal(t *testing.T) {
	cart := Cart{Items: []CartItem{
		{ID: 1, ProductID: 10, Quantity: 2, UnitPrice: 500},
		{ID: 2, ProductID: 11, Quantity: 3, UnitPrice: 100},
	}}

	assert.Equal(t, 1300.0, cart.Total())
}

func TestEmptyCartAggregates(t *testing.T) {
	var cart Cart
	assert.Equal(t, 0, cart.ItemCount())
	assert.Equal(t, 0.0, cart.Total())
}

func TestDisplayFallbacks(t *testing.T) {
	item := CartItem{ID: 1, ProductID: 42, Quantity: 1}
	assert.Equal(t, "Product #42", item.DisplayName())
	assert.Equal(t, PlaceholderImage, item.DisplayImage())

	item.ProductName = "Keyboard"
	item.ProductImage = "/img/kb.jpg"
	assert.Equal(t, "Keyboard", item.DisplayName())
	assert.Equal(t, "/img/kb.jpg", item.DisplayImage())
}
