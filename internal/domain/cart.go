package domain

import "fmt"

// PlaceholderImage is shown for lines the server returned without display metadata.
const PlaceholderImage = "/no-image.png"

// CartItem is a single line of the remote cart. ID identifies the line
// itself, not the product it references.
type CartItem struct {
	ID           int64   `json:"id"`
	ProductID    int64   `json:"product_id"`
	Quantity     int     `json:"quantity"`
	UnitPrice    float64 `json:"price"`
	ProductName  string  `json:"name,omitempty"`
	ProductImage string  `json:"image,omitempty"`
}

// DisplayName returns the product name, or a generated fallback when the
// server omitted display metadata.
func (i CartItem) DisplayName() string {
	if i.ProductName != "" {
		return i.ProductName
	}
	return fmt.Sprintf("Product #%d", i.ProductID)
}

// DisplayImage returns the product image URL or the placeholder.
func (i CartItem) DisplayImage() string {
	if i.ProductImage != "" {
		return i.ProductImage
	}
	return PlaceholderImage
}

// Cart is the aggregate of all lines for one session.
type Cart struct {
	Items []CartItem `json:"items"`
}

// ItemCount is the sum of all line quantities.
func (c *Cart) ItemCount() int {
	count := 0
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

// Total is the sum of quantity times unit price over all lines.
func (c *Cart) Total() float64 {
	total := 0.0
	for _, item := range c.Items {
		total += float64(item.Quantity) * item.UnitPrice
	}
	return total
}
