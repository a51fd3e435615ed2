package domain

import (
	"time"

	catalog "storefront/internal/features/catalog/domain"

	"github.com/shopspring/decimal"
)

// Item is a product in the cart together with its quantity.
type Item struct {
	catalog.Product
	// Quantity is always at least 1; items reaching 0 are removed.
	Quantity int `json:"quantity"`
}

// Subtotal is price times quantity.
func (i Item) Subtotal() decimal.Decimal {
	return decimal.NewFromFloat(i.Price).Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart is the shopping cart of one session. Each product id appears at most once.
type Cart struct {
	SessionID string    `json:"session_id"`
	Items     []Item    `json:"items"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New returns an empty cart for sessionID.
func New(sessionID string) *Cart {
	return &Cart{SessionID: sessionID, Items: []Item{}}
}

// Add puts one unit of p into the cart.
func (c *Cart) Add(p catalog.Product) {
	c.touch()
	for i := range c.Items {
		if c.Items[i].ID == p.ID {
			c.Items[i].Quantity++
			return
		}
	}
	c.Items = append(c.Items, Item{Product: p, Quantity: 1})
}

// Remove takes one unit of productID out of the cart. Unknown ids are ignored.
func (c *Cart) Remove(productID int) {
	for i := range c.Items {
		if c.Items[i].ID != productID {
			continue
		}
		c.touch()
		if c.Items[i].Quantity > 1 {
			c.Items[i].Quantity--
			return
		}
		c.Items = append(c.Items[:i], c.Items[i+1:]...)
		return
	}
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.touch()
	c.Items = []Item{}
}

// Count is the number of units in the cart.
func (c *Cart) Count() int {
	n := 0
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

// Total is the sum of item subtotals.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// IsEmpty reports whether the cart has no items.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Snapshot returns a copy of the items that later cart changes do not affect.
func (c *Cart) Snapshot() []Item {
	items := make([]Item, len(c.Items))
	copy(items, c.Items)
	return items
}

func (c *Cart) touch() {
	c.UpdatedAt = time.Now().UTC()
}
