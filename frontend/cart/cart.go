package cart

import (
	"errors"
	"sync"
)

var (
	ErrZeroQuantity = errors.New("cart: quantity must not be zero")
	ErrNoPrice      = errors.New("cart: item has no price")
	ErrNotInCart    = errors.New("cart: barcode not in cart")
)

// LineItem is one row of a session's cart. UnitPrice is the price excluding
// tax in whole currency units.
type LineItem struct {
	ProductName string `json:"product_name"`
	Barcode     string `json:"barcode"`
	UnitPrice   int64  `json:"unit_price"`
	Quantity    int64  `json:"quantity"`
	Unit        string `json:"unit,omitempty"`
}

// Amount is the line total, quantity times unit price.
func (li LineItem) Amount() int64 {
	return li.Quantity * li.UnitPrice
}

// Summary is the aggregate over all lines. It is recomputed from the lines
// on every read and never stored.
type Summary struct {
	TotalQuantity int64 `json:"total_quantity"`
	TotalAmount   int64 `json:"total_amount"`
}

// Cart holds one session's lines in insertion order. Adding a barcode that
// is already present merges into the existing line instead of appending.
type Cart struct {
	mu    sync.Mutex
	lines []LineItem
}

func New() *Cart {
	return &Cart{}
}

// Add merges an item into the cart. Quantity may be negative to take items
// back out; a line whose quantity reaches zero or below is removed. Adding
// a barcode that is not in the cart with a non-positive quantity is
// rejected, as is a zero quantity or a missing price.
func (c *Cart) Add(item LineItem, quantity int64) error {
	if quantity == 0 {
		return ErrZeroQuantity
	}
	if item.UnitPrice < 0 {
		return ErrNoPrice
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.lines {
		if c.lines[i].Barcode == item.Barcode {
			c.lines[i].Quantity += quantity
			if c.lines[i].Quantity <= 0 {
				c.lines = append(c.lines[:i], c.lines[i+1:]...)
			}
			return nil
		}
	}
	if quantity < 0 {
		return ErrNotInCart
	}
	item.Quantity = quantity
	c.lines = append(c.lines, item)
	return nil
}

// Adjust changes a line's quantity by delta, removing the line when it
// reaches zero or below.
func (c *Cart) Adjust(barcode string, delta int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.lines {
		if c.lines[i].Barcode == barcode {
			c.lines[i].Quantity += delta
			if c.lines[i].Quantity <= 0 {
				c.lines = append(c.lines[:i], c.lines[i+1:]...)
			}
			return nil
		}
	}
	return ErrNotInCart
}

// SetQuantity replaces a line's quantity outright. Zero removes the line;
// negative quantities are rejected.
func (c *Cart) SetQuantity(barcode string, quantity int64) error {
	if quantity < 0 {
		return ErrZeroQuantity
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.lines {
		if c.lines[i].Barcode == barcode {
			if quantity == 0 {
				c.lines = append(c.lines[:i], c.lines[i+1:]...)
				return nil
			}
			c.lines[i].Quantity = quantity
			return nil
		}
	}
	return ErrNotInCart
}

// Clear empties the cart. Clearing an already empty cart reports false so
// callers can answer with an informational message instead of an error.
func (c *Cart) Clear() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.lines) == 0 {
		return false
	}
	c.lines = nil
	return true
}

// Lines returns a copy of the lines in insertion order.
func (c *Cart) Lines() []LineItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]LineItem, len(c.lines))
	copy(out, c.lines)
	return out
}

// Summarize computes the aggregate without mutating anything.
func (c *Cart) Summarize() Summary {
	c.mu.Lock()
	defer c.mu.Unlock()
	var s Summary
	for _, li := range c.lines {
		s.TotalQuantity += li.Quantity
		s.TotalAmount += li.Amount()
	}
	return s
}
