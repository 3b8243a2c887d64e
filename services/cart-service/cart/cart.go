// Package cart implements the counted-map cart: item id to a positive quantity.
// An item whose quantity would drop to zero is removed, so a zero quantity is
// never stored.
package cart

import (
	"sort"
	"sync"

	"github.com/shopspring/decimal"
)

// Cart maps item ids to quantities. The zero value is not usable; use New.
type Cart map[string]int

func New() Cart {
	return make(Cart)
}

// Add increments the quantity of itemID, creating it at 1, and returns the new quantity.
func (c Cart) Add(itemID string) int {
	c[itemID]++
	return c[itemID]
}

// Remove decrements the quantity of itemID and deletes the entry at zero.
// Removing an absent item does nothing.
func (c Cart) Remove(itemID string) int {
	q, ok := c[itemID]
	if !ok {
		return 0
	}
	if q <= 1 {
		delete(c, itemID)
		return 0
	}
	c[itemID] = q - 1
	return q - 1
}

// Clear empties the cart in place.
func (c Cart) Clear() {
	for k := range c {
		delete(c, k)
	}
}

func (c Cart) Quantity(itemID string) int {
	return c[itemID]
}

// TotalItems is the sum of all quantities.
func (c Cart) TotalItems() int {
	total := 0
	for _, q := range c {
		total += q
	}
	return total
}

// TotalAmount sums quantity * price. Items without a price contribute nothing.
func (c Cart) TotalAmount(prices map[string]decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for id, q := range c {
		if p, ok := prices[id]; ok {
			total = total.Add(p.Mul(decimal.NewFromInt(int64(q))))
		}
	}
	return total
}

// Clone returns an independent copy.
func (c Cart) Clone() Cart {
	out := make(Cart, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Line is one cart entry in a stable, id-sorted listing.
type Line struct {
	ItemID   string `json:"itemId"`
	Quantity int    `json:"quantity"`
}

// Lines lists the entries sorted by item id.
func (c Cart) Lines() []Line {
	lines := make([]Line, 0, len(c))
	for id, q := range c {
		lines = append(lines, Line{ItemID: id, Quantity: q})
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].ItemID < lines[j].ItemID })
	return lines
}

// Store is a goroutine-safe Cart.
type Store struct {
	mu   sync.Mutex
	cart Cart
}

func NewStore() *Store {
	return &Store{cart: New()}
}

func (s *Store) Add(itemID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Add(itemID)
}

func (s *Store) Remove(itemID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Remove(itemID)
}

func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.Clear()
}

// Snapshot returns a copy of the current contents.
func (s *Store) Snapshot() Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Clone()
}
