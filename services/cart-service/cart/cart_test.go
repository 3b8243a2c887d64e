package cart

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestAddRemove(t *testing.T) {
	c := New()
	assert.Equal(t, 1, c.Add("coffee"))
	assert.Equal(t, 2, c.Add("coffee"))
	assert.Equal(t, 1, c.Remove("coffee"))
	assert.Equal(t, 0, c.Remove("coffee"))

	_, ok := c["coffee"]
	assert.False(t, ok, "last unit removes the key")

	assert.Equal(t, 0, c.Remove("tea"))
	assert.Empty(t, c)
}

func TestClear(t *testing.T) {
	c := New()
	c.Add("a")
	c.Add("b")
	c.Clear()
	assert.Empty(t, c)
	assert.Equal(t, 0, c.TotalItems())
}

func TestTotals(t *testing.T) {
	c := New()
	c.Add("bagel")
	c.Add("bagel")
	c.Add("juice")
	c.Add("unpriced")

	prices := map[string]decimal.Decimal{
		"bagel": decimal.RequireFromString("2.25"),
		"juice": decimal.RequireFromString("3.10"),
	}
	assert.Equal(t, 4, c.TotalItems())
	assert.True(t, decimal.RequireFromString("7.60").Equal(c.TotalAmount(prices)))
}

func TestLinesSorted(t *testing.T) {
	c := New()
	c.Add("b")
	c.Add("a")
	c.Add("b")
	assert.Equal(t, []Line{{ItemID: "a", Quantity: 1}, {ItemID: "b", Quantity: 2}}, c.Lines())
}

// Quantity always equals the running count of adds and removes clamped at zero,
// and zero means the key is absent.
func TestRandomSequencesMatchClampedModel(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	ids := []string{"a", "b", "c"}

	for round := 0; round < 200; round++ {
		c := New()
		model := map[string]int{}

		for step := 0; step < 50; step++ {
			id := ids[rng.Intn(len(ids))]
			if rng.Intn(2) == 0 {
				c.Add(id)
				model[id]++
			} else {
				c.Remove(id)
				if model[id] > 0 {
					model[id]--
				}
			}

			for _, check := range ids {
				assert.Equal(t, model[check], c.Quantity(check))
				_, present := c[check]
				assert.Equal(t, model[check] > 0, present)
			}
		}
	}
}

func TestStoreConcurrentAdds(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Add("item")
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, s.Snapshot().Quantity("item"))

	snap := s.Snapshot()
	snap.Add("item")
	assert.Equal(t, 50, s.Snapshot().Quantity("item"), "snapshot is a copy")

	s.Remove("item")
	assert.Equal(t, 49, s.Snapshot().Quantity("item"))
	s.Clear()
	assert.Empty(t, s.Snapshot())
}
