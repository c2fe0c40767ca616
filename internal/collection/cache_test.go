package collection

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCacheReplaceAndAppend(t *testing.T) {
	c := NewCache[item]()
	assert.Equal(t, 1, c.Page())
	assert.False(t, c.HasMore())

	c.Replace(Page[item]{Items: items("a", 10), Total: 15})
	assert.Equal(t, 10, c.Len())
	assert.Equal(t, 15, c.Total())
	assert.True(t, c.HasMore())

	c.Append(Page[item]{Items: items("b", 5), Total: 15}, 2)
	assert.Equal(t, 15, c.Len())
	assert.Equal(t, 2, c.Page())
	assert.False(t, c.HasMore())

	c.Replace(Page[item]{Items: items("z", 1), Total: 1})
	assert.Equal(t, 1, c.Page())
	assert.Equal(t, []item{{ID: "z0", Name: "z 0"}}, c.Items())
}

func TestCacheTotalNeverBelowHeld(t *testing.T) {
	c := NewCache[item]()
	c.Replace(Page[item]{Items: items("a", 3), Total: 1})
	assert.Equal(t, 3, c.Total())
	assert.False(t, c.HasMore())
}

func TestCacheRemoveByID(t *testing.T) {
	c := NewCache[item]()
	c.Replace(Page[item]{Items: items("a", 3), Total: 3})
	snapshot := c.Items()

	assert.True(t, c.RemoveByID("a1"))
	assert.Equal(t, 2, c.Total())
	assert.Equal(t, []string{"a0", "a2"}, ids(c.Items()))
	assert.Equal(t, "a1", snapshot[1].ID, "earlier copies are not mutated")

	assert.False(t, c.RemoveByID("a1"))
	assert.Equal(t, 2, c.Total())
}

func TestCacheRemoveFloorsTotal(t *testing.T) {
	c := NewCache[item]()
	c.Prepend(item{ID: "x"})
	c.total = 0
	assert.True(t, c.RemoveByID("x"))
	assert.Equal(t, 0, c.Total())
}

func TestCachePrependAndReplaceByID(t *testing.T) {
	c := NewCache[item]()
	c.Replace(Page[item]{Items: items("a", 2), Total: 2})

	c.Prepend(item{ID: "n"})
	assert.Equal(t, []string{"n", "a0", "a1"}, ids(c.Items()))
	assert.Equal(t, 3, c.Total())

	assert.True(t, c.ReplaceByID(item{ID: "a0", Name: "changed"}))
	assert.Equal(t, "changed", c.Items()[1].Name)
	assert.False(t, c.ReplaceByID(item{ID: "nope"}))
	assert.Equal(t, 3, c.Len())
}

func ids(in []item) []string {
	out := make([]string, len(in))
	for i, it := range in {
		out[i] = it.ID
	}
	return out
}
