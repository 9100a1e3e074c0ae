package lru

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCache_PutGet(t *testing.T) {
	c := New(2)

	c.Put("a", "1")
	c.Put("b", "2")

	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "1", v)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := New(2)

	c.Put("a", "1")
	c.Put("b", "2")

	// Touch "a" so "b" becomes the eviction candidate.
	c.Get("a")
	c.Put("c", "3")

	_, ok := c.Get("b")
	assert.False(t, ok)

	_, ok = c.Get("a")
	assert.True(t, ok)
	_, ok = c.Get("c")
	assert.True(t, ok)
	assert.Equal(t, 2, c.Len())
}

func TestCache_UpdateExistingKey(t *testing.T) {
	c := New(2)

	c.Put("a", "1")
	c.Put("a", "updated")

	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "updated", v)
	assert.Equal(t, 1, c.Len())
}

func TestCache_DefaultCapacity(t *testing.T) {
	c := New(0)

	for i := 0; i < 150; i++ {
		c.Put(string(rune('a'+i%26))+string(rune('0'+i/26)), "v")
	}

	assert.LessOrEqual(t, c.Len(), 100)
}
