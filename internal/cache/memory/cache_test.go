package memory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSet(t *testing.T) {
	c := New[string]()
	c.Set("k", "v", time.Minute)

	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", got.Data)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestLazyExpiry(t *testing.T) {
	now := time.Unix(1000, 0)
	clock := func() time.Time { return now }
	c := NewWithClock[int](clock)

	c.Set("k", 42, time.Minute)

	// Within the TTL window the entry is served with its age.
	now = now.Add(30 * time.Second)
	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, 42, got.Data)
	assert.Equal(t, 30*time.Second, got.Age)

	// After expiry the entry is gone and was removed on read.
	now = now.Add(31 * time.Second)
	_, ok = c.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestClear(t *testing.T) {
	c := New[int]()
	c.Set("a", 1, time.Minute)
	c.Set("b", 2, time.Minute)
	require.Equal(t, 2, c.Len())

	c.Clear()
	assert.Equal(t, 0, c.Len())
	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestSetReplaces(t *testing.T) {
	c := New[int]()
	c.Set("k", 1, time.Minute)
	c.Set("k", 2, time.Minute)

	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, 2, got.Data)
}
