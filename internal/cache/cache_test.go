package cache

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartspend/internal/models"
)

var (
	june1  = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	june30 = time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
)

func sample(id string) []models.Expense {
	return []models.Expense{{ItemID: id, Amount: decimal.NewFromInt(10), Currency: models.CurrencyUSD}}
}

func TestRangeCache_GetPut(t *testing.T) {
	c := NewRangeCache(10, time.Minute)

	_, ok := c.Get("u1", june1, june30)
	assert.False(t, ok)

	require.True(t, c.Put("u1", june1, june30, c.Version("u1"), sample("a")))

	got, ok := c.Get("u1", june1, june30)
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].ItemID)

	// callers get their own copy
	got[0].ItemID = "mutated"
	again, _ := c.Get("u1", june1, june30)
	assert.Equal(t, "a", again[0].ItemID)
}

func TestRangeCache_EmptyResultIsCached(t *testing.T) {
	c := NewRangeCache(10, time.Minute)
	require.True(t, c.Put("u1", june1, june30, 0, []models.Expense{}))

	got, ok := c.Get("u1", june1, june30)
	assert.True(t, ok)
	assert.Empty(t, got)
}

func TestRangeCache_Invalidate(t *testing.T) {
	t.Run("drops_only_that_user", func(t *testing.T) {
		c := NewRangeCache(10, time.Minute)
		c.Put("u1", june1, june30, 0, sample("a"))
		c.Put("u2", june1, june30, 0, sample("b"))

		c.Invalidate("u1")

		_, ok := c.Get("u1", june1, june30)
		assert.False(t, ok)
		_, ok = c.Get("u2", june1, june30)
		assert.True(t, ok)
		assert.Equal(t, 1, c.Size())
	})

	t.Run("rejects_put_from_stale_version", func(t *testing.T) {
		c := NewRangeCache(10, time.Minute)
		v := c.Version("u1")

		c.Invalidate("u1")

		assert.False(t, c.Put("u1", june1, june30, v, sample("stale")))
		_, ok := c.Get("u1", june1, june30)
		assert.False(t, ok)
		assert.True(t, c.Put("u1", june1, june30, c.Version("u1"), sample("fresh")))
	})
}

func TestRangeCache_TTL(t *testing.T) {
	now := june1
	c := NewRangeCache(10, time.Minute)
	c.now = func() time.Time { return now }

	c.Put("u1", june1, june30, 0, sample("a"))
	c.Put("u2", june1, june30, 0, sample("b"))

	now = now.Add(30 * time.Second)
	_, ok := c.Get("u1", june1, june30)
	assert.True(t, ok)

	now = now.Add(time.Minute)
	_, ok = c.Get("u1", june1, june30)
	assert.False(t, ok)

	assert.Equal(t, 1, c.CleanExpired())
	assert.Equal(t, 0, c.Size())
}

func TestRangeCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewRangeCache(2, time.Minute)
	july1 := june30.AddDate(0, 0, 1)

	c.Put("u1", june1, june30, 0, sample("a"))
	c.Put("u1", june1, july1, 0, sample("b"))
	c.Get("u1", june1, june30)
	c.Put("u1", june30, july1, 0, sample("c"))

	assert.Equal(t, 2, c.Size())
	_, ok := c.Get("u1", june1, july1)
	assert.False(t, ok, "least recently used entry should be evicted")
	_, ok = c.Get("u1", june1, june30)
	assert.True(t, ok)
}

func TestRangeCache_Run(t *testing.T) {
	c := NewRangeCache(10, time.Millisecond)
	c.Put("u1", june1, june30, 0, sample("a"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx, 5*time.Millisecond) }()

	assert.Eventually(t, func() bool { return c.Size() == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	assert.NoError(t, <-done)
}
