package handlers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/iudanet/carelink/pkg/api"
)

func TestGraceCache(t *testing.T) {
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	pair := api.TokenPairResponse{Access: "access-2", Refresh: "refresh-2"}

	t.Run("hit within window", func(t *testing.T) {
		c := newGraceCache(15 * time.Second)
		c.put("old", "new", pair, now)

		got, ok := c.get("old", now.Add(15*time.Second))
		assert.True(t, ok)
		assert.Equal(t, pair, got)
	})

	t.Run("miss after window", func(t *testing.T) {
		c := newGraceCache(15 * time.Second)
		c.put("old", "new", pair, now)

		_, ok := c.get("old", now.Add(16*time.Second))
		assert.False(t, ok)
		assert.Empty(t, c.m)
	})

	t.Run("disabled window stores nothing", func(t *testing.T) {
		c := newGraceCache(0)
		c.put("old", "new", pair, now)

		_, ok := c.get("old", now)
		assert.False(t, ok)
	})

	t.Run("forget by issued token", func(t *testing.T) {
		c := newGraceCache(time.Minute)
		c.put("old-1", "new-1", pair, now)
		c.put("old-2", "new-2", pair, now)

		c.forget("new-1")

		_, ok := c.get("old-1", now)
		assert.False(t, ok)
		_, ok = c.get("old-2", now)
		assert.True(t, ok)
	})

	t.Run("purge", func(t *testing.T) {
		c := newGraceCache(10 * time.Second)
		c.put("stale", "a", pair, now)
		c.put("fresh", "b", pair, now.Add(8*time.Second))

		assert.Equal(t, 1, c.purge(now.Add(12*time.Second)))
		_, ok := c.get("fresh", now.Add(12*time.Second))
		assert.True(t, ok)
	})
}
