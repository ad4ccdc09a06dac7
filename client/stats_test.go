package client

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tupad/organizador/core/dashboard"
)

func TestStatsCache(t *testing.T) {
	var served int
	api := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		served++
		writeJSON(w, http.StatusOK, dashboard.Stats{Materias: served})
	})
	cache := NewStatsCache(New(api.URL, signedInSession(t, NewMemoryStore())), 80*time.Millisecond)
	ctx := context.Background()

	stats, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Materias)

	t.Run("within the TTL", func(t *testing.T) {
		stats, err := cache.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, stats.Materias)
		assert.Equal(t, 1, api.count(statsPath))
	})

	t.Run("after the TTL", func(t *testing.T) {
		time.Sleep(100 * time.Millisecond)
		stats, err := cache.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, stats.Materias)
		assert.Equal(t, 2, api.count(statsPath))
	})

	t.Run("written value", func(t *testing.T) {
		cache.Set(dashboard.Stats{Materias: 42})
		stats, err := cache.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, 42, stats.Materias)
		assert.Equal(t, 2, api.count(statsPath))
	})

	t.Run("invalidated", func(t *testing.T) {
		cache.Invalidate()
		_, err := cache.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, api.count(statsPath))
	})
}
