package cache

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countingCompute(calls *int, value any) func() (any, error) {
	return func() (any, error) {
		*calls++
		return value, nil
	}
}

func TestGetOrComputeCachesByHash(t *testing.T) {
	c := New(time.Hour)
	calls := 0

	v, err := c.GetOrCompute("metrics", "hash-a", 0, countingCompute(&calls, 42))
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, 1, calls)

	// Same hash: served from cache.
	v, err = c.GetOrCompute("metrics", "hash-a", 0, countingCompute(&calls, 99))
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, 1, calls)

	// Changed hash: recomputed and replaced.
	v, err = c.GetOrCompute("metrics", "hash-b", 0, countingCompute(&calls, 99))
	require.NoError(t, err)
	assert.Equal(t, 99, v)
	assert.Equal(t, 2, calls)

	stats := c.Stats()
	assert.Equal(t, 1, stats.Entries)
	assert.Equal(t, 1, stats.Hits)
	assert.Equal(t, 2, stats.Misses)
}

func TestGetOrComputeTTLExpiry(t *testing.T) {
	c := New(time.Hour)
	current := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return current }

	calls := 0
	_, err := c.GetOrCompute("sheet", "h", time.Minute, countingCompute(&calls, "v"))
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	// Within TTL.
	current = current.Add(30 * time.Second)
	_, err = c.GetOrCompute("sheet", "h", time.Minute, countingCompute(&calls, "v"))
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	// Past TTL.
	current = current.Add(time.Minute)
	_, err = c.GetOrCompute("sheet", "h", time.Minute, countingCompute(&calls, "v"))
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestGetOrComputeErrorNotCached(t *testing.T) {
	c := New(time.Hour)
	boom := errors.New("boom")

	_, err := c.GetOrCompute("k", "h", 0, func() (any, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, c.Stats().Entries)

	// A later successful compute stores normally.
	v, err := c.GetOrCompute("k", "h", 0, func() (any, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, v)
	assert.Equal(t, 1, c.Stats().Entries)
}

func TestInvalidate(t *testing.T) {
	c := New(time.Hour)
	calls := 0

	_, err := c.GetOrCompute("k", "h", 0, countingCompute(&calls, 1))
	require.NoError(t, err)

	c.Invalidate("k")
	_, err = c.GetOrCompute("k", "h", 0, countingCompute(&calls, 1))
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestInvalidateAll(t *testing.T) {
	c := New(time.Hour)
	calls := 0

	_, err := c.GetOrCompute("a", "h", 0, countingCompute(&calls, 1))
	require.NoError(t, err)
	_, err = c.GetOrCompute("b", "h", 0, countingCompute(&calls, 1))
	require.NoError(t, err)
	assert.Equal(t, 2, c.Stats().Entries)

	c.InvalidateAll()
	assert.Equal(t, 0, c.Stats().Entries)
}

func TestContentHash(t *testing.T) {
	a := ContentHash([]byte("same content"))
	b := ContentHash([]byte("same content"))
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)

	c := ContentHash([]byte("different content"))
	assert.NotEqual(t, a, c)
}
