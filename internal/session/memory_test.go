package session

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryTracker_Expiry(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tr := NewMemoryTracker(time.Minute)
	tr.now = func() time.Time { return now }
	ctx := context.Background()

	gen, err := tr.Begin(ctx, "abc", "weather")
	require.NoError(t, err)
	_, err = tr.Begin(ctx, "abc", "weather")
	require.NoError(t, err)

	ok, _ := tr.IsCurrent(ctx, "abc", "weather", gen)
	assert.False(t, ok)

	now = now.Add(2 * time.Minute)
	ok, _ = tr.IsCurrent(ctx, "abc", "weather", gen)
	assert.True(t, ok, "expired entries no longer supersede")

	next, _ := tr.Begin(ctx, "abc", "weather")
	assert.Equal(t, int64(1), next, "expired counters restart")
}

func TestMemoryTracker_Sweep(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tr := NewMemoryTracker(time.Minute)
	tr.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < sweepThreshold; i++ {
		_, err := tr.Begin(ctx, fmt.Sprintf("s%d", i), "weather")
		require.NoError(t, err)
	}
	require.Equal(t, sweepThreshold, tr.Len())

	now = now.Add(time.Hour)
	_, err := tr.Begin(ctx, "fresh", "weather")
	require.NoError(t, err)
	assert.Equal(t, 1, tr.Len())
}
