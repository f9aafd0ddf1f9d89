package clock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFake_SleepAdvances(t *testing.T) {
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c := NewFake(start)

	require.NoError(t, c.Sleep(t.Context(), 250*time.Millisecond))
	require.NoError(t, c.Sleep(t.Context(), 750*time.Millisecond))

	assert.Equal(t, start.Add(time.Second), c.Now())
}

func TestFake_SleepHonoursCancelledContext(t *testing.T) {
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c := NewFake(start)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	err := c.Sleep(ctx, time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, start, c.Now(), "cancelled sleep must not move the clock")
}

func TestReal_Sleep(t *testing.T) {
	t.Run("returns after the duration", func(t *testing.T) {
		before := time.Now()
		require.NoError(t, Real{}.Sleep(t.Context(), 5*time.Millisecond))
		assert.GreaterOrEqual(t, time.Since(before), 5*time.Millisecond)
	})

	t.Run("returns early on cancel", func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		cancel()
		assert.ErrorIs(t, Real{}.Sleep(ctx, time.Hour), context.Canceled)
	})
}
