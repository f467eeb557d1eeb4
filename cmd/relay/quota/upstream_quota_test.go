package quota

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnlimitedAllowsEverything(t *testing.T) {
	l := New(0, 0)
	for i := 0; i < 100; i++ {
		allowed, err := l.WaitAndReserve(context.Background())
		require.NoError(t, err)
		require.True(t, allowed)
	}
}

func TestDailyLimitExhaustion(t *testing.T) {
	l := New(0, 3)

	for i := 0; i < 3; i++ {
		allowed, err := l.WaitAndReserve(context.Background())
		require.NoError(t, err)
		require.True(t, allowed, "call %d", i+1)
	}

	allowed, err := l.WaitAndReserve(context.Background())
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestPerMinutePacing(t *testing.T) {
	// 분당 1200회 = 50ms 간격. 두 번째 호출은 간격만큼 기다려야 한다.
	l := New(1200, 0)

	allowed, err := l.WaitAndReserve(context.Background())
	require.NoError(t, err)
	require.True(t, allowed)

	start := time.Now()
	allowed, err = l.WaitAndReserve(context.Background())
	require.NoError(t, err)
	require.True(t, allowed)

	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestWaitAbortsOnContextCancel(t *testing.T) {
	l := New(1, 0) // 60초 간격이라 두 번째 호출은 대기에 들어간다.

	allowed, err := l.WaitAndReserve(context.Background())
	require.NoError(t, err)
	require.True(t, allowed)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	allowed, err = l.WaitAndReserve(ctx)
	assert.False(t, allowed)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
