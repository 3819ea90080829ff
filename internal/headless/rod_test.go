package headless

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadTimeout(t *testing.T) {
	t.Parallel()

	got, err := loadTimeout(context.Background(), 30*time.Second)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, got)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	got, err = loadTimeout(ctx, 30*time.Second)
	require.NoError(t, err)
	assert.LessOrEqual(t, got, time.Second)
	assert.Positive(t, got)

	got, err = loadTimeout(ctx, 10*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 10*time.Millisecond, got)

	expired, cancelExpired := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancelExpired()
	_, err = loadTimeout(expired, 30*time.Second)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestOpenRodPageHonoursExpiredContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := openRodPage(ctx, Options{}, "<html></html>", func([]byte) {})
	assert.ErrorIs(t, err, context.Canceled)
}
