package loop

import (
	"context"
	"testing"
	"time"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoopRunsTasksInOrder(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdview.loop")
	defer teardown()

	l := New()
	defer l.Close()

	var got []int
	for i := 0; i < 5; i++ {
		i := i
		require.True(t, l.Post(func() { got = append(got, i) }))
	}
	require.NoError(t, l.Call(context.Background(), func() {}))

	assert.Equal(t, []int{0, 1, 2, 3, 4}, got)
}

func TestLoopPostAfterCloseIsNoop(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdview.loop")
	defer teardown()

	l := New()
	l.Close()
	l.Close()

	ran := false
	assert.False(t, l.Post(func() { ran = true }))
	assert.ErrorIs(t, l.Call(context.Background(), func() { ran = true }), ErrClosed)
	assert.False(t, ran)
}

func TestLoopSurvivesPanickingTask(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdview.loop")
	defer teardown()

	l := New()
	defer l.Close()

	l.Post(func() { panic("boom") })
	ran := false
	require.NoError(t, l.Call(context.Background(), func() { ran = true }))
	assert.True(t, ran)
}

func TestLoopCallHonoursContext(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdview.loop")
	defer teardown()

	l := New()
	defer l.Close()

	release := make(chan struct{})
	l.Post(func() { <-release })
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, l.Call(ctx, func() {}), context.DeadlineExceeded)
}
