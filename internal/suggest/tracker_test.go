package suggest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackerSupersedesOlderLookups(t *testing.T) {
	var tr Tracker

	ctx1, gen1 := tr.Begin(context.Background(), "a")
	ctx2, gen2 := tr.Begin(context.Background(), "ab")

	assert.ErrorIs(t, ctx1.Err(), context.Canceled, "older lookup is cancelled")
	assert.NoError(t, ctx2.Err())
	assert.False(t, tr.Current(gen1))
	assert.True(t, tr.Current(gen2))
	assert.Equal(t, "ab", tr.Query())

	tr.Done(gen1)
	assert.NoError(t, ctx2.Err(), "a stale Done must not cancel the live lookup")

	tr.Done(gen2)
	assert.ErrorIs(t, ctx2.Err(), context.Canceled)
}

func TestTrackerDebounce(t *testing.T) {
	var tr Tracker

	g1 := tr.Next("a")
	g2 := tr.Next("ab")

	_, ok := tr.Attach(context.Background(), g1)
	assert.False(t, ok, "superseded keystroke never fires")

	ctx, ok := tr.Attach(context.Background(), g2)
	require.True(t, ok)
	assert.NoError(t, ctx.Err())

	tr.Cancel()
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}
