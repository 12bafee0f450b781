package workpool

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapKeepsInputOrder(t *testing.T) {
	t.Parallel()

	items := make([]int, 100)
	for i := range items {
		items[i] = i
	}
	out, err := Map(context.Background(), 8, items, func(_ context.Context, i, v int) (int, error) {
		return v * v, nil
	})
	require.NoError(t, err)
	require.Len(t, out, len(items))
	for i, v := range out {
		assert.Equal(t, i*i, v)
	}
}

func TestMapPropagatesFirstError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	items := make([]int, 32)
	_, err := Map(context.Background(), 4, items, func(_ context.Context, i, _ int) (int, error) {
		if i == 7 {
			return 0, fmt.Errorf("item %d: %w", i, boom)
		}
		return i, nil
	})
	require.ErrorIs(t, err, boom)
}

func TestMapHonorsCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int32
	_, err := Map(ctx, 4, make([]int, 16), func(_ context.Context, _, _ int) (int, error) {
		calls.Add(1)
		return 0, nil
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls.Load(), "no work may start on a dead context")
}

func TestMapRespectsWorkerLimit(t *testing.T) {
	t.Parallel()

	const limit = 3
	var cur, peak atomic.Int32
	_, err := Map(context.Background(), limit, make([]int, 48), func(_ context.Context, _, _ int) (int, error) {
		n := cur.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(time.Millisecond)
		cur.Add(-1)
		return 0, nil
	})
	require.NoError(t, err)
	assert.LessOrEqual(t, peak.Load(), int32(limit))
}

func TestMapEmptyInput(t *testing.T) {
	t.Parallel()

	out, err := Map(context.Background(), 4, nil, func(_ context.Context, _, _ int) (int, error) {
		return 0, nil
	})
	require.NoError(t, err)
	assert.Empty(t, out)
}
