package batch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessor_Run(t *testing.T) {
	items := make([]int, 25)
	for i := range items {
		items[i] = i
	}

	t.Run("ResultsInInputOrder", func(t *testing.T) {
		p, err := NewProcessor[int, int](10)
		require.NoError(t, err)

		var calls atomic.Int32
		results, err := p.WithWorkers(3).Run(context.Background(), items, func(_ context.Context, _ int, v int) (int, error) {
			calls.Add(1)
			return v * 2, nil
		})
		require.NoError(t, err)
		require.Len(t, results, 25)
		assert.Equal(t, int32(25), calls.Load())
		for i, r := range results {
			assert.Equal(t, i, r.Index)
			assert.Equal(t, i*2, r.Value)
			assert.NoError(t, r.Err)
		}
	})

	t.Run("ItemErrorsDoNotAbort", func(t *testing.T) {
		p, _ := NewProcessor[int, int](10)
		boom := errors.New("boom")
		results, err := p.Run(context.Background(), items, func(_ context.Context, i int, v int) (int, error) {
			if i%5 == 0 {
				return 0, boom
			}
			return v, nil
		})
		require.NoError(t, err)
		errs := Errors(results)
		assert.Len(t, errs, 5)
		assert.ErrorIs(t, errs[0], boom)
		assert.Contains(t, errs[1].Error(), "item 5")
		assert.Equal(t, 24, results[24].Value)
	})

	t.Run("CancelledBetweenBatches", func(t *testing.T) {
		p, _ := NewProcessor[int, int](10)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		results, err := p.WithProgressCallback(func(Snapshot) { cancel() }).
			Run(ctx, items, func(_ context.Context, _ int, v int) (int, error) { return v, nil })
		require.ErrorIs(t, err, context.Canceled)
		assert.NoError(t, results[9].Err)
		assert.ErrorIs(t, results[10].Err, context.Canceled)
		assert.ErrorIs(t, results[24].Err, context.Canceled)
	})

	t.Run("EmptyItems", func(t *testing.T) {
		p := NewProcessorWithDefaults[int, int]()
		results, err := p.Run(context.Background(), nil, func(context.Context, int, int) (int, error) { return 0, nil })
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("NilFunc", func(t *testing.T) {
		p := NewProcessorWithDefaults[int, int]()
		_, err := p.Run(context.Background(), items, nil)
		assert.ErrorIs(t, err, ErrNilFunc)
	})

	t.Run("InvalidBatchSize", func(t *testing.T) {
		_, err := NewProcessor[int, int](0)
		assert.ErrorIs(t, err, ErrInvalidBatchSize)
		_, err = NewProcessor[int, int](2000)
		assert.ErrorIs(t, err, ErrInvalidBatchSize)
	})
}

func TestProcessor_Progress(t *testing.T) {
	p, _ := NewProcessor[int, int](4)
	var mu sync.Mutex
	var snaps []Snapshot
	p.WithProgressCallback(func(s Snapshot) {
		mu.Lock()
		defer mu.Unlock()
		snaps = append(snaps, s)
	})

	_, err := p.Run(context.Background(), make([]int, 10), func(context.Context, int, int) (int, error) { return 0, nil })
	require.NoError(t, err)
	require.Len(t, snaps, 3)
	assert.Equal(t, 4, snaps[0].ProcessedItems)
	assert.Equal(t, 10, snaps[2].ProcessedItems)
	assert.Equal(t, 3, snaps[2].ProcessedBatches)
	assert.InDelta(t, 100.0, snaps[2].PercentComplete, 1e-9)
}

func TestProgress(t *testing.T) {
	p := NewProgress(100, 10, 10)
	assert.InDelta(t, 0.0, p.PercentComplete(), 1e-9)
	assert.False(t, p.IsComplete())

	p.AddProcessed(10)
	assert.InDelta(t, 10.0, p.PercentComplete(), 1e-9)

	p.AddProcessed(90)
	assert.True(t, p.IsComplete())
	snap := p.Snapshot()
	assert.Equal(t, 2, snap.ProcessedBatches)
	assert.Equal(t, 10, snap.BatchSize)
}

func TestProcessor_Bounds(t *testing.T) {
	p, _ := NewProcessor[int, int](10)
	b := p.Bounds(25)
	require.Len(t, b, 3)
	assert.Equal(t, [2]int{0, 10}, b[0])
	assert.Equal(t, [2]int{10, 20}, b[1])
	assert.Equal(t, [2]int{20, 25}, b[2])
	assert.Nil(t, p.Bounds(0))
	assert.Equal(t, 10, p.BatchSize())
}
