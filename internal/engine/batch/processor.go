package batch

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Batch processing limits.
const (
	DefaultBatchSize = 50
	MinBatchSize     = 1
	MaxBatchSize     = 1000

	DefaultWorkers = 4
)

// Errors returned by the processor.
var (
	ErrInvalidBatchSize = errors.New("batch size must be between 1 and 1000")
	ErrNilFunc          = errors.New("item function cannot be nil")
)

// ItemFunc handles one item. index is the item's position in the input.
type ItemFunc[T, R any] func(ctx context.Context, index int, item T) (R, error)

// ProgressCallback is invoked after each batch completes.
type ProgressCallback func(snap Snapshot)

// Result is the outcome of one item. Exactly one of Value and Err is set.
type Result[R any] struct {
	Index int
	Value R
	Err   error
}

// Processor splits input into batches and runs an ItemFunc over each item.
type Processor[T, R any] struct {
	batchSize  int
	workers    int
	onProgress ProgressCallback
}

// NewProcessor returns a processor with the given batch size and
// DefaultWorkers workers.
func NewProcessor[T, R any](batchSize int) (*Processor[T, R], error) {
	if batchSize < MinBatchSize || batchSize > MaxBatchSize {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidBatchSize, batchSize)
	}
	return &Processor[T, R]{batchSize: batchSize, workers: DefaultWorkers}, nil
}

// NewProcessorWithDefaults returns a processor with DefaultBatchSize.
func NewProcessorWithDefaults[T, R any]() *Processor[T, R] {
	return &Processor[T, R]{batchSize: DefaultBatchSize, workers: DefaultWorkers}
}

// WithWorkers sets the per-batch concurrency. Values below 1 mean 1.
func (p *Processor[T, R]) WithWorkers(n int) *Processor[T, R] {
	p.workers = max(n, 1)
	return p
}

// WithProgressCallback sets a callback run after each batch.
func (p *Processor[T, R]) WithProgressCallback(cb ProgressCallback) *Processor[T, R] {
	p.onProgress = cb
	return p
}

// BatchSize returns the configured batch size.
func (p *Processor[T, R]) BatchSize() int {
	return p.batchSize
}

// Run applies fn to every item and returns one Result per item, in input
// order. The returned error is non-nil only when ctx is done; results for
// items that never ran are left with Err set to the context error.
func (p *Processor[T, R]) Run(ctx context.Context, items []T, fn ItemFunc[T, R]) ([]Result[R], error) {
	if fn == nil {
		return nil, ErrNilFunc
	}
	results := make([]Result[R], len(items))
	for i := range results {
		results[i].Index = i
	}
	if len(items) == 0 {
		return results, nil
	}

	bounds := p.Bounds(len(items))
	progress := NewProgress(len(items), len(bounds), p.batchSize)

	for _, b := range bounds {
		if err := ctx.Err(); err != nil {
			markUnrun(results, b[0], err)
			return results, err
		}

		g := new(errgroup.Group)
		g.SetLimit(p.workers)
		for i := b[0]; i < b[1]; i++ {
			i := i
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					results[i].Err = err
					return nil
				}
				v, err := fn(ctx, i, items[i])
				if err != nil {
					results[i].Err = err
					return nil
				}
				results[i].Value = v
				return nil
			})
		}
		_ = g.Wait()

		progress.AddProcessed(b[1] - b[0])
		if p.onProgress != nil {
			p.onProgress(progress.Snapshot())
		}
	}

	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}

// Bounds returns the [start, end) index pairs of each batch.
func (p *Processor[T, R]) Bounds(total int) [][2]int {
	if total <= 0 {
		return nil
	}
	n := (total + p.batchSize - 1) / p.batchSize
	out := make([][2]int, n)
	for i := 0; i < n; i++ {
		start := i * p.batchSize
		out[i] = [2]int{start, min(start+p.batchSize, total)}
	}
	return out
}

func markUnrun[R any](results []Result[R], from int, err error) {
	for i := from; i < len(results); i++ {
		results[i].Err = err
	}
}

// Errors returns the item errors in input order, each wrapped with its index.
func Errors[R any](results []Result[R]) []error {
	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("item %d: %w", r.Index, r.Err))
		}
	}
	return errs
}
