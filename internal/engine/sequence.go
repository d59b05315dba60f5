package engine

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/rshade/carbonfocus/internal/emission"
	"github.com/rshade/carbonfocus/internal/logging"
)

// ErrStalePreview is returned by PreviewLatest when a newer preview was
// issued on the same Sequencer while this one was in flight.
var ErrStalePreview = errors.New("preview superseded by a newer request")

// Sequencer hands out monotonic sequence numbers for one input form. The
// zero value is ready to use and safe for concurrent use.
type Sequencer struct {
	latest atomic.Uint64
}

// Next issues a new sequence number, superseding all earlier ones.
func (s *Sequencer) Next() uint64 {
	return s.latest.Add(1)
}

// Latest returns the most recently issued number.
func (s *Sequencer) Latest() uint64 {
	return s.latest.Load()
}

// IsLatest reports whether seq is still the most recent number.
func (s *Sequencer) IsLatest(seq uint64) bool {
	return s.latest.Load() == seq
}

// PreviewLatest runs Preview under a fresh sequence number from seq and
// returns ErrStalePreview if a newer number was issued before it finished.
// Stale results are discarded, whatever their outcome.
func (e *Engine) PreviewLatest(
	ctx context.Context,
	seq *Sequencer,
	input emission.ActivityInput,
) (emission.EmissionResult, uint64, error) {
	n := seq.Next()
	result, err := e.Preview(ctx, input)
	if !seq.IsLatest(n) {
		logging.FromContext(ctx).Debug().
			Ctx(ctx).
			Str("component", "engine").
			Str("operation", "preview_latest").
			Uint64("sequence", n).
			Uint64("latest", seq.Latest()).
			Msg("discarding stale preview")
		return emission.EmissionResult{}, n, ErrStalePreview
	}
	return result, n, err
}
