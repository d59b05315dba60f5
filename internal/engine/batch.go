package engine

import (
	"context"

	"github.com/rshade/carbonfocus/internal/emission"
	"github.com/rshade/carbonfocus/internal/engine/batch"
	"github.com/rshade/carbonfocus/internal/logging"
)

// BatchItem is the preview outcome for one input of a batch.
type BatchItem struct {
	Index  int                      `json:"index"`
	Result *emission.EmissionResult `json:"result,omitempty"`
	Error  string                   `json:"error,omitempty"`

	err error
}

// Err returns the item failure, if any.
func (i BatchItem) Err() error {
	return i.err
}

// BatchSummary aggregates the successful items of a batch.
type BatchSummary struct {
	Items       []BatchItem `json:"items"`
	Succeeded   int         `json:"succeeded"`
	Failed      int         `json:"failed"`
	TotalCO2eKg float64     `json:"total_co2e_kg"`
	Warnings    int         `json:"warnings"`
}

// PreviewBatch previews every input. One failing input does not stop the
// others; its error is reported on its item. The returned error is non-nil
// only when ctx ends before the batch completes.
func (e *Engine) PreviewBatch(
	ctx context.Context,
	inputs []emission.ActivityInput,
	onProgress batch.ProgressCallback,
) (BatchSummary, error) {
	log := logging.FromContext(ctx)

	p := batch.NewProcessorWithDefaults[emission.ActivityInput, emission.EmissionResult]()
	if e.opts.BatchSize > 0 {
		var err error
		if p, err = batch.NewProcessor[emission.ActivityInput, emission.EmissionResult](e.opts.BatchSize); err != nil {
			return BatchSummary{}, err
		}
	}
	if e.opts.Workers > 0 {
		p.WithWorkers(e.opts.Workers)
	}
	p.WithProgressCallback(onProgress)

	results, runErr := p.Run(ctx, inputs,
		func(ctx context.Context, _ int, in emission.ActivityInput) (emission.EmissionResult, error) {
			return e.Preview(ctx, in)
		})

	summary := BatchSummary{Items: make([]BatchItem, len(results))}
	for i, r := range results {
		item := BatchItem{Index: r.Index}
		if r.Err != nil {
			item.err = r.Err
			item.Error = r.Err.Error()
			summary.Failed++
		} else {
			v := r.Value
			item.Result = &v
			summary.Succeeded++
			summary.TotalCO2eKg += v.CO2eKg
			summary.Warnings += len(v.Warnings)
		}
		summary.Items[i] = item
	}

	log.Info().
		Ctx(ctx).
		Str("component", "engine").
		Str("operation", "preview_batch").
		Int("items", len(inputs)).
		Int("succeeded", summary.Succeeded).
		Int("failed", summary.Failed).
		Float64("total_co2e_kg", summary.TotalCO2eKg).
		Msg("batch preview complete")

	return summary, runErr
}
