package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/rshade/carbonfocus/internal/emission"
	"github.com/rshade/carbonfocus/internal/persist"
)

// SubmitRequest is an activity ready to be stored.
type SubmitRequest struct {
	Input       emission.ActivityInput
	Description string

	// Date is the activity date. Zero means today.
	Date time.Time
}

// SubmitResult pairs the local preview with the service's response.
type SubmitResult struct {
	Preview  emission.EmissionResult  `json:"preview"`
	Response persist.ActivityResponse `json:"response"`
}

// Submit previews the activity and stores it. Preview warnings never block
// submission. Service errors are returned unchanged (see persist.APIError)
// and are not retried; calling Submit twice stores two activities.
func (e *Engine) Submit(ctx context.Context, req SubmitRequest) (SubmitResult, error) {
	if e.submitter == nil {
		return SubmitResult{}, ErrNoPersistence
	}
	preview, err := e.Preview(ctx, req.Input)
	if err != nil {
		return SubmitResult{}, err
	}

	date := req.Date
	if date.IsZero() {
		date = e.opts.Now()
	}
	body := persist.ActivityRequest{
		CategoryCode:   preview.CategoryCode,
		ActivityKey:    preview.ActivityKey,
		Quantity:       preview.QuantityNormalized,
		Unit:           preview.Unit,
		Description:    req.Description,
		Date:           date.Format(persist.DateLayout),
		SupplierFactor: supplierFactor(req.Input),
	}

	resp, err := e.submitter.Submit(ctx, body)
	if err != nil {
		return SubmitResult{Preview: preview}, fmt.Errorf("submitting activity: %w", err)
	}
	return SubmitResult{Preview: preview, Response: resp}, nil
}

func supplierFactor(input emission.ActivityInput) *float64 {
	if m, ok := input.Method.(emission.SupplierSpecific); ok {
		f := m.Factor
		return &f
	}
	return input.SupplierFactor
}
