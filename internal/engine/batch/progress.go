package batch

import (
	"sync"
	"time"
)

const percentMultiplier = 100

// Progress tracks a running batch job. It is safe for concurrent use.
type Progress struct {
	mu               sync.RWMutex
	totalItems       int
	processedItems   int
	totalBatches     int
	processedBatches int
	batchSize        int
	startTime        time.Time
}

// NewProgress creates a progress tracker.
func NewProgress(totalItems, totalBatches, batchSize int) *Progress {
	return &Progress{
		totalItems:   totalItems,
		totalBatches: totalBatches,
		batchSize:    batchSize,
		startTime:    time.Now(),
	}
}

// AddProcessed records a completed batch of n items.
func (p *Progress) AddProcessed(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.processedItems += n
	p.processedBatches++
}

// PercentComplete returns completion in the range 0-100.
func (p *Progress) PercentComplete() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.percentLocked()
}

// IsComplete reports whether every item has been processed.
func (p *Progress) IsComplete() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.processedItems >= p.totalItems
}

// Snapshot is an immutable copy of progress state.
type Snapshot struct {
	TotalItems       int           `json:"total_items"`
	ProcessedItems   int           `json:"processed_items"`
	TotalBatches     int           `json:"total_batches"`
	ProcessedBatches int           `json:"processed_batches"`
	BatchSize        int           `json:"batch_size"`
	PercentComplete  float64       `json:"percent_complete"`
	Elapsed          time.Duration `json:"elapsed"`
}

// Snapshot returns a copy of the current state.
func (p *Progress) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return Snapshot{
		TotalItems:       p.totalItems,
		ProcessedItems:   p.processedItems,
		TotalBatches:     p.totalBatches,
		ProcessedBatches: p.processedBatches,
		BatchSize:        p.batchSize,
		PercentComplete:  p.percentLocked(),
		Elapsed:          time.Since(p.startTime),
	}
}

func (p *Progress) percentLocked() float64 {
	if p.totalItems == 0 {
		return 0
	}
	return float64(p.processedItems) / float64(p.totalItems) * percentMultiplier
}
