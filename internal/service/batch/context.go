package batch

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/octobees/contact-enricher/internal/entity"
)

// BatchContext carries the state of one run. Results are kept in input order.
type BatchContext struct {
	ID       uuid.UUID
	Started  time.Time
	Throttle Throttle

	mu      sync.Mutex
	results []entity.EnrichmentResult
	filled  []bool
	summary entity.Summary
}

// NewBatchContext prepares a run of size rows. A nil throttle means no pacing.
func NewBatchContext(size int, throttle Throttle) *BatchContext {
	if throttle == nil {
		throttle = NoThrottle{}
	}
	return &BatchContext{
		ID:       uuid.New(),
		Started:  time.Now().UTC(),
		Throttle: throttle,
		results:  make([]entity.EnrichmentResult, size),
		filled:   make([]bool, size),
	}
}

// Record stores the result for position i.
func (b *BatchContext) Record(i int, r entity.EnrichmentResult) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if i < 0 || i >= len(b.results) || b.filled[i] {
		return
	}
	b.results[i] = r
	b.filled[i] = true
	b.summary.Add(r)
}

// Results returns the recorded results in input order.
func (b *BatchContext) Results() []entity.EnrichmentResult {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]entity.EnrichmentResult, 0, len(b.results))
	for i, r := range b.results {
		if b.filled[i] {
			out = append(out, r)
		}
	}
	return out
}

// Summary returns the running counters.
func (b *BatchContext) Summary() entity.Summary {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.summary
}

// Report is the final outcome of a run.
type Report struct {
	ID       uuid.UUID                 `json:"id"`
	Started  time.Time                 `json:"started_at"`
	Finished time.Time                 `json:"finished_at"`
	Summary  entity.Summary            `json:"summary"`
	Results  []entity.EnrichmentResult `json:"results"`
	Strategy *entity.TargetingStrategy `json:"strategy,omitempty"`
}

func (b *BatchContext) report() Report {
	return Report{
		ID:       b.ID,
		Started:  b.Started,
		Finished: time.Now().UTC(),
		Summary:  b.Summary(),
		Results:  b.Results(),
	}
}
