package payroll

import (
	"context"
	"sync"
	"time"
)

// HistoryStore keeps the append-only record of completed runs, keyed by the
// period's start and end dates. Appending the same period twice replaces the
// stored run; runs themselves are never mutated.
type HistoryStore interface {
	Append(ctx context.Context, result RunResult) error
	List(ctx context.Context, from, to time.Time) ([]RunSummary, error)
	Get(ctx context.Context, startDate, endDate time.Time) (RunResult, error)
}

// MemoryHistory is the in-process HistoryStore. A mutex guards appends so
// concurrent runs for different periods cannot lose updates.
type MemoryHistory struct {
	mu    sync.Mutex
	order []string
	runs  map[string]RunResult
}

func NewMemoryHistory() *MemoryHistory {
	return &MemoryHistory{runs: make(map[string]RunResult)}
}

func (m *MemoryHistory) Append(_ context.Context, result RunResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := result.Period.Key()
	if _, exists := m.runs[key]; !exists {
		m.order = append(m.order, key)
	}
	m.runs[key] = result
	return nil
}

func (m *MemoryHistory) List(_ context.Context, from, to time.Time) ([]RunSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	summaries := make([]RunSummary, 0, len(m.order))
	for _, key := range m.order {
		run := m.runs[key]
		if !periodInRange(run.Period.StartDate, from, to) {
			continue
		}
		summaries = append(summaries, run.Summary())
	}
	return summaries, nil
}

func (m *MemoryHistory) Get(_ context.Context, startDate, endDate time.Time) (RunResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := PayPeriod{StartDate: startDate, EndDate: endDate}.Key()
	run, ok := m.runs[key]
	if !ok {
		return RunResult{}, ErrRunNotFound
	}
	return run, nil
}

// periodInRange filters on the run's start date; a zero bound is open-ended.
func periodInRange(start, from, to time.Time) bool {
	if !from.IsZero() && start.Before(from) {
		return false
	}
	if !to.IsZero() && start.After(to) {
		return false
	}
	return true
}
