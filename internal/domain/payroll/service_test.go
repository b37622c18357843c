package payroll

import (
	"context"
	"errors"
	"testing"
	"time"
)

type failingHistory struct{}

func (failingHistory) Append(context.Context, RunResult) error { return errors.New("store down") }
func (failingHistory) List(context.Context, time.Time, time.Time) ([]RunSummary, error) {
	return nil, errors.New("store down")
}
func (failingHistory) Get(context.Context, time.Time, time.Time) (RunResult, error) {
	return RunResult{}, errors.New("store down")
}

func TestServiceRunRecordsHistory(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryHistory()
	service := NewService(testCalculator(t), store)

	result, err := service.Run(ctx, testRoster(), biweeklyPeriod(), RunOptions{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	stored, err := service.RunForPeriod(ctx, result.Period.StartDate, result.Period.EndDate)
	if err != nil {
		t.Fatalf("RunForPeriod failed: %v", err)
	}
	if !almostEqual(stored.TotalNet, result.TotalNet) {
		t.Fatalf("stored net %v != computed net %v", stored.TotalNet, result.TotalNet)
	}
}

func TestServiceRunSurvivesHistoryFailure(t *testing.T) {
	service := NewService(testCalculator(t), failingHistory{})

	result, err := service.Run(context.Background(), testRoster(), biweeklyPeriod(), RunOptions{})
	if err != nil {
		t.Fatalf("Run should not fail on history append error: %v", err)
	}
	if len(result.Stubs) != 2 {
		t.Fatalf("expected 2 stubs, got %d", len(result.Stubs))
	}
}

func TestServiceWithoutHistory(t *testing.T) {
	service := NewService(testCalculator(t), nil)
	ctx := context.Background()

	if _, err := service.Run(ctx, testRoster(), biweeklyPeriod(), RunOptions{}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summaries, err := service.History(ctx, time.Time{}, time.Time{}); err != nil || summaries != nil {
		t.Fatalf("expected empty history, got %v, %v", summaries, err)
	}
	start := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	if _, err := service.RunForPeriod(ctx, start, start.AddDate(0, 0, 13)); !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
}
