package payroll

import (
	"context"
	"log/slog"
	"time"
)

// Service pairs the calculator with the run-history store. History is
// best-effort bookkeeping: a failed append is logged, never allowed to fail
// a run that already computed.
type Service struct {
	calc    *Calculator
	history HistoryStore
}

func NewService(calc *Calculator, history HistoryStore) *Service {
	return &Service{calc: calc, history: history}
}

func (s *Service) Calculator() *Calculator {
	return s.calc
}

// Run computes the roster and records the result in the history store.
func (s *Service) Run(ctx context.Context, roster []CompensationRecord, period PayPeriod, opts RunOptions) (RunResult, error) {
	result, err := s.calc.CalculateRun(roster, period, opts)
	if err != nil {
		return RunResult{}, err
	}
	if s.history != nil {
		if err := s.history.Append(ctx, result); err != nil {
			slog.Warn("payroll history append failed", "period", result.Period.Key(), "err", err)
		}
	}
	return result, nil
}

func (s *Service) History(ctx context.Context, from, to time.Time) ([]RunSummary, error) {
	if s.history == nil {
		return nil, nil
	}
	return s.history.List(ctx, from, to)
}

func (s *Service) RunForPeriod(ctx context.Context, startDate, endDate time.Time) (RunResult, error) {
	if s.history == nil {
		return RunResult{}, ErrRunNotFound
	}
	return s.history.Get(ctx, startDate, endDate)
}
