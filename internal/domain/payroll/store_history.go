package payroll

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgHistory persists runs to Postgres. Each run is one row keyed by the
// period boundaries, with the full result stored as JSON next to the summary
// columns used for listing.
type PgHistory struct {
	DB *pgxpool.Pool
}

func NewPgHistory(db *pgxpool.Pool) *PgHistory {
	return &PgHistory{DB: db}
}

func (s *PgHistory) Append(ctx context.Context, result RunResult) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return err
	}
	summary := result.Summary()
	_, err = s.DB.Exec(ctx, `
    INSERT INTO payroll_runs (start_date, end_date, pay_date, period_type, employees, failed, total_gross, total_net, result_json)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
    ON CONFLICT (start_date, end_date) DO UPDATE
    SET pay_date = EXCLUDED.pay_date,
        period_type = EXCLUDED.period_type,
        employees = EXCLUDED.employees,
        failed = EXCLUDED.failed,
        total_gross = EXCLUDED.total_gross,
        total_net = EXCLUDED.total_net,
        result_json = EXCLUDED.result_json
  `, result.Period.StartDate, result.Period.EndDate, result.Period.PayDate, string(result.Period.PeriodType),
		summary.Employees, summary.Failed, summary.TotalGross, summary.TotalNet, resultJSON)
	return err
}

func (s *PgHistory) List(ctx context.Context, from, to time.Time) ([]RunSummary, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT start_date, end_date, pay_date, period_type, employees, failed, total_gross, total_net
    FROM payroll_runs
    WHERE ($1::date IS NULL OR start_date >= $1)
      AND ($2::date IS NULL OR start_date <= $2)
    ORDER BY start_date
  `, nullIfZero(from), nullIfZero(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []RunSummary
	for rows.Next() {
		var summary RunSummary
		var periodType string
		if err := rows.Scan(&summary.Period.StartDate, &summary.Period.EndDate, &summary.Period.PayDate, &periodType,
			&summary.Employees, &summary.Failed, &summary.TotalGross, &summary.TotalNet); err != nil {
			return nil, err
		}
		summary.Period.PeriodType = PeriodType(periodType)
		summaries = append(summaries, summary)
	}
	return summaries, rows.Err()
}

func (s *PgHistory) Get(ctx context.Context, startDate, endDate time.Time) (RunResult, error) {
	var resultJSON []byte
	err := s.DB.QueryRow(ctx, `
    SELECT result_json
    FROM payroll_runs
    WHERE start_date = $1 AND end_date = $2
  `, startDate, endDate).Scan(&resultJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return RunResult{}, ErrRunNotFound
	}
	if err != nil {
		return RunResult{}, err
	}
	var result RunResult
	if err := json.Unmarshal(resultJSON, &result); err != nil {
		return RunResult{}, err
	}
	return result, nil
}

func nullIfZero(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
