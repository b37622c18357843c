package schedule

import (
	"errors"
	"time"

	"paymaster/internal/domain/payroll"
)

// ErrUnknownCadence rejects a cadence outside the four supported types.
var ErrUnknownCadence = errors.New("unknown pay cadence")

// Resolve decides whether payroll runs on runDate for a company paying on
// the given cadence, and if so builds the PayPeriod to run. The second
// return is false on days that are simply not pay days.
//
// Cadence rules:
//   - weekly: pays every Friday, period is the preceding Saturday..Friday
//   - biweekly: pays the Friday of even ISO weeks, period is 14 days
//   - semimonthly: pays the 15th and the last day of the month
//   - monthly: pays the last day of the month
func Resolve(cadence payroll.PeriodType, runDate time.Time) (payroll.PayPeriod, bool, error) {
	runDate = truncateToDay(runDate)

	switch cadence {
	case payroll.PeriodWeekly:
		payDate := nextFriday(runDate)
		return payroll.PayPeriod{
			StartDate:  payDate.AddDate(0, 0, -6),
			EndDate:    payDate,
			PayDate:    payDate,
			PeriodType: payroll.PeriodWeekly,
		}, true, nil

	case payroll.PeriodBiweekly:
		_, week := runDate.ISOWeek()
		if week%2 != 0 {
			return payroll.PayPeriod{}, false, nil
		}
		payDate := nextFriday(runDate)
		return payroll.PayPeriod{
			StartDate:  payDate.AddDate(0, 0, -13),
			EndDate:    payDate,
			PayDate:    payDate,
			PeriodType: payroll.PeriodBiweekly,
		}, true, nil

	case payroll.PeriodSemimonthly:
		last := lastDayOfMonth(runDate)
		switch runDate.Day() {
		case 15:
			return payroll.PayPeriod{
				StartDate:  firstOfMonth(runDate),
				EndDate:    runDate,
				PayDate:    runDate,
				PeriodType: payroll.PeriodSemimonthly,
			}, true, nil
		case last:
			return payroll.PayPeriod{
				StartDate:  firstOfMonth(runDate).AddDate(0, 0, 15),
				EndDate:    runDate,
				PayDate:    runDate,
				PeriodType: payroll.PeriodSemimonthly,
			}, true, nil
		default:
			return payroll.PayPeriod{}, false, nil
		}

	case payroll.PeriodMonthly:
		if runDate.Day() != lastDayOfMonth(runDate) {
			return payroll.PayPeriod{}, false, nil
		}
		return payroll.PayPeriod{
			StartDate:  firstOfMonth(runDate),
			EndDate:    runDate,
			PayDate:    runDate,
			PeriodType: payroll.PeriodMonthly,
		}, true, nil

	default:
		return payroll.PayPeriod{}, false, ErrUnknownCadence
	}
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func nextFriday(t time.Time) time.Time {
	days := (int(time.Friday) - int(t.Weekday()) + 7) % 7
	return t.AddDate(0, 0, days)
}

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func lastDayOfMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
