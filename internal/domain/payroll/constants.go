package payroll

type PayBasis string

const (
	PayBasisSalary PayBasis = "salary"
	PayBasisHourly PayBasis = "hourly"
)

type PeriodType string

const (
	PeriodWeekly      PeriodType = "weekly"
	PeriodBiweekly    PeriodType = "biweekly"
	PeriodSemimonthly PeriodType = "semimonthly"
	PeriodMonthly     PeriodType = "monthly"
)

const (
	// OvertimeMultiplier is a flat 1.5x on designated overtime hours. There
	// is no daily or weekly threshold logic; overtime is whatever the caller
	// marks as overtime.
	OvertimeMultiplier = 1.5

	// DefaultPeriodsPerYear is the divisor applied when the period type is
	// unrecognized. The fallback is kept for compatibility with existing
	// callers but is always surfaced as a warning on the stub.
	DefaultPeriodsPerYear = 26
)

const (
	WarningUnknownJurisdiction = "unknown_jurisdiction"
	WarningUnknownPeriodType   = "unknown_period_type"
)

const (
	TaxFederal        = "Federal Income Tax"
	TaxState          = "State Income Tax"
	TaxSocialSecurity = "Social Security"
	TaxMedicare       = "Medicare"
)

// PeriodsPerYear maps a period type to its annualization divisor. The second
// return reports whether the type was recognized; unrecognized types use the
// biweekly divisor.
func PeriodsPerYear(periodType PeriodType) (float64, bool) {
	switch periodType {
	case PeriodWeekly:
		return 52, true
	case PeriodBiweekly:
		return 26, true
	case PeriodSemimonthly:
		return 24, true
	case PeriodMonthly:
		return 12, true
	default:
		return DefaultPeriodsPerYear, false
	}
}
