package payroll

import (
	"fmt"
	"math"
	"sort"

	"paymaster/internal/domain/rates"
)

// Calculator computes payroll runs against an immutable set of rate tables.
// Every method is a pure function of its inputs; the tables are validated
// once at construction and never change, so a single Calculator is safe for
// concurrent use.
type Calculator struct {
	rates *rates.Config
}

// NewCalculator validates the rate tables up front. An incomplete table is a
// configuration error and no computation may start.
func NewCalculator(cfg *rates.Config) (*Calculator, error) {
	if cfg == nil {
		cfg = rates.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Calculator{rates: cfg}, nil
}

func (c *Calculator) Rates() *rates.Config {
	return c.rates
}

// GrossPay computes one period's gross compensation. Salaried employees get
// annual salary divided by the period divisor; hourly employees get
// rate x regular hours plus rate x 1.5 x overtime hours.
func (c *Calculator) GrossPay(record CompensationRecord, period PayPeriod) (float64, error) {
	if err := c.validateRecord(record); err != nil {
		return 0, err
	}
	divisor, _ := PeriodsPerYear(period.PeriodType)
	switch record.PayBasis {
	case PayBasisSalary:
		return record.AnnualSalary / divisor, nil
	case PayBasisHourly:
		regular := record.HourlyRate * record.RegularHours
		overtime := record.HourlyRate * OvertimeMultiplier * record.OvertimeHours
		return regular + overtime, nil
	default:
		return 0, invalidRecord(record.EmployeeID, "payBasis", fmt.Sprintf("unknown pay basis %q", record.PayBasis))
	}
}

// ApplyDeductions splits an employee's deduction map into pre-tax and
// post-tax totals with a line-item breakdown. A kind missing from the catalog
// is skipped silently; that is defined behavior, not an error. Percentage
// kinds apply against gross pay, fixed kinds are taken as-is.
func (c *Calculator) ApplyDeductions(grossPay float64, deductions map[string]float64) (preTax, postTax float64, breakdown []DeductionLine) {
	kinds := make([]string, 0, len(deductions))
	for kindID := range deductions {
		kinds = append(kinds, kindID)
	}
	sort.Strings(kinds)

	for _, kindID := range kinds {
		kind, ok := c.rates.Deduction(kindID)
		if !ok {
			continue
		}
		value := deductions[kindID]
		amount := value
		if kind.CalcType == rates.CalcTypePercentage {
			amount = grossPay * value
		}
		if kind.PreTax {
			preTax += amount
		} else {
			postTax += amount
		}
		name := kind.Description
		if name == "" {
			name = kindID
		}
		breakdown = append(breakdown, DeductionLine{Name: name, Amount: amount, PreTax: kind.PreTax})
	}
	return preTax, postTax, breakdown
}

// ProgressiveTax walks a marginal bracket schedule over an annualized income.
// Allowances reduce taxable income by a flat per-allowance amount before the
// walk. Zero taxable income yields zero tax; the final bracket is unbounded
// (+Inf), so the loop needs no special case for top earners.
func (c *Calculator) ProgressiveTax(annualizedIncome float64, brackets []rates.BracketEntry, allowances int) float64 {
	standardDeduction := float64(allowances) * c.rates.AllowanceAmount
	taxable := math.Max(0, annualizedIncome-standardDeduction)

	total := 0.0
	previousBound := 0.0
	for _, bracket := range brackets {
		if taxable > previousBound {
			taxableInBracket := math.Min(taxable, bracket.UpTo) - previousBound
			total += taxableInBracket * bracket.Rate
		}
		previousBound = bracket.UpTo
		if taxable <= bracket.UpTo {
			break
		}
	}
	return total
}

// TaxSet is the per-period withholding for one employee.
type TaxSet struct {
	Federal        float64
	State          float64
	SocialSecurity float64
	Medicare       float64
}

func (t TaxSet) Total() float64 {
	return t.Federal + t.State + t.SocialSecurity + t.Medicare
}

// EmployeeTaxes computes federal, state, Social Security and Medicare
// withholding for one period. Social Security caps at the annual wage base
// divided across periods; there is no year-to-date accumulation, so the cap
// applies independently each period. The returned bool reports whether the
// jurisdiction was found; unknown states use the DEFAULT table.
func (c *Calculator) EmployeeTaxes(taxableIncome, annualizedIncome float64, state string, allowances int, periodType PeriodType) (TaxSet, bool) {
	divisor, _ := PeriodsPerYear(periodType)

	federal := c.ProgressiveTax(annualizedIncome, c.rates.Federal, allowances) / divisor

	stateBrackets, knownState := c.rates.StateBrackets(state)
	stateTax := c.ProgressiveTax(annualizedIncome, stateBrackets, allowances) / divisor

	periodWageCap := c.rates.SocialSecurity.WageBase / divisor
	socialSecurity := math.Min(taxableIncome, periodWageCap) * c.rates.SocialSecurity.Rate

	medicare := taxableIncome * c.rates.Medicare.Rate
	if annualizedIncome > c.rates.Medicare.SurtaxThreshold {
		medicare += (annualizedIncome - c.rates.Medicare.SurtaxThreshold) * c.rates.Medicare.SurtaxRate / divisor
	}

	return TaxSet{
		Federal:        federal,
		State:          stateTax,
		SocialSecurity: socialSecurity,
		Medicare:       medicare,
	}, knownState
}

// CalculateEmployee produces the stub for a single record: gross pay,
// deduction split, taxable income, annualized bracket taxes, FICA, net pay.
func (c *Calculator) CalculateEmployee(record CompensationRecord, period PayPeriod) (PayStub, error) {
	grossPay, err := c.GrossPay(record, period)
	if err != nil {
		return PayStub{}, err
	}

	preTax, postTax, deductionLines := c.ApplyDeductions(grossPay, record.Deductions)
	taxableIncome := grossPay - preTax

	divisor, knownPeriod := PeriodsPerYear(period.PeriodType)
	annualizedIncome := taxableIncome * divisor

	taxes, knownState := c.EmployeeTaxes(taxableIncome, annualizedIncome, record.State, record.Allowances, period.PeriodType)
	totalTaxes := taxes.Total()
	netPay := grossPay - preTax - totalTaxes - postTax

	var warnings []string
	if !knownPeriod {
		warnings = append(warnings, WarningUnknownPeriodType)
	}
	if !knownState {
		warnings = append(warnings, WarningUnknownJurisdiction)
	}

	stub := PayStub{
		EmployeeID:        record.EmployeeID,
		EmployeeName:      record.DisplayName,
		State:             record.State,
		GrossPay:          grossPay,
		PreTaxDeductions:  preTax,
		TaxableIncome:     taxableIncome,
		TotalTaxes:        totalTaxes,
		PostTaxDeductions: postTax,
		NetPay:            netPay,
		TaxBreakdown: []TaxLine{
			{Name: TaxFederal, Amount: taxes.Federal},
			{Name: TaxState, Amount: taxes.State},
			{Name: TaxSocialSecurity, Amount: taxes.SocialSecurity},
			{Name: TaxMedicare, Amount: taxes.Medicare},
		},
		DeductionsBreakdown: deductionLines,
		Warnings:            warnings,
	}

	if record.PayBasis == PayBasisHourly {
		stub.Hourly = &HourlyDetail{
			HourlyRate:    record.HourlyRate,
			RegularHours:  record.RegularHours,
			OvertimeHours: record.OvertimeHours,
			RegularPay:    record.HourlyRate * record.RegularHours,
			OvertimePay:   record.HourlyRate * OvertimeMultiplier * record.OvertimeHours,
		}
	}

	return stub, nil
}

// RunOptions controls a roster calculation. The default (lenient) mode
// computes every employee it can and reports rejected records in
// RunResult.Failures; Strict aborts the whole run on the first bad record.
type RunOptions struct {
	Strict        bool
	EmployerTaxes bool
}

// CalculateRun maps CalculateEmployee over the roster, preserving order, and
// sums the aggregate totals over the stubs that computed.
func (c *Calculator) CalculateRun(roster []CompensationRecord, period PayPeriod, opts RunOptions) (RunResult, error) {
	result := RunResult{Period: period}

	for _, record := range roster {
		stub, err := c.CalculateEmployee(record, period)
		if err != nil {
			if opts.Strict {
				return RunResult{}, err
			}
			result.Failures = append(result.Failures, Failure{
				EmployeeID:  record.EmployeeID,
				DisplayName: record.DisplayName,
				Reason:      err.Error(),
			})
			continue
		}
		result.Stubs = append(result.Stubs, stub)
		result.TotalGross += stub.GrossPay
		result.TotalTaxes += stub.TotalTaxes
		result.TotalDeductions += stub.PreTaxDeductions + stub.PostTaxDeductions
		result.TotalNet += stub.NetPay
	}

	if opts.EmployerTaxes {
		totals := c.EmployerTaxes(result)
		result.EmployerTaxes = &totals
	}
	return result, nil
}

func (c *Calculator) validateRecord(record CompensationRecord) error {
	switch record.PayBasis {
	case PayBasisSalary:
		if record.AnnualSalary < 0 {
			return invalidRecord(record.EmployeeID, "annualSalary", "must be non-negative")
		}
	case PayBasisHourly:
		if record.HourlyRate < 0 {
			return invalidRecord(record.EmployeeID, "hourlyRate", "must be non-negative")
		}
		if record.RegularHours < 0 {
			return invalidRecord(record.EmployeeID, "regularHours", "must be non-negative")
		}
		if record.OvertimeHours < 0 {
			return invalidRecord(record.EmployeeID, "overtimeHours", "must be non-negative")
		}
	default:
		return invalidRecord(record.EmployeeID, "payBasis", fmt.Sprintf("unknown pay basis %q", record.PayBasis))
	}
	if record.Allowances < 0 {
		return invalidRecord(record.EmployeeID, "allowances", "must be non-negative")
	}
	for kindID, value := range record.Deductions {
		kind, ok := c.rates.Deduction(kindID)
		if !ok {
			// Unknown kinds are skipped at calculation time, so their
			// values are not validated either.
			continue
		}
		switch kind.CalcType {
		case rates.CalcTypePercentage:
			if value < 0 || value > 1 {
				return deductionOutOfRange(record.EmployeeID, "deductions."+kindID, "percentage must be between 0 and 1")
			}
		case rates.CalcTypeFixed:
			if value < 0 {
				return deductionOutOfRange(record.EmployeeID, "deductions."+kindID, "fixed amount must be non-negative")
			}
		}
	}
	return nil
}
