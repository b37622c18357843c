package payroll

import (
	"errors"
	"math"
	"testing"
	"time"

	"paymaster/internal/domain/rates"
)

func testCalculator(t *testing.T) *Calculator {
	t.Helper()
	calc, err := NewCalculator(rates.Default())
	if err != nil {
		t.Fatalf("NewCalculator failed: %v", err)
	}
	return calc
}

func biweeklyPeriod() PayPeriod {
	return PayPeriod{
		StartDate:  time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2024, 3, 17, 0, 0, 0, 0, time.UTC),
		PayDate:    time.Date(2024, 3, 22, 0, 0, 0, 0, time.UTC),
		PeriodType: PeriodBiweekly,
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestGrossPaySalaryBiweekly(t *testing.T) {
	calc := testCalculator(t)
	record := CompensationRecord{EmployeeID: "E1", PayBasis: PayBasisSalary, AnnualSalary: 78000, State: "CA"}

	gross, err := calc.GrossPay(record, biweeklyPeriod())
	if err != nil {
		t.Fatalf("GrossPay failed: %v", err)
	}
	if !almostEqual(gross, 3000) {
		t.Fatalf("expected gross 3000, got %v", gross)
	}
}

func TestGrossPayHourlyWithOvertime(t *testing.T) {
	calc := testCalculator(t)
	record := CompensationRecord{
		EmployeeID:    "E2",
		PayBasis:      PayBasisHourly,
		HourlyRate:    20,
		RegularHours:  80,
		OvertimeHours: 5,
		State:         "NY",
	}

	gross, err := calc.GrossPay(record, biweeklyPeriod())
	if err != nil {
		t.Fatalf("GrossPay failed: %v", err)
	}
	if !almostEqual(gross, 1750) {
		t.Fatalf("expected gross 1750, got %v", gross)
	}
}

func TestGrossPayDivisors(t *testing.T) {
	calc := testCalculator(t)
	record := CompensationRecord{EmployeeID: "E1", PayBasis: PayBasisSalary, AnnualSalary: 52000, State: "TX"}

	cases := []struct {
		periodType PeriodType
		want       float64
	}{
		{PeriodWeekly, 1000},
		{PeriodBiweekly, 2000},
		{PeriodSemimonthly, 52000.0 / 24},
		{PeriodMonthly, 52000.0 / 12},
	}
	for _, tc := range cases {
		period := biweeklyPeriod()
		period.PeriodType = tc.periodType
		gross, err := calc.GrossPay(record, period)
		if err != nil {
			t.Fatalf("GrossPay(%s) failed: %v", tc.periodType, err)
		}
		if !almostEqual(gross, tc.want) {
			t.Fatalf("period %s: expected gross %v, got %v", tc.periodType, tc.want, gross)
		}
	}
}

func TestUnknownPeriodTypeFallsBackToBiweekly(t *testing.T) {
	calc := testCalculator(t)
	record := CompensationRecord{EmployeeID: "E1", PayBasis: PayBasisSalary, AnnualSalary: 78000, State: "CA"}
	period := biweeklyPeriod()
	period.PeriodType = PeriodType("quarterly")

	stub, err := calc.CalculateEmployee(record, period)
	if err != nil {
		t.Fatalf("CalculateEmployee failed: %v", err)
	}
	if !almostEqual(stub.GrossPay, 3000) {
		t.Fatalf("expected biweekly fallback gross 3000, got %v", stub.GrossPay)
	}
	if !hasWarning(stub.Warnings, WarningUnknownPeriodType) {
		t.Fatalf("expected %s warning, got %v", WarningUnknownPeriodType, stub.Warnings)
	}
}

func TestProgressiveTaxZeroIncome(t *testing.T) {
	calc := testCalculator(t)
	for _, allowances := range []int{0, 1, 5} {
		if tax := calc.ProgressiveTax(0, calc.Rates().Federal, allowances); tax != 0 {
			t.Fatalf("expected zero tax for zero income with %d allowances, got %v", allowances, tax)
		}
	}
}

func TestProgressiveTaxKnownValue(t *testing.T) {
	calc := testCalculator(t)
	// 10000 at 10% plus 20000 at 12%.
	tax := calc.ProgressiveTax(30000, calc.Rates().Federal, 0)
	if !almostEqual(tax, 3400) {
		t.Fatalf("expected tax 3400, got %v", tax)
	}
}

func TestProgressiveTaxAllowancesReduceTax(t *testing.T) {
	calc := testCalculator(t)
	withAllowances := calc.ProgressiveTax(50000, calc.Rates().Federal, 2)
	without := calc.ProgressiveTax(50000, calc.Rates().Federal, 0)
	if withAllowances >= without {
		t.Fatalf("expected allowances to reduce tax: %v >= %v", withAllowances, without)
	}
}

func TestProgressiveTaxMonotonic(t *testing.T) {
	calc := testCalculator(t)
	previous := 0.0
	for income := 0.0; income <= 600000; income += 7500 {
		tax := calc.ProgressiveTax(income, calc.Rates().Federal, 0)
		if tax < previous {
			t.Fatalf("tax decreased at income %v: %v < %v", income, tax, previous)
		}
		previous = tax
	}
}

func TestUnknownDeductionKindIsNoOp(t *testing.T) {
	calc := testCalculator(t)
	period := biweeklyPeriod()

	base := CompensationRecord{
		EmployeeID:   "E1",
		PayBasis:     PayBasisSalary,
		AnnualSalary: 75000,
		State:        "CA",
		Deductions:   map[string]float64{"401k": 0.05},
	}
	withUnknown := base
	withUnknown.Deductions = map[string]float64{"401k": 0.05, "cryo_storage": 500}

	stubBase, err := calc.CalculateEmployee(base, period)
	if err != nil {
		t.Fatalf("CalculateEmployee failed: %v", err)
	}
	stubUnknown, err := calc.CalculateEmployee(withUnknown, period)
	if err != nil {
		t.Fatalf("CalculateEmployee failed: %v", err)
	}

	if !almostEqual(stubBase.NetPay, stubUnknown.NetPay) {
		t.Fatalf("unknown deduction changed net pay: %v vs %v", stubBase.NetPay, stubUnknown.NetPay)
	}
	if len(stubBase.DeductionsBreakdown) != len(stubUnknown.DeductionsBreakdown) {
		t.Fatalf("unknown deduction appeared in breakdown: %v", stubUnknown.DeductionsBreakdown)
	}
}

func TestUnknownJurisdictionFallsBackToDefault(t *testing.T) {
	calc := testCalculator(t)
	period := biweeklyPeriod()

	unknown := CompensationRecord{EmployeeID: "E1", PayBasis: PayBasisSalary, AnnualSalary: 90000, State: "ZZ"}
	explicit := unknown
	explicit.State = rates.DefaultJurisdiction

	stubUnknown, err := calc.CalculateEmployee(unknown, period)
	if err != nil {
		t.Fatalf("CalculateEmployee failed: %v", err)
	}
	stubDefault, err := calc.CalculateEmployee(explicit, period)
	if err != nil {
		t.Fatalf("CalculateEmployee failed: %v", err)
	}

	if !almostEqual(stateTax(stubUnknown), stateTax(stubDefault)) {
		t.Fatalf("expected identical state tax, got %v vs %v", stateTax(stubUnknown), stateTax(stubDefault))
	}
	if !hasWarning(stubUnknown.Warnings, WarningUnknownJurisdiction) {
		t.Fatalf("expected %s warning, got %v", WarningUnknownJurisdiction, stubUnknown.Warnings)
	}
	if hasWarning(stubDefault.Warnings, WarningUnknownJurisdiction) {
		t.Fatalf("DEFAULT jurisdiction should not warn, got %v", stubDefault.Warnings)
	}
}

func TestSocialSecurityCapPerPeriod(t *testing.T) {
	calc := testCalculator(t)
	cfg := calc.Rates()
	period := biweeklyPeriod()

	// Far above the per-period wage cap.
	record := CompensationRecord{EmployeeID: "E1", PayBasis: PayBasisSalary, AnnualSalary: 900000, State: "TX"}
	stub, err := calc.CalculateEmployee(record, period)
	if err != nil {
		t.Fatalf("CalculateEmployee failed: %v", err)
	}

	wantCap := cfg.SocialSecurity.WageBase / 26 * cfg.SocialSecurity.Rate
	got := taxAmount(stub, TaxSocialSecurity)
	if !almostEqual(got, wantCap) {
		t.Fatalf("expected capped social security %v, got %v", wantCap, got)
	}
}

func TestMedicareSurtaxOnlyOnExcess(t *testing.T) {
	calc := testCalculator(t)
	cfg := calc.Rates()
	period := biweeklyPeriod()

	record := CompensationRecord{EmployeeID: "E1", PayBasis: PayBasisSalary, AnnualSalary: 260000, State: "TX"}
	stub, err := calc.CalculateEmployee(record, period)
	if err != nil {
		t.Fatalf("CalculateEmployee failed: %v", err)
	}

	base := stub.TaxableIncome * cfg.Medicare.Rate
	surtax := (stub.TaxableIncome*26 - cfg.Medicare.SurtaxThreshold) * cfg.Medicare.SurtaxRate / 26
	got := taxAmount(stub, TaxMedicare)
	if !almostEqual(got, base+surtax) {
		t.Fatalf("expected medicare %v, got %v", base+surtax, got)
	}

	// Below the threshold no surtax applies.
	low := CompensationRecord{EmployeeID: "E2", PayBasis: PayBasisSalary, AnnualSalary: 80000, State: "TX"}
	lowStub, err := calc.CalculateEmployee(low, period)
	if err != nil {
		t.Fatalf("CalculateEmployee failed: %v", err)
	}
	if !almostEqual(taxAmount(lowStub, TaxMedicare), lowStub.TaxableIncome*cfg.Medicare.Rate) {
		t.Fatalf("expected plain medicare rate below threshold")
	}
}

func TestDeductionRoundTrip(t *testing.T) {
	calc := testCalculator(t)
	record := CompensationRecord{
		EmployeeID:   "E1",
		PayBasis:     PayBasisSalary,
		AnnualSalary: 75000,
		State:        "CA",
		Allowances:   2,
		Deductions: map[string]float64{
			"401k":             0.05,
			"health_insurance": 120,
			"charity":          0.01,
		},
	}

	stub, err := calc.CalculateEmployee(record, biweeklyPeriod())
	if err != nil {
		t.Fatalf("CalculateEmployee failed: %v", err)
	}

	// Conservation of money: nothing created or destroyed.
	left := stub.PreTaxDeductions + stub.PostTaxDeductions + stub.NetPay
	right := stub.GrossPay - stub.TotalTaxes
	if !almostEqual(left, right) {
		t.Fatalf("money not conserved: %v != %v", left, right)
	}

	var breakdownTotal float64
	for _, line := range stub.DeductionsBreakdown {
		breakdownTotal += line.Amount
	}
	if !almostEqual(breakdownTotal, stub.PreTaxDeductions+stub.PostTaxDeductions) {
		t.Fatalf("breakdown total %v does not match deduction totals", breakdownTotal)
	}
}

func TestInvalidRecords(t *testing.T) {
	calc := testCalculator(t)
	period := biweeklyPeriod()

	cases := []struct {
		name   string
		record CompensationRecord
	}{
		{"unknown pay basis", CompensationRecord{EmployeeID: "E1", PayBasis: "commission", State: "CA"}},
		{"negative salary", CompensationRecord{EmployeeID: "E2", PayBasis: PayBasisSalary, AnnualSalary: -1, State: "CA"}},
		{"negative hours", CompensationRecord{EmployeeID: "E3", PayBasis: PayBasisHourly, HourlyRate: 20, RegularHours: -8, State: "CA"}},
		{"negative overtime", CompensationRecord{EmployeeID: "E4", PayBasis: PayBasisHourly, HourlyRate: 20, OvertimeHours: -1, State: "CA"}},
		{"negative allowances", CompensationRecord{EmployeeID: "E5", PayBasis: PayBasisSalary, AnnualSalary: 50000, Allowances: -1, State: "CA"}},
	}
	for _, tc := range cases {
		_, err := calc.CalculateEmployee(tc.record, period)
		if !errors.Is(err, ErrInvalidRecord) {
			t.Fatalf("%s: expected ErrInvalidRecord, got %v", tc.name, err)
		}
	}
}

func TestDeductionValueOutOfRange(t *testing.T) {
	calc := testCalculator(t)
	period := biweeklyPeriod()

	overOne := CompensationRecord{
		EmployeeID: "E1", PayBasis: PayBasisSalary, AnnualSalary: 50000, State: "CA",
		Deductions: map[string]float64{"401k": 1.5},
	}
	_, err := calc.CalculateEmployee(overOne, period)
	if !errors.Is(err, ErrDeductionValueOutOfRange) {
		t.Fatalf("expected ErrDeductionValueOutOfRange, got %v", err)
	}
	if !errors.Is(err, ErrInvalidRecord) {
		t.Fatalf("out-of-range deduction should classify as invalid record")
	}

	negativeFixed := CompensationRecord{
		EmployeeID: "E2", PayBasis: PayBasisSalary, AnnualSalary: 50000, State: "CA",
		Deductions: map[string]float64{"health_insurance": -50},
	}
	if _, err := calc.CalculateEmployee(negativeFixed, period); !errors.Is(err, ErrDeductionValueOutOfRange) {
		t.Fatalf("expected ErrDeductionValueOutOfRange, got %v", err)
	}

	// Unknown kinds are skipped, so their values are never range-checked.
	unknownKind := CompensationRecord{
		EmployeeID: "E3", PayBasis: PayBasisSalary, AnnualSalary: 50000, State: "CA",
		Deductions: map[string]float64{"mystery": -999},
	}
	if _, err := calc.CalculateEmployee(unknownKind, period); err != nil {
		t.Fatalf("unknown kind should not be validated: %v", err)
	}
}

func TestMissingDefaultBracketsIsConfigurationError(t *testing.T) {
	cfg := rates.Default()
	delete(cfg.State, rates.DefaultJurisdiction)

	_, err := NewCalculator(cfg)
	var confErr *rates.ConfigError
	if !errors.As(err, &confErr) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
}

func hasWarning(warnings []string, warning string) bool {
	for _, w := range warnings {
		if w == warning {
			return true
		}
	}
	return false
}

func taxAmount(stub PayStub, name string) float64 {
	for _, line := range stub.TaxBreakdown {
		if line.Name == name {
			return line.Amount
		}
	}
	return 0
}

func stateTax(stub PayStub) float64 {
	return taxAmount(stub, TaxState)
}
