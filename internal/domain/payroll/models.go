package payroll

import "time"

// CompensationRecord is one employee's input to a payroll run. Exactly one of
// AnnualSalary or HourlyRate is meaningful depending on PayBasis; hours fields
// only apply to hourly employees.
type CompensationRecord struct {
	EmployeeID    string             `json:"employeeId"`
	DisplayName   string             `json:"displayName"`
	PayBasis      PayBasis           `json:"payBasis"`
	AnnualSalary  float64            `json:"annualSalary,omitempty"`
	HourlyRate    float64            `json:"hourlyRate,omitempty"`
	RegularHours  float64            `json:"regularHours,omitempty"`
	OvertimeHours float64            `json:"overtimeHours,omitempty"`
	State         string             `json:"state"`
	Allowances    int                `json:"allowances"`
	Deductions    map[string]float64 `json:"deductions,omitempty"`
}

type PayPeriod struct {
	StartDate  time.Time  `json:"startDate"`
	EndDate    time.Time  `json:"endDate"`
	PayDate    time.Time  `json:"payDate"`
	PeriodType PeriodType `json:"periodType"`
}

// Key identifies a run in the history store.
func (p PayPeriod) Key() string {
	return p.StartDate.Format("2006-01-02") + "_" + p.EndDate.Format("2006-01-02")
}

type TaxLine struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

type DeductionLine struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	PreTax bool    `json:"preTax"`
}

// HourlyDetail carries the pay composition for hourly employees; nil on
// salaried stubs.
type HourlyDetail struct {
	HourlyRate    float64 `json:"hourlyRate"`
	RegularHours  float64 `json:"regularHours"`
	OvertimeHours float64 `json:"overtimeHours"`
	RegularPay    float64 `json:"regularPay"`
	OvertimePay   float64 `json:"overtimePay"`
}

// PayStub is the immutable per-employee result of a run. Created fresh each
// run, never mutated afterwards.
type PayStub struct {
	EmployeeID          string          `json:"employeeId"`
	EmployeeName        string          `json:"employeeName"`
	State               string          `json:"state"`
	GrossPay            float64         `json:"grossPay"`
	PreTaxDeductions    float64         `json:"preTaxDeductions"`
	TaxableIncome       float64         `json:"taxableIncome"`
	TotalTaxes          float64         `json:"totalTaxes"`
	PostTaxDeductions   float64         `json:"postTaxDeductions"`
	NetPay              float64         `json:"netPay"`
	TaxBreakdown        []TaxLine       `json:"taxBreakdown"`
	DeductionsBreakdown []DeductionLine `json:"deductionsBreakdown"`
	Warnings            []string        `json:"warnings,omitempty"`
	Hourly              *HourlyDetail   `json:"hourly,omitempty"`
}

// Failure records an employee whose computation was rejected. A run never
// drops an employee silently; failures travel in the result next to the
// stubs that did compute.
type Failure struct {
	EmployeeID  string `json:"employeeId"`
	DisplayName string `json:"displayName"`
	Reason      string `json:"reason"`
}

type EmployerTaxTotals struct {
	SocialSecurity float64 `json:"socialSecurity"`
	Medicare       float64 `json:"medicare"`
	FUTA           float64 `json:"futa"`
	SUI            float64 `json:"sui"`
	Total          float64 `json:"total"`
}

// RunResult aggregates one payroll run. Totals sum only over successfully
// computed stubs; failed employees are listed in Failures.
type RunResult struct {
	Period          PayPeriod          `json:"period"`
	TotalGross      float64            `json:"totalGross"`
	TotalTaxes      float64            `json:"totalTaxes"`
	TotalDeductions float64            `json:"totalDeductions"`
	TotalNet        float64            `json:"totalNet"`
	Stubs           []PayStub          `json:"stubs"`
	Failures        []Failure          `json:"failures,omitempty"`
	EmployerTaxes   *EmployerTaxTotals `json:"employerTaxes,omitempty"`
}

// RunSummary is the compact history view of a stored run.
type RunSummary struct {
	Period     PayPeriod `json:"period"`
	Employees  int       `json:"employees"`
	Failed     int       `json:"failed"`
	TotalGross float64   `json:"totalGross"`
	TotalNet   float64   `json:"totalNet"`
}

func (r RunResult) Summary() RunSummary {
	return RunSummary{
		Period:     r.Period,
		Employees:  len(r.Stubs),
		Failed:     len(r.Failures),
		TotalGross: r.TotalGross,
		TotalNet:   r.TotalNet,
	}
}
