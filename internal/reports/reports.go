// Package reports renders payroll run results for people: currency-formatted
// summary/detailed/tax reports, a CSV register, and pay-stub PDFs. Everything
// here consumes the numeric result objects and never feeds back into the
// calculation.
package reports

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"paymaster/internal/domain/payroll"
)

// FormatUSD renders an amount as "$1,234.56", rounding half-up to cents.
func FormatUSD(amount float64) string {
	d := decimal.NewFromFloat(amount).Round(2)
	negative := d.IsNegative()
	if negative {
		d = d.Abs()
	}
	fixed := d.StringFixed(2)
	dot := strings.IndexByte(fixed, '.')
	whole, cents := fixed[:dot], fixed[dot:]

	var b strings.Builder
	if negative {
		b.WriteByte('-')
	}
	b.WriteByte('$')
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteString(cents)
	return b.String()
}

type PeriodInfo struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	PayDate   string `json:"payDate"`
	Type      string `json:"type"`
}

func periodInfo(period payroll.PayPeriod) PeriodInfo {
	return PeriodInfo{
		StartDate: formatDate(period.StartDate),
		EndDate:   formatDate(period.EndDate),
		PayDate:   formatDate(period.PayDate),
		Type:      string(period.PeriodType),
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

type Totals struct {
	Employees  int    `json:"employees"`
	Gross      string `json:"gross"`
	Taxes      string `json:"taxes"`
	Deductions string `json:"deductions"`
	Net        string `json:"net"`
}

func totals(result payroll.RunResult) Totals {
	return Totals{
		Employees:  len(result.Stubs),
		Gross:      FormatUSD(result.TotalGross),
		Taxes:      FormatUSD(result.TotalTaxes),
		Deductions: FormatUSD(result.TotalDeductions),
		Net:        FormatUSD(result.TotalNet),
	}
}

type EmployerTaxLines struct {
	SocialSecurity string `json:"socialSecurity"`
	Medicare       string `json:"medicare"`
	FUTA           string `json:"futa"`
	SUI            string `json:"sui"`
	Total          string `json:"total"`
}

type SummaryReport struct {
	Period        PeriodInfo        `json:"period"`
	Totals        Totals            `json:"totals"`
	EmployerTaxes *EmployerTaxLines `json:"employerTaxes,omitempty"`
}

func Summary(result payroll.RunResult) SummaryReport {
	report := SummaryReport{Period: periodInfo(result.Period), Totals: totals(result)}
	if result.EmployerTaxes != nil {
		report.EmployerTaxes = &EmployerTaxLines{
			SocialSecurity: FormatUSD(result.EmployerTaxes.SocialSecurity),
			Medicare:       FormatUSD(result.EmployerTaxes.Medicare),
			FUTA:           FormatUSD(result.EmployerTaxes.FUTA),
			SUI:            FormatUSD(result.EmployerTaxes.SUI),
			Total:          FormatUSD(result.EmployerTaxes.Total),
		}
	}
	return report
}

type EmployeeDetail struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Gross      string `json:"gross"`
	Taxes      string `json:"taxes"`
	Deductions string `json:"deductions"`
	Net        string `json:"net"`
}

type DetailedReport struct {
	Period    PeriodInfo        `json:"period"`
	Totals    Totals            `json:"totals"`
	Employees []EmployeeDetail  `json:"employees"`
	Failures  []payroll.Failure `json:"failures,omitempty"`
}

func Detailed(result payroll.RunResult) DetailedReport {
	report := DetailedReport{
		Period:    periodInfo(result.Period),
		Totals:    totals(result),
		Employees: make([]EmployeeDetail, 0, len(result.Stubs)),
		Failures:  result.Failures,
	}
	for _, stub := range result.Stubs {
		report.Employees = append(report.Employees, EmployeeDetail{
			ID:         stub.EmployeeID,
			Name:       stub.EmployeeName,
			Gross:      FormatUSD(stub.GrossPay),
			Taxes:      FormatUSD(stub.TotalTaxes),
			Deductions: FormatUSD(stub.PreTaxDeductions + stub.PostTaxDeductions),
			Net:        FormatUSD(stub.NetPay),
		})
	}
	return report
}

type SplitLiability struct {
	Employee string `json:"employee"`
	Employer string `json:"employer"`
	Total    string `json:"total"`
}

type TaxReport struct {
	Period            PeriodInfo     `json:"period"`
	FederalIncomeTax  string         `json:"federalIncomeTax"`
	StateIncomeTax    string         `json:"stateIncomeTax"`
	SocialSecurity    SplitLiability `json:"socialSecurity"`
	Medicare          SplitLiability `json:"medicare"`
	FUTA              string         `json:"futa"`
	SUI               string         `json:"sui"`
	TotalTaxLiability string         `json:"totalTaxLiability"`
}

// Tax aggregates employee withholding by kind and pairs it with the
// employer-side liabilities when the run computed them.
func Tax(result payroll.RunResult) TaxReport {
	var federal, state, ssEmployee, medicareEmployee float64
	for _, stub := range result.Stubs {
		for _, line := range stub.TaxBreakdown {
			switch line.Name {
			case payroll.TaxFederal:
				federal += line.Amount
			case payroll.TaxState:
				state += line.Amount
			case payroll.TaxSocialSecurity:
				ssEmployee += line.Amount
			case payroll.TaxMedicare:
				medicareEmployee += line.Amount
			}
		}
	}

	var employer payroll.EmployerTaxTotals
	if result.EmployerTaxes != nil {
		employer = *result.EmployerTaxes
	}

	total := federal + state + ssEmployee + medicareEmployee +
		employer.SocialSecurity + employer.Medicare + employer.FUTA + employer.SUI

	return TaxReport{
		Period:           periodInfo(result.Period),
		FederalIncomeTax: FormatUSD(federal),
		StateIncomeTax:   FormatUSD(state),
		SocialSecurity: SplitLiability{
			Employee: FormatUSD(ssEmployee),
			Employer: FormatUSD(employer.SocialSecurity),
			Total:    FormatUSD(ssEmployee + employer.SocialSecurity),
		},
		Medicare: SplitLiability{
			Employee: FormatUSD(medicareEmployee),
			Employer: FormatUSD(employer.Medicare),
			Total:    FormatUSD(medicareEmployee + employer.Medicare),
		},
		FUTA:              FormatUSD(employer.FUTA),
		SUI:               FormatUSD(employer.SUI),
		TotalTaxLiability: FormatUSD(total),
	}
}

// WriteRegister writes the per-employee payroll register as CSV.
func WriteRegister(w io.Writer, result payroll.RunResult) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"employee_id", "name", "gross", "pre_tax_deductions", "taxes", "post_tax_deductions", "net"}); err != nil {
		return err
	}
	for _, stub := range result.Stubs {
		row := []string{
			stub.EmployeeID,
			stub.EmployeeName,
			formatAmount(stub.GrossPay),
			formatAmount(stub.PreTaxDeductions),
			formatAmount(stub.TotalTaxes),
			formatAmount(stub.PostTaxDeductions),
			formatAmount(stub.NetPay),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(decimal.NewFromFloat(v).Round(2).InexactFloat64(), 'f', 2, 64)
}
