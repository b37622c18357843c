package payroll

import "math"

// EmployerTaxes computes the employer-side liabilities for a completed run:
// the Social Security and Medicare match (same rates and per-period cap as
// the employee side) plus FUTA and SUI. FUTA and SUI share the FUTA wage
// base, divided across the year's periods like every other cap here.
func (c *Calculator) EmployerTaxes(result RunResult) EmployerTaxTotals {
	divisor, _ := PeriodsPerYear(result.Period.PeriodType)
	ssPeriodCap := c.rates.SocialSecurity.WageBase / divisor
	unemploymentCap := c.rates.FUTA.WageBase / divisor

	var totals EmployerTaxTotals
	for _, stub := range result.Stubs {
		taxable := stub.TaxableIncome

		totals.SocialSecurity += math.Min(taxable, ssPeriodCap) * c.rates.SocialSecurity.Rate
		totals.Medicare += taxable * c.rates.Medicare.Rate
		totals.FUTA += math.Min(taxable, unemploymentCap) * c.rates.FUTA.Rate

		suiRate, _ := c.rates.SUIRate(stub.State)
		totals.SUI += math.Min(taxable, unemploymentCap) * suiRate
	}

	totals.Total = totals.SocialSecurity + totals.Medicare + totals.FUTA + totals.SUI
	return totals
}
