package rates

import "math"

// Default returns the compiled-in rate tables. These are deliberately
// simplified figures, not current tax law; production deployments override
// them with a versioned YAML document (see LoadFile) so yearly updates need
// no code change.
func Default() *Config {
	unbounded := math.Inf(1)
	return &Config{
		Year:            2024,
		AllowanceAmount: 4050,
		Federal: []BracketEntry{
			{UpTo: 10000, Rate: 0.10},
			{UpTo: 40000, Rate: 0.12},
			{UpTo: 85000, Rate: 0.22},
			{UpTo: 165000, Rate: 0.24},
			{UpTo: 210000, Rate: 0.32},
			{UpTo: 530000, Rate: 0.35},
			{UpTo: unbounded, Rate: 0.37},
		},
		State: map[string][]BracketEntry{
			"CA": {
				{UpTo: 10000, Rate: 0.01},
				{UpTo: 20000, Rate: 0.02},
				{UpTo: 30000, Rate: 0.04},
				{UpTo: 50000, Rate: 0.06},
				{UpTo: 70000, Rate: 0.08},
				{UpTo: 100000, Rate: 0.093},
				{UpTo: unbounded, Rate: 0.103},
			},
			"NY": {
				{UpTo: 12000, Rate: 0.04},
				{UpTo: 25000, Rate: 0.045},
				{UpTo: 50000, Rate: 0.0525},
				{UpTo: 80000, Rate: 0.0585},
				{UpTo: 200000, Rate: 0.0625},
				{UpTo: unbounded, Rate: 0.0685},
			},
			// No state income tax.
			"TX": {{UpTo: unbounded, Rate: 0}},
			"FL": {{UpTo: unbounded, Rate: 0}},
			DefaultJurisdiction: {
				{UpTo: 50000, Rate: 0.04},
				{UpTo: 100000, Rate: 0.06},
				{UpTo: unbounded, Rate: 0.08},
			},
		},
		SocialSecurity: CappedRate{Rate: 0.062, WageBase: 147000},
		Medicare:       MedicareRate{Rate: 0.0145, SurtaxRate: 0.009, SurtaxThreshold: 200000},
		FUTA:           CappedRate{Rate: 0.006, WageBase: 7000},
		SUI: map[string]float64{
			"CA":                0.034,
			"NY":                0.036,
			"TX":                0.027,
			"FL":                0.029,
			DefaultJurisdiction: 0.030,
		},
		Deductions: map[string]DeductionKind{
			"401k":             {CalcType: CalcTypePercentage, PreTax: true, Description: "401(k) Retirement Plan"},
			"health_insurance": {CalcType: CalcTypeFixed, PreTax: true, Description: "Health Insurance Premium"},
			"dental_insurance": {CalcType: CalcTypeFixed, PreTax: true, Description: "Dental Insurance Premium"},
			"vision_insurance": {CalcType: CalcTypeFixed, PreTax: true, Description: "Vision Insurance Premium"},
			"fsa":              {CalcType: CalcTypeFixed, PreTax: true, Description: "Flexible Spending Account"},
			"life_insurance":   {CalcType: CalcTypeFixed, PreTax: false, Description: "Life Insurance Premium"},
			"charity":          {CalcType: CalcTypePercentage, PreTax: false, Description: "Charitable Contribution"},
			"garnishment":      {CalcType: CalcTypeFixed, PreTax: false, Description: "Wage Garnishment"},
		},
	}
}
