package rates

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultJurisdiction is the fallback key for state tables and SUI rates.
	DefaultJurisdiction = "DEFAULT"

	CalcTypePercentage = "percentage"
	CalcTypeFixed      = "fixed"
)

// BracketEntry is one slice of a progressive tax schedule. UpTo <= 0 in the
// source document means the bracket is unbounded; Normalize rewrites it to
// +Inf so the calculator never special-cases the last entry.
type BracketEntry struct {
	UpTo float64 `yaml:"upTo"`
	Rate float64 `yaml:"rate"`
}

// CappedRate is a flat rate applied up to an annual wage base.
type CappedRate struct {
	Rate     float64 `yaml:"rate"`
	WageBase float64 `yaml:"wageBase"`
}

type MedicareRate struct {
	Rate            float64 `yaml:"rate"`
	SurtaxRate      float64 `yaml:"surtaxRate"`
	SurtaxThreshold float64 `yaml:"surtaxThreshold"`
}

type DeductionKind struct {
	CalcType    string `yaml:"calcType"`
	PreTax      bool   `yaml:"preTax"`
	Description string `yaml:"description"`
}

// Config holds every rate table the payroll calculator depends on. It is
// reference data: built once (from the compiled-in defaults or a YAML file),
// validated, then never mutated.
type Config struct {
	Year            int                       `yaml:"year"`
	AllowanceAmount float64                   `yaml:"allowanceAmount"`
	Federal         []BracketEntry            `yaml:"federal"`
	State           map[string][]BracketEntry `yaml:"state"`
	SocialSecurity  CappedRate                `yaml:"socialSecurity"`
	Medicare        MedicareRate              `yaml:"medicare"`
	FUTA            CappedRate                `yaml:"futa"`
	SUI             map[string]float64        `yaml:"sui"`
	Deductions      map[string]DeductionKind  `yaml:"deductions"`
}

// ConfigError reports an incomplete or inconsistent rate table. Calculations
// must not start while one of these is outstanding.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("rates config: %s: %s", e.Field, e.Reason)
}

// LoadFile reads a YAML rates document, normalizes bracket bounds and
// validates completeness.
func LoadFile(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse rates file %s: %w", path, err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize rewrites non-positive bracket bounds to +Inf.
func (c *Config) Normalize() {
	normalize := func(brackets []BracketEntry) {
		for i := range brackets {
			if brackets[i].UpTo <= 0 {
				brackets[i].UpTo = math.Inf(1)
			}
		}
	}
	normalize(c.Federal)
	for _, brackets := range c.State {
		normalize(brackets)
	}
}

func (c *Config) Validate() error {
	if err := validateBrackets("federal", c.Federal); err != nil {
		return err
	}
	if len(c.State) == 0 {
		return &ConfigError{Field: "state", Reason: "no state bracket tables defined"}
	}
	if _, ok := c.State[DefaultJurisdiction]; !ok {
		return &ConfigError{Field: "state", Reason: "missing DEFAULT bracket table"}
	}
	for state, brackets := range c.State {
		if err := validateBrackets("state."+state, brackets); err != nil {
			return err
		}
	}
	if c.SocialSecurity.Rate < 0 || c.SocialSecurity.WageBase <= 0 {
		return &ConfigError{Field: "socialSecurity", Reason: "rate must be non-negative and wage base positive"}
	}
	if c.Medicare.Rate < 0 || c.Medicare.SurtaxRate < 0 || c.Medicare.SurtaxThreshold <= 0 {
		return &ConfigError{Field: "medicare", Reason: "rates must be non-negative and surtax threshold positive"}
	}
	if c.FUTA.Rate < 0 || c.FUTA.WageBase <= 0 {
		return &ConfigError{Field: "futa", Reason: "rate must be non-negative and wage base positive"}
	}
	if len(c.SUI) == 0 {
		return &ConfigError{Field: "sui", Reason: "no SUI rates defined"}
	}
	if _, ok := c.SUI[DefaultJurisdiction]; !ok {
		return &ConfigError{Field: "sui", Reason: "missing DEFAULT rate"}
	}
	for state, rate := range c.SUI {
		if rate < 0 {
			return &ConfigError{Field: "sui." + state, Reason: "rate must be non-negative"}
		}
	}
	if c.AllowanceAmount < 0 {
		return &ConfigError{Field: "allowanceAmount", Reason: "must be non-negative"}
	}
	for name, kind := range c.Deductions {
		if kind.CalcType != CalcTypePercentage && kind.CalcType != CalcTypeFixed {
			return &ConfigError{Field: "deductions." + name, Reason: "calcType must be percentage or fixed"}
		}
	}
	return nil
}

func validateBrackets(field string, brackets []BracketEntry) error {
	if len(brackets) == 0 {
		return &ConfigError{Field: field, Reason: "bracket table is empty"}
	}
	previous := 0.0
	for i, bracket := range brackets {
		if bracket.Rate < 0 {
			return &ConfigError{Field: field, Reason: fmt.Sprintf("bracket %d has a negative rate", i)}
		}
		if bracket.UpTo <= previous {
			return &ConfigError{Field: field, Reason: fmt.Sprintf("bracket %d bound must exceed the previous bound", i)}
		}
		previous = bracket.UpTo
	}
	if !math.IsInf(brackets[len(brackets)-1].UpTo, 1) {
		return &ConfigError{Field: field, Reason: "last bracket must be unbounded"}
	}
	return nil
}

// StateBrackets returns the bracket table for a jurisdiction, falling back to
// DEFAULT. The second return reports whether the jurisdiction was known.
func (c *Config) StateBrackets(state string) ([]BracketEntry, bool) {
	if brackets, ok := c.State[state]; ok {
		return brackets, true
	}
	return c.State[DefaultJurisdiction], false
}

// SUIRate returns the employer SUI rate for a jurisdiction, falling back to
// DEFAULT.
func (c *Config) SUIRate(state string) (float64, bool) {
	if rate, ok := c.SUI[state]; ok {
		return rate, true
	}
	return c.SUI[DefaultJurisdiction], false
}

// Deduction looks up a deduction kind by its catalog ID.
func (c *Config) Deduction(kindID string) (DeductionKind, bool) {
	kind, ok := c.Deductions[kindID]
	return kind, ok
}
