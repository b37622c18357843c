package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"paymaster/internal/domain/payroll"
	"paymaster/internal/domain/rates"
	"paymaster/internal/reports"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Run payroll for a roster file and print the result",
	RunE:  runPayrollCmd,
}

var (
	runRosterPath    string
	runRatesPath     string
	runStart         string
	runEnd           string
	runPayDate       string
	runPeriodType    string
	runReportType    string
	runStrict        bool
	runEmployerTaxes bool
)

func init() {
	runCommand.Flags().StringVarP(&runRosterPath, "roster", "r", "", "Path to roster JSON file (required)")
	runCommand.Flags().StringVar(&runRatesPath, "rates", "", "Path to rates YAML file (defaults to built-in tables)")
	runCommand.Flags().StringVar(&runStart, "start", "", "Period start date, YYYY-MM-DD (required)")
	runCommand.Flags().StringVar(&runEnd, "end", "", "Period end date, YYYY-MM-DD (required)")
	runCommand.Flags().StringVar(&runPayDate, "pay-date", "", "Pay date, YYYY-MM-DD (defaults to the end date)")
	runCommand.Flags().StringVarP(&runPeriodType, "period-type", "p", "biweekly", "Period type: weekly, biweekly, semimonthly or monthly")
	runCommand.Flags().StringVar(&runReportType, "report", "result", "Output: result, summary, detailed, tax or register")
	runCommand.Flags().BoolVar(&runStrict, "strict", false, "Abort the run on the first invalid record")
	runCommand.Flags().BoolVar(&runEmployerTaxes, "employer-taxes", false, "Include employer-side tax liabilities")
	_ = runCommand.MarkFlagRequired("roster")
	_ = runCommand.MarkFlagRequired("start")
	_ = runCommand.MarkFlagRequired("end")
	rootCmd.AddCommand(runCommand)
}

func runPayrollCmd(cmd *cobra.Command, _ []string) error {
	calculator, err := buildCalculator(runRatesPath)
	if err != nil {
		return err
	}

	rosterRaw, err := os.ReadFile(runRosterPath)
	if err != nil {
		return err
	}
	var roster []payroll.CompensationRecord
	if err := json.Unmarshal(rosterRaw, &roster); err != nil {
		return fmt.Errorf("parse roster %s: %w", runRosterPath, err)
	}

	period, err := buildPeriod(runStart, runEnd, runPayDate, runPeriodType)
	if err != nil {
		return err
	}

	result, err := calculator.CalculateRun(roster, period, payroll.RunOptions{
		Strict:        runStrict,
		EmployerTaxes: runEmployerTaxes,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch runReportType {
	case "result":
		return printJSON(out, result)
	case "summary":
		return printJSON(out, reports.Summary(result))
	case "detailed":
		return printJSON(out, reports.Detailed(result))
	case "tax":
		return printJSON(out, reports.Tax(result))
	case "register":
		return reports.WriteRegister(out, result)
	default:
		return fmt.Errorf("unknown report type %q", runReportType)
	}
}

func buildCalculator(ratesPath string) (*payroll.Calculator, error) {
	tables := rates.Default()
	if ratesPath != "" {
		loaded, err := rates.LoadFile(ratesPath)
		if err != nil {
			return nil, err
		}
		tables = loaded
	}
	return payroll.NewCalculator(tables)
}

func buildPeriod(start, end, payDate, periodType string) (payroll.PayPeriod, error) {
	startDate, err := time.Parse("2006-01-02", start)
	if err != nil {
		return payroll.PayPeriod{}, fmt.Errorf("invalid start date: %w", err)
	}
	endDate, err := time.Parse("2006-01-02", end)
	if err != nil {
		return payroll.PayPeriod{}, fmt.Errorf("invalid end date: %w", err)
	}
	pay := endDate
	if payDate != "" {
		pay, err = time.Parse("2006-01-02", payDate)
		if err != nil {
			return payroll.PayPeriod{}, fmt.Errorf("invalid pay date: %w", err)
		}
	}
	return payroll.PayPeriod{
		StartDate:  startDate,
		EndDate:    endDate,
		PayDate:    pay,
		PeriodType: payroll.PeriodType(strings.ToLower(periodType)),
	}, nil
}

func printJSON(out io.Writer, v any) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
