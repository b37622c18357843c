package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"paymaster/internal/domain/rates"
)

var validateCommand = &cobra.Command{
	Use:   "validate",
	Short: "Validate a rates YAML file",
	RunE:  validateRatesCmd,
}

var validateRatesPath string

func init() {
	validateCommand.Flags().StringVar(&validateRatesPath, "rates", "", "Path to rates YAML file (required)")
	_ = validateCommand.MarkFlagRequired("rates")
	rootCmd.AddCommand(validateCommand)
}

func validateRatesCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := rates.LoadFile(validateRatesPath)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "rates file ok: year %d, %d state tables, %d deduction kinds\n",
		cfg.Year, len(cfg.State), len(cfg.Deductions))
	return nil
}
