// Package main provides payrollctl, an offline CLI for running payroll from
// roster and rates files without the HTTP server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "payrollctl",
	Short: "Payroll calculator CLI",
	Long:  "payrollctl runs payroll calculations from a roster JSON file and an optional rates YAML file, and prints reports or a CSV register.",
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
