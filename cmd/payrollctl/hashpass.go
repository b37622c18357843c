package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"paymaster/internal/domain/auth"
)

var hashPasswordCommand = &cobra.Command{
	Use:   "hash-password <password>",
	Short: "Hash an operator password for OPERATOR_PASSWORD_HASH",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if args[0] == "" {
			return errors.New("password must not be empty")
		}
		hash, err := auth.HashPassword(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(hashPasswordCommand)
}
