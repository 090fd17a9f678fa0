/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "userservice",
	Short: "Service for managing individual user accounts",
	Long: `Service for managing individual user accounts.

Registers users, edits profile fields, and retrieves user records,
backed by PostgreSQL with JWT-based authentication.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
