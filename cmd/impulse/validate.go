package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/impulse/internal/cli"
)

var validateCmd = &cobra.Command{
	Use:   "validate FILE...",
	Short: "Check funnel and persona definition files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.ValidateFiles(args, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
