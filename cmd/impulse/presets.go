package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/impulse/internal/cli"
)

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List the built-in personas and funnels",
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		return cli.PrintPresets(cmd.OutOrStdout(), asJSON)
	},
}

func init() {
	rootCmd.AddCommand(presetsCmd)
	presetsCmd.Flags().Bool("json", false, "Print as JSON")
}
