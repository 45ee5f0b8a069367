package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/impulse"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of impulse",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "impulse version %s\n", impulse.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
