package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/impulse/internal/cli"
	"github.com/aretw0/impulse/pkg/runner"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP control server",
	Long: `Starts a simulator behind a JSON API: start and stop runs, change speed,
read the aggregate and population, stream events over SSE and scrape
Prometheus metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		seed, _ := cmd.Flags().GetBool("seed-presets")

		sm := runner.NewSignalManager()
		defer sm.Stop()

		return cli.Serve(sm.Context(), cli.ServeOptions{Config: cfg, Addr: addr, SeedPresets: seed}, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", "", "Address to listen on (default from config, :8080)")
	serveCmd.Flags().Bool("seed-presets", false, "Save the built-in personas and funnels to the store on startup")
}
