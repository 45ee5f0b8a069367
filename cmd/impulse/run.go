package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/impulse/internal/cli"
	"github.com/aretw0/impulse/pkg/runner"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a simulation in the foreground",
	Long: `Runs one simulation and prints progress and a final report.
Ctrl+C stops the run early; the report covers the customers that finished.`,
	Example: `  impulse run --persona "Impatient Buyer" --customers 30
  impulse run --persona-file shopper.yaml --funnel-file checkout.yaml --fast --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		opts := cli.RunOptions{Config: cfg}

		opts.Persona.Preset, _ = flags.GetString("persona")
		opts.Persona.File, _ = flags.GetString("persona-file")
		opts.Persona.ID, _ = flags.GetString("persona-id")
		opts.Funnel.Preset, _ = flags.GetString("funnel")
		opts.Funnel.File, _ = flags.GetString("funnel-file")
		opts.Funnel.ID, _ = flags.GetString("funnel-id")
		opts.Customers, _ = flags.GetInt("customers")
		opts.Speed, _ = flags.GetFloat64("speed")
		if flags.Changed("seed") {
			seed, _ := flags.GetUint64("seed")
			opts.Seed = &seed
		}
		opts.Fast, _ = flags.GetBool("fast")
		opts.JSON, _ = flags.GetBool("json")
		opts.Quiet, _ = flags.GetBool("quiet")
		opts.Every, _ = flags.GetInt("every")

		sm := runner.NewSignalManager()
		defer sm.Stop()

		return cli.RunAndReport(sm.Context(), opts, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("persona", "", "Built-in persona name (see 'impulse presets')")
	runCmd.Flags().String("persona-file", "", "Persona definition file (YAML or JSON)")
	runCmd.Flags().String("persona-id", "", "Stored persona id")
	runCmd.Flags().String("funnel", "", "Built-in funnel name (default: Simple Product Page)")
	runCmd.Flags().String("funnel-file", "", "Funnel definition file (YAML or JSON)")
	runCmd.Flags().String("funnel-id", "", "Stored funnel id")
	runCmd.Flags().IntP("customers", "n", 0, "Number of customers (default from config)")
	runCmd.Flags().Float64P("speed", "s", 0, "Speed multiplier (default from config)")
	runCmd.Flags().Uint64("seed", 0, "Seed to replay a run")
	runCmd.Flags().Bool("fast", false, "Tick as fast as possible instead of on the wall clock")
	runCmd.Flags().Bool("json", false, "Write NDJSON events instead of text")
	runCmd.Flags().BoolP("quiet", "q", false, "Only print progress lines and the report")
	runCmd.Flags().Int("every", 0, "Print a progress line at least every N ticks")
	runCmd.MarkFlagsMutuallyExclusive("persona", "persona-file", "persona-id")
	runCmd.MarkFlagsMutuallyExclusive("funnel", "funnel-file", "funnel-id")
}
