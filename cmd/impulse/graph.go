package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/impulse/internal/cli"
	"github.com/aretw0/impulse/pkg/ports"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the funnel as a Mermaid diagram",
	Long: `Outputs a Mermaid flowchart (graph TD) of the funnel steps and triggers.
With --persona a fast simulation runs first and its drop-off is drawn on the edges.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		var opts cli.GraphOptions
		opts.Funnel.Preset, _ = flags.GetString("funnel")
		opts.Funnel.File, _ = flags.GetString("funnel-file")
		opts.Funnel.ID, _ = flags.GetString("funnel-id")
		opts.Persona.Preset, _ = flags.GetString("persona")
		opts.Persona.File, _ = flags.GetString("persona-file")
		opts.Customers, _ = flags.GetInt("customers")
		if flags.Changed("seed") {
			seed, _ := flags.GetUint64("seed")
			opts.Seed = &seed
		}

		var store ports.DefinitionStore
		if opts.Funnel.ID != "" {
			s, closeStore, err := cli.OpenStore(cmd.Context(), cfg.Store)
			if err != nil {
				return err
			}
			defer closeStore()
			store = s
		}
		return cli.PrintGraph(cmd.Context(), store, opts, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)

	graphCmd.Flags().String("funnel", "", "Built-in funnel name")
	graphCmd.Flags().String("funnel-file", "", "Funnel definition file")
	graphCmd.Flags().String("funnel-id", "", "Stored funnel id")
	graphCmd.Flags().String("persona", "", "Built-in persona to simulate for the overlay")
	graphCmd.Flags().String("persona-file", "", "Persona definition file to simulate for the overlay")
	graphCmd.Flags().IntP("customers", "n", 20, "Customers in the overlay simulation")
	graphCmd.Flags().Uint64("seed", 0, "Seed for the overlay simulation")
}
