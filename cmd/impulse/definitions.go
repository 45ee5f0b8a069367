package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/impulse/internal/cli"
	"github.com/aretw0/impulse/pkg/definition"
)

var definitionsCmd = &cobra.Command{
	Use:     "definitions",
	Aliases: []string{"defs"},
	Short:   "Manage funnels and personas in the configured store",
}

var importCmd = &cobra.Command{
	Use:   "import FILE...",
	Short: "Save definition files to the store",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeStore, err := cli.OpenStore(cmd.Context(), cfg.Store)
		if err != nil {
			return err
		}
		defer closeStore()
		return cli.ImportFiles(cmd.Context(), store, args, cmd.OutOrStdout())
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored definitions",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeStore, err := cli.OpenStore(cmd.Context(), cfg.Store)
		if err != nil {
			return err
		}
		defer closeStore()
		return cli.ListDefinitions(cmd.Context(), store, cmd.OutOrStdout())
	},
}

var deleteCmd = &cobra.Command{
	Use:       "delete funnel|persona ID",
	Short:     "Delete a stored definition",
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{string(definition.KindFunnel), string(definition.KindPersona)},
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeStore, err := cli.OpenStore(cmd.Context(), cfg.Store)
		if err != nil {
			return err
		}
		defer closeStore()
		return cli.DeleteDefinition(cmd.Context(), store, definition.Kind(args[0]), args[1])
	},
}

func init() {
	rootCmd.AddCommand(definitionsCmd)
	definitionsCmd.AddCommand(importCmd, listCmd, deleteCmd)
}
