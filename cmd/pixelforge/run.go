package main

import (
	"github.com/spf13/cobra"

	"pixelforge/internal/config"
)

func newRunCmd(e *env) *cobra.Command {
	var opts batchOptions
	cmd := &cobra.Command{
		Use:   "run <recipe.yaml> <input>...",
		Short: "Run a YAML recipe of operations on images",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			recipe, err := config.LoadRecipe(args[0])
			if err != nil {
				return err
			}
			ops, err := recipe.Operations(e.manager())
			if err != nil {
				return err
			}
			e.log.Debug("cli", "recipe loaded", map[string]interface{}{
				"recipe": recipe.Name,
				"steps":  len(ops),
			})
			return processFiles(cmd.Context(), e, args[1:], ops, opts)
		},
	}
	addBatchFlags(cmd.Flags(), &opts)
	return cmd
}
