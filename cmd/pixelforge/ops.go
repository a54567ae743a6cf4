package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newOpsCmd(e *env) *cobra.Command {
	var withDefaults bool
	cmd := &cobra.Command{
		Use:   "ops [operation]",
		Short: "List operations and their default parameters",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m := e.manager()
			out := cmd.OutOrStdout()
			names := m.GetAvailableAlgorithms()
			if len(args) == 1 {
				names, withDefaults = args[:1], true
			}
			for _, name := range names {
				if !withDefaults {
					fmt.Fprintln(out, name)
					continue
				}
				params, err := m.GetDefaultParameters(name)
				if err != nil {
					return err
				}
				doc, err := yaml.Marshal(map[string]interface{}{name: params})
				if err != nil {
					return err
				}
				fmt.Fprint(out, string(doc))
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&withDefaults, "defaults", "d", false, "print default parameters as YAML")
	return cmd
}
