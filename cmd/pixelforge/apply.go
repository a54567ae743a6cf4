package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"pixelforge/internal/algorithms"
)

// parseParams turns key=value pairs into a parameter map. Values are read as
// YAML scalars or flow sequences, so "sigma=2" is a number and
// "kernel=[[0,1,0],[1,-4,1],[0,1,0]]" a matrix.
func parseParams(pairs []string) (map[string]interface{}, error) {
	params := make(map[string]interface{}, len(pairs))
	for _, p := range pairs {
		key, raw, ok := strings.Cut(p, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("parameter %q: expected key=value", p)
		}
		var v interface{}
		if err := yaml.Unmarshal([]byte(raw), &v); err != nil {
			return nil, fmt.Errorf("parameter %q: %w", key, err)
		}
		params[key] = v
	}
	return params, nil
}

func newApplyCmd(e *env) *cobra.Command {
	var (
		pairs []string
		opts  batchOptions
	)
	cmd := &cobra.Command{
		Use:   "apply <operation> <input>...",
		Short: "Apply one operation to images",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := parseParams(pairs)
			if err != nil {
				return err
			}
			op, err := e.manager().Decode(args[0], params)
			if err != nil {
				return err
			}
			return processFiles(cmd.Context(), e, args[1:], []algorithms.Operation{op}, opts)
		},
	}
	cmd.Flags().StringArrayVarP(&pairs, "param", "p", nil, "operation parameter as key=value (repeatable)")
	addBatchFlags(cmd.Flags(), &opts)
	return cmd
}
