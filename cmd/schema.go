package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/agentic-research/assetwalk/internal/schema"
	"github.com/spf13/cobra"
)

func newSchemaCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Inspect asset type schemas",
	}
	cmd.AddCommand(newSchemaCheckCmd(o))
	return cmd
}

func newSchemaCheckCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [schema-file]",
		Short: "Load a schema and report every problem in it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := o.v.GetString("schema")
			if len(args) == 1 {
				path = args[0]
			}
			if path == "" {
				return errors.New("no schema given")
			}

			reg, err := schema.LoadFile(path)
			if err != nil {
				return err
			}
			types := reg.Types()
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: %d types (%s)\n", path, len(types), strings.Join(types, ", "))
			return nil
		},
	}
	cmd.Flags().StringP("schema", "s", "", "schema file (YAML or JSON)")
	return cmd
}
