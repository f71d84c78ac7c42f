package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"kwreport/pkg/compat"
)

func newCompatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compat <controller-version> <plugin-version>",
		Short: "Show which report schema a controller and plugin pair uses",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := compat.Resolve(args[0], args[1])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			schema, ok := c.Schema()
			if !ok {
				fmt.Fprintf(out, "schema: %s\n", c)
				return nil
			}
			fmt.Fprintf(out, "schema: %s (%s: %s, %s)\n", c, schema.GroupVersion, schema.Cluster, schema.Namespaced)
			return nil
		},
	}
}
