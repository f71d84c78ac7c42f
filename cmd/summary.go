package cmd

import (
	"github.com/spf13/cobra"

	"kwreport/pkg/reports"
)

func newSummaryCmd(opts *options) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print pass/fail/warn/error/skip counts per resource",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.setup(cmd)
			if err != nil {
				return err
			}
			if err := e.engine.LoadAll(cmd.Context(), kind); err != nil {
				return err
			}
			reports.PrintSummaryTable(cmd.OutOrStdout(), e.store.SummaryMap())
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "Only count reports about this resource kind (e.g. pod or apps.deployment)")
	return cmd
}
