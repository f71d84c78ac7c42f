package cmd

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"kwreport/pkg/k8s"
	"kwreport/pkg/reports"
)

func newWatchCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Keep the summary in sync with report changes until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			e, err := opts.setup(cmd)
			if err != nil {
				return err
			}
			if err := e.engine.LoadAll(ctx, ""); err != nil {
				return err
			}
			if err := k8s.WatchReports(ctx, e.client.Dynamic, e.schema, e.store, e.log); err != nil {
				return err
			}

			<-ctx.Done()
			reports.PrintSummaryTable(cmd.OutOrStdout(), e.store.SummaryMap())
			return nil
		},
	}
}
