package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"kwreport/pkg/reportcache"
	"kwreport/pkg/reports"
)

func newReportCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "report <type> <[namespace/]name>",
		Short: "Print the policy report of one resource",
		Long: `Print the policy report of one resource. The type is the resource type,
e.g. pod or apps.deployment. Cluster-scoped resources are given without a namespace.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := parseRef(args[0], args[1])
			if err != nil {
				return err
			}
			e, err := opts.setup(cmd)
			if err != nil {
				return err
			}

			r := e.engine.GetFilteredReport(cmd.Context(), ref)
			if r == nil {
				return fmt.Errorf("no policy report found for %s %s", ref.Type, ref.ID)
			}
			reports.PrintReport(cmd.OutOrStdout(), r, e.cfg.ClusterOrDefault(), e.store)
			return nil
		},
	}
}

func parseRef(resourceType, id string) (reportcache.ResourceRef, error) {
	if resourceType == "" || id == "" {
		return reportcache.ResourceRef{}, fmt.Errorf("resource type and name are required")
	}
	ref := reportcache.ResourceRef{ID: id, Type: resourceType}
	if ns, name, ok := strings.Cut(id, "/"); ok {
		if ns == "" || name == "" || strings.Contains(name, "/") {
			return reportcache.ResourceRef{}, fmt.Errorf("invalid resource %q", id)
		}
		ref.Namespace = ns
	}
	return ref, nil
}
