package reportcache

import (
	"context"

	"kwreport/pkg/policyreport"
)

// ResourceRef identifies the resource a report is looked up for. ID is
// "namespace/name" for namespaced resources and "name" otherwise; Type is a
// resource type token such as "pod" or "apps.deployment".
type ResourceRef struct {
	ID        string
	Type      string
	Namespace string
}

// GetFilteredReport returns the report about ref, or nil when the report
// schema is not installed, the report does not exist or loading failed.
// Failures are logged and never returned; retrying is up to the caller.
func (e *Engine) GetFilteredReport(ctx context.Context, ref ResourceRef) *policyreport.Report {
	if !e.store.ReportSchemaRegistered(ref.Type) {
		e.log.V(1).Info("report schema not installed", "type", ref.Type)
		return nil
	}

	clusterLevel := ref.Namespace == ""
	if _, err := e.GetReports(ctx, clusterLevel, ref.Type); err != nil {
		e.log.V(1).Info("could not load reports", "resource", ref.ID, "type", ref.Type, "error", err.Error())
		return nil
	}

	r, ok := e.store.ReportByResourceID(ref.Type, ref.ID)
	if !ok {
		return nil
	}
	return &r
}
