package k8s

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/tools/pager"

	"kwreport/pkg/policyreport"
	"kwreport/pkg/store"
)

// ReportLister lists policy reports through the dynamic client.
type ReportLister struct {
	client dynamic.Interface
	schema policyreport.Schema
	log    logr.Logger
}

var _ store.Fetcher = (*ReportLister)(nil)

// NewReportLister creates a lister for the given report schema.
func NewReportLister(client dynamic.Interface, schema policyreport.Schema, log logr.Logger) *ReportLister {
	return &ReportLister{
		client: client,
		schema: schema,
		log:    log.WithName("lister"),
	}
}

func (l *ReportLister) FetchClusterReports(ctx context.Context, kind string) ([]policyreport.Report, error) {
	return l.list(ctx, policyreport.FamilyCluster, kind)
}

func (l *ReportLister) FetchNamespacedReports(ctx context.Context, kind string) ([]policyreport.Report, error) {
	return l.list(ctx, policyreport.FamilyNamespaced, kind)
}

// list pages through every report of the family. Items that cannot be
// decoded are skipped so one malformed report does not hide the others.
func (l *ReportLister) list(ctx context.Context, f policyreport.Family, kind string) ([]policyreport.Report, error) {
	gvr := l.schema.Resource(f)
	p := pager.New(pager.SimplePageFunc(func(opts metav1.ListOptions) (runtime.Object, error) {
		return l.client.Resource(gvr).List(ctx, opts)
	}))

	var out []policyreport.Report
	err := p.EachListItem(ctx, metav1.ListOptions{}, func(obj runtime.Object) error {
		u, ok := obj.(*unstructured.Unstructured)
		if !ok {
			return nil
		}
		r, err := policyreport.FromUnstructured(u)
		if err != nil {
			l.log.Info("skipping report", "resource", gvr.Resource, "error", err.Error())
			return nil
		}
		if kind != "" && (r.Scope == nil || !policyreport.KindMatches(r.Scope.Kind, kind)) {
			return nil
		}
		out = append(out, r)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", gvr.Resource, err)
	}

	l.log.V(1).Info("listed reports", "resource", gvr.Resource, "kind", kind, "count", len(out))
	return out, nil
}
