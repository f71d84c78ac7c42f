package reportcache

import (
	"context"
	"errors"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kwreport/pkg/policyreport"
	"kwreport/pkg/store"
)

func TestGetFilteredReportSchemaNotInstalled(t *testing.T) {
	s := newFakeStore()
	s.schemaRegistered = false
	e, _ := newTestEngine(s)

	got := e.GetFilteredReport(context.Background(), ResourceRef{ID: "default/nginx", Type: "pod", Namespace: "default"})
	assert.Nil(t, got)
	assert.Equal(t, int32(0), s.namespacedFetches.Load())
	assert.Equal(t, int32(0), s.clusterFetches.Load())
}

func TestGetFilteredReportNamespaced(t *testing.T) {
	s := newFakeStore()
	s.namespaced = []policyreport.Report{podReport("polr-1", "nginx"), podReport("polr-2", "redis")}
	e, _ := newTestEngine(s)

	got := e.GetFilteredReport(context.Background(), ResourceRef{ID: "default/redis", Type: "pod", Namespace: "default"})
	require.NotNil(t, got)
	assert.Equal(t, "polr-2", got.Name)
	assert.Equal(t, int32(1), s.namespacedFetches.Load())
	assert.Equal(t, int32(0), s.clusterFetches.Load())
	assert.Equal(t, []string{"pod"}, s.kinds)
}

func TestGetFilteredReportClusterLevel(t *testing.T) {
	s := newFakeStore()
	s.cluster = []policyreport.Report{nsReport("cpolr-1", "kube-system")}
	e, _ := newTestEngine(s)

	got := e.GetFilteredReport(context.Background(), ResourceRef{ID: "kube-system", Type: "namespace"})
	require.NotNil(t, got)
	assert.Equal(t, "cpolr-1", got.Name)
	assert.Equal(t, int32(1), s.clusterFetches.Load())
}

func TestGetFilteredReportMissingDoesNotRefetch(t *testing.T) {
	s := newFakeStore()
	e, _ := newTestEngine(s)
	ref := ResourceRef{ID: "default/ghost", Type: "pod", Namespace: "default"}

	assert.Nil(t, e.GetFilteredReport(context.Background(), ref))
	assert.Nil(t, e.GetFilteredReport(context.Background(), ref))
	assert.Equal(t, int32(1), s.namespacedFetches.Load())
}

func TestGetFilteredReportFetchFailure(t *testing.T) {
	s := newFakeStore()
	s.setErr(errors.New("service unavailable"))
	e, _ := newTestEngine(s)

	got := e.GetFilteredReport(context.Background(), ResourceRef{ID: "default/nginx", Type: "pod", Namespace: "default"})
	assert.Nil(t, got)
}

// kindFetcher serves namespaced reports filtered by scope kind, like the
// cluster lister does.
type kindFetcher struct {
	reports []policyreport.Report
}

func (f kindFetcher) FetchClusterReports(context.Context, string) ([]policyreport.Report, error) {
	return nil, nil
}

func (f kindFetcher) FetchNamespacedReports(_ context.Context, kind string) ([]policyreport.Report, error) {
	var out []policyreport.Report
	for _, r := range f.reports {
		if policyreport.KindMatches(r.Scope.Kind, kind) {
			out = append(out, r)
		}
	}
	return out, nil
}

type allRegistered struct{}

func (allRegistered) ReportSchemaRegistered(string) bool { return true }
func (allRegistered) PolicyKindRegistered(string) bool   { return true }

func TestGetFilteredReportKindsSharingAName(t *testing.T) {
	deploy := podReport("polr-deploy", "nginx")
	deploy.Scope.Kind = "Deployment"
	st := store.New(kindFetcher{reports: []policyreport.Report{deploy, podReport("polr-pod", "nginx")}}, allRegistered{}, logr.Discard())
	e := New(st, WithLogger(logr.Discard()))
	ctx := context.Background()

	deployRef := ResourceRef{ID: "default/nginx", Type: "apps.deployment", Namespace: "default"}
	podRef := ResourceRef{ID: "default/nginx", Type: "pod", Namespace: "default"}

	for _, step := range []struct {
		ref  ResourceRef
		want string
	}{
		{deployRef, "polr-deploy"},
		{podRef, "polr-pod"},
		{deployRef, "polr-deploy"},
	} {
		got := e.GetFilteredReport(ctx, step.ref)
		require.NotNil(t, got, step.ref.Type)
		assert.Equal(t, step.want, got.Name, step.ref.Type)
	}
}

func TestGetFilteredReportWrongKind(t *testing.T) {
	s := newFakeStore()
	s.namespaced = []policyreport.Report{podReport("polr-1", "nginx")}
	e, _ := newTestEngine(s)

	assert.Nil(t, e.GetFilteredReport(context.Background(), ResourceRef{ID: "default/nginx", Type: "apps.deployment", Namespace: "default"}))
}
