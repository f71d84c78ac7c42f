package testutil

import (
	"sync"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	fakediscovery "k8s.io/client-go/discovery/fake"
	dynamicfake "k8s.io/client-go/dynamic/fake"
	"k8s.io/client-go/kubernetes/fake"

	"kwreport/pkg/policyreport"
)

// NewTestDynamicClient returns a fake dynamic client that knows the list
// kinds of both report families of s.
func NewTestDynamicClient(s policyreport.Schema, objs ...runtime.Object) *dynamicfake.FakeDynamicClient {
	listKinds := map[schema.GroupVersionResource]string{
		s.Resource(policyreport.FamilyCluster):    s.ClusterListKind,
		s.Resource(policyreport.FamilyNamespaced): s.NamespacedListKind,
	}
	return dynamicfake.NewSimpleDynamicClientWithCustomListKinds(runtime.NewScheme(), listKinds, objs...)
}

// NewTestDiscovery returns a fake discovery client serving the given lists.
func NewTestDiscovery(lists ...*metav1.APIResourceList) *fakediscovery.FakeDiscovery {
	disc := fake.NewSimpleClientset().Discovery().(*fakediscovery.FakeDiscovery)
	disc.Resources = lists
	return disc
}

// ReportResources is the discovery list of the report resources of s.
func ReportResources(s policyreport.Schema) *metav1.APIResourceList {
	return &metav1.APIResourceList{
		GroupVersion: s.GroupVersion.String(),
		APIResources: []metav1.APIResource{
			{Name: s.Cluster, Kind: kindOf(s.ClusterListKind), Namespaced: false},
			{Name: s.Namespaced, Kind: kindOf(s.NamespacedListKind), Namespaced: true},
		},
	}
}

// PolicyResources is the discovery list of the Kubewarden policy kinds.
func PolicyResources() *metav1.APIResourceList {
	return &metav1.APIResourceList{
		GroupVersion: "policies.kubewarden.io/v1",
		APIResources: []metav1.APIResource{
			{Name: "clusteradmissionpolicies", SingularName: "clusteradmissionpolicy", Kind: "ClusterAdmissionPolicy"},
			{Name: "admissionpolicies", SingularName: "admissionpolicy", Kind: "AdmissionPolicy", Namespaced: true},
		},
	}
}

// NewReport builds an unstructured report of s. An empty namespace makes a
// cluster-level report; scopeKind and scopeName may be empty to omit the scope.
func NewReport(s policyreport.Schema, namespace, name, scopeKind, scopeName string, statuses ...string) *unstructured.Unstructured {
	kind := kindOf(s.NamespacedListKind)
	if namespace == "" {
		kind = kindOf(s.ClusterListKind)
	}

	results := make([]interface{}, 0, len(statuses))
	for _, st := range statuses {
		results = append(results, map[string]interface{}{
			"policy": "clusterwide-test-policy",
			"result": st,
		})
	}

	u := &unstructured.Unstructured{Object: map[string]interface{}{
		"apiVersion": s.GroupVersion.String(),
		"kind":       kind,
		"metadata": map[string]interface{}{
			"name": name,
			"labels": map[string]interface{}{
				policyreport.LabelAppManagedBy: policyreport.LabelApp,
			},
		},
		"results": results,
	}}
	if namespace != "" {
		u.SetNamespace(namespace)
	}
	if scopeKind != "" || scopeName != "" {
		scope := map[string]interface{}{"kind": scopeKind, "name": scopeName}
		if namespace != "" {
			scope["namespace"] = namespace
		}
		u.Object["scope"] = scope
	}
	return u
}

func kindOf(listKind string) string {
	return listKind[:len(listKind)-len("List")]
}

// Set up for recording report events coming from an informer goroutine
type RecordingReportHandler struct {
	mu         sync.Mutex
	Cluster    []policyreport.Report
	Namespaced []policyreport.Report
	Removed    []string
	Summaries  []string
	Regens     int
}

func (h *RecordingReportHandler) UpdateClusterReports(reports []policyreport.Report) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Cluster = append(h.Cluster, reports...)
}

func (h *RecordingReportHandler) UpdateNamespacedReports(reports []policyreport.Report) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Namespaced = append(h.Namespaced, reports...)
}

func (h *RecordingReportHandler) RemoveReport(f policyreport.Family, id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Removed = append(h.Removed, string(f)+":"+id)
}

func (h *RecordingReportHandler) RemoveSummary(resourceID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Summaries = append(h.Summaries, resourceID)
}

func (h *RecordingReportHandler) RegenerateSummaryMap() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Regens++
}

// SnapShot returns copies of the removal records.
func (h *RecordingReportHandler) SnapShot() (removed, summaries []string, upserts int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	removed = append([]string(nil), h.Removed...)
	summaries = append([]string(nil), h.Summaries...)
	return removed, summaries, len(h.Cluster) + len(h.Namespaced)
}
