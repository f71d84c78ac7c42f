package policyreport

import (
	"fmt"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
)

// Schema names where the two report families live for one field layout.
type Schema struct {
	Name         string
	GroupVersion schema.GroupVersion
	// Resource plurals
	Cluster    string
	Namespaced string
	// List kinds, needed by clients that decode lists generically.
	ClusterListKind    string
	NamespacedListKind string
}

var (
	SchemaOld = Schema{
		Name:               "wgpolicyk8s",
		GroupVersion:       schema.GroupVersion{Group: "wgpolicyk8s.io", Version: "v1alpha2"},
		Cluster:            "clusterpolicyreports",
		Namespaced:         "policyreports",
		ClusterListKind:    "ClusterPolicyReportList",
		NamespacedListKind: "PolicyReportList",
	}
	SchemaNew = Schema{
		Name:               "openreports",
		GroupVersion:       schema.GroupVersion{Group: "openreports.io", Version: "v1alpha1"},
		Cluster:            "clusterreports",
		Namespaced:         "reports",
		ClusterListKind:    "ClusterReportList",
		NamespacedListKind: "ReportList",
	}
)

// Resource returns the GroupVersionResource of the given family.
func (s Schema) Resource(f Family) schema.GroupVersionResource {
	if f == FamilyCluster {
		return s.GroupVersion.WithResource(s.Cluster)
	}
	return s.GroupVersion.WithResource(s.Namespaced)
}

// FromUnstructured decodes a report object as returned by a dynamic client.
func FromUnstructured(u *unstructured.Unstructured) (Report, error) {
	var r Report
	if err := runtime.DefaultUnstructuredConverter.FromUnstructured(u.UnstructuredContent(), &r); err != nil {
		return Report{}, fmt.Errorf("failed to decode report %s/%s: %w", u.GetNamespace(), u.GetName(), err)
	}
	return r, nil
}
