// Package policyreport holds the shape of the policy reports written by the
// Kubewarden audit scanner and the helpers used to key and filter them.
package policyreport

import (
	"strings"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/labels"
)

// Labels set by the audit scanner on every report it owns.
const (
	LabelAppManagedBy = "app.kubernetes.io/managed-by"
	LabelApp          = "kubewarden"
)

// Property keys carried by results.
const (
	PropertyPolicyName      = "policy-name"
	PropertyPolicyNamespace = "policy-namespace"
	PropertyPolicyUID       = "policy-uid"
)

// Family tells the two report collections apart.
type Family string

const (
	FamilyCluster    Family = "cluster"
	FamilyNamespaced Family = "namespaced"
)

// Report is a ClusterPolicyReport or a PolicyReport. Both families share
// this shape; only the scope breadth differs.
type Report struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	// Scope is the resource the report is about.
	// +optional
	Scope *corev1.ObjectReference `json:"scope,omitempty"`

	// +optional
	Summary Summary `json:"summary,omitempty"`

	// +optional
	Results []Result `json:"results,omitempty"`
}

// Summary is the summary block the backend writes into each report.
type Summary struct {
	Pass  int `json:"pass"`
	Fail  int `json:"fail"`
	Warn  int `json:"warn"`
	Error int `json:"error"`
	Skip  int `json:"skip"`
}

// Result is the outcome of one policy for the report's scope.
type Result struct {
	Source   string   `json:"source,omitempty"`
	Policy   string   `json:"policy"`
	Rule     string   `json:"rule,omitempty"`
	Result   Status   `json:"result,omitempty"`
	Severity Severity `json:"severity,omitempty"`
	Message  string   `json:"message,omitempty"`
	Category string   `json:"category,omitempty"`
	Scored   bool     `json:"scored,omitempty"`

	// +optional
	Properties map[string]string `json:"properties,omitempty"`

	// +optional
	Resources []corev1.ObjectReference `json:"resources,omitempty"`
}

// ID returns the identifier of the report object itself.
func (r *Report) ID() string {
	if r.Namespace != "" {
		return r.Namespace + "/" + r.Name
	}
	return r.Name
}

// Namespaced reports whether the scope of the report is a namespaced resource.
func (r *Report) Namespaced() bool {
	return r.Scope != nil && r.Scope.Namespace != ""
}

// ResourceID derives the key of the resource the report is about:
// namespace/name for namespaced scopes, name for cluster scopes and the
// report's own ID when there is no scope at all.
func (r *Report) ResourceID() string {
	if r.Scope != nil && r.Scope.Name != "" {
		if r.Scope.Namespace != "" {
			return r.Scope.Namespace + "/" + r.Scope.Name
		}
		return r.Scope.Name
	}
	return r.ID()
}

var managedSelector = labels.SelectorFromSet(labels.Set{LabelAppManagedBy: LabelApp})

// Managed reports whether the label set marks a report as owned by Kubewarden.
func Managed(set map[string]string) bool {
	return managedSelector.Matches(labels.Set(set))
}

// KindMatches compares a scope kind with a resource type token such as
// "pod", "Pod" or "apps.deployment".
func KindMatches(scopeKind, resourceType string) bool {
	if resourceType == "" || resourceType == "*" {
		return true
	}
	if i := strings.LastIndex(resourceType, "."); i >= 0 {
		resourceType = resourceType[i+1:]
	}
	return strings.EqualFold(scopeKind, resourceType)
}
