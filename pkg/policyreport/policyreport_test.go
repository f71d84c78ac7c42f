package policyreport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

func TestResourceID(t *testing.T) {
	tests := []struct {
		name     string
		report   Report
		expected string
	}{
		{
			name: "namespaced scope",
			report: Report{
				ObjectMeta: metav1.ObjectMeta{Name: "r1", Namespace: "default"},
				Scope:      &corev1.ObjectReference{Kind: "Pod", Name: "mypod", Namespace: "myns"},
			},
			expected: "myns/mypod",
		},
		{
			name: "cluster scope",
			report: Report{
				ObjectMeta: metav1.ObjectMeta{Name: "r2"},
				Scope:      &corev1.ObjectReference{Kind: "Namespace", Name: "myns"},
			},
			expected: "myns",
		},
		{
			name:     "no scope falls back to report id",
			report:   Report{ObjectMeta: metav1.ObjectMeta{Name: "r3", Namespace: "default"}},
			expected: "default/r3",
		},
		{
			name: "empty scope falls back to report id",
			report: Report{
				ObjectMeta: metav1.ObjectMeta{Name: "r4"},
				Scope:      &corev1.ObjectReference{},
			},
			expected: "r4",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.report.ResourceID())
		})
	}
}

func TestResourceIDSameResource(t *testing.T) {
	scope := &corev1.ObjectReference{Kind: "Pod", Name: "mypod", Namespace: "myns"}
	a := Report{ObjectMeta: metav1.ObjectMeta{Name: "a", Namespace: "myns"}, Scope: scope}
	b := Report{ObjectMeta: metav1.ObjectMeta{Name: "b", Namespace: "myns"}, Scope: scope.DeepCopy()}

	assert.Equal(t, a.ResourceID(), b.ResourceID())
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestManaged(t *testing.T) {
	assert.True(t, Managed(map[string]string{LabelAppManagedBy: LabelApp, "other": "x"}))
	assert.False(t, Managed(map[string]string{LabelAppManagedBy: "kyverno"}))
	assert.False(t, Managed(nil))
}

func TestKindMatches(t *testing.T) {
	assert.True(t, KindMatches("Pod", "pod"))
	assert.True(t, KindMatches("Deployment", "apps.deployment"))
	assert.True(t, KindMatches("Pod", ""))
	assert.True(t, KindMatches("Pod", "*"))
	assert.False(t, KindMatches("Pod", "apps.deployment"))
}

func TestNormalizeStatus(t *testing.T) {
	s, ok := NormalizeStatus("PASS")
	require.True(t, ok)
	assert.Equal(t, StatusPass, s)

	s, ok = NormalizeStatus(" Fail ")
	require.True(t, ok)
	assert.Equal(t, StatusFail, s)

	_, ok = NormalizeStatus("unknown")
	assert.False(t, ok)
}

func TestNormalizeSeverity(t *testing.T) {
	s, ok := NormalizeSeverity("CRITICAL")
	require.True(t, ok)
	assert.Equal(t, SeverityCritical, s)

	_, ok = NormalizeSeverity("urgent")
	assert.False(t, ok)
}

func TestFromUnstructured(t *testing.T) {
	u := &unstructured.Unstructured{Object: map[string]interface{}{
		"apiVersion": "wgpolicyk8s.io/v1alpha2",
		"kind":       "PolicyReport",
		"metadata": map[string]interface{}{
			"name":      "polr-1",
			"namespace": "default",
			"labels": map[string]interface{}{
				LabelAppManagedBy: LabelApp,
			},
		},
		"scope": map[string]interface{}{
			"kind":      "Pod",
			"name":      "nginx",
			"namespace": "default",
		},
		"results": []interface{}{
			map[string]interface{}{
				"policy":   "namespaced-default-no-privileged",
				"result":   "fail",
				"severity": "high",
				"properties": map[string]interface{}{
					PropertyPolicyName:      "no-privileged",
					PropertyPolicyNamespace: "default",
				},
			},
		},
	}}

	r, err := FromUnstructured(u)
	require.NoError(t, err)
	assert.Equal(t, "default/polr-1", r.ID())
	assert.Equal(t, "default/nginx", r.ResourceID())
	assert.True(t, r.Namespaced())
	assert.True(t, Managed(r.Labels))
	require.Len(t, r.Results, 1)
	assert.Equal(t, StatusFail, r.Results[0].Result)
	assert.Equal(t, "no-privileged", r.Results[0].Properties[PropertyPolicyName])
}

func TestFromUnstructuredMalformed(t *testing.T) {
	u := &unstructured.Unstructured{Object: map[string]interface{}{
		"metadata": map[string]interface{}{"name": "broken"},
		"results":  "not-a-list",
	}}

	_, err := FromUnstructured(u)
	assert.Error(t, err)
}

func TestSchemaResource(t *testing.T) {
	gvr := SchemaOld.Resource(FamilyCluster)
	assert.Equal(t, "wgpolicyk8s.io", gvr.Group)
	assert.Equal(t, "clusterpolicyreports", gvr.Resource)

	gvr = SchemaNew.Resource(FamilyNamespaced)
	assert.Equal(t, "openreports.io", gvr.Group)
	assert.Equal(t, "reports", gvr.Resource)
}
