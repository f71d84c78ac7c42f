package summary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"kwreport/pkg/policyreport"
)

var managed = map[string]string{policyreport.LabelAppManagedBy: policyreport.LabelApp}

func report(name, namespace string, scope *corev1.ObjectReference, statuses ...policyreport.Status) policyreport.Report {
	r := policyreport.Report{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: namespace, Labels: managed},
		Scope:      scope,
	}
	for _, s := range statuses {
		r.Results = append(r.Results, policyreport.Result{Policy: "clusterwide-p", Result: s})
	}
	return r
}

func TestGenerateClusterAndNamespaced(t *testing.T) {
	in := Input{
		ClusterPolicyReports: []policyreport.Report{
			report("cpolr-1", "", &corev1.ObjectReference{Kind: "Namespace", Name: "default"},
				policyreport.StatusPass, policyreport.StatusFail),
		},
		PolicyReports: []policyreport.Report{
			report("polr-1", "default", &corev1.ObjectReference{Kind: "Pod", Name: "nginx", Namespace: "default"},
				policyreport.StatusPass, policyreport.StatusFail),
		},
	}

	got := Generate(in)

	require.Len(t, got, 2)
	expected := Counts{Pass: 1, Fail: 1}
	assert.Equal(t, expected, got["default"])
	assert.Equal(t, expected, got["default/nginx"])
}

func TestGenerateIsPure(t *testing.T) {
	in := Input{
		PolicyReports: []policyreport.Report{
			report("polr-1", "default", &corev1.ObjectReference{Kind: "Pod", Name: "nginx", Namespace: "default"},
				policyreport.StatusWarn, policyreport.StatusError, policyreport.StatusSkip),
		},
	}

	first := Generate(in)
	second := Generate(in)
	assert.Equal(t, first, second)
	assert.Equal(t, Counts{Warn: 1, Error: 1, Skip: 1}, second["default/nginx"])
}

func TestGenerateSkipsIneligibleReports(t *testing.T) {
	unmanaged := report("polr-2", "default", &corev1.ObjectReference{Kind: "Pod", Name: "other", Namespace: "default"},
		policyreport.StatusFail)
	unmanaged.Labels = map[string]string{policyreport.LabelAppManagedBy: "someone-else"}

	in := Input{
		PolicyReports: []policyreport.Report{
			unmanaged,
			report("polr-3", "default", nil, policyreport.StatusFail),
			report("polr-4", "default", &corev1.ObjectReference{Kind: "Pod"}, policyreport.StatusFail),
		},
	}

	assert.Empty(t, Generate(in))
}

func TestGenerateFoldsSameResource(t *testing.T) {
	scope := &corev1.ObjectReference{Kind: "Pod", Name: "nginx", Namespace: "default"}
	in := Input{
		PolicyReports: []policyreport.Report{
			report("polr-a", "default", scope, "PASS", "Fail", "bogus"),
			report("polr-b", "default", scope.DeepCopy(), policyreport.StatusPass),
		},
	}

	got := Generate(in)
	require.Len(t, got, 1)
	assert.Equal(t, Counts{Pass: 2, Fail: 1}, got["default/nginx"])
	assert.Equal(t, 3, got["default/nginx"].Total())
}

func TestGenerateEmptyResults(t *testing.T) {
	in := Input{
		ClusterPolicyReports: []policyreport.Report{
			report("cpolr-1", "", &corev1.ObjectReference{Kind: "Namespace", Name: "kube-system"}),
		},
	}

	got := Generate(in)
	require.Contains(t, got, "kube-system")
	assert.Equal(t, Counts{}, got["kube-system"])
}

func TestMapMergeAndRemove(t *testing.T) {
	m := Map{"a": {Pass: 1}, "b": {Fail: 2}}
	m.Merge(Map{"b": {Fail: 3}, "c": {Warn: 1}})

	assert.Equal(t, []string{"a", "b", "c"}, m.IDs())
	assert.Equal(t, Counts{Fail: 3}, m["b"])

	m.Remove("a")
	assert.Equal(t, []string{"b", "c"}, m.IDs())

	clone := m.Clone()
	clone.Remove("b")
	assert.Len(t, m, 2)
}

func TestCountsAdd(t *testing.T) {
	var c Counts
	for _, s := range []policyreport.Status{
		policyreport.StatusPass, policyreport.StatusPass, policyreport.StatusFail,
		policyreport.StatusWarn, policyreport.StatusError, policyreport.StatusSkip,
		"PASS", "bogus",
	} {
		c.Add(s)
	}
	assert.Equal(t, Counts{Pass: 2, Fail: 1, Warn: 1, Error: 1, Skip: 1}, c)
	assert.Equal(t, 6, c.Total())
}
