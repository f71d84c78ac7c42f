package links

import (
	"fmt"
	"strings"
)

// Prefixes the audit scanner puts in front of a result's policy field.
const (
	prefixClusterwide = "clusterwide-"
	prefixNamespaced  = "namespaced-"
)

// Provenance is the policy a result came from, recovered from the prefixed
// policy string. It is either a ClusterPolicy or a NamespacedPolicy.
type Provenance interface {
	PolicyName() string
	provenance()
}

// ClusterPolicy is a ClusterAdmissionPolicy.
type ClusterPolicy struct {
	Name string
}

// NamespacedPolicy is an AdmissionPolicy living in Namespace.
type NamespacedPolicy struct {
	Namespace string
	Name      string
}

func (p ClusterPolicy) PolicyName() string    { return p.Name }
func (p NamespacedPolicy) PolicyName() string { return p.Name }
func (ClusterPolicy) provenance()             {}
func (NamespacedPolicy) provenance()          {}

// DecodePolicy parses "clusterwide-<name>" and "namespaced-<namespace>-<name>".
// The namespace is taken up to the first dash after the prefix; use
// DecodePolicyInNamespace when the namespace is known.
func DecodePolicy(policy string) (Provenance, error) {
	switch {
	case strings.HasPrefix(policy, prefixClusterwide):
		name := strings.TrimPrefix(policy, prefixClusterwide)
		if name == "" {
			return nil, fmt.Errorf("policy %q has no name", policy)
		}
		return ClusterPolicy{Name: name}, nil
	case strings.HasPrefix(policy, prefixNamespaced):
		ns, name, ok := strings.Cut(strings.TrimPrefix(policy, prefixNamespaced), "-")
		if !ok || ns == "" || name == "" {
			return nil, fmt.Errorf("policy %q has no namespace or name", policy)
		}
		return NamespacedPolicy{Namespace: ns, Name: name}, nil
	default:
		return nil, fmt.Errorf("policy %q has an unknown prefix", policy)
	}
}

// DecodePolicyInNamespace decodes a namespaced policy string whose namespace
// is already known, which also covers namespaces containing dashes.
func DecodePolicyInNamespace(policy, namespace string) (Provenance, error) {
	prefix := prefixNamespaced + namespace + "-"
	if namespace == "" || !strings.HasPrefix(policy, prefix) || len(policy) == len(prefix) {
		return DecodePolicy(policy)
	}
	return NamespacedPolicy{Namespace: namespace, Name: strings.TrimPrefix(policy, prefix)}, nil
}
