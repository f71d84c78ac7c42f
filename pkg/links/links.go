// Package links resolves navigation targets for report results and report
// scopes. Every function here is total: missing data yields nil.
package links

import (
	"strings"

	"kwreport/pkg/policyreport"
)

// Resource type tokens of the Kubewarden policy kinds.
const (
	ClusterAdmissionPolicyType = "policies.kubewarden.io.clusteradmissionpolicy"
	AdmissionPolicyType        = "policies.kubewarden.io.admissionpolicy"
)

const (
	productKubewarden = "kubewarden"
	productExplorer   = "explorer"

	routeResourceID          = "c-cluster-product-resource-id"
	routeResourceNamespaceID = "c-cluster-product-resource-namespace-id"
)

// PolicyKindChecker reports whether a policy kind is served by the cluster.
type PolicyKindChecker interface {
	PolicyKindRegistered(kind string) bool
}

// Route is a navigable reference to a resource detail page.
type Route struct {
	Name      string
	Product   string
	Resource  string
	Namespace string
	ID        string
}

// Path renders the route for the given cluster.
func (r Route) Path(cluster string) string {
	segments := []string{"", "c", cluster, r.Product, r.Resource}
	if r.Namespace != "" {
		segments = append(segments, r.Namespace)
	}
	segments = append(segments, r.ID)
	return strings.Join(segments, "/")
}

func newRoute(product, resource, namespace, id string) *Route {
	name := routeResourceID
	if namespace != "" {
		name = routeResourceNamespaceID
	}
	return &Route{
		Name:      name,
		Product:   product,
		Resource:  resource,
		Namespace: namespace,
		ID:        id,
	}
}

// LinkForPolicy returns the route of the policy that produced result, or nil
// when the policy cannot be identified or its kind is not registered.
// The policy-name and policy-namespace properties win over the prefix.
func LinkForPolicy(checker PolicyKindChecker, result policyreport.Result) *Route {
	if checker == nil || result.Policy == "" {
		return nil
	}

	propName := result.Properties[policyreport.PropertyPolicyName]
	propNamespace := result.Properties[policyreport.PropertyPolicyNamespace]

	p, err := DecodePolicyInNamespace(result.Policy, propNamespace)
	if err != nil {
		return nil
	}

	switch p := p.(type) {
	case ClusterPolicy:
		if !checker.PolicyKindRegistered(ClusterAdmissionPolicyType) {
			return nil
		}
		name := p.Name
		if propName != "" {
			name = propName
		}
		return newRoute(productKubewarden, ClusterAdmissionPolicyType, "", name)
	case NamespacedPolicy:
		if !checker.PolicyKindRegistered(AdmissionPolicyType) {
			return nil
		}
		name, namespace := p.Name, p.Namespace
		if propName != "" {
			name = propName
		}
		if propNamespace != "" {
			namespace = propNamespace
		}
		return newRoute(productKubewarden, AdmissionPolicyType, namespace, name)
	}
	return nil
}

// LinkForResource returns the route of the resource a report is about, or nil
// when the report has no usable scope.
func LinkForResource(report *policyreport.Report) *Route {
	if report == nil || report.Scope == nil || report.Scope.Kind == "" || report.Scope.Name == "" {
		return nil
	}
	return newRoute(productExplorer, strings.ToLower(report.Scope.Kind), report.Scope.Namespace, report.Scope.Name)
}
