package k8s

import (
	"strings"

	"github.com/go-logr/logr"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/discovery"

	"kwreport/pkg/policyreport"
	"kwreport/pkg/store"
)

// PolicyGroupVersion is where the Kubewarden policy kinds are served.
var PolicyGroupVersion = schema.GroupVersion{Group: "policies.kubewarden.io", Version: "v1"}

// Registry answers schema questions from API discovery.
type Registry struct {
	discovery discovery.DiscoveryInterface
	schema    policyreport.Schema
	log       logr.Logger
}

var _ store.Registry = (*Registry)(nil)

// NewRegistry creates a Registry for the given report schema.
func NewRegistry(disc discovery.DiscoveryInterface, s policyreport.Schema, log logr.Logger) *Registry {
	return &Registry{
		discovery: disc,
		schema:    s,
		log:       log.WithName("registry"),
	}
}

// ReportSchemaRegistered reports whether both report resources of the
// schema are served. Reports for every resource type live in the same two
// resources, so resourceType only shows up in the logs.
func (r *Registry) ReportSchemaRegistered(resourceType string) bool {
	served := r.served(r.schema.GroupVersion)
	ok := served[r.schema.Cluster] && served[r.schema.Namespaced]
	if !ok {
		r.log.V(1).Info("report schema not served", "groupVersion", r.schema.GroupVersion.String(), "type", resourceType)
	}
	return ok
}

// PolicyKindRegistered reports whether a policy kind token such as
// "policies.kubewarden.io.clusteradmissionpolicy" is served.
func (r *Registry) PolicyKindRegistered(kind string) bool {
	i := strings.LastIndex(kind, ".")
	if i < 0 {
		return false
	}
	group, name := kind[:i], kind[i+1:]
	if group != PolicyGroupVersion.Group {
		return false
	}
	return r.served(PolicyGroupVersion)[name]
}

// served returns the resource names, singular names and lower-cased kinds
// served in gv.
func (r *Registry) served(gv schema.GroupVersion) map[string]bool {
	list, err := r.discovery.ServerResourcesForGroupVersion(gv.String())
	if err != nil {
		r.log.V(1).Info("discovery failed", "groupVersion", gv.String(), "error", err.Error())
		return nil
	}

	out := map[string]bool{}
	for _, res := range list.APIResources {
		out[res.Name] = true
		if res.SingularName != "" {
			out[res.SingularName] = true
		}
		out[strings.ToLower(res.Kind)] = true
	}
	return out
}
