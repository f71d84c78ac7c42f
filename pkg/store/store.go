// Package store keeps the reports mirrored from the cluster, an index of
// reports by the resource they are about, and the accumulated summary map.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/go-logr/logr"

	"kwreport/pkg/policyreport"
	"kwreport/pkg/summary"
)

// Fetcher lists reports from the backend. An empty kind lists every report
// of the family.
type Fetcher interface {
	FetchClusterReports(ctx context.Context, kind string) ([]policyreport.Report, error)
	FetchNamespacedReports(ctx context.Context, kind string) ([]policyreport.Report, error)
}

// Registry answers which schemas are installed in the cluster.
type Registry interface {
	ReportSchemaRegistered(resourceType string) bool
	PolicyKindRegistered(kind string) bool
}

type reportKey struct {
	family policyreport.Family
	id     string
}

// Store is safe for concurrent use.
type Store struct {
	fetcher  Fetcher
	registry Registry
	log      logr.Logger

	mu         sync.RWMutex
	cluster    map[string]policyreport.Report
	namespaced map[string]policyreport.Report
	byResource map[string]map[reportKey]struct{}
	summary    summary.Map
}

// New creates an empty Store.
func New(fetcher Fetcher, registry Registry, log logr.Logger) *Store {
	return &Store{
		fetcher:    fetcher,
		registry:   registry,
		log:        log.WithName("store"),
		cluster:    map[string]policyreport.Report{},
		namespaced: map[string]policyreport.Report{},
		byResource: map[string]map[reportKey]struct{}{},
		summary:    summary.Map{},
	}
}

func (s *Store) FetchClusterReports(ctx context.Context, kind string) ([]policyreport.Report, error) {
	return s.fetcher.FetchClusterReports(ctx, kind)
}

func (s *Store) FetchNamespacedReports(ctx context.Context, kind string) ([]policyreport.Report, error) {
	return s.fetcher.FetchNamespacedReports(ctx, kind)
}

// UpdateClusterReports upserts cluster-level reports by report ID.
func (s *Store) UpdateClusterReports(reports []policyreport.Report) {
	s.update(policyreport.FamilyCluster, reports)
}

// UpdateNamespacedReports upserts namespaced reports by report ID.
func (s *Store) UpdateNamespacedReports(reports []policyreport.Report) {
	s.update(policyreport.FamilyNamespaced, reports)
}

func (s *Store) update(f policyreport.Family, reports []policyreport.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.family(f)
	for _, r := range reports {
		id := r.ID()
		if old, ok := m[id]; ok {
			s.unindex(f, &old)
		}
		m[id] = r
		s.index(f, &r)
	}
	s.log.V(1).Info("reports updated", "family", f, "count", len(reports))
}

// RemoveReport drops a report that was deleted in the cluster.
func (s *Store) RemoveReport(f policyreport.Family, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.family(f)
	old, ok := m[id]
	if !ok {
		return
	}
	s.unindex(f, &old)
	delete(m, id)
	s.log.V(1).Info("report removed", "family", f, "id", id)
}

// RemoveSummary drops the summary entry of a resource.
func (s *Store) RemoveSummary(resourceID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summary.Remove(resourceID)
}

// RegenerateSummaryMap reduces the current reports and merges the outcome
// into the summary map.
func (s *Store) RegenerateSummaryMap() {
	s.mu.Lock()
	defer s.mu.Unlock()

	fresh := summary.Generate(summary.Input{
		ClusterPolicyReports: values(s.cluster),
		PolicyReports:        values(s.namespaced),
	})
	s.summary.Merge(fresh)
}

func (s *Store) ReportSchemaRegistered(resourceType string) bool {
	return s.registry != nil && s.registry.ReportSchemaRegistered(resourceType)
}

func (s *Store) PolicyKindRegistered(kind string) bool {
	return s.registry != nil && s.registry.PolicyKindRegistered(kind)
}

// ReportByResourceID returns the report about the given resource whose
// scope kind matches resourceType. Resources of different kinds may share
// an ID, so an empty or "*" type picks the lowest report ID.
func (s *Store) ReportByResourceID(resourceType, resourceID string) (policyreport.Report, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		found policyreport.Report
		ok    bool
	)
	for k := range s.byResource[resourceID] {
		r := s.family(k.family)[k.id]
		var kind string
		if r.Scope != nil {
			kind = r.Scope.Kind
		}
		if !policyreport.KindMatches(kind, resourceType) {
			continue
		}
		if !ok || r.ID() < found.ID() {
			found, ok = r, true
		}
	}
	return found, ok
}

// Reports returns every report of a family ordered by ID.
func (s *Store) Reports(f policyreport.Family) []policyreport.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return values(s.family(f))
}

// Summary returns the counts of one resource.
func (s *Store) Summary(resourceID string) (summary.Counts, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.summary[resourceID]
	return c, ok
}

// SummaryMap returns a copy of the summary map.
func (s *Store) SummaryMap() summary.Map {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.summary.Clone()
}

func (s *Store) family(f policyreport.Family) map[string]policyreport.Report {
	if f == policyreport.FamilyCluster {
		return s.cluster
	}
	return s.namespaced
}

// index and unindex must be called with mu held.
func (s *Store) index(f policyreport.Family, r *policyreport.Report) {
	rid := r.ResourceID()
	keys, ok := s.byResource[rid]
	if !ok {
		keys = map[reportKey]struct{}{}
		s.byResource[rid] = keys
	}
	keys[reportKey{family: f, id: r.ID()}] = struct{}{}
}

func (s *Store) unindex(f policyreport.Family, r *policyreport.Report) {
	rid := r.ResourceID()
	keys := s.byResource[rid]
	delete(keys, reportKey{family: f, id: r.ID()})
	if len(keys) == 0 {
		delete(s.byResource, rid)
	}
}

func values(m map[string]policyreport.Report) []policyreport.Report {
	out := make([]policyreport.Report, 0, len(m))
	for _, r := range m {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}
