// Package summary folds policy reports into pass/fail/warn/error/skip counts
// keyed by the resource each report is about.
package summary

import (
	"sort"

	"kwreport/pkg/policyreport"
)

// Counts is the number of results per status for one resource.
type Counts struct {
	Pass  int `json:"pass"`
	Fail  int `json:"fail"`
	Warn  int `json:"warn"`
	Error int `json:"error"`
	Skip  int `json:"skip"`
}

// Total returns the number of counted results.
func (c Counts) Total() int {
	return c.Pass + c.Fail + c.Warn + c.Error + c.Skip
}

// Add counts one result status. Statuses that are not canonical are
// ignored.
func (c *Counts) Add(s policyreport.Status) {
	switch s {
	case policyreport.StatusPass:
		c.Pass++
	case policyreport.StatusFail:
		c.Fail++
	case policyreport.StatusWarn:
		c.Warn++
	case policyreport.StatusError:
		c.Error++
	case policyreport.StatusSkip:
		c.Skip++
	}
}

// Map holds counts keyed by resource ID.
type Map map[string]Counts

// Input is the full set of reports to reduce.
type Input struct {
	ClusterPolicyReports []policyreport.Report
	PolicyReports        []policyreport.Report
}

// Generate builds a fresh Map from both report collections. Reports not
// managed by Kubewarden and reports without a scope name are skipped.
// Result values outside the five known statuses are ignored.
func Generate(in Input) Map {
	out := Map{}

	all := make([]policyreport.Report, 0, len(in.ClusterPolicyReports)+len(in.PolicyReports))
	all = append(all, in.ClusterPolicyReports...)
	all = append(all, in.PolicyReports...)

	for i := range all {
		r := &all[i]
		if !policyreport.Managed(r.Labels) || r.Scope == nil || r.Scope.Name == "" {
			continue
		}

		id := r.ResourceID()
		counts := out[id]
		for _, res := range r.Results {
			if s, ok := policyreport.NormalizeStatus(res.Result); ok {
				counts.Add(s)
			}
		}
		out[id] = counts
	}

	return out
}

// Merge upserts every entry of other into m. Entries of m missing from
// other are kept.
func (m Map) Merge(other Map) {
	for id, c := range other {
		m[id] = c
	}
}

// Remove deletes the entry for id.
func (m Map) Remove(id string) {
	delete(m, id)
}

// IDs returns the resource IDs in lexical order.
func (m Map) IDs() []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Clone returns a copy of m.
func (m Map) Clone() Map {
	out := make(Map, len(m))
	for id, c := range m {
		out[id] = c
	}
	return out
}
