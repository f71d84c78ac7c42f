package reports

import (
	"sort"

	"kwreport/pkg/links"
	"kwreport/pkg/policyreport"
	"kwreport/pkg/summary"
)

// SummaryRow is one line of the summary table.
type SummaryRow struct {
	ResourceID string
	Counts     summary.Counts
}

// ResultRow is one policy result of a report, with the link to its policy
// when the policy kind is served by the cluster.
type ResultRow struct {
	Policy   string
	Rule     string
	Status   policyreport.Status
	Severity policyreport.Severity
	Message  string
	Link     string
}

// ReportView is a report ready to print.
type ReportView struct {
	ID       string
	Resource string
	Summary  summary.Counts
	Results  []ResultRow
}

// SummaryRows orders the map by resource ID.
func SummaryRows(m summary.Map) []SummaryRow {
	rows := make([]SummaryRow, 0, len(m))
	for _, id := range m.IDs() {
		rows = append(rows, SummaryRow{ResourceID: id, Counts: m[id]})
	}
	return rows
}

// NewReportView resolves the links of a report for the given cluster.
// Failing results come first.
func NewReportView(r *policyreport.Report, cluster string, checker links.PolicyKindChecker) ReportView {
	v := ReportView{ID: r.ID()}
	if route := links.LinkForResource(r); route != nil {
		v.Resource = route.Path(cluster)
	}

	for _, res := range r.Results {
		status, ok := policyreport.NormalizeStatus(res.Result)
		if !ok {
			status = res.Result
		}
		severity, ok := policyreport.NormalizeSeverity(res.Severity)
		if !ok {
			severity = res.Severity
		}
		v.Summary.Add(status)
		row := ResultRow{
			Policy:   res.Policy,
			Rule:     res.Rule,
			Status:   status,
			Severity: severity,
			Message:  res.Message,
		}
		if route := links.LinkForPolicy(checker, res); route != nil {
			row.Link = route.Path(cluster)
		}
		v.Results = append(v.Results, row)
	}
	sort.SliceStable(v.Results, func(i, j int) bool {
		return rank(v.Results[i].Status) < rank(v.Results[j].Status)
	})
	return v
}

func rank(s policyreport.Status) int {
	switch s {
	case policyreport.StatusFail, policyreport.StatusError:
		return 0
	case policyreport.StatusWarn:
		return 1
	default:
		return 2
	}
}
