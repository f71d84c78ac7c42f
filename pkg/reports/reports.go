// Package reports prints summaries and policy reports to a terminal.
package reports

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"kwreport/pkg/links"
	"kwreport/pkg/policyreport"
	"kwreport/pkg/summary"
)

const summaryFormat = "%-50s %6s %6s %6s %6s %6s\n"

// PrintSummaryTable writes one row per resource, ordered by resource ID.
func PrintSummaryTable(w io.Writer, m summary.Map) {
	header := fmt.Sprintf(summaryFormat, "RESOURCE", "PASS", "FAIL", "WARN", "ERROR", "SKIP")
	color.New(color.FgHiBlue).Fprint(w, header)
	fmt.Fprintln(w, strings.Repeat("-", len(header)-1))

	rows := SummaryRows(m)
	if len(rows) == 0 {
		color.New(color.FgYellow).Fprintln(w, "no policy reports found")
		return
	}

	for _, row := range rows {
		c := row.Counts
		line := color.New(color.FgGreen)
		switch {
		case c.Fail > 0 || c.Error > 0:
			line = color.New(color.FgRed, color.Bold)
		case c.Warn > 0:
			line = color.New(color.FgYellow)
		}
		line.Fprintf(w, summaryFormat, row.ResourceID,
			fmt.Sprint(c.Pass), fmt.Sprint(c.Fail), fmt.Sprint(c.Warn), fmt.Sprint(c.Error), fmt.Sprint(c.Skip))
	}
}

// PrintReport writes a report and its results. Policy links are rendered
// for the given cluster when the checker serves the policy kind.
func PrintReport(w io.Writer, r *policyreport.Report, cluster string, checker links.PolicyKindChecker) {
	v := NewReportView(r, cluster, checker)

	color.New(color.FgHiCyan, color.Bold).Fprintf(w, "Report %s\n", v.ID)
	if v.Resource != "" {
		fmt.Fprintf(w, "Resource: %s\n", v.Resource)
	}
	fmt.Fprintf(w, "Pass: %d  Fail: %d  Warn: %d  Error: %d  Skip: %d\n\n",
		v.Summary.Pass, v.Summary.Fail, v.Summary.Warn, v.Summary.Error, v.Summary.Skip)

	rowFormat := "%-40s %-6s %-9s %s\n"
	color.New(color.FgHiBlue).Fprintf(w, rowFormat, "POLICY", "RESULT", "SEVERITY", "MESSAGE")
	for _, row := range v.Results {
		statusColor := color.New(color.FgWhite)
		switch row.Status {
		case policyreport.StatusFail, policyreport.StatusError:
			statusColor = color.New(color.FgRed, color.Bold)
		case policyreport.StatusWarn:
			statusColor = color.New(color.FgYellow)
		case policyreport.StatusPass:
			statusColor = color.New(color.FgGreen)
		}
		fmt.Fprintf(w, rowFormat, row.Policy, statusColor.Sprint(row.Status), row.Severity, row.Message)
		if row.Link != "" {
			color.New(color.FgCyan).Fprintf(w, "  -> %s\n", row.Link)
		}
	}
}
