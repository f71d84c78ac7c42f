package policyreport

import "strings"

// Status is the outcome of a policy evaluation.
type Status string

const (
	StatusPass  Status = "pass"
	StatusFail  Status = "fail"
	StatusWarn  Status = "warn"
	StatusError Status = "error"
	StatusSkip  Status = "skip"
)

// Severity of a result.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// NormalizeStatus maps any casing of a known status to its canonical value.
// Unknown values return false.
func NormalizeStatus(s Status) (Status, bool) {
	switch Status(strings.ToLower(strings.TrimSpace(string(s)))) {
	case StatusPass:
		return StatusPass, true
	case StatusFail:
		return StatusFail, true
	case StatusWarn:
		return StatusWarn, true
	case StatusError:
		return StatusError, true
	case StatusSkip:
		return StatusSkip, true
	default:
		return "", false
	}
}

// NormalizeSeverity maps any casing of a known severity to its canonical
// value. Unknown values return false.
func NormalizeSeverity(s Severity) (Severity, bool) {
	switch Severity(strings.ToLower(strings.TrimSpace(string(s)))) {
	case SeverityInfo:
		return SeverityInfo, true
	case SeverityLow:
		return SeverityLow, true
	case SeverityMedium:
		return SeverityMedium, true
	case SeverityHigh:
		return SeverityHigh, true
	case SeverityCritical:
		return SeverityCritical, true
	default:
		return "", false
	}
}
