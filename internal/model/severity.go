// Package model provides data models for the host monitor.
package model

// Severity represents the classification tier attached to every alert event.
type Severity string

const (
	SeverityOK       Severity = "ok"       // 正常
	SeverityWarning  Severity = "warning"  // 警告
	SeverityCritical Severity = "critical" // 严重
	SeverityUnknown  Severity = "unknown"  // 未知（采集数据不可读）
)

// severityRank orders the graded tiers for comparison. Unknown is a terminal
// classification for unreadable input and sits outside the ordered scale.
var severityRank = map[Severity]int{
	SeverityOK:       0,
	SeverityWarning:  1,
	SeverityCritical: 2,
}

// IsWarning returns true if this severity is the warning tier.
func (s Severity) IsWarning() bool {
	return s == SeverityWarning
}

// IsCritical returns true if this severity is the critical tier.
func (s Severity) IsCritical() bool {
	return s == SeverityCritical
}

// Worse returns the more severe of two graded severities.
// Unknown always wins; it marks a check whose data could not be read at all.
func Worse(a, b Severity) Severity {
	if a == SeverityUnknown || b == SeverityUnknown {
		return SeverityUnknown
	}
	if severityRank[a] >= severityRank[b] {
		return a
	}
	return b
}
