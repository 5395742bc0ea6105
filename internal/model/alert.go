package model

type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Rank orders severities from least to most urgent. Unknown values rank 0.
func (s Severity) Rank() int {
	switch s {
	case SeverityInfo:
		return 1
	case SeverityWarning:
		return 2
	case SeverityCritical:
		return 3
	}
	return 0
}

type AlertStatus string

const (
	AlertNew       AlertStatus = "new"
	AlertRead      AlertStatus = "read"
	AlertDismissed AlertStatus = "dismissed"
)

type Alert struct {
	ID        string      `json:"alert_id"`
	Domain    Domain      `json:"domain"`
	Category  string      `json:"category"`
	Severity  Severity    `json:"severity"`
	Title     string      `json:"title"`
	Message   string      `json:"message"`
	Rationale string      `json:"rationale,omitempty"`
	Status    AlertStatus `json:"status"`
	CreatedAt Timestamp   `json:"created_at"`
	Symbol    string      `json:"symbol,omitempty"`
	JobID     string      `json:"job_id,omitempty"`
}

// Actions returns the transitions offered for the alert's current status.
// "Mark as read" only applies to new alerts; anything not yet dismissed can be dismissed.
func (a Alert) Actions() []Action {
	var out []Action
	if a.Status == AlertNew {
		out = append(out, Action{Key: "m", Label: "Mark as read", Target: string(AlertRead)})
	}
	if a.Status != AlertDismissed {
		out = append(out, Action{Key: "x", Label: "Dismiss", Target: string(AlertDismissed)})
	}
	return out
}

// DomainSummary is one row of the backend's per-domain alert rollup.
type DomainSummary struct {
	Domain   string `json:"domain"`
	Unread   int    `json:"unread"`
	Critical int    `json:"critical"`
}

type AlertSummary struct {
	UnreadCount int                      `json:"unread_count"`
	ByDomain    map[string]DomainSummary `json:"by_domain,omitempty"`
}
