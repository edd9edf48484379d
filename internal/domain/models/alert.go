package models

import "time"

// Severity ranks how urgent an alert is. Ordering of generated alerts is
// defined by rule evaluation sequence, never by severity.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityDanger  Severity = "danger"
)

// SmartAlert is one actionable finding produced by the rule engine. Alerts
// are recomputed from a fresh snapshot on every invocation and never
// persisted; AlertKey is the stable identity that survives recomputation and
// that dismissals operate on.
type SmartAlert struct {
	ID       string   `json:"id"`
	AlertKey string   `json:"alert_key"`
	Severity Severity `json:"severity"`
	Title    string   `json:"title"`
	Message  string   `json:"message"`
}

// AlertDismissal records that a user suppressed one alert key for a single
// calendar day. DismissedOn is always the storage layer's canonical current
// date, never a client-supplied value.
type AlertDismissal struct {
	TenantID    string    `json:"tenant_id"`
	UserID      string    `json:"user_id"`
	AlertKey    string    `json:"alert_key"`
	DismissedOn time.Time `json:"dismissed_on"`
}
