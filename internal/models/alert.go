package models

import "time"

// Alert severities understood by the dispatcher's routing rules.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// Alert is a structured notification handed to the alert dispatcher.
type Alert struct {
	ID        string            `json:"id"`
	Severity  string            `json:"severity"`
	Source    string            `json:"source"`
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}
