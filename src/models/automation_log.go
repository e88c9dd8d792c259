package models

import "time"

type LogStatus string

const (
	LogStatusSuccess LogStatus = "success"
	LogStatusError   LogStatus = "error"
	LogStatusWarning LogStatus = "warning"
)

// AutomationLog records the outcome of one (rule, record) execution
// attempt. Rows are append-only.
type AutomationLog struct {
	ID        string                 `json:"id"`
	UserID    int64                  `json:"user_id"`
	RuleID    string                 `json:"rule_id"`
	Status    LogStatus              `json:"status"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}
