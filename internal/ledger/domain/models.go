package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// ExecutionStatus is the per-automation outcome for one comment.
type ExecutionStatus string

const (
	// StatusPending marks a freshly claimed row. It is never a terminal
	// state; every claim is finalized exactly once.
	StatusPending ExecutionStatus = "pending"
	StatusSuccess ExecutionStatus = "success"
	StatusPartial ExecutionStatus = "partial"
	StatusSkipped ExecutionStatus = "skipped"
	StatusFailed  ExecutionStatus = "failed"
)

// Action outcome values recorded per executed action.
const (
	OutcomeOK      = "ok"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
)

// ActionRecord is the per-action metadata stored on the ledger row.
type ActionRecord struct {
	Kind    string `json:"kind"`
	Outcome string `json:"outcome"`
	Detail  string `json:"detail,omitempty"`
}

// ProcessedAutomationEvent is the idempotency ledger row. The
// (comment_id, automation_id) pair is unique; the row is created once
// as pending by the claim and finalized at most once. Rows are never
// deleted and never mutated after the terminal status is written.
type ProcessedAutomationEvent struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	CommentID    string       `gorm:"not null;uniqueIndex:ux_processed_events_pair,priority:1" json:"comment_id"`
	AutomationID snowflake.ID `gorm:"not null;uniqueIndex:ux_processed_events_pair,priority:2" json:"automation_id"`
	AccountID    snowflake.ID `gorm:"not null;index" json:"account_id"`

	Status          ExecutionStatus                   `gorm:"not null;default:'pending'" json:"execution_status"`
	ActionsExecuted datatypes.JSONSlice[ActionRecord] `json:"actions_executed,omitempty"`
	ErrorMessage    *string                           `json:"error_message,omitempty"`

	CreatedAt   time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	FinalizedAt *time.Time `json:"finalized_at,omitempty"`
}

// Terminal reports whether the row has reached its final status.
func (e ProcessedAutomationEvent) Terminal() bool {
	return e.Status != StatusPending
}
