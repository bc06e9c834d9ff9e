package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListFilter struct {
	AccountID snowflake.ID
	Status    ExecutionStatus
	Cursor    *ActivityCursor
	Limit     int
}

type ActivityCursor struct {
	ID        snowflake.ID
	CreatedAt time.Time
}

type Repository interface {
	// InsertPending inserts the placeholder row, reporting false when
	// the pair already exists. Must be a single atomic statement.
	InsertPending(ctx context.Context, db *gorm.DB, event *ProcessedAutomationEvent) (bool, error)

	FindByPair(ctx context.Context, db *gorm.DB, commentID string, automationID snowflake.ID) (*ProcessedAutomationEvent, error)

	// Finalize conditionally moves a pending row to its terminal state,
	// reporting false when the row was already finalized.
	Finalize(ctx context.Context, db *gorm.DB, commentID string, automationID snowflake.ID, status ExecutionStatus, actions []ActionRecord, errMsg *string, at time.Time) (bool, error)

	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]*ProcessedAutomationEvent, error)
}
