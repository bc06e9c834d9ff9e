package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// AuditEvent is an append-only record of engine activity. Rows are
// never updated or deleted.
type AuditEvent struct {
	ID        snowflake.ID      `gorm:"primaryKey" json:"id"`
	UserID    *snowflake.ID     `gorm:"index" json:"user_id,omitempty"`
	AccountID *snowflake.ID     `gorm:"index" json:"account_id,omitempty"`
	Action    string            `gorm:"not null;index" json:"action"`
	Severity  Severity          `gorm:"not null;default:'info'" json:"severity"`
	TargetID  string            `gorm:"index" json:"target_id,omitempty"`
	Metadata  datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	CreatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

type Entry struct {
	UserID    *snowflake.ID
	AccountID *snowflake.ID
	Action    string
	Severity  Severity
	TargetID  string
	Metadata  map[string]any
}

// Service records audit entries. Writes are best effort: the engine is
// never blocked by audit availability, so Log reports failures through
// its own logger rather than to the caller.
type Service interface {
	Log(ctx context.Context, entry Entry)
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, event *AuditEvent) error
}
