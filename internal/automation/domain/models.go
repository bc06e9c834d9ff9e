package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	accountdomain "github.com/commentloop/commentloop/internal/account/domain"
	"github.com/commentloop/commentloop/internal/channel"
	"gorm.io/datatypes"
)

// Scope restricts where an automation applies.
type Scope string

const (
	ScopeGlobal Scope = "global"
	ScopePost   Scope = "post"
)

// TriggerType selects how the trigger value is evaluated.
type TriggerType string

const (
	TriggerKeyword TriggerType = "keyword"
	TriggerIntent  TriggerType = "intent"
)

// Automation is a user-defined rule mapping a trigger to one or more
// actions. Candidates are evaluated in ascending priority; the id is
// the tie-break, so ordering is stable for an unchanged rule set
// (snowflake ids are creation-ordered).
type Automation struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	UserID    snowflake.ID `gorm:"not null;index" json:"user_id"`
	AccountID snowflake.ID `gorm:"not null;index" json:"account_id"`
	Name      string       `gorm:"not null" json:"name"`

	Scope  Scope  `gorm:"not null;default:'global'" json:"scope"`
	PostID string `gorm:"index" json:"post_id,omitempty"`

	TriggerType  TriggerType `gorm:"not null" json:"trigger_type"`
	TriggerValue string      `gorm:"not null" json:"trigger_value"`

	ReplyEnabled bool   `gorm:"not null;default:false" json:"reply_enabled"`
	ReplyText    string `json:"reply_text,omitempty"`

	DMEnabled      bool                                `gorm:"not null;default:false" json:"dm_enabled"`
	DMText         string                              `json:"dm_text,omitempty"`
	DMButtons      datatypes.JSONSlice[channel.Button] `json:"dm_buttons,omitempty"`
	DMDelaySeconds int                                 `gorm:"not null;default:0" json:"dm_delay_seconds"`

	DiscountEnabled bool          `gorm:"not null;default:false" json:"discount_enabled"`
	DiscountPoolID  *snowflake.ID `gorm:"index" json:"discount_pool_id,omitempty"`
	// DiscountMessageText is the DM template; "{code}" is replaced with
	// the allocated code.
	DiscountMessageText  string `json:"discount_message_text,omitempty"`
	DiscountFallbackText string `json:"discount_fallback_text,omitempty"`

	Priority           int                `gorm:"not null;default:100;index" json:"priority"`
	StopAfterExecution bool               `gorm:"not null;default:false" json:"stop_after_execution"`
	Enabled            bool               `gorm:"not null;default:true" json:"enabled"`
	RequiredTier       accountdomain.Tier `gorm:"not null;default:'free'" json:"required_tier"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// HasAnyAction reports whether at least one action is enabled. Rules
// without actions are rejected at write time.
func (a Automation) HasAnyAction() bool {
	return a.ReplyEnabled || a.DMEnabled || a.DiscountEnabled
}
