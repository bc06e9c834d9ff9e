package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	accountdomain "github.com/commentloop/commentloop/internal/account/domain"
	"github.com/commentloop/commentloop/internal/channel"
)

type CreateAutomationRequest struct {
	UserID    snowflake.ID
	AccountID snowflake.ID
	Name      string

	Scope  Scope
	PostID string

	TriggerType  TriggerType
	TriggerValue string

	ReplyEnabled bool
	ReplyText    string

	DMEnabled      bool
	DMText         string
	DMButtons      []channel.Button
	DMDelaySeconds int

	DiscountEnabled      bool
	DiscountPoolID       *snowflake.ID
	DiscountMessageText  string
	DiscountFallbackText string

	Priority           int
	StopAfterExecution bool
	RequiredTier       accountdomain.Tier
}

type UpdateAutomationRequest struct {
	UserID snowflake.ID
	ID     snowflake.ID

	Name         *string
	TriggerValue *string
	ReplyText    *string
	DMText       *string
	Priority     *int
	Enabled      *bool
	StopAfter    *bool
}

type Service interface {
	Create(ctx context.Context, req CreateAutomationRequest) (Automation, error)
	GetByID(ctx context.Context, userID, id snowflake.ID) (Automation, error)
	Update(ctx context.Context, req UpdateAutomationRequest) (Automation, error)
	Delete(ctx context.Context, userID, id snowflake.ID) error
	List(ctx context.Context, userID snowflake.ID) ([]Automation, error)

	// Select returns the ordered candidate sequence for one comment:
	// enabled rules for the account, scope-filtered by post, tier-gated
	// against the owner's subscription, priority ASC / id ASC.
	// Recomputed fresh on every call.
	Select(ctx context.Context, accountID snowflake.ID, postID string, tier accountdomain.Tier) ([]Automation, error)
}

var (
	ErrInvalidName         = errors.New("invalid_name")
	ErrInvalidScope        = errors.New("invalid_scope")
	ErrInvalidTrigger      = errors.New("invalid_trigger")
	ErrInvalidActions      = errors.New("invalid_actions")
	ErrInvalidDiscountPool = errors.New("invalid_discount_pool")
	ErrNotFound            = errors.New("automation_not_found")
)
