package domain

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	accountdomain "github.com/commentloop/commentloop/internal/account/domain"
	automationdomain "github.com/commentloop/commentloop/internal/automation/domain"
	ledgerdomain "github.com/commentloop/commentloop/internal/ledger/domain"
)

// NormalizedComment is the immutable inbound event. The caller has
// already stripped the provider envelope; the engine only sees values
// it can evaluate triggers against.
type NormalizedComment struct {
	AccountID         snowflake.ID `json:"account_id"`
	PostID            string       `json:"post_id"`
	CommentID         string       `json:"comment_id"`
	Text              string       `json:"text"`
	CommenterID       string       `json:"commenter_id"`
	CommenterUsername string       `json:"commenter_username"`
	IsFromOwner       bool         `json:"is_from_owner"`
}

func (c NormalizedComment) Validate() error {
	if c.AccountID == 0 ||
		strings.TrimSpace(c.CommentID) == "" ||
		strings.TrimSpace(c.CommenterID) == "" {
		return ErrInvalidComment
	}
	return nil
}

// AutomationContext is the ephemeral aggregate threaded through one
// candidate's action execution, then discarded with the pipeline.
type AutomationContext struct {
	Automation automationdomain.Automation
	Comment    NormalizedComment
	User       accountdomain.User
	Account    accountdomain.SocialAccount
}

// Service is the exposed surface of the engine: one call per inbound
// comment, one result entry per automation that reached evaluation.
type Service interface {
	ProcessComment(ctx context.Context, comment NormalizedComment, userID, accountID snowflake.ID) ([]ledgerdomain.ProcessedAutomationEvent, error)
}

var (
	// ErrOwnerComment rejects self-triggering: comments authored by the
	// account owner never enter the pipeline.
	ErrOwnerComment    = errors.New("comment_from_owner")
	ErrInvalidComment  = errors.New("invalid_comment")
	ErrUserNotFound    = errors.New("user_not_found")
	ErrAccountNotFound = errors.New("account_not_found")
	ErrAccountMismatch = errors.New("account_mismatch")

	// ErrDependencyUnavailable aborts the whole evaluation before any
	// ledger claim for the failing candidate, so a wholesale retry is
	// safe. It is the only failure surfaced to the caller as retryable.
	ErrDependencyUnavailable = errors.New("dependency_unavailable")
)
