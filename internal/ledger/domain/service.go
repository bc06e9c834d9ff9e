package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/commentloop/commentloop/pkg/db/pagination"
)

// ClaimResult is the outcome of a claim attempt. When Claimed is false
// Existing carries the row that won the pair, so the caller can report
// the prior outcome without re-executing anything.
type ClaimResult struct {
	Claimed  bool
	Existing *ProcessedAutomationEvent
}

type ListActivityRequest struct {
	AccountID snowflake.ID
	Status    ExecutionStatus
	pagination.Pagination
}

type ListActivityResponse struct {
	pagination.PageInfo
	Events []ProcessedAutomationEvent `json:"events"`
}

// Ledger gates all side-effecting execution: at most one execution per
// (comment, automation) pair, even under concurrent duplicate delivery.
type Ledger interface {
	// TryClaim atomically inserts a pending row for the pair. If a row
	// already exists it is returned unmodified. A store failure fails
	// closed: no claim, no pipeline entry.
	TryClaim(ctx context.Context, commentID string, automationID, accountID snowflake.ID) (ClaimResult, error)

	// Record finalizes a claimed row. Finalizing a row that is not
	// pending is a logic error and returns ErrAlreadyFinalized.
	Record(ctx context.Context, commentID string, automationID snowflake.ID, status ExecutionStatus, actions []ActionRecord, errMsg string) error

	List(ctx context.Context, req ListActivityRequest) (ListActivityResponse, error)
}

var (
	ErrAlreadyFinalized = errors.New("ledger_row_already_finalized")
	ErrInvalidStatus    = errors.New("invalid_execution_status")
	ErrInvalidPageToken = errors.New("invalid_page_token")
)
