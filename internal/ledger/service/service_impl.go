package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/commentloop/commentloop/internal/clock"
	"github.com/commentloop/commentloop/internal/ledger/domain"
	"github.com/commentloop/commentloop/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Ledger {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("ledger.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) TryClaim(ctx context.Context, commentID string, automationID, accountID snowflake.ID) (domain.ClaimResult, error) {
	event := domain.ProcessedAutomationEvent{
		ID:           s.genID.Generate(),
		CommentID:    commentID,
		AutomationID: automationID,
		AccountID:    accountID,
		Status:       domain.StatusPending,
		CreatedAt:    s.clock.Now(),
	}

	claimed, err := s.repo.InsertPending(ctx, s.db, &event)
	if err != nil {
		// Fail closed: the caller must not enter the action pipeline.
		return domain.ClaimResult{}, err
	}
	if claimed {
		return domain.ClaimResult{Claimed: true}, nil
	}

	existing, err := s.repo.FindByPair(ctx, s.db, commentID, automationID)
	if err != nil {
		return domain.ClaimResult{}, err
	}
	return domain.ClaimResult{Claimed: false, Existing: existing}, nil
}

func (s *Service) Record(ctx context.Context, commentID string, automationID snowflake.ID, status domain.ExecutionStatus, actions []domain.ActionRecord, errMsg string) error {
	switch status {
	case domain.StatusSuccess, domain.StatusPartial, domain.StatusSkipped, domain.StatusFailed:
	default:
		return domain.ErrInvalidStatus
	}

	var msg *string
	if trimmed := strings.TrimSpace(errMsg); trimmed != "" {
		msg = &trimmed
	}

	finalized, err := s.repo.Finalize(ctx, s.db, commentID, automationID, status, actions, msg, s.clock.Now())
	if err != nil {
		return err
	}
	if !finalized {
		s.log.Error("duplicate ledger finalize",
			zap.String("comment_id", commentID),
			zap.String("automation_id", automationID.String()),
			zap.String("status", string(status)),
		)
		return domain.ErrAlreadyFinalized
	}
	return nil
}

func (s *Service) List(ctx context.Context, req domain.ListActivityRequest) (domain.ListActivityResponse, error) {
	var cursor *domain.ActivityCursor
	if strings.TrimSpace(req.PageToken) != "" {
		decoded, err := pagination.DecodeCursor(req.PageToken)
		if err != nil {
			return domain.ListActivityResponse{}, domain.ErrInvalidPageToken
		}
		createdAt, err := time.Parse(time.RFC3339Nano, decoded.CreatedAt)
		if err != nil {
			return domain.ListActivityResponse{}, domain.ErrInvalidPageToken
		}
		id, err := snowflake.ParseString(strings.TrimSpace(decoded.ID))
		if err != nil {
			return domain.ListActivityResponse{}, domain.ErrInvalidPageToken
		}
		cursor = &domain.ActivityCursor{ID: id, CreatedAt: createdAt}
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}
	if pageSize > 250 {
		pageSize = 250
	}

	items, err := s.repo.List(ctx, s.db, domain.ListFilter{
		AccountID: req.AccountID,
		Status:    req.Status,
		Cursor:    cursor,
		Limit:     pageSize,
	})
	if err != nil {
		return domain.ListActivityResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(event *domain.ProcessedAutomationEvent) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        event.ID.String(),
			CreatedAt: event.CreatedAt.Format(time.RFC3339Nano),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > pageSize {
		items = items[:pageSize]
	}

	events := make([]domain.ProcessedAutomationEvent, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		events = append(events, *item)
	}

	resp := domain.ListActivityResponse{Events: events}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}
