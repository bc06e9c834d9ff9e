package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/commentloop/commentloop/internal/ledger/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertPending(ctx context.Context, db *gorm.DB, event *domain.ProcessedAutomationEvent) (bool, error) {
	// ON CONFLICT DO NOTHING on the pair index keeps the claim a single
	// atomic statement; losing the race is reported, not an error.
	result := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "comment_id"}, {Name: "automation_id"}},
			DoNothing: true,
		}).
		Create(event)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *repo) FindByPair(ctx context.Context, db *gorm.DB, commentID string, automationID snowflake.ID) (*domain.ProcessedAutomationEvent, error) {
	var event domain.ProcessedAutomationEvent
	err := db.WithContext(ctx).
		Where("comment_id = ? AND automation_id = ?", commentID, automationID).
		Limit(1).
		Find(&event).Error
	if err != nil {
		return nil, err
	}
	if event.ID == 0 {
		return nil, nil
	}
	return &event, nil
}

func (r *repo) Finalize(ctx context.Context, db *gorm.DB, commentID string, automationID snowflake.ID, status domain.ExecutionStatus, actions []domain.ActionRecord, errMsg *string, at time.Time) (bool, error) {
	result := db.WithContext(ctx).
		Model(&domain.ProcessedAutomationEvent{}).
		Where("comment_id = ? AND automation_id = ? AND status = ?", commentID, automationID, domain.StatusPending).
		Updates(map[string]any{
			"status":           status,
			"actions_executed": datatypes.NewJSONSlice(actions),
			"error_message":    errMsg,
			"finalized_at":     at,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]*domain.ProcessedAutomationEvent, error) {
	var events []*domain.ProcessedAutomationEvent
	stmt := db.WithContext(ctx).
		Model(&domain.ProcessedAutomationEvent{}).
		Where("account_id = ?", filter.AccountID)
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.Cursor != nil {
		stmt = stmt.Where(
			"created_at < ? OR (created_at = ? AND id < ?)",
			filter.Cursor.CreatedAt, filter.Cursor.CreatedAt, filter.Cursor.ID,
		)
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	err := stmt.
		Order("created_at desc, id desc").
		Limit(limit + 1).
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}
