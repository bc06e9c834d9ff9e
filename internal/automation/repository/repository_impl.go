package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/commentloop/commentloop/internal/automation/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, automation *domain.Automation) error {
	return db.WithContext(ctx).Create(automation).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, userID, id snowflake.ID) (*domain.Automation, error) {
	var automation domain.Automation
	err := db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		Limit(1).
		Find(&automation).Error
	if err != nil {
		return nil, err
	}
	if automation.ID == 0 {
		return nil, nil
	}
	return &automation, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, automation *domain.Automation) error {
	return db.WithContext(ctx).Save(automation).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, userID, id snowflake.ID) error {
	return db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		Delete(&domain.Automation{}).Error
}

func (r *repo) ListByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]*domain.Automation, error) {
	var automations []*domain.Automation
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("priority asc, id asc").
		Find(&automations).Error
	if err != nil {
		return nil, err
	}
	return automations, nil
}

func (r *repo) FindCandidates(ctx context.Context, db *gorm.DB, accountID snowflake.ID, postID string) ([]*domain.Automation, error) {
	var automations []*domain.Automation
	err := db.WithContext(ctx).
		Where("account_id = ? AND enabled = ?", accountID, true).
		Where("scope = ? OR (scope = ? AND post_id = ?)", domain.ScopeGlobal, domain.ScopePost, postID).
		Order("priority asc, id asc").
		Find(&automations).Error
	if err != nil {
		return nil, err
	}
	return automations, nil
}
