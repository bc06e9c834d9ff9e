package repository

import (
	"context"

	"github.com/commentloop/commentloop/internal/audit/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, event *domain.AuditEvent) error {
	return db.WithContext(ctx).Create(event).Error
}
