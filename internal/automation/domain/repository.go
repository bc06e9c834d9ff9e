package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, automation *Automation) error
	FindByID(ctx context.Context, db *gorm.DB, userID, id snowflake.ID) (*Automation, error)
	Update(ctx context.Context, db *gorm.DB, automation *Automation) error
	Delete(ctx context.Context, db *gorm.DB, userID, id snowflake.ID) error
	ListByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]*Automation, error)

	// FindCandidates returns enabled automations for the account whose
	// scope admits postID, ordered priority ASC then id ASC.
	FindCandidates(ctx context.Context, db *gorm.DB, accountID snowflake.ID, postID string) ([]*Automation, error)
}
