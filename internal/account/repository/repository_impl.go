package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/commentloop/commentloop/internal/account/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindUserByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.User, error) {
	var user domain.User
	err := db.WithContext(ctx).Raw(
		`SELECT id, email, tier, created_at, updated_at FROM users WHERE id = ?`,
		id,
	).Scan(&user).Error
	if err != nil {
		return nil, err
	}
	if user.ID == 0 {
		return nil, nil
	}
	return &user, nil
}

func (r *repo) FindAccountByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.SocialAccount, error) {
	var account domain.SocialAccount
	err := db.WithContext(ctx).Raw(
		`SELECT id, user_id, platform, username, external_id, access_token, created_at, updated_at
		 FROM social_accounts WHERE id = ?`,
		id,
	).Scan(&account).Error
	if err != nil {
		return nil, err
	}
	if account.ID == 0 {
		return nil, nil
	}
	return &account, nil
}

func (r *repo) InsertUser(ctx context.Context, db *gorm.DB, user *domain.User) error {
	return db.WithContext(ctx).Create(user).Error
}

func (r *repo) InsertAccount(ctx context.Context, db *gorm.DB, account *domain.SocialAccount) error {
	return db.WithContext(ctx).Create(account).Error
}
