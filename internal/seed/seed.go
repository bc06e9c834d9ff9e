package seed

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	accountdomain "github.com/commentloop/commentloop/internal/account/domain"
	"github.com/commentloop/commentloop/internal/clock"
	"gorm.io/gorm"
)

const (
	devUserEmail       = "dev@commentloop.local"
	devAccountPlatform = "instagram"
	devAccountUsername = "commentloop.dev"
	devAccountExternal = "ig-dev-0001"
)

// EnsureDevData seeds one user with a connected account so a fresh
// local deployment can process comments immediately. Idempotent: reruns
// find the existing rows and leave them alone.
func EnsureDevData(db *gorm.DB, clk clock.Clock, repo accountdomain.Repository) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user accountdomain.User
		err := tx.WithContext(ctx).Where("email = ?", devUserEmail).First(&user).Error
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			now := clk.Now()
			user = accountdomain.User{
				ID:        node.Generate(),
				Email:     devUserEmail,
				Tier:      accountdomain.TierPro,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := repo.InsertUser(ctx, tx, &user); err != nil {
				return err
			}
		}

		var account accountdomain.SocialAccount
		err = tx.WithContext(ctx).
			Where("user_id = ? AND external_id = ?", user.ID, devAccountExternal).
			First(&account).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		now := clk.Now()
		account = accountdomain.SocialAccount{
			ID:          node.Generate(),
			UserID:      user.ID,
			Platform:    devAccountPlatform,
			Username:    devAccountUsername,
			ExternalID:  devAccountExternal,
			AccessToken: "dev-token",
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		return repo.InsertAccount(ctx, tx, &account)
	})
}
