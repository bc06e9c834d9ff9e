package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	FindUserByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*User, error)
	FindAccountByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*SocialAccount, error)
	InsertUser(ctx context.Context, db *gorm.DB, user *User) error
	InsertAccount(ctx context.Context, db *gorm.DB, account *SocialAccount) error
}

var (
	ErrUserNotFound    = errors.New("user_not_found")
	ErrAccountNotFound = errors.New("account_not_found")
)
