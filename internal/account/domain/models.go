package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Tier gates feature availability by subscription level.
type Tier string

const (
	TierFree    Tier = "free"
	TierStarter Tier = "starter"
	TierPro     Tier = "pro"
)

// Rank orders tiers so gating is a single comparison. Unknown tiers
// rank below free so a bad value never unlocks anything.
func (t Tier) Rank() int {
	switch t {
	case TierFree:
		return 1
	case TierStarter:
		return 2
	case TierPro:
		return 3
	default:
		return 0
	}
}

func (t Tier) Covers(required Tier) bool {
	return t.Rank() >= required.Rank()
}

type User struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Email     string       `gorm:"not null" json:"email"`
	Tier      Tier         `gorm:"not null;default:'free'" json:"tier"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// SocialAccount is a connected platform account owned by a user. The
// access token is the opaque credential the channel client sends with.
type SocialAccount struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	UserID      snowflake.ID `gorm:"not null;index" json:"user_id"`
	Platform    string       `gorm:"not null" json:"platform"`
	Username    string       `gorm:"not null" json:"username"`
	ExternalID  string       `gorm:"not null;index" json:"external_id"`
	AccessToken string       `gorm:"not null" json:"-"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}
