package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// PoolType selects the allocation policy for a pool's codes.
type PoolType string

const (
	// PoolStatic hands the same code to every commenter.
	PoolStatic PoolType = "static"
	// PoolRotating draws codes in position order; a code repeats only
	// after the cursor has passed every other active code.
	PoolRotating PoolType = "rotating"
	// PoolOneTime hands each code to exactly one commenter, ever.
	PoolOneTime PoolType = "one_time"
)

type DiscountPool struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	UserID    snowflake.ID `gorm:"not null;index" json:"user_id"`
	Name      string       `gorm:"not null" json:"name"`
	Type      PoolType     `gorm:"not null" json:"type"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// DiscountCode lifecycle: provisioned inactive, activated, then for
// one_time pools consumed when a commenter claims it. Static codes
// have no consumption state; rotating codes are simply passed over by
// the cursor.
type DiscountCode struct {
	ID     snowflake.ID `gorm:"primaryKey" json:"id"`
	PoolID snowflake.ID `gorm:"not null;index;uniqueIndex:ux_discount_codes_pool_code" json:"pool_id"`
	Code   string       `gorm:"not null;uniqueIndex:ux_discount_codes_pool_code" json:"code"`

	// Position fixes the rotation order within the pool.
	Position int  `gorm:"not null;default:0" json:"position"`
	IsActive bool `gorm:"not null;default:true" json:"is_active"`

	UsedByCommenterID *string    `gorm:"index" json:"used_by_commenter_id,omitempty"`
	UsedAt            *time.Time `json:"used_at,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}
