package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	InsertPool(ctx context.Context, db *gorm.DB, pool *DiscountPool) error
	FindPool(ctx context.Context, db *gorm.DB, id snowflake.ID) (*DiscountPool, error)
	InsertCodes(ctx context.Context, db *gorm.DB, codes []*DiscountCode) error
	CountActive(ctx context.Context, db *gorm.DB, poolID snowflake.ID) (int64, error)

	// FindActiveByOffset returns the nth active code in position order.
	FindActiveByOffset(ctx context.Context, db *gorm.DB, poolID snowflake.ID, offset int) (*DiscountCode, error)

	// FindFirstActive returns the pool's first active code.
	FindFirstActive(ctx context.Context, db *gorm.DB, poolID snowflake.ID) (*DiscountCode, error)

	// FindUnclaimed returns up to limit active, unclaimed codes in
	// position order.
	FindUnclaimed(ctx context.Context, db *gorm.DB, poolID snowflake.ID, limit int) ([]*DiscountCode, error)

	// ClaimCode conditionally marks a specific code used by commenter.
	// The WHERE clause re-checks that the code is still unclaimed, so
	// the update is the atomic claim: false means somebody else won.
	ClaimCode(ctx context.Context, db *gorm.DB, codeID snowflake.ID, commenterID string, at time.Time) (bool, error)
}
