package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/commentloop/commentloop/internal/discount/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertPool(ctx context.Context, db *gorm.DB, pool *domain.DiscountPool) error {
	return db.WithContext(ctx).Create(pool).Error
}

func (r *repo) FindPool(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.DiscountPool, error) {
	var pool domain.DiscountPool
	err := db.WithContext(ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&pool).Error
	if err != nil {
		return nil, err
	}
	if pool.ID == 0 {
		return nil, nil
	}
	return &pool, nil
}

func (r *repo) InsertCodes(ctx context.Context, db *gorm.DB, codes []*domain.DiscountCode) error {
	if len(codes) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(codes).Error
}

func (r *repo) CountActive(ctx context.Context, db *gorm.DB, poolID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.DiscountCode{}).
		Where("pool_id = ? AND is_active = ?", poolID, true).
		Count(&count).Error
	return count, err
}

func (r *repo) FindActiveByOffset(ctx context.Context, db *gorm.DB, poolID snowflake.ID, offset int) (*domain.DiscountCode, error) {
	var code domain.DiscountCode
	err := db.WithContext(ctx).
		Where("pool_id = ? AND is_active = ?", poolID, true).
		Order("position asc, id asc").
		Offset(offset).
		Limit(1).
		Find(&code).Error
	if err != nil {
		return nil, err
	}
	if code.ID == 0 {
		return nil, nil
	}
	return &code, nil
}

func (r *repo) FindFirstActive(ctx context.Context, db *gorm.DB, poolID snowflake.ID) (*domain.DiscountCode, error) {
	return r.FindActiveByOffset(ctx, db, poolID, 0)
}

func (r *repo) FindUnclaimed(ctx context.Context, db *gorm.DB, poolID snowflake.ID, limit int) ([]*domain.DiscountCode, error) {
	var codes []*domain.DiscountCode
	err := db.WithContext(ctx).
		Where("pool_id = ? AND is_active = ? AND used_by_commenter_id IS NULL", poolID, true).
		Order("position asc, id asc").
		Limit(limit).
		Find(&codes).Error
	if err != nil {
		return nil, err
	}
	return codes, nil
}

func (r *repo) ClaimCode(ctx context.Context, db *gorm.DB, codeID snowflake.ID, commenterID string, at time.Time) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE discount_codes
		 SET used_by_commenter_id = ?, used_at = ?
		 WHERE id = ? AND is_active = ? AND used_by_commenter_id IS NULL`,
		commenterID, at, codeID, true,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
