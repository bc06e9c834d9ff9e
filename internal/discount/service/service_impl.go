package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/commentloop/commentloop/internal/clock"
	"github.com/commentloop/commentloop/internal/discount/domain"
	"github.com/commentloop/commentloop/internal/kv"
	"github.com/commentloop/commentloop/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const keyRotationCursor = "discount:rotation:%s"

// claimAttempts bounds the retry loop when racing claims on one_time
// pools. Each attempt claims a different candidate, so losing this many
// races in a row means the pool is effectively drained.
const claimAttempts = 5

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Store kv.Store
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	store kv.Store
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("discount.service"),
		genID: p.GenID,
		clock: p.Clock,
		store: p.Store,
		repo:  p.Repo,
	}
}

func (s *Service) CreatePool(ctx context.Context, req domain.CreatePoolRequest) (domain.DiscountPool, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.DiscountPool{}, domain.ErrInvalidPoolName
	}
	switch req.Type {
	case domain.PoolStatic, domain.PoolRotating, domain.PoolOneTime:
	default:
		return domain.DiscountPool{}, domain.ErrInvalidPoolType
	}

	codes := normalizeCodes(req.Codes)
	if len(codes) == 0 {
		return domain.DiscountPool{}, domain.ErrInvalidCodes
	}
	if req.Type == domain.PoolStatic && len(codes) != 1 {
		return domain.DiscountPool{}, domain.ErrInvalidCodes
	}

	now := s.clock.Now()
	pool := domain.DiscountPool{
		ID:        s.genID.Generate(),
		UserID:    req.UserID,
		Name:      name,
		Type:      req.Type,
		CreatedAt: now,
		UpdatedAt: now,
	}

	rows := make([]*domain.DiscountCode, 0, len(codes))
	for i, code := range codes {
		rows = append(rows, &domain.DiscountCode{
			ID:        s.genID.Generate(),
			PoolID:    pool.ID,
			Code:      code,
			Position:  i,
			IsActive:  true,
			CreatedAt: now,
		})
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.InsertPool(ctx, tx, &pool); err != nil {
			return err
		}
		return s.repo.InsertCodes(ctx, tx, rows)
	})
	if err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.DiscountPool{}, domain.ErrDuplicateCode
		}
		return domain.DiscountPool{}, err
	}
	return pool, nil
}

func (s *Service) GetPool(ctx context.Context, userID, id snowflake.ID) (domain.DiscountPool, error) {
	pool, err := s.repo.FindPool(ctx, s.db, id)
	if err != nil {
		return domain.DiscountPool{}, err
	}
	if pool == nil || pool.UserID != userID {
		return domain.DiscountPool{}, domain.ErrPoolNotFound
	}
	return *pool, nil
}

func (s *Service) AddCodes(ctx context.Context, req domain.AddCodesRequest) error {
	pool, err := s.repo.FindPool(ctx, s.db, req.PoolID)
	if err != nil {
		return err
	}
	if pool == nil || pool.UserID != req.UserID {
		return domain.ErrPoolNotFound
	}

	codes := normalizeCodes(req.Codes)
	if len(codes) == 0 {
		return domain.ErrInvalidCodes
	}

	count, err := s.repo.CountActive(ctx, s.db, pool.ID)
	if err != nil {
		return err
	}

	now := s.clock.Now()
	rows := make([]*domain.DiscountCode, 0, len(codes))
	for i, code := range codes {
		rows = append(rows, &domain.DiscountCode{
			ID:        s.genID.Generate(),
			PoolID:    pool.ID,
			Code:      code,
			Position:  int(count) + i,
			IsActive:  true,
			CreatedAt: now,
		})
	}
	if err := s.repo.InsertCodes(ctx, s.db, rows); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.ErrDuplicateCode
		}
		return err
	}
	return nil
}

func (s *Service) Allocate(ctx context.Context, poolID snowflake.ID, commenterID string) (domain.Allocation, error) {
	pool, err := s.repo.FindPool(ctx, s.db, poolID)
	if err != nil {
		return domain.Allocation{}, err
	}
	if pool == nil {
		return domain.Allocation{}, domain.ErrPoolNotFound
	}

	var alloc domain.Allocation
	switch pool.Type {
	case domain.PoolStatic:
		alloc, err = s.allocateStatic(ctx, pool)
	case domain.PoolRotating:
		alloc, err = s.allocateRotating(ctx, pool)
	case domain.PoolOneTime:
		alloc, err = s.allocateOneTime(ctx, pool, commenterID)
	default:
		return domain.Allocation{}, domain.ErrInvalidPoolType
	}
	alloc.PoolType = pool.Type
	return alloc, err
}

func (s *Service) allocateStatic(ctx context.Context, pool *domain.DiscountPool) (domain.Allocation, error) {
	code, err := s.repo.FindFirstActive(ctx, s.db, pool.ID)
	if err != nil {
		return domain.Allocation{}, err
	}
	if code == nil {
		return domain.Allocation{}, domain.ErrPoolExhausted
	}
	return domain.Allocation{Code: code.Code}, nil
}

func (s *Service) allocateRotating(ctx context.Context, pool *domain.DiscountPool) (domain.Allocation, error) {
	active, err := s.repo.CountActive(ctx, s.db, pool.ID)
	if err != nil {
		return domain.Allocation{}, err
	}
	if active == 0 {
		return domain.Allocation{}, domain.ErrPoolExhausted
	}

	// The cursor only ever advances; concurrent callers each get a
	// distinct draw. A code repeats once the cursor wraps the active
	// set, which is the pool's reuse window.
	cursor, err := s.store.Incr(ctx, fmt.Sprintf(keyRotationCursor, pool.ID.String()))
	if err != nil {
		return domain.Allocation{}, err
	}

	offset := int((cursor - 1) % active)
	code, err := s.repo.FindActiveByOffset(ctx, s.db, pool.ID, offset)
	if err != nil {
		return domain.Allocation{}, err
	}
	if code == nil {
		return domain.Allocation{}, domain.ErrPoolExhausted
	}
	return domain.Allocation{Code: code.Code}, nil
}

func (s *Service) allocateOneTime(ctx context.Context, pool *domain.DiscountPool, commenterID string) (domain.Allocation, error) {
	// Candidate discovery is just a read; the conditional UPDATE in
	// ClaimCode is the atomic claim. A lost race re-reads the free set
	// rather than handing out a taken code, and the pool is exhausted
	// only when no unclaimed code remains.
	now := s.clock.Now()
	for attempt := 0; attempt < claimAttempts; attempt++ {
		candidates, err := s.repo.FindUnclaimed(ctx, s.db, pool.ID, claimAttempts)
		if err != nil {
			return domain.Allocation{}, err
		}
		if len(candidates) == 0 {
			return domain.Allocation{}, domain.ErrPoolExhausted
		}
		for _, candidate := range candidates {
			claimed, err := s.repo.ClaimCode(ctx, s.db, candidate.ID, commenterID, now)
			if err != nil {
				return domain.Allocation{}, err
			}
			if claimed {
				return domain.Allocation{Code: candidate.Code}, nil
			}
		}
	}
	return domain.Allocation{}, domain.ErrPoolExhausted
}

func normalizeCodes(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	codes := make([]string, 0, len(raw))
	for _, code := range raw {
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		codes = append(codes, code)
	}
	return codes
}
