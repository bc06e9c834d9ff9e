package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type CreatePoolRequest struct {
	UserID snowflake.ID
	Name   string
	Type   PoolType
	Codes  []string
}

type AddCodesRequest struct {
	UserID snowflake.ID
	PoolID snowflake.ID
	Codes  []string
}

// Allocation is one allocation attempt's result. PoolType is set
// whenever the pool was found, including on exhaustion.
type Allocation struct {
	Code     string
	PoolType PoolType
}

type Service interface {
	CreatePool(ctx context.Context, req CreatePoolRequest) (DiscountPool, error)
	GetPool(ctx context.Context, userID, id snowflake.ID) (DiscountPool, error)
	AddCodes(ctx context.Context, req AddCodesRequest) error

	// Allocate claims exactly one code for the commenter according to
	// the pool's type semantics. ErrPoolExhausted means no code is
	// available; the caller decides whether a fallback applies.
	Allocate(ctx context.Context, poolID snowflake.ID, commenterID string) (Allocation, error)
}

var (
	ErrPoolNotFound    = errors.New("pool_not_found")
	ErrPoolExhausted   = errors.New("pool_exhausted")
	ErrInvalidPoolName = errors.New("invalid_pool_name")
	ErrInvalidPoolType = errors.New("invalid_pool_type")
	ErrInvalidCodes    = errors.New("invalid_codes")
	ErrDuplicateCode   = errors.New("duplicate_code")
)
