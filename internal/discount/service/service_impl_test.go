package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/commentloop/commentloop/internal/clock"
	"github.com/commentloop/commentloop/internal/discount/domain"
	"github.com/commentloop/commentloop/internal/discount/repository"
	"github.com/commentloop/commentloop/internal/kv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newDiscountService(t *testing.T) (domain.Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.DiscountPool{}, &domain.DiscountCode{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	fakeClk := clock.NewFakeClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))

	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: fakeClk,
		Store: kv.NewMemoryStore(),
		Repo:  repository.Provide(),
	})
	return svc, db, node
}

func TestCreatePool_Validation(t *testing.T) {
	svc, _, node := newDiscountService(t)
	ctx := context.Background()
	userID := node.Generate()

	_, err := svc.CreatePool(ctx, domain.CreatePoolRequest{UserID: userID, Name: " ", Type: domain.PoolStatic, Codes: []string{"A"}})
	assert.ErrorIs(t, err, domain.ErrInvalidPoolName)

	_, err = svc.CreatePool(ctx, domain.CreatePoolRequest{UserID: userID, Name: "p", Type: domain.PoolType("weird"), Codes: []string{"A"}})
	assert.ErrorIs(t, err, domain.ErrInvalidPoolType)

	_, err = svc.CreatePool(ctx, domain.CreatePoolRequest{UserID: userID, Name: "p", Type: domain.PoolOneTime, Codes: []string{" ", ""}})
	assert.ErrorIs(t, err, domain.ErrInvalidCodes)

	// Static pools hold exactly one code.
	_, err = svc.CreatePool(ctx, domain.CreatePoolRequest{UserID: userID, Name: "p", Type: domain.PoolStatic, Codes: []string{"A", "B"}})
	assert.ErrorIs(t, err, domain.ErrInvalidCodes)
}

func TestAllocate_StaticReturnsSameCode(t *testing.T) {
	svc, _, node := newDiscountService(t)
	ctx := context.Background()

	pool, err := svc.CreatePool(ctx, domain.CreatePoolRequest{
		UserID: node.Generate(), Name: "static", Type: domain.PoolStatic, Codes: []string{"SAVE10"},
	})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		alloc, err := svc.Allocate(ctx, pool.ID, fmt.Sprintf("commenter-%d", i))
		require.NoError(t, err)
		assert.Equal(t, "SAVE10", alloc.Code)
		assert.Equal(t, domain.PoolStatic, alloc.PoolType)
	}
}

func TestAllocate_RotatingCyclesInPositionOrder(t *testing.T) {
	svc, _, node := newDiscountService(t)
	ctx := context.Background()

	pool, err := svc.CreatePool(ctx, domain.CreatePoolRequest{
		UserID: node.Generate(), Name: "rotating", Type: domain.PoolRotating, Codes: []string{"A", "B", "C"},
	})
	require.NoError(t, err)

	var got []string
	for i := 0; i < 4; i++ {
		alloc, err := svc.Allocate(ctx, pool.ID, "commenter")
		require.NoError(t, err)
		got = append(got, alloc.Code)
	}
	assert.Equal(t, []string{"A", "B", "C", "A"}, got)
}

func TestAllocate_OneTimeCodesAreExclusive(t *testing.T) {
	svc, db, node := newDiscountService(t)
	ctx := context.Background()

	pool, err := svc.CreatePool(ctx, domain.CreatePoolRequest{
		UserID: node.Generate(), Name: "one time", Type: domain.PoolOneTime, Codes: []string{"X1", "X2", "X3"},
	})
	require.NoError(t, err)

	seen := make(map[string]bool)
	for i := 0; i < 3; i++ {
		alloc, err := svc.Allocate(ctx, pool.ID, fmt.Sprintf("commenter-%d", i))
		require.NoError(t, err)
		assert.False(t, seen[alloc.Code], "code %q handed out twice", alloc.Code)
		seen[alloc.Code] = true
	}

	_, err = svc.Allocate(ctx, pool.ID, "late commenter")
	assert.ErrorIs(t, err, domain.ErrPoolExhausted)

	var claimed int64
	require.NoError(t, db.Model(&domain.DiscountCode{}).
		Where("pool_id = ? AND used_by_commenter_id IS NOT NULL", pool.ID).
		Count(&claimed).Error)
	assert.Equal(t, int64(3), claimed)
}

func TestAllocate_OneTimeConcurrentClaimsAreExclusive(t *testing.T) {
	svc, db, node := newDiscountService(t)

	// One connection keeps sqlite happy under write contention; the
	// claim race itself happens at the goroutine level.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	pool, err := svc.CreatePool(context.Background(), domain.CreatePoolRequest{
		UserID: node.Generate(), Name: "drop", Type: domain.PoolOneTime, Codes: []string{"R1", "R2", "R3", "R4"},
	})
	require.NoError(t, err)

	const racers = 5
	codes := make([]string, racers)
	errs := make([]error, racers)
	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			alloc, err := svc.Allocate(context.Background(), pool.ID, fmt.Sprintf("racer-%d", i))
			codes[i], errs[i] = alloc.Code, err
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool)
	exhausted := 0
	for i := 0; i < racers; i++ {
		if errs[i] != nil {
			require.ErrorIs(t, errs[i], domain.ErrPoolExhausted)
			exhausted++
			continue
		}
		assert.False(t, seen[codes[i]], "code %q handed out twice", codes[i])
		seen[codes[i]] = true
	}
	assert.Len(t, seen, 4)
	assert.Equal(t, 1, exhausted)
}

func TestAllocate_UnknownPool(t *testing.T) {
	svc, _, node := newDiscountService(t)

	_, err := svc.Allocate(context.Background(), node.Generate(), "commenter")
	assert.ErrorIs(t, err, domain.ErrPoolNotFound)
}

func TestAddCodes_AppendsAfterExistingPositions(t *testing.T) {
	svc, db, node := newDiscountService(t)
	ctx := context.Background()
	userID := node.Generate()

	pool, err := svc.CreatePool(ctx, domain.CreatePoolRequest{
		UserID: userID, Name: "rotating", Type: domain.PoolRotating, Codes: []string{"A", "B"},
	})
	require.NoError(t, err)

	require.NoError(t, svc.AddCodes(ctx, domain.AddCodesRequest{
		UserID: userID, PoolID: pool.ID, Codes: []string{"C", "D"},
	}))

	var codes []domain.DiscountCode
	require.NoError(t, db.Where("pool_id = ?", pool.ID).Order("position asc").Find(&codes).Error)
	require.Len(t, codes, 4)
	assert.Equal(t, "C", codes[2].Code)
	assert.Equal(t, 2, codes[2].Position)
}

func TestAddCodes_RejectsCodeAlreadyInPool(t *testing.T) {
	svc, _, node := newDiscountService(t)
	ctx := context.Background()
	userID := node.Generate()

	pool, err := svc.CreatePool(ctx, domain.CreatePoolRequest{
		UserID: userID, Name: "rotating", Type: domain.PoolRotating, Codes: []string{"A", "B"},
	})
	require.NoError(t, err)

	err = svc.AddCodes(ctx, domain.AddCodesRequest{
		UserID: userID, PoolID: pool.ID, Codes: []string{"A"},
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateCode)
}

func TestAddCodes_RejectsForeignPool(t *testing.T) {
	svc, _, node := newDiscountService(t)
	ctx := context.Background()

	pool, err := svc.CreatePool(ctx, domain.CreatePoolRequest{
		UserID: node.Generate(), Name: "mine", Type: domain.PoolOneTime, Codes: []string{"A"},
	})
	require.NoError(t, err)

	err = svc.AddCodes(ctx, domain.AddCodesRequest{
		UserID: node.Generate(), PoolID: pool.ID, Codes: []string{"B"},
	})
	assert.ErrorIs(t, err, domain.ErrPoolNotFound)
}
