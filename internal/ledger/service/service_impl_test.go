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
	"github.com/commentloop/commentloop/internal/ledger/domain"
	"github.com/commentloop/commentloop/internal/ledger/repository"
	"github.com/commentloop/commentloop/pkg/db/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newLedger(t *testing.T) (domain.Ledger, *gorm.DB, *clock.FakeClock, *snowflake.Node) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.ProcessedAutomationEvent{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	fakeClk := clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: fakeClk,
		Repo:  repository.Provide(),
	})
	return svc, db, fakeClk, node
}

func TestTryClaim_FirstWinsSecondSeesExisting(t *testing.T) {
	svc, _, _, node := newLedger(t)
	ctx := context.Background()
	automationID := node.Generate()
	accountID := node.Generate()

	first, err := svc.TryClaim(ctx, "comment-1", automationID, accountID)
	require.NoError(t, err)
	assert.True(t, first.Claimed)
	assert.Nil(t, first.Existing)

	second, err := svc.TryClaim(ctx, "comment-1", automationID, accountID)
	require.NoError(t, err)
	assert.False(t, second.Claimed)
	require.NotNil(t, second.Existing)
	assert.Equal(t, domain.StatusPending, second.Existing.Status)
}

func TestTryClaim_ConcurrentClaimsHaveSingleWinner(t *testing.T) {
	svc, db, _, node := newLedger(t)

	// One connection keeps sqlite happy under write contention; the
	// insert race itself happens at the goroutine level.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	automationID := node.Generate()
	accountID := node.Generate()

	const racers = 16
	results := make([]domain.ClaimResult, racers)
	errs := make([]error, racers)
	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.TryClaim(context.Background(), "comment-race", automationID, accountID)
		}(i)
	}
	wg.Wait()

	winners := 0
	for i := 0; i < racers; i++ {
		require.NoError(t, errs[i])
		if results[i].Claimed {
			winners++
			continue
		}
		require.NotNil(t, results[i].Existing)
		assert.Equal(t, domain.StatusPending, results[i].Existing.Status)
	}
	assert.Equal(t, 1, winners)

	var count int64
	require.NoError(t, db.Model(&domain.ProcessedAutomationEvent{}).Where("comment_id = ?", "comment-race").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestTryClaim_DistinctAutomationsAreIndependent(t *testing.T) {
	svc, _, _, node := newLedger(t)
	ctx := context.Background()
	accountID := node.Generate()

	first, err := svc.TryClaim(ctx, "comment-1", node.Generate(), accountID)
	require.NoError(t, err)
	second, err := svc.TryClaim(ctx, "comment-1", node.Generate(), accountID)
	require.NoError(t, err)

	assert.True(t, first.Claimed)
	assert.True(t, second.Claimed)
}

func TestRecord_FinalizesOnce(t *testing.T) {
	svc, db, fakeClk, node := newLedger(t)
	ctx := context.Background()
	automationID := node.Generate()
	accountID := node.Generate()

	_, err := svc.TryClaim(ctx, "comment-1", automationID, accountID)
	require.NoError(t, err)

	actions := []domain.ActionRecord{{Kind: "public_reply", Outcome: domain.OutcomeOK}}
	require.NoError(t, svc.Record(ctx, "comment-1", automationID, domain.StatusSuccess, actions, ""))

	var row domain.ProcessedAutomationEvent
	require.NoError(t, db.Where("comment_id = ?", "comment-1").First(&row).Error)
	assert.Equal(t, domain.StatusSuccess, row.Status)
	require.NotNil(t, row.FinalizedAt)
	assert.True(t, row.FinalizedAt.Equal(fakeClk.Now()))
	assert.Nil(t, row.ErrorMessage)

	err = svc.Record(ctx, "comment-1", automationID, domain.StatusFailed, nil, "late write")
	assert.ErrorIs(t, err, domain.ErrAlreadyFinalized)

	// The terminal row is immutable.
	require.NoError(t, db.Where("comment_id = ?", "comment-1").First(&row).Error)
	assert.Equal(t, domain.StatusSuccess, row.Status)
}

func TestRecord_RejectsPendingAsTerminalStatus(t *testing.T) {
	svc, _, _, node := newLedger(t)
	ctx := context.Background()

	err := svc.Record(ctx, "comment-1", node.Generate(), domain.StatusPending, nil, "")
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestRecord_StoresErrorMessage(t *testing.T) {
	svc, db, _, node := newLedger(t)
	ctx := context.Background()
	automationID := node.Generate()

	_, err := svc.TryClaim(ctx, "comment-err", automationID, node.Generate())
	require.NoError(t, err)
	require.NoError(t, svc.Record(ctx, "comment-err", automationID, domain.StatusFailed, nil, "public_reply: send failed"))

	var row domain.ProcessedAutomationEvent
	require.NoError(t, db.Where("comment_id = ?", "comment-err").First(&row).Error)
	require.NotNil(t, row.ErrorMessage)
	assert.Equal(t, "public_reply: send failed", *row.ErrorMessage)
}

func TestList_PaginatesNewestFirst(t *testing.T) {
	svc, _, fakeClk, node := newLedger(t)
	ctx := context.Background()
	accountID := node.Generate()

	for i := 0; i < 5; i++ {
		commentID := fmt.Sprintf("comment-%d", i)
		automationID := node.Generate()
		_, err := svc.TryClaim(ctx, commentID, automationID, accountID)
		require.NoError(t, err)
		require.NoError(t, svc.Record(ctx, commentID, automationID, domain.StatusSuccess, nil, ""))
		fakeClk.Advance(time.Minute)
	}

	page1, err := svc.List(ctx, domain.ListActivityRequest{
		AccountID:  accountID,
		Pagination: pagination.Pagination{PageSize: 2},
	})
	require.NoError(t, err)
	require.Len(t, page1.Events, 2)
	assert.True(t, page1.HasMore)
	assert.Equal(t, "comment-4", page1.Events[0].CommentID)
	assert.Equal(t, "comment-3", page1.Events[1].CommentID)

	page2, err := svc.List(ctx, domain.ListActivityRequest{
		AccountID:  accountID,
		Pagination: pagination.Pagination{PageSize: 2, PageToken: page1.NextPageToken},
	})
	require.NoError(t, err)
	require.Len(t, page2.Events, 2)
	assert.Equal(t, "comment-2", page2.Events[0].CommentID)
	assert.Equal(t, "comment-1", page2.Events[1].CommentID)
}

func TestList_FiltersByStatus(t *testing.T) {
	svc, _, _, node := newLedger(t)
	ctx := context.Background()
	accountID := node.Generate()

	okID := node.Generate()
	_, err := svc.TryClaim(ctx, "comment-ok", okID, accountID)
	require.NoError(t, err)
	require.NoError(t, svc.Record(ctx, "comment-ok", okID, domain.StatusSuccess, nil, ""))

	failedID := node.Generate()
	_, err = svc.TryClaim(ctx, "comment-bad", failedID, accountID)
	require.NoError(t, err)
	require.NoError(t, svc.Record(ctx, "comment-bad", failedID, domain.StatusFailed, nil, "boom"))

	resp, err := svc.List(ctx, domain.ListActivityRequest{
		AccountID: accountID,
		Status:    domain.StatusFailed,
	})
	require.NoError(t, err)
	require.Len(t, resp.Events, 1)
	assert.Equal(t, "comment-bad", resp.Events[0].CommentID)
}

func TestList_RejectsGarbageToken(t *testing.T) {
	svc, _, _, node := newLedger(t)

	_, err := svc.List(context.Background(), domain.ListActivityRequest{
		AccountID:  node.Generate(),
		Pagination: pagination.Pagination{PageToken: "not-a-token"},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidPageToken)
}
