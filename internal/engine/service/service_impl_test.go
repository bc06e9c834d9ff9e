package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	accountdomain "github.com/commentloop/commentloop/internal/account/domain"
	accountrepo "github.com/commentloop/commentloop/internal/account/repository"
	auditdomain "github.com/commentloop/commentloop/internal/audit/domain"
	automationdomain "github.com/commentloop/commentloop/internal/automation/domain"
	automationrepo "github.com/commentloop/commentloop/internal/automation/repository"
	automationservice "github.com/commentloop/commentloop/internal/automation/service"
	"github.com/commentloop/commentloop/internal/channel"
	"github.com/commentloop/commentloop/internal/clock"
	"github.com/commentloop/commentloop/internal/config"
	"github.com/commentloop/commentloop/internal/dispatch"
	discountdomain "github.com/commentloop/commentloop/internal/discount/domain"
	discountrepo "github.com/commentloop/commentloop/internal/discount/repository"
	discountservice "github.com/commentloop/commentloop/internal/discount/service"
	"github.com/commentloop/commentloop/internal/engine/domain"
	"github.com/commentloop/commentloop/internal/intent"
	"github.com/commentloop/commentloop/internal/kv"
	ledgerdomain "github.com/commentloop/commentloop/internal/ledger/domain"
	ledgerrepo "github.com/commentloop/commentloop/internal/ledger/repository"
	ledgerservice "github.com/commentloop/commentloop/internal/ledger/service"
	"github.com/commentloop/commentloop/internal/observability/metrics"
	"github.com/commentloop/commentloop/internal/ratelimit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeChannel struct {
	mu       sync.Mutex
	replies  []string
	dms      []string
	replyErr error
	dmErr    error
}

func (f *fakeChannel) PostPublicReply(_ context.Context, _, commentID, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.replyErr != nil {
		return f.replyErr
	}
	f.replies = append(f.replies, text)
	return nil
}

func (f *fakeChannel) SendDirectMessage(_ context.Context, _, _, text string, _ []channel.Button) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.dmErr != nil {
		return f.dmErr
	}
	f.dms = append(f.dms, text)
	return nil
}

func (f *fakeChannel) replyCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.replies)
}

func (f *fakeChannel) dmCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.dms)
}

type fakeClassifier struct {
	mu     sync.Mutex
	result intent.Classification
	err    error
	calls  int
}

func (f *fakeClassifier) Classify(context.Context, string) (intent.Classification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.result, f.err
}

func (f *fakeClassifier) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeAudit struct{}

func (fakeAudit) Log(context.Context, auditdomain.Entry) {}

type engineFixture struct {
	svc         domain.Service
	db          *gorm.DB
	node        *snowflake.Node
	channel     *fakeChannel
	classifier  *fakeClassifier
	queue       *dispatch.MemoryQueue
	clock       *clock.FakeClock
	automations automationdomain.Service
	discounts   discountdomain.Service
	ledger      ledgerdomain.Ledger
	user        accountdomain.User
	account     accountdomain.SocialAccount
	cfg         config.Config
}

func newEngineFixture(t *testing.T, cfg config.Config) *engineFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&accountdomain.User{},
		&accountdomain.SocialAccount{},
		&automationdomain.Automation{},
		&ledgerdomain.ProcessedAutomationEvent{},
		&discountdomain.DiscountPool{},
		&discountdomain.DiscountCode{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	log := zap.NewNop()
	fakeClk := clock.NewFakeClock(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	store := kv.NewMemoryStore()
	store.SetNowFunc(fakeClk.Now)

	accounts := accountrepo.Provide()

	automationSvc := automationservice.New(automationservice.Params{
		DB: db, Log: log, GenID: node, Clock: fakeClk, Repo: automationrepo.Provide(),
	})
	ledgerSvc := ledgerservice.New(ledgerservice.Params{
		DB: db, Log: log, GenID: node, Clock: fakeClk, Repo: ledgerrepo.Provide(),
	})
	discountSvc := discountservice.New(discountservice.Params{
		DB: db, Log: log, GenID: node, Clock: fakeClk, Store: store, Repo: discountrepo.Provide(),
	})
	limiter := ratelimit.NewLimiter(store, fakeClk, log, cfg)

	ch := &fakeChannel{}
	classifier := &fakeClassifier{result: intent.Classification{Intent: "purchase_inquiry", Confidence: 0.95}}
	queue := dispatch.NewMemoryQueue()

	svc := New(Params{
		DB:          db,
		Log:         log,
		Clock:       fakeClk,
		Config:      cfg,
		Metrics:     metrics.New(),
		AccountRepo: accounts,
		Automations: automationSvc,
		Ledger:      ledgerSvc,
		Discounts:   discountSvc,
		Limiter:     limiter,
		Channel:     ch,
		Queue:       queue,
		Classifier:  classifier,
		Audit:       fakeAudit{},
	})

	now := fakeClk.Now()
	user := accountdomain.User{ID: node.Generate(), Email: "owner@example.com", Tier: accountdomain.TierPro, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, accounts.InsertUser(context.Background(), db, &user))
	account := accountdomain.SocialAccount{
		ID: node.Generate(), UserID: user.ID,
		Platform: "instagram", Username: "shop", ExternalID: "ig-1", AccessToken: "token",
		CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, accounts.InsertAccount(context.Background(), db, &account))

	return &engineFixture{
		svc: svc, db: db, node: node,
		channel: ch, classifier: classifier, queue: queue, clock: fakeClk,
		automations: automationSvc, discounts: discountSvc, ledger: ledgerSvc,
		user: user, account: account, cfg: cfg,
	}
}

func defaultConfig() config.Config {
	return config.Config{
		RateLimit: config.RateLimitConfig{DMDailyMax: 50, ReplyHourlyMax: 30},
		Engine:    config.EngineConfig{IntentConfidenceFloor: 0.8, DispatchBatchSize: 25},
	}
}

func (f *engineFixture) comment(commentID, text string) domain.NormalizedComment {
	return domain.NormalizedComment{
		AccountID:         f.account.ID,
		PostID:            "post-1",
		CommentID:         commentID,
		Text:              text,
		CommenterID:       "commenter-1",
		CommenterUsername: "jane",
	}
}

func (f *engineFixture) createAutomation(t *testing.T, req automationdomain.CreateAutomationRequest) automationdomain.Automation {
	t.Helper()
	req.UserID = f.user.ID
	req.AccountID = f.account.ID
	automation, err := f.automations.Create(context.Background(), req)
	require.NoError(t, err)
	return automation
}

func TestProcessComment_KeywordMatchExecutesActions(t *testing.T) {
	f := newEngineFixture(t, defaultConfig())

	f.createAutomation(t, automationdomain.CreateAutomationRequest{
		Name:         "price responder",
		TriggerType:  automationdomain.TriggerKeyword,
		TriggerValue: "price",
		ReplyEnabled: true,
		ReplyText:    "Check your DMs!",
		DMEnabled:    true,
		DMText:       "Here are the details.",
	})

	events, err := f.svc.ProcessComment(context.Background(), f.comment("c-1", "What is the PRICE?"), f.user.ID, f.account.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, ledgerdomain.StatusSuccess, events[0].Status)
	assert.Len(t, events[0].ActionsExecuted, 2)
	assert.Equal(t, 1, f.channel.replyCount())
	assert.Equal(t, 1, f.channel.dmCount())

	var row ledgerdomain.ProcessedAutomationEvent
	require.NoError(t, f.db.Where("comment_id = ?", "c-1").First(&row).Error)
	assert.Equal(t, ledgerdomain.StatusSuccess, row.Status)
	assert.NotNil(t, row.FinalizedAt)
}

func TestProcessComment_DuplicateDeliveryExecutesOnce(t *testing.T) {
	f := newEngineFixture(t, defaultConfig())

	f.createAutomation(t, automationdomain.CreateAutomationRequest{
		Name:         "greeting",
		TriggerType:  automationdomain.TriggerKeyword,
		TriggerValue: "hello",
		ReplyEnabled: true,
		ReplyText:    "hi there",
	})

	first, err := f.svc.ProcessComment(context.Background(), f.comment("c-dup", "hello!"), f.user.ID, f.account.ID)
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := f.svc.ProcessComment(context.Background(), f.comment("c-dup", "hello!"), f.user.ID, f.account.ID)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, ledgerdomain.StatusSuccess, second[0].Status)

	assert.Equal(t, 1, f.channel.replyCount())

	var count int64
	require.NoError(t, f.db.Model(&ledgerdomain.ProcessedAutomationEvent{}).Where("comment_id = ?", "c-dup").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestProcessComment_ConcurrentDuplicateDeliveryExecutesOnce(t *testing.T) {
	f := newEngineFixture(t, defaultConfig())

	// One connection keeps sqlite happy under write contention; the
	// claim race itself happens at the goroutine level.
	sqlDB, err := f.db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	f.createAutomation(t, automationdomain.CreateAutomationRequest{
		Name:         "greeting",
		TriggerType:  automationdomain.TriggerKeyword,
		TriggerValue: "hello",
		ReplyEnabled: true,
		ReplyText:    "hi there",
	})

	const racers = 8
	errs := make([]error, racers)
	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.ProcessComment(context.Background(), f.comment("c-race", "hello!"), f.user.ID, f.account.ID)
		}(i)
	}
	wg.Wait()

	for i := 0; i < racers; i++ {
		require.NoError(t, errs[i])
	}
	assert.Equal(t, 1, f.channel.replyCount())

	var count int64
	require.NoError(t, f.db.Model(&ledgerdomain.ProcessedAutomationEvent{}).Where("comment_id = ?", "c-race").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestProcessComment_StopAfterExecutionHaltsPipeline(t *testing.T) {
	f := newEngineFixture(t, defaultConfig())

	f.createAutomation(t, automationdomain.CreateAutomationRequest{
		Name:               "winner",
		TriggerType:        automationdomain.TriggerKeyword,
		TriggerValue:       "deal",
		ReplyEnabled:       true,
		ReplyText:          "first",
		Priority:           1,
		StopAfterExecution: true,
	})
	f.createAutomation(t, automationdomain.CreateAutomationRequest{
		Name:         "runner up",
		TriggerType:  automationdomain.TriggerKeyword,
		TriggerValue: "deal",
		ReplyEnabled: true,
		ReplyText:    "second",
		Priority:     2,
	})

	events, err := f.svc.ProcessComment(context.Background(), f.comment("c-stop", "any deal today?"), f.user.ID, f.account.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, 1, f.channel.replyCount())
	assert.Equal(t, "first", f.channel.replies[0])
}

func TestProcessComment_StopAfterHonoredOnReplay(t *testing.T) {
	f := newEngineFixture(t, defaultConfig())

	f.createAutomation(t, automationdomain.CreateAutomationRequest{
		Name:               "winner",
		TriggerType:        automationdomain.TriggerKeyword,
		TriggerValue:       "deal",
		ReplyEnabled:       true,
		ReplyText:          "first",
		Priority:           1,
		StopAfterExecution: true,
	})

	_, err := f.svc.ProcessComment(context.Background(), f.comment("c-replay", "deal?"), f.user.ID, f.account.ID)
	require.NoError(t, err)

	// A lower-priority rule added between delivery and redelivery must
	// stay suppressed by the recorded stop-after execution.
	f.createAutomation(t, automationdomain.CreateAutomationRequest{
		Name:         "late arrival",
		TriggerType:  automationdomain.TriggerKeyword,
		TriggerValue: "deal",
		ReplyEnabled: true,
		ReplyText:    "second",
		Priority:     2,
	})

	events, err := f.svc.ProcessComment(context.Background(), f.comment("c-replay", "deal?"), f.user.ID, f.account.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, 1, f.channel.replyCount())
}

func TestProcessComment_OwnerCommentIgnored(t *testing.T) {
	f := newEngineFixture(t, defaultConfig())

	comment := f.comment("c-owner", "thanks all")
	comment.IsFromOwner = true

	_, err := f.svc.ProcessComment(context.Background(), comment, f.user.ID, f.account.ID)
	assert.ErrorIs(t, err, domain.ErrOwnerComment)
}

func TestProcessComment_RateLimitedDMYieldsPartial(t *testing.T) {
	cfg := defaultConfig()
	cfg.RateLimit.DMDailyMax = 0
	f := newEngineFixture(t, cfg)

	f.createAutomation(t, automationdomain.CreateAutomationRequest{
		Name:         "combo",
		TriggerType:  automationdomain.TriggerKeyword,
		TriggerValue: "promo",
		ReplyEnabled: true,
		ReplyText:    "replied",
		DMEnabled:    true,
		DMText:       "dm text",
	})

	events, err := f.svc.ProcessComment(context.Background(), f.comment("c-rl", "promo please"), f.user.ID, f.account.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, ledgerdomain.StatusPartial, events[0].Status)
	assert.Equal(t, 1, f.channel.replyCount())
	assert.Equal(t, 0, f.channel.dmCount())

	var outcomes []string
	for _, record := range events[0].ActionsExecuted {
		outcomes = append(outcomes, record.Outcome)
	}
	assert.ElementsMatch(t, []string{ledgerdomain.OutcomeOK, ledgerdomain.OutcomeSkipped}, outcomes)
}

func TestProcessComment_SendFailureYieldsFailed(t *testing.T) {
	f := newEngineFixture(t, defaultConfig())
	f.channel.replyErr = channel.ErrSendFailed

	f.createAutomation(t, automationdomain.CreateAutomationRequest{
		Name:         "reply only",
		TriggerType:  automationdomain.TriggerKeyword,
		TriggerValue: "fail",
		ReplyEnabled: true,
		ReplyText:    "will not send",
	})

	events, err := f.svc.ProcessComment(context.Background(), f.comment("c-fail", "fail case"), f.user.ID, f.account.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, ledgerdomain.StatusFailed, events[0].Status)
	require.NotNil(t, events[0].ErrorMessage)
}

func TestProcessComment_IntentTriggerUsesSingleClassification(t *testing.T) {
	f := newEngineFixture(t, defaultConfig())

	f.createAutomation(t, automationdomain.CreateAutomationRequest{
		Name:         "intent a",
		TriggerType:  automationdomain.TriggerIntent,
		TriggerValue: "purchase_inquiry",
		ReplyEnabled: true,
		ReplyText:    "a",
		Priority:     1,
	})
	f.createAutomation(t, automationdomain.CreateAutomationRequest{
		Name:         "intent b",
		TriggerType:  automationdomain.TriggerIntent,
		TriggerValue: "discount_request",
		ReplyEnabled: true,
		ReplyText:    "b",
		Priority:     2,
	})

	events, err := f.svc.ProcessComment(context.Background(), f.comment("c-intent", "how much is this"), f.user.ID, f.account.ID)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, ledgerdomain.StatusSuccess, events[0].Status)
	assert.Equal(t, ledgerdomain.StatusSkipped, events[1].Status)
	assert.Equal(t, 1, f.classifier.callCount())
	assert.Equal(t, "a", f.channel.replies[0])
}

func TestProcessComment_LowConfidenceIntentDoesNotMatch(t *testing.T) {
	f := newEngineFixture(t, defaultConfig())
	f.classifier.result = intent.Classification{Intent: "purchase_inquiry", Confidence: 0.4}

	f.createAutomation(t, automationdomain.CreateAutomationRequest{
		Name:         "intent",
		TriggerType:  automationdomain.TriggerIntent,
		TriggerValue: "purchase_inquiry",
		ReplyEnabled: true,
		ReplyText:    "a",
	})

	events, err := f.svc.ProcessComment(context.Background(), f.comment("c-low", "how much"), f.user.ID, f.account.ID)
	require.NoError(t, err)

	// The pair was evaluated, so the caller sees a skipped result, but
	// nothing executed and no ledger row pins the non-match.
	require.Len(t, events, 1)
	assert.Equal(t, ledgerdomain.StatusSkipped, events[0].Status)
	assert.Empty(t, events[0].ActionsExecuted)
	assert.Equal(t, 0, f.channel.replyCount())

	var count int64
	require.NoError(t, f.db.Model(&ledgerdomain.ProcessedAutomationEvent{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestProcessComment_ClassifierOutageAbortsBeforeClaim(t *testing.T) {
	f := newEngineFixture(t, defaultConfig())
	f.classifier.err = errors.New("classifier down")

	f.createAutomation(t, automationdomain.CreateAutomationRequest{
		Name:         "intent",
		TriggerType:  automationdomain.TriggerIntent,
		TriggerValue: "purchase_inquiry",
		ReplyEnabled: true,
		ReplyText:    "a",
	})

	_, err := f.svc.ProcessComment(context.Background(), f.comment("c-down", "how much"), f.user.ID, f.account.ID)
	assert.ErrorIs(t, err, domain.ErrDependencyUnavailable)

	var count int64
	require.NoError(t, f.db.Model(&ledgerdomain.ProcessedAutomationEvent{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestProcessComment_TierGateSkipsRule(t *testing.T) {
	f := newEngineFixture(t, defaultConfig())
	require.NoError(t, f.db.Model(&accountdomain.User{}).Where("id = ?", f.user.ID).Update("tier", accountdomain.TierFree).Error)

	f.createAutomation(t, automationdomain.CreateAutomationRequest{
		Name:         "pro only",
		TriggerType:  automationdomain.TriggerKeyword,
		TriggerValue: "vip",
		ReplyEnabled: true,
		ReplyText:    "vip reply",
		RequiredTier: accountdomain.TierPro,
	})

	events, err := f.svc.ProcessComment(context.Background(), f.comment("c-tier", "vip access?"), f.user.ID, f.account.ID)
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.Equal(t, 0, f.channel.replyCount())
}

func TestProcessComment_DeferredDMEnqueued(t *testing.T) {
	f := newEngineFixture(t, defaultConfig())

	f.createAutomation(t, automationdomain.CreateAutomationRequest{
		Name:           "delayed dm",
		TriggerType:    automationdomain.TriggerKeyword,
		TriggerValue:   "later",
		DMEnabled:      true,
		DMText:         "delayed hello",
		DMDelaySeconds: 120,
	})

	events, err := f.svc.ProcessComment(context.Background(), f.comment("c-defer", "see you later"), f.user.ID, f.account.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, ledgerdomain.StatusSuccess, events[0].Status)
	assert.Equal(t, "deferred", events[0].ActionsExecuted[0].Detail)
	assert.Equal(t, 0, f.channel.dmCount())
	assert.Equal(t, 1, f.queue.Len())

	due, err := f.queue.PopDue(context.Background(), f.clock.Now().Add(3*time.Minute), 10)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "delayed hello", due[0].Text)
}

func TestProcessComment_DiscountFallbackOnExhaustedPool(t *testing.T) {
	f := newEngineFixture(t, defaultConfig())

	pool, err := f.discounts.CreatePool(context.Background(), discountdomain.CreatePoolRequest{
		UserID: f.user.ID,
		Name:   "launch",
		Type:   discountdomain.PoolOneTime,
		Codes:  []string{"ONLY1"},
	})
	require.NoError(t, err)

	// Drain the single code before the comment arrives.
	_, err = f.discounts.Allocate(context.Background(), pool.ID, "someone-else")
	require.NoError(t, err)

	f.createAutomation(t, automationdomain.CreateAutomationRequest{
		Name:                 "discount dm",
		TriggerType:          automationdomain.TriggerKeyword,
		TriggerValue:         "discount",
		DiscountEnabled:      true,
		DiscountPoolID:       &pool.ID,
		DiscountMessageText:  "Your code: {code}",
		DiscountFallbackText: "Sorry, codes are gone!",
	})

	events, err := f.svc.ProcessComment(context.Background(), f.comment("c-pool", "discount please"), f.user.ID, f.account.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, ledgerdomain.StatusSuccess, events[0].Status)
	assert.Equal(t, "fallback", events[0].ActionsExecuted[0].Detail)
	require.Equal(t, 1, f.channel.dmCount())
	assert.Equal(t, "Sorry, codes are gone!", f.channel.dms[0])
}

func TestProcessComment_DiscountCodeTemplated(t *testing.T) {
	f := newEngineFixture(t, defaultConfig())

	pool, err := f.discounts.CreatePool(context.Background(), discountdomain.CreatePoolRequest{
		UserID: f.user.ID,
		Name:   "static",
		Type:   discountdomain.PoolStatic,
		Codes:  []string{"SAVE10"},
	})
	require.NoError(t, err)

	f.createAutomation(t, automationdomain.CreateAutomationRequest{
		Name:                "discount dm",
		TriggerType:         automationdomain.TriggerKeyword,
		TriggerValue:        "discount",
		DiscountEnabled:     true,
		DiscountPoolID:      &pool.ID,
		DiscountMessageText: "Use {code} at checkout",
	})

	events, err := f.svc.ProcessComment(context.Background(), f.comment("c-code", "any discount?"), f.user.ID, f.account.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, ledgerdomain.StatusSuccess, events[0].Status)
	require.Equal(t, 1, f.channel.dmCount())
	assert.Equal(t, "Use SAVE10 at checkout", f.channel.dms[0])
}

func TestProcessComment_PostScopedRuleIgnoresOtherPosts(t *testing.T) {
	f := newEngineFixture(t, defaultConfig())

	f.createAutomation(t, automationdomain.CreateAutomationRequest{
		Name:         "post rule",
		Scope:        automationdomain.ScopePost,
		PostID:       "post-99",
		TriggerType:  automationdomain.TriggerKeyword,
		TriggerValue: "hello",
		ReplyEnabled: true,
		ReplyText:    "scoped",
	})

	events, err := f.svc.ProcessComment(context.Background(), f.comment("c-scope", "hello"), f.user.ID, f.account.ID)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestProcessComment_AccountMismatchRejected(t *testing.T) {
	f := newEngineFixture(t, defaultConfig())

	comment := f.comment("c-mismatch", "hi")
	otherAccount := f.node.Generate()

	_, err := f.svc.ProcessComment(context.Background(), comment, f.user.ID, otherAccount)
	assert.ErrorIs(t, err, domain.ErrAccountMismatch)
}
