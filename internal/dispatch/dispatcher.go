package dispatch

import (
	"context"
	"time"

	accountdomain "github.com/commentloop/commentloop/internal/account/domain"
	"github.com/commentloop/commentloop/internal/channel"
	"github.com/commentloop/commentloop/internal/clock"
	"github.com/commentloop/commentloop/internal/config"
	"github.com/commentloop/commentloop/internal/kv"
	"github.com/commentloop/commentloop/internal/observability/metrics"
	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const leaderKey = "dispatch:leader"

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Clock   clock.Clock
	Queue   Queue
	Channel channel.Client
	Repo    accountdomain.Repository
	Store   kv.Store
	Metrics *metrics.Metrics
	Config  config.Config
}

// Dispatcher drains the deferred queue and delivers direct messages.
// Delivery failures are logged and counted; they never rewrite the
// ledger row that recorded the enqueue.
type Dispatcher struct {
	db       *gorm.DB
	log      *zap.Logger
	clock    clock.Clock
	queue    Queue
	channel  channel.Client
	accounts accountdomain.Repository
	store    kv.Store
	metrics  *metrics.Metrics

	instanceID string
	interval   time.Duration
	batchSize  int
}

func New(p Params) *Dispatcher {
	interval := p.Config.Engine.DispatchInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	batchSize := p.Config.Engine.DispatchBatchSize
	if batchSize <= 0 {
		batchSize = 25
	}
	return &Dispatcher{
		db:         p.DB,
		log:        p.Log.Named("dispatch"),
		clock:      p.Clock,
		queue:      p.Queue,
		channel:    p.Channel,
		accounts:   p.Repo,
		store:      p.Store,
		metrics:    p.Metrics,
		instanceID: uuid.NewString(),
		interval:   interval,
		batchSize:  batchSize,
	}
}

// RunOnce drains one batch of due messages.
func (d *Dispatcher) RunOnce(ctx context.Context) error {
	due, err := d.queue.PopDue(ctx, d.clock.Now(), d.batchSize)
	if err != nil {
		return err
	}

	for _, msg := range due {
		d.deliver(ctx, msg)
	}
	return nil
}

func (d *Dispatcher) RunForever(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !d.acquireLeadership(ctx) {
				continue
			}
			if err := d.RunOnce(ctx); err != nil {
				d.log.Warn("deferred dispatch pass failed", zap.Error(err))
			}
		}
	}
}

// acquireLeadership takes a short-lived lock so only one instance
// drains the queue per tick. The lock carries the instance id: a
// holder keeps draining until the key expires, at which point any
// instance may take over.
func (d *Dispatcher) acquireLeadership(ctx context.Context) bool {
	ok, err := d.store.SetNX(ctx, leaderKey, d.instanceID, 2*d.interval)
	if err != nil {
		d.log.Warn("dispatch leader lock unavailable", zap.Error(err))
		return false
	}
	if ok {
		return true
	}
	owner, err := d.store.Get(ctx, leaderKey)
	if err != nil {
		return false
	}
	return owner == d.instanceID
}

func (d *Dispatcher) deliver(ctx context.Context, msg Message) {
	log := d.log.With(
		zap.String("message_id", msg.ID),
		zap.String("comment_id", msg.CommentID),
		zap.String("commenter_id", msg.CommenterID),
	)

	account, err := d.accounts.FindAccountByID(ctx, d.db, msg.AccountID)
	if err != nil || account == nil {
		log.Error("deferred dm dropped: account lookup failed", zap.Error(err))
		d.metrics.IncDeferredDelivered("failed")
		return
	}

	if err := d.channel.SendDirectMessage(ctx, account.AccessToken, msg.CommenterID, msg.Text, msg.Buttons); err != nil {
		log.Error("deferred dm delivery failed", zap.Error(err))
		d.metrics.IncDeferredDelivered("failed")
		return
	}
	d.metrics.IncDeferredDelivered("ok")
}
