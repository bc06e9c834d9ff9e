package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/commentloop/commentloop/internal/clock"
	"github.com/commentloop/commentloop/internal/config"
	"github.com/commentloop/commentloop/internal/kv"
	"go.uber.org/zap"
)

// LimitType names a counting window. Each type has a fixed window
// length and a per-user ceiling.
type LimitType string

const (
	LimitDMDaily     LimitType = "dm_daily"
	LimitReplyHourly LimitType = "reply_hourly"
)

const keyCounter = "rl:%s:%s:%d"

// Result reports one check-and-increment outcome. A denial is not an
// error; the caller marks the action skipped.
type Result struct {
	Allowed   bool
	Remaining int
}

var ErrUnknownLimitType = errors.New("unknown_limit_type")

// Limiter counts actions per user in fixed windows. The counter key
// embeds the window start, the increment carries a TTL equal to the
// remaining window, and the check happens after the increment: the
// count can overshoot the ceiling by at most the number of concurrent
// racers minus one, which keeps the whole operation a single atomic
// round trip.
type Limiter struct {
	store kv.Store
	clock clock.Clock
	log   *zap.Logger
	cfg   config.RateLimitConfig
}

func NewLimiter(store kv.Store, clk clock.Clock, log *zap.Logger, cfg config.Config) *Limiter {
	return &Limiter{
		store: store,
		clock: clk,
		log:   log.Named("ratelimit"),
		cfg:   cfg.RateLimit,
	}
}

func (l *Limiter) CheckAndIncrement(ctx context.Context, userID snowflake.ID, limitType LimitType) (Result, error) {
	max, window, err := l.limitFor(limitType)
	if err != nil {
		return Result{}, err
	}

	now := l.clock.Now()
	windowStart := now.Truncate(window)
	ttl := windowStart.Add(window).Sub(now)

	key := fmt.Sprintf(keyCounter, limitType, userID.String(), windowStart.Unix())
	count, err := l.store.IncrWithTTL(ctx, key, ttl)
	if err != nil {
		return Result{}, err
	}

	if count > int64(max) {
		l.log.Debug("rate limit denied",
			zap.String("limit_type", string(limitType)),
			zap.String("user_id", userID.String()),
			zap.Int64("count", count),
			zap.Int("max", max),
		)
		return Result{Allowed: false, Remaining: 0}, nil
	}
	return Result{Allowed: true, Remaining: max - int(count)}, nil
}

func (l *Limiter) limitFor(limitType LimitType) (int, time.Duration, error) {
	switch limitType {
	case LimitDMDaily:
		return l.cfg.DMDailyMax, 24 * time.Hour, nil
	case LimitReplyHourly:
		return l.cfg.ReplyHourlyMax, time.Hour, nil
	default:
		return 0, 0, ErrUnknownLimitType
	}
}
