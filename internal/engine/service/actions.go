package service

import (
	"context"
	"errors"
	"strings"
	"time"

	auditdomain "github.com/commentloop/commentloop/internal/audit/domain"
	automationdomain "github.com/commentloop/commentloop/internal/automation/domain"
	"github.com/commentloop/commentloop/internal/channel"
	"github.com/commentloop/commentloop/internal/clock"
	"github.com/commentloop/commentloop/internal/dispatch"
	discountdomain "github.com/commentloop/commentloop/internal/discount/domain"
	"github.com/commentloop/commentloop/internal/engine/domain"
	ledgerdomain "github.com/commentloop/commentloop/internal/ledger/domain"
	"github.com/commentloop/commentloop/internal/ratelimit"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	ActionReply    = "public_reply"
	ActionDM       = "direct_message"
	ActionDiscount = "discount_code"
)

const defaultDiscountTemplate = "Here is your discount code: {code}"

// action is one executable unit of an automation. Actions never abort
// the pipeline: every failure or denial is folded into the returned
// record and the remaining actions still run.
type action interface {
	kind() string
	enabled(a automationdomain.Automation) bool
	execute(ctx context.Context, actx *domain.AutomationContext) ledgerdomain.ActionRecord
}

type replyAction struct {
	client  channel.Client
	limiter *ratelimit.Limiter
	log     *zap.Logger
	onDeny  func(limitType string)
}

func (replyAction) kind() string { return ActionReply }

func (replyAction) enabled(a automationdomain.Automation) bool {
	return a.ReplyEnabled && strings.TrimSpace(a.ReplyText) != ""
}

func (r replyAction) execute(ctx context.Context, actx *domain.AutomationContext) ledgerdomain.ActionRecord {
	record := ledgerdomain.ActionRecord{Kind: ActionReply}

	result, err := r.limiter.CheckAndIncrement(ctx, actx.User.ID, ratelimit.LimitReplyHourly)
	if err != nil {
		record.Outcome = ledgerdomain.OutcomeFailed
		record.Detail = "rate limiter unavailable"
		return record
	}
	if !result.Allowed {
		r.onDeny(string(ratelimit.LimitReplyHourly))
		record.Outcome = ledgerdomain.OutcomeSkipped
		record.Detail = "reply_hourly limit reached"
		return record
	}

	err = r.client.PostPublicReply(ctx, actx.Account.AccessToken, actx.Comment.CommentID, actx.Automation.ReplyText)
	if err != nil {
		r.log.Warn("public reply failed",
			zap.String("comment_id", actx.Comment.CommentID),
			zap.String("automation_id", actx.Automation.ID.String()),
			zap.Error(err),
		)
		record.Outcome = ledgerdomain.OutcomeFailed
		record.Detail = "send failed"
		return record
	}

	record.Outcome = ledgerdomain.OutcomeOK
	return record
}

type dmAction struct {
	sender *dmSender
}

func (dmAction) kind() string { return ActionDM }

func (dmAction) enabled(a automationdomain.Automation) bool {
	return a.DMEnabled && strings.TrimSpace(a.DMText) != ""
}

func (d dmAction) execute(ctx context.Context, actx *domain.AutomationContext) ledgerdomain.ActionRecord {
	record := ledgerdomain.ActionRecord{Kind: ActionDM}
	d.sender.send(ctx, actx, actx.Automation.DMText, actx.Automation.DMButtons, actx.Automation.DMDelaySeconds, &record)
	return record
}

type discountAction struct {
	discounts discountdomain.Service
	sender    *dmSender
	audit     auditdomain.Service
	log       *zap.Logger
	onExhaust func(poolType string)
}

func (discountAction) kind() string { return ActionDiscount }

func (discountAction) enabled(a automationdomain.Automation) bool {
	return a.DiscountEnabled && a.DiscountPoolID != nil
}

func (d discountAction) execute(ctx context.Context, actx *domain.AutomationContext) ledgerdomain.ActionRecord {
	record := ledgerdomain.ActionRecord{Kind: ActionDiscount}

	alloc, err := d.discounts.Allocate(ctx, *actx.Automation.DiscountPoolID, actx.Comment.CommenterID)
	switch {
	case err == nil:
		template := actx.Automation.DiscountMessageText
		if strings.TrimSpace(template) == "" {
			template = defaultDiscountTemplate
		}
		text := strings.ReplaceAll(template, "{code}", alloc.Code)
		d.sender.send(ctx, actx, text, nil, 0, &record)
		return record

	case errors.Is(err, discountdomain.ErrPoolExhausted):
		d.onExhaust(string(alloc.PoolType))
		d.audit.Log(ctx, auditdomain.Entry{
			UserID:    &actx.User.ID,
			AccountID: &actx.Account.ID,
			Action:    "discount.pool_exhausted",
			Severity:  auditdomain.SeverityCritical,
			TargetID:  actx.Automation.DiscountPoolID.String(),
			Metadata:  map[string]any{"pool_type": string(alloc.PoolType)},
		})
		fallback := strings.TrimSpace(actx.Automation.DiscountFallbackText)
		if fallback == "" {
			record.Outcome = ledgerdomain.OutcomeSkipped
			record.Detail = "pool exhausted"
			return record
		}
		d.sender.send(ctx, actx, fallback, nil, 0, &record)
		if record.Outcome == ledgerdomain.OutcomeOK {
			record.Detail = "fallback"
		}
		return record

	default:
		d.log.Warn("discount allocation failed",
			zap.String("pool_id", actx.Automation.DiscountPoolID.String()),
			zap.String("commenter_id", actx.Comment.CommenterID),
			zap.Error(err),
		)
		record.Outcome = ledgerdomain.OutcomeFailed
		record.Detail = "allocation failed"
		return record
	}
}

// dmSender is the shared outbound path for the dm and discount actions.
// Every direct message, immediate or deferred, counts against the daily
// ceiling at decision time: a deferred message consumes its slot when it
// is enqueued, not when it is delivered.
type dmSender struct {
	client     channel.Client
	limiter    *ratelimit.Limiter
	queue      dispatch.Queue
	clock      clock.Clock
	log        *zap.Logger
	onDeny     func(limitType string)
	onEnqueued func()
}

func (s *dmSender) send(ctx context.Context, actx *domain.AutomationContext, text string, buttons []channel.Button, delaySeconds int, record *ledgerdomain.ActionRecord) {
	result, err := s.limiter.CheckAndIncrement(ctx, actx.User.ID, ratelimit.LimitDMDaily)
	if err != nil {
		record.Outcome = ledgerdomain.OutcomeFailed
		record.Detail = "rate limiter unavailable"
		return
	}
	if !result.Allowed {
		s.onDeny(string(ratelimit.LimitDMDaily))
		record.Outcome = ledgerdomain.OutcomeSkipped
		record.Detail = "dm_daily limit reached"
		return
	}

	if delaySeconds > 0 {
		now := s.clock.Now()
		err := s.queue.Enqueue(ctx, dispatch.Message{
			ID:           uuid.NewString(),
			AccountID:    actx.Account.ID,
			AutomationID: actx.Automation.ID,
			CommentID:    actx.Comment.CommentID,
			CommenterID:  actx.Comment.CommenterID,
			Text:         text,
			Buttons:      buttons,
			DueAt:        now.Add(time.Duration(delaySeconds) * time.Second),
		})
		if err != nil {
			record.Outcome = ledgerdomain.OutcomeFailed
			record.Detail = "enqueue failed"
			return
		}
		s.onEnqueued()
		record.Outcome = ledgerdomain.OutcomeOK
		record.Detail = "deferred"
		return
	}

	err = s.client.SendDirectMessage(ctx, actx.Account.AccessToken, actx.Comment.CommenterID, text, buttons)
	if err != nil {
		s.log.Warn("direct message failed",
			zap.String("commenter_id", actx.Comment.CommenterID),
			zap.String("automation_id", actx.Automation.ID.String()),
			zap.Error(err),
		)
		record.Outcome = ledgerdomain.OutcomeFailed
		record.Detail = "send failed"
		return
	}
	record.Outcome = ledgerdomain.OutcomeOK
}
