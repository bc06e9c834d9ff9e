package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	accountdomain "github.com/commentloop/commentloop/internal/account/domain"
	auditdomain "github.com/commentloop/commentloop/internal/audit/domain"
	automationdomain "github.com/commentloop/commentloop/internal/automation/domain"
	"github.com/commentloop/commentloop/internal/channel"
	"github.com/commentloop/commentloop/internal/clock"
	"github.com/commentloop/commentloop/internal/config"
	"github.com/commentloop/commentloop/internal/dispatch"
	discountdomain "github.com/commentloop/commentloop/internal/discount/domain"
	"github.com/commentloop/commentloop/internal/engine/domain"
	"github.com/commentloop/commentloop/internal/intent"
	ledgerdomain "github.com/commentloop/commentloop/internal/ledger/domain"
	"github.com/commentloop/commentloop/internal/observability/metrics"
	"github.com/commentloop/commentloop/internal/ratelimit"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	Clock       clock.Clock
	Config      config.Config
	Metrics     *metrics.Metrics `optional:"true"`
	AccountRepo accountdomain.Repository
	Automations automationdomain.Service
	Ledger      ledgerdomain.Ledger
	Discounts   discountdomain.Service
	Limiter     *ratelimit.Limiter
	Channel     channel.Client
	Queue       dispatch.Queue
	Classifier  intent.Classifier
	Audit       auditdomain.Service
}

// Service runs the per-comment pipeline: candidate selection, trigger
// evaluation, claim, action execution, finalize. Failures of shared
// infrastructure abort before the failing candidate's claim, so a
// wholesale redelivery of the comment is always safe.
type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	clock       clock.Clock
	cfg         config.EngineConfig
	metrics     *metrics.Metrics
	accountRepo accountdomain.Repository
	automations automationdomain.Service
	ledger      ledgerdomain.Ledger
	classifier  intent.Classifier
	audit       auditdomain.Service

	actions []action
}

func New(p Params) domain.Service {
	log := p.Log.Named("engine")

	sender := &dmSender{
		client:     p.Channel,
		limiter:    p.Limiter,
		queue:      p.Queue,
		clock:      p.Clock,
		log:        log,
		onDeny:     p.Metrics.IncRateLimitDenial,
		onEnqueued: p.Metrics.IncDeferredEnqueued,
	}

	return &Service{
		db:          p.DB,
		log:         log,
		clock:       p.Clock,
		cfg:         p.Config.Engine,
		metrics:     p.Metrics,
		accountRepo: p.AccountRepo,
		automations: p.Automations,
		ledger:      p.Ledger,
		classifier:  p.Classifier,
		audit:       p.Audit,

		// Fixed execution order within one automation.
		actions: []action{
			replyAction{client: p.Channel, limiter: p.Limiter, log: log, onDeny: p.Metrics.IncRateLimitDenial},
			dmAction{sender: sender},
			discountAction{discounts: p.Discounts, sender: sender, audit: p.Audit, log: log, onExhaust: p.Metrics.IncPoolExhaustion},
		},
	}
}

func (s *Service) ProcessComment(ctx context.Context, comment domain.NormalizedComment, userID, accountID snowflake.ID) ([]ledgerdomain.ProcessedAutomationEvent, error) {
	if err := comment.Validate(); err != nil {
		return nil, err
	}
	if comment.AccountID != accountID {
		return nil, domain.ErrAccountMismatch
	}
	if comment.IsFromOwner {
		return nil, domain.ErrOwnerComment
	}

	user, err := s.accountRepo.FindUserByID(ctx, s.db, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDependencyUnavailable, err)
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	account, err := s.accountRepo.FindAccountByID(ctx, s.db, accountID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDependencyUnavailable, err)
	}
	if account == nil {
		return nil, domain.ErrAccountNotFound
	}
	if account.UserID != user.ID {
		return nil, domain.ErrAccountMismatch
	}

	s.metrics.IncCommentProcessed()

	candidates, err := s.automations.Select(ctx, accountID, comment.PostID, user.Tier)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDependencyUnavailable, err)
	}

	cache := newClassificationCache(s.classifier, comment.Text)
	events := make([]ledgerdomain.ProcessedAutomationEvent, 0, len(candidates))

	for _, candidate := range candidates {
		// Trigger evaluation happens before the claim: a classifier
		// outage must abort with no pending row, so redelivery gets a
		// clean second attempt at the same pair.
		matched, err := s.evaluateTrigger(ctx, candidate, comment, cache)
		if err != nil {
			s.log.Error("trigger evaluation failed",
				zap.String("comment_id", comment.CommentID),
				zap.String("automation_id", candidate.ID.String()),
				zap.Error(err),
			)
			return events, fmt.Errorf("%w: %v", domain.ErrDependencyUnavailable, err)
		}
		if !matched {
			// Evaluated pairs stay visible to the caller even without a
			// match. No ledger row is written, so a redelivery simply
			// re-evaluates the pair.
			events = append(events, ledgerdomain.ProcessedAutomationEvent{
				CommentID:    comment.CommentID,
				AutomationID: candidate.ID,
				AccountID:    accountID,
				Status:       ledgerdomain.StatusSkipped,
			})
			continue
		}

		claim, err := s.ledger.TryClaim(ctx, comment.CommentID, candidate.ID, accountID)
		if err != nil {
			return events, fmt.Errorf("%w: %v", domain.ErrDependencyUnavailable, err)
		}
		if !claim.Claimed {
			existing := claim.Existing
			if existing != nil {
				events = append(events, *existing)
				// A replay must honor the suppression the first run
				// applied: if the winning row executed a stop-after
				// rule, lower-priority rules stay untouched.
				if candidate.StopAfterExecution && existing.Terminal() && executedStatus(existing.Status) {
					break
				}
			}
			continue
		}

		actx := &domain.AutomationContext{
			Automation: candidate,
			Comment:    comment,
			User:       *user,
			Account:    *account,
		}

		records := s.executeActions(ctx, actx)
		status, errMsg := aggregate(records)

		if err := s.ledger.Record(ctx, comment.CommentID, candidate.ID, status, records, errMsg); err != nil {
			// The actions already ran; a finalize failure leaves the
			// row pending and is reported, not retried here.
			s.log.Error("ledger finalize failed",
				zap.String("comment_id", comment.CommentID),
				zap.String("automation_id", candidate.ID.String()),
				zap.Error(err),
			)
		}
		s.metrics.IncAutomationOutcome(string(status))

		if status == ledgerdomain.StatusFailed {
			s.audit.Log(ctx, auditdomain.Entry{
				UserID:    &user.ID,
				AccountID: &accountID,
				Action:    "automation.failed",
				Severity:  auditdomain.SeverityCritical,
				TargetID:  candidate.ID.String(),
				Metadata: map[string]any{
					"comment_id": comment.CommentID,
					"error":      errMsg,
				},
			})
		}

		event := ledgerdomain.ProcessedAutomationEvent{
			CommentID:       comment.CommentID,
			AutomationID:    candidate.ID,
			AccountID:       accountID,
			Status:          status,
			ActionsExecuted: records,
		}
		if errMsg != "" {
			event.ErrorMessage = &errMsg
		}
		events = append(events, event)

		if candidate.StopAfterExecution && executedStatus(status) {
			break
		}
	}

	s.audit.Log(ctx, auditdomain.Entry{
		UserID:    &user.ID,
		AccountID: &accountID,
		Action:    "comment.processed",
		Severity:  auditdomain.SeverityInfo,
		TargetID:  comment.CommentID,
		Metadata: map[string]any{
			"candidates": len(candidates),
			"results":    len(events),
		},
	})

	return events, nil
}

func (s *Service) executeActions(ctx context.Context, actx *domain.AutomationContext) []ledgerdomain.ActionRecord {
	records := make([]ledgerdomain.ActionRecord, 0, len(s.actions))
	for _, act := range s.actions {
		if !act.enabled(actx.Automation) {
			continue
		}
		record := act.execute(ctx, actx)
		s.metrics.IncAction(record.Kind, record.Outcome)
		records = append(records, record)
	}
	return records
}

// aggregate folds per-action outcomes into the automation's terminal
// status. Any success with any non-success is partial; no successes
// with at least one failure is failed; denials alone are skipped.
func aggregate(records []ledgerdomain.ActionRecord) (ledgerdomain.ExecutionStatus, string) {
	var ok, failed, skipped int
	details := make([]string, 0, 1)
	for _, record := range records {
		switch record.Outcome {
		case ledgerdomain.OutcomeOK:
			ok++
		case ledgerdomain.OutcomeFailed:
			failed++
			details = append(details, fmt.Sprintf("%s: %s", record.Kind, record.Detail))
		case ledgerdomain.OutcomeSkipped:
			skipped++
		}
	}

	errMsg := strings.Join(details, "; ")
	switch {
	case ok > 0 && failed == 0 && skipped == 0:
		return ledgerdomain.StatusSuccess, errMsg
	case ok > 0:
		return ledgerdomain.StatusPartial, errMsg
	case failed > 0:
		return ledgerdomain.StatusFailed, errMsg
	default:
		return ledgerdomain.StatusSkipped, errMsg
	}
}

// executedStatus reports whether a terminal status counts as "the
// automation ran" for stop-after purposes. Skipped and failed rules do
// not suppress lower-priority candidates.
func executedStatus(status ledgerdomain.ExecutionStatus) bool {
	return status == ledgerdomain.StatusSuccess || status == ledgerdomain.StatusPartial
}
