package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	accountdomain "github.com/commentloop/commentloop/internal/account/domain"
	"github.com/commentloop/commentloop/internal/automation/domain"
	"github.com/commentloop/commentloop/internal/clock"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("automation.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateAutomationRequest) (domain.Automation, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Automation{}, domain.ErrInvalidName
	}

	scope := req.Scope
	if scope == "" {
		scope = domain.ScopeGlobal
	}
	switch scope {
	case domain.ScopeGlobal:
	case domain.ScopePost:
		if strings.TrimSpace(req.PostID) == "" {
			return domain.Automation{}, domain.ErrInvalidScope
		}
	default:
		return domain.Automation{}, domain.ErrInvalidScope
	}

	triggerValue := strings.TrimSpace(req.TriggerValue)
	if triggerValue == "" {
		return domain.Automation{}, domain.ErrInvalidTrigger
	}
	switch req.TriggerType {
	case domain.TriggerKeyword, domain.TriggerIntent:
	default:
		return domain.Automation{}, domain.ErrInvalidTrigger
	}

	if req.DiscountEnabled && (req.DiscountPoolID == nil || *req.DiscountPoolID == 0) {
		return domain.Automation{}, domain.ErrInvalidDiscountPool
	}

	priority := req.Priority
	if priority <= 0 {
		priority = 100
	}
	tier := req.RequiredTier
	if tier == "" {
		tier = accountdomain.TierFree
	}

	now := s.clock.Now()
	automation := domain.Automation{
		ID:        s.genID.Generate(),
		UserID:    req.UserID,
		AccountID: req.AccountID,
		Name:      name,

		Scope:  scope,
		PostID: strings.TrimSpace(req.PostID),

		TriggerType:  req.TriggerType,
		TriggerValue: triggerValue,

		ReplyEnabled: req.ReplyEnabled,
		ReplyText:    strings.TrimSpace(req.ReplyText),

		DMEnabled:      req.DMEnabled,
		DMText:         strings.TrimSpace(req.DMText),
		DMButtons:      datatypes.NewJSONSlice(req.DMButtons),
		DMDelaySeconds: req.DMDelaySeconds,

		DiscountEnabled:      req.DiscountEnabled,
		DiscountPoolID:       req.DiscountPoolID,
		DiscountMessageText:  strings.TrimSpace(req.DiscountMessageText),
		DiscountFallbackText: strings.TrimSpace(req.DiscountFallbackText),

		Priority:           priority,
		StopAfterExecution: req.StopAfterExecution,
		Enabled:            true,
		RequiredTier:       tier,

		CreatedAt: now,
		UpdatedAt: now,
	}

	if !automation.HasAnyAction() {
		return domain.Automation{}, domain.ErrInvalidActions
	}

	if err := s.repo.Insert(ctx, s.db, &automation); err != nil {
		return domain.Automation{}, err
	}
	return automation, nil
}

func (s *Service) GetByID(ctx context.Context, userID, id snowflake.ID) (domain.Automation, error) {
	automation, err := s.repo.FindByID(ctx, s.db, userID, id)
	if err != nil {
		return domain.Automation{}, err
	}
	if automation == nil {
		return domain.Automation{}, domain.ErrNotFound
	}
	return *automation, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateAutomationRequest) (domain.Automation, error) {
	automation, err := s.repo.FindByID(ctx, s.db, req.UserID, req.ID)
	if err != nil {
		return domain.Automation{}, err
	}
	if automation == nil {
		return domain.Automation{}, domain.ErrNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Automation{}, domain.ErrInvalidName
		}
		automation.Name = name
	}
	if req.TriggerValue != nil {
		value := strings.TrimSpace(*req.TriggerValue)
		if value == "" {
			return domain.Automation{}, domain.ErrInvalidTrigger
		}
		automation.TriggerValue = value
	}
	if req.ReplyText != nil {
		automation.ReplyText = strings.TrimSpace(*req.ReplyText)
	}
	if req.DMText != nil {
		automation.DMText = strings.TrimSpace(*req.DMText)
	}
	if req.Priority != nil && *req.Priority > 0 {
		automation.Priority = *req.Priority
	}
	if req.Enabled != nil {
		automation.Enabled = *req.Enabled
	}
	if req.StopAfter != nil {
		automation.StopAfterExecution = *req.StopAfter
	}
	automation.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, s.db, automation); err != nil {
		return domain.Automation{}, err
	}
	return *automation, nil
}

func (s *Service) Delete(ctx context.Context, userID, id snowflake.ID) error {
	automation, err := s.repo.FindByID(ctx, s.db, userID, id)
	if err != nil {
		return err
	}
	if automation == nil {
		return domain.ErrNotFound
	}
	return s.repo.Delete(ctx, s.db, userID, id)
}

func (s *Service) List(ctx context.Context, userID snowflake.ID) ([]domain.Automation, error) {
	items, err := s.repo.ListByUser(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	automations := make([]domain.Automation, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		automations = append(automations, *item)
	}
	return automations, nil
}

func (s *Service) Select(ctx context.Context, accountID snowflake.ID, postID string, tier accountdomain.Tier) ([]domain.Automation, error) {
	candidates, err := s.repo.FindCandidates(ctx, s.db, accountID, postID)
	if err != nil {
		return nil, err
	}

	selected := make([]domain.Automation, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate == nil {
			continue
		}
		// Tier exclusion is soft: the rule is silently skipped.
		if !tier.Covers(candidate.RequiredTier) {
			continue
		}
		selected = append(selected, *candidate)
	}
	return selected, nil
}
