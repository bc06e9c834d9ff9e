package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/commentloop/commentloop/internal/audit/domain"
	"github.com/commentloop/commentloop/internal/clock"
	"github.com/commentloop/commentloop/internal/notify"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Repo     auditdomain.Repository
	Notifier notify.Notifier
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	repo     auditdomain.Repository
	notifier notify.Notifier
}

func New(p Params) auditdomain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("audit.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		repo:     p.Repo,
		notifier: p.Notifier,
	}
}

func (s *Service) Log(ctx context.Context, entry auditdomain.Entry) {
	action := strings.TrimSpace(entry.Action)
	if action == "" {
		return
	}
	severity := entry.Severity
	if severity == "" {
		severity = auditdomain.SeverityInfo
	}

	metadata := map[string]any{}
	for key, value := range entry.Metadata {
		if key == "" {
			continue
		}
		metadata[key] = value
	}

	event := auditdomain.AuditEvent{
		ID:        s.genID.Generate(),
		UserID:    entry.UserID,
		AccountID: entry.AccountID,
		Action:    action,
		Severity:  severity,
		TargetID:  strings.TrimSpace(entry.TargetID),
		Metadata:  datatypes.JSONMap(metadata),
		CreatedAt: s.clock.Now(),
	}

	if err := s.repo.Insert(ctx, s.db, &event); err != nil {
		s.log.Warn("failed to write audit event", zap.String("action", action), zap.Error(err))
	}

	if severity == auditdomain.SeverityCritical {
		message := fmt.Sprintf("[%s] %s target=%s", severity, action, event.TargetID)
		if err := s.notifier.Post(ctx, action, message); err != nil {
			s.log.Warn("failed to notify critical event", zap.String("action", action), zap.Error(err))
		}
	}
}
