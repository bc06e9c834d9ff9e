package migration

import (
	accountdomain "github.com/commentloop/commentloop/internal/account/domain"
	auditdomain "github.com/commentloop/commentloop/internal/audit/domain"
	automationdomain "github.com/commentloop/commentloop/internal/automation/domain"
	"github.com/commentloop/commentloop/internal/clock"
	"github.com/commentloop/commentloop/internal/config"
	discountdomain "github.com/commentloop/commentloop/internal/discount/domain"
	ledgerdomain "github.com/commentloop/commentloop/internal/ledger/domain"
	"github.com/commentloop/commentloop/internal/seed"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, clk clock.Clock, accounts accountdomain.Repository) error {
		// Versioned SQL runs on postgres. The sqlite and mysql paths are
		// for local development and tests, where AutoMigrate is enough.
		if cfg.DBType != "postgres" {
			if err := conn.AutoMigrate(
				&accountdomain.User{},
				&accountdomain.SocialAccount{},
				&automationdomain.Automation{},
				&ledgerdomain.ProcessedAutomationEvent{},
				&discountdomain.DiscountPool{},
				&discountdomain.DiscountCode{},
				&auditdomain.AuditEvent{},
			); err != nil {
				return err
			}
		} else {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		}

		if cfg.SeedDevData {
			return seed.EnsureDevData(conn, clk, accounts)
		}
		return nil
	}),
)
