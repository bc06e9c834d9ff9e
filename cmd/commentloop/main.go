package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/commentloop/commentloop/internal/account"
	"github.com/commentloop/commentloop/internal/audit"
	"github.com/commentloop/commentloop/internal/automation"
	"github.com/commentloop/commentloop/internal/channel"
	"github.com/commentloop/commentloop/internal/clock"
	"github.com/commentloop/commentloop/internal/config"
	"github.com/commentloop/commentloop/internal/discount"
	"github.com/commentloop/commentloop/internal/dispatch"
	"github.com/commentloop/commentloop/internal/engine"
	"github.com/commentloop/commentloop/internal/intent"
	"github.com/commentloop/commentloop/internal/kv"
	"github.com/commentloop/commentloop/internal/ledger"
	"github.com/commentloop/commentloop/internal/migration"
	"github.com/commentloop/commentloop/internal/notify"
	"github.com/commentloop/commentloop/internal/observability"
	"github.com/commentloop/commentloop/internal/ratelimit"
	"github.com/commentloop/commentloop/internal/server"
	"github.com/commentloop/commentloop/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		kv.Module,
		notify.Module,

		// Functional domains
		account.Module,
		automation.Module,
		ledger.Module,
		discount.Module,
		ratelimit.Module,
		intent.Module,
		channel.Module,
		dispatch.Module,
		audit.Module,
		engine.Module,

		migration.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
