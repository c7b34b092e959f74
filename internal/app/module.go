package app

import (
	"time"

	"go.uber.org/fx"

	"github.com/lintasnet/paygate/internal/app/api/server"
	"github.com/lintasnet/paygate/internal/app/service/gateway"
	"github.com/lintasnet/paygate/internal/app/service/ledger"
	"github.com/lintasnet/paygate/internal/app/service/reconciler"
	"github.com/lintasnet/paygate/internal/app/service/settings"
	"github.com/lintasnet/paygate/internal/app/service/webhooklog"
	"github.com/lintasnet/paygate/internal/platform/db"
	"github.com/lintasnet/paygate/pkg/config"
	"github.com/lintasnet/paygate/pkg/logger"
)

const (
	DefaultStartTimeout = 15 * time.Second
	DefaultStopTimeout  = 10 * time.Second
)

var Module = fx.Options(
	logger.Module,
	config.Module,
	db.Module,
	server.Module,
	settings.Module,
	ledger.Module,
	gateway.Module,
	webhooklog.Module,
	reconciler.Module,
)
