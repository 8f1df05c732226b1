package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/arena/internal/app"
	"github.com/zeusync/arena/internal/backend"
	"github.com/zeusync/arena/internal/config"
	"github.com/zeusync/arena/internal/core/arena"
	"github.com/zeusync/arena/internal/core/events/bus"
	"github.com/zeusync/arena/internal/core/observability/log"
	"github.com/zeusync/arena/internal/core/simulation"
	"github.com/zeusync/arena/internal/server"
)

// ProviderSet builds an App from a loaded Config.
var ProviderSet = wire.NewSet(
	ProvideLogger,
	wire.Bind(new(log.Log), new(*log.Logger)),
	bus.New,
	ProvideArena,
	ProvideViewport,
	ProvideHub,
	ProvideController,
	ProvideLoop,
	ProvideBackendClient,
	ProvideDriver,
	ProvideReporter,
	ProvideServer,
	app.New,
)

// ProvideLogger builds the root logger. The cleanup flushes it.
func ProvideLogger(cfg *config.Config) (*log.Logger, func(), error) {
	logger, err := log.NewWithConfig(cfg.Log)
	if err != nil {
		return nil, nil, err
	}
	return logger, func() { _ = logger.Sync() }, nil
}

func ProvideArena(cfg *config.Config) *arena.Arena {
	return arena.New(cfg.Tuning, nil)
}

func ProvideViewport(cfg *config.Config) *simulation.Viewport {
	return simulation.NewViewport(cfg.Arena.Width, cfg.Arena.Height)
}

func ProvideHub(cfg *config.Config, logger log.Log) *server.Hub {
	return server.NewHub(cfg.Server.ClientBuffer, logger)
}

func ProvideController(cfg *config.Config, a *arena.Arena, viewport *simulation.Viewport, hub *server.Hub, events bus.EventBus, logger log.Log) *simulation.Controller {
	return simulation.NewController(cfg.Clock, a, viewport, hub, events, logger, simulation.WithSeed(cfg.Arena.Seed))
}

func ProvideLoop(cfg *config.Config, ctrl *simulation.Controller, logger log.Log) (*simulation.Loop, error) {
	return simulation.NewLoop(ctrl, simulation.SystemClock{}, cfg.Clock.FrameInterval, logger)
}

func ProvideBackendClient(cfg *config.Config) (*backend.Client, error) {
	return backend.NewClient(cfg.Backend, nil)
}

func ProvideDriver(cfg *config.Config, client *backend.Client, loop *simulation.Loop, logger log.Log) (*simulation.Driver, error) {
	return simulation.NewDriver(client, loop, simulation.SystemClock{}, cfg.Backend.PollInterval, logger)
}

func ProvideReporter(cfg *config.Config, client *backend.Client, events bus.EventBus, logger log.Log) *backend.Reporter {
	return backend.NewReporter(client, events, cfg.Backend.ReportTimeout, logger)
}

func ProvideServer(cfg *config.Config, loop *simulation.Loop, hub *server.Hub, events bus.EventBus, logger log.Log) *server.Server {
	return server.NewServer(cfg.Server, loop, hub, events, logger)
}
