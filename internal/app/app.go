// Package app runs the arena service: the simulation loop, the phase driver,
// the winner reporter and the HTTP/WebSocket server.
package app

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/zeusync/arena/internal/backend"
	"github.com/zeusync/arena/internal/core/events/bus"
	"github.com/zeusync/arena/internal/core/observability/log"
	"github.com/zeusync/arena/internal/core/simulation"
	"github.com/zeusync/arena/internal/server"
)

// Runner is one long-lived component. Run returns when ctx is done.
type Runner interface {
	Run(ctx context.Context) error
}

type App struct {
	logger   log.Log
	events   bus.EventBus
	hub      *server.Hub
	loop     *simulation.Loop
	driver   *simulation.Driver
	reporter *backend.Reporter
	server   *server.Server
}

func New(
	logger log.Log,
	events bus.EventBus,
	hub *server.Hub,
	loop *simulation.Loop,
	driver *simulation.Driver,
	reporter *backend.Reporter,
	srv *server.Server,
) *App {
	return &App{
		logger:   logger.With(log.String("component", "app")),
		events:   events,
		hub:      hub,
		loop:     loop,
		driver:   driver,
		reporter: reporter,
		server:   srv,
	}
}

// Run starts every component and waits for all of them. The first failure
// cancels the rest.
func (a *App) Run(ctx context.Context) error {
	obs := newLogObserver(a.logger)
	a.events.AddObserver(obs)
	defer a.events.RemoveObserver(obs)

	if err := a.hub.Attach(a.events); err != nil {
		return fmt.Errorf("attach hub: %w", err)
	}
	defer a.hub.Detach()

	a.logger.Info("arena starting")
	err := runAll(ctx, map[string]Runner{
		"loop":     a.loop,
		"driver":   a.driver,
		"reporter": a.reporter,
		"server":   a.server,
	})
	if err != nil {
		a.logger.Error("arena stopped with error", log.Error(err))
		return err
	}
	a.logger.Info("arena stopped")
	return nil
}

func runAll(ctx context.Context, runners map[string]Runner) error {
	g, ctx := errgroup.WithContext(ctx)
	for name, r := range runners {
		g.Go(func() error {
			if err := r.Run(ctx); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			return nil
		})
	}
	return g.Wait()
}
