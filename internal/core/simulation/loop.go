package simulation

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/zeusync/arena/internal/core/arena"
	"github.com/zeusync/arena/internal/core/observability/log"
)

type command func(c *Controller)

// Loop owns a Controller on one goroutine. It paces frames while the match
// is Active and runs queued commands between frames. No ticker is held while
// the match is not Active.
type Loop struct {
	ctrl     *Controller
	clock    Clock
	interval time.Duration
	logger   log.Log

	commands chan command
	done     chan struct{}
	running  atomic.Bool
}

// NewLoop wraps ctrl. A nil clock means SystemClock.
func NewLoop(ctrl *Controller, clock Clock, frameInterval time.Duration, logger log.Log) (*Loop, error) {
	if frameInterval <= 0 {
		return nil, ErrInvalidInterval
	}
	if clock == nil {
		clock = SystemClock{}
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &Loop{
		ctrl:     ctrl,
		clock:    clock,
		interval: frameInterval,
		logger:   logger.With(log.String("component", "loop")),
		commands: make(chan command, 64),
		done:     make(chan struct{}),
	}, nil
}

// Controller exposes the wrapped controller for read-only queries.
func (l *Loop) Controller() *Controller { return l.ctrl }

// Done is closed once Run has returned.
func (l *Loop) Done() <-chan struct{} { return l.done }

// Run processes frames and commands until ctx is cancelled. The match is
// stopped before Run returns.
func (l *Loop) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return ErrLoopRunning
	}
	defer close(l.done)

	var (
		ticker Ticker
		frames <-chan time.Time
		last   time.Time
	)
	release := func() {
		if ticker != nil {
			ticker.Stop()
			ticker, frames = nil, nil
		}
	}
	syncTicker := func() {
		active := l.ctrl.State() == StateActive
		switch {
		case active && ticker == nil:
			ticker = l.clock.NewTicker(l.interval)
			frames = ticker.C()
			last = l.clock.Now()
		case !active:
			release()
		}
	}

	l.logger.Info("loop started", log.Duration("frame_interval", l.interval))
	defer l.logger.Info("loop stopped")

	for {
		select {
		case <-ctx.Done():
			l.ctrl.Stop()
			release()
			return nil
		case cmd := <-l.commands:
			cmd(l.ctrl)
			syncTicker()
		case <-frames:
			now := l.clock.Now()
			elapsed := now.Sub(last)
			last = now
			l.ctrl.Tick(elapsed)
			syncTicker()
		}
	}
}

func (l *Loop) send(ctx context.Context, cmd command) error {
	select {
	case <-l.done:
		return ErrLoopStopped
	default:
	}
	select {
	case l.commands <- cmd:
		return nil
	case <-l.done:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SetPhase queues a desired phase.
func (l *Loop) SetPhase(ctx context.Context, p Phase) error {
	return l.send(ctx, func(c *Controller) { c.Apply(p) })
}

// Resize queues a surface resize.
func (l *Loop) Resize(ctx context.Context, width, height float64) error {
	return l.send(ctx, func(c *Controller) { c.Resize(width, height) })
}

// Stop queues a stop of the current match.
func (l *Loop) Stop(ctx context.Context) error {
	return l.send(ctx, func(c *Controller) { c.Stop() })
}

// SetHealth queues a health override and waits for the result.
func (l *Loop) SetHealth(ctx context.Context, team arena.Team, health int) (bool, error) {
	result := make(chan bool, 1)
	if err := l.send(ctx, func(c *Controller) { result <- c.SetHealth(team, health) }); err != nil {
		return false, err
	}
	select {
	case ok := <-result:
		return ok, nil
	case <-l.done:
		return false, ErrLoopStopped
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// Snapshot reads the last published snapshot without going through the loop.
func (l *Loop) Snapshot() arena.Snapshot { return l.ctrl.Snapshot() }

// State reports the controller state without going through the loop.
func (l *Loop) State() State { return l.ctrl.State() }

// RunID reports the current run ID without going through the loop.
func (l *Loop) RunID() string { return l.ctrl.RunID() }
