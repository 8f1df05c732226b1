package backend

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/zeusync/arena/internal/core/arena"
	"github.com/zeusync/arena/internal/core/events/bus"
	"github.com/zeusync/arena/internal/core/observability/log"
	"github.com/zeusync/arena/internal/core/simulation"
)

// WinnerClient is the part of Client the Reporter needs.
type WinnerClient interface {
	State(ctx context.Context) (RoundState, error)
	ReportWinner(ctx context.Context, round int64, team arena.Team) error
}

// Reporter forwards winner events to the backend. Each event gets one
// attempt bounded by the report timeout; failures are logged and dropped.
type Reporter struct {
	client  WinnerClient
	events  bus.EventBus
	timeout time.Duration
	logger  log.Log

	wg     sync.WaitGroup
	mu     sync.Mutex
	base   context.Context
	closed bool // set before the final Wait; later events are dropped
}

func NewReporter(client WinnerClient, events bus.EventBus, timeout time.Duration, logger log.Log) *Reporter {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Reporter{
		client:  client,
		events:  events,
		timeout: timeout,
		logger:  logger.With(log.String("component", "reporter")),
		base:    context.Background(),
	}
}

// Run subscribes to winner events until ctx is done, then waits for reports
// still in flight.
func (r *Reporter) Run(ctx context.Context) error {
	r.mu.Lock()
	r.base = ctx
	r.mu.Unlock()

	sub, err := r.events.Subscribe(simulation.EventWinner, r.onWinner)
	if err != nil {
		return fmt.Errorf("subscribe winner events: %w", err)
	}
	<-ctx.Done()
	_ = r.events.Unsubscribe(sub)

	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	r.wg.Wait()
	return nil
}

// Wait blocks until every report started so far has finished.
func (r *Reporter) Wait() { r.wg.Wait() }

func (r *Reporter) onWinner(e bus.Event) error {
	win, ok := e.Data().(simulation.WinnerEvent)
	if !ok {
		return nil
	}
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		r.logger.Debug("winner dropped after shutdown", log.String("run_id", win.RunID))
		return nil
	}
	base := r.base
	r.wg.Add(1)
	r.mu.Unlock()

	go func() {
		defer r.wg.Done()
		r.report(base, win)
	}()
	return nil
}

func (r *Reporter) report(base context.Context, win simulation.WinnerEvent) {
	ctx, cancel := context.WithTimeout(base, r.timeout)
	defer cancel()

	round := win.Round
	if round == 0 {
		if state, err := r.client.State(ctx); err == nil {
			round = int64(state.RoundNumber)
		}
	}

	fields := []log.Field{
		log.String("run_id", win.RunID),
		log.String("team", win.Team.String()),
		log.Int64("round", round),
	}
	if err := r.client.ReportWinner(ctx, round, win.Team); err != nil {
		r.logger.Warn("winner report failed", append(fields, log.Error(err))...)
		return
	}
	r.logger.Info("winner reported", fields...)
}
