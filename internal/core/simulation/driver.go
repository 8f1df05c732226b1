package simulation

import (
	"context"
	"time"

	"github.com/zeusync/arena/internal/core/observability/log"
)

// PhaseSource reports the backend's current phase.
type PhaseSource interface {
	Phase(ctx context.Context) (Phase, error)
}

// PhaseSink accepts desired phases. *Loop implements it.
type PhaseSink interface {
	SetPhase(ctx context.Context, p Phase) error
}

// Driver polls a PhaseSource on a fixed cadence and re-asserts each result
// on the sink. A failed poll forwards nothing.
type Driver struct {
	source   PhaseSource
	sink     PhaseSink
	clock    Clock
	interval time.Duration
	logger   log.Log

	failures int
}

func NewDriver(source PhaseSource, sink PhaseSink, clock Clock, interval time.Duration, logger log.Log) (*Driver, error) {
	if interval <= 0 {
		return nil, ErrInvalidInterval
	}
	if clock == nil {
		clock = SystemClock{}
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &Driver{
		source:   source,
		sink:     sink,
		clock:    clock,
		interval: interval,
		logger:   logger.With(log.String("component", "driver")),
	}, nil
}

// Run polls once immediately and then every interval until ctx is done.
func (d *Driver) Run(ctx context.Context) error {
	ticker := d.clock.NewTicker(d.interval)
	defer ticker.Stop()

	d.logger.Info("phase driver started", log.Duration("poll_interval", d.interval))
	for {
		if err := d.Poll(ctx); err != nil {
			if ctx.Err() == nil {
				d.logger.Warn("phase sink closed", log.Error(err))
			}
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C():
		}
	}
}

// Poll performs a single poll. It only returns an error when the sink is
// gone or ctx is done.
func (d *Driver) Poll(ctx context.Context) error {
	p, err := d.source.Phase(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		d.failures++
		d.logger.Warn("phase poll failed", log.Int("consecutive_failures", d.failures), log.Error(err))
		return nil
	}
	if d.failures > 0 {
		d.logger.Info("phase poll recovered", log.Int("failures", d.failures))
		d.failures = 0
	}
	return d.sink.SetPhase(ctx, p)
}
