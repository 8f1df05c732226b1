package simulation

import (
	"math/rand/v2"
	"slices"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"

	"github.com/zeusync/arena/internal/core/arena"
	"github.com/zeusync/arena/internal/core/events/bus"
	"github.com/zeusync/arena/internal/core/observability/log"
)

// ClockConfig sets the fixed physics step and the frame pacing.
type ClockConfig struct {
	Step          time.Duration `yaml:"step" toml:"step"`
	MaxFrame      time.Duration `yaml:"max_frame" toml:"max_frame"`
	FrameInterval time.Duration `yaml:"frame_interval" toml:"frame_interval"`
}

// DefaultClockConfig steps at 60 Hz, clamps stalls to 100ms and asks for a
// frame every 16ms.
func DefaultClockConfig() ClockConfig {
	return ClockConfig{
		Step:          time.Second / 60,
		MaxFrame:      100 * time.Millisecond,
		FrameInterval: 16 * time.Millisecond,
	}
}

// Effects reports what a single Tick did.
type Effects struct {
	Steps    int
	Winner   arena.Team
	Rendered bool
	Stopped  bool
}

// Option customizes a Controller.
type Option func(*Controller)

// WithSeed mixes seed into every run's random source. The run ID is mixed in
// too, so runs differ even with a fixed seed.
func WithSeed(seed uint64) Option {
	return func(c *Controller) { c.seed = seed }
}

// WithRunIDs replaces the uuid run ID generator.
func WithRunIDs(next func() string) Option {
	return func(c *Controller) { c.newRunID = next }
}

// Controller drives one Arena through Idle, Active and Stopped with a
// fixed-timestep accumulator.
//
// Mutating methods must be called from a single goroutine, normally the
// Loop. State, RunID and Snapshot are safe from any goroutine.
type Controller struct {
	cfg      ClockConfig
	arena    *arena.Arena
	surface  Surface
	renderer Renderer
	events   bus.EventBus
	logger   log.Log

	seed     uint64
	newRunID func() string

	state    atomic.Uint32
	runID    atomic.Pointer[string]
	snapshot atomic.Pointer[arena.Snapshot]

	acc time.Duration

	round int64
	phase *Phase
}

// NewController builds an idle controller. renderer and events may be nil.
func NewController(cfg ClockConfig, a *arena.Arena, surface Surface, renderer Renderer, events bus.EventBus, logger log.Log, opts ...Option) *Controller {
	if renderer == nil {
		renderer = nopRenderer{}
	}
	if logger == nil {
		logger = log.NewNop()
	}
	c := &Controller{
		cfg:      cfg,
		arena:    a,
		surface:  surface,
		renderer: renderer,
		events:   events,
		logger:   logger.With(log.String("component", "simulation")),
		newRunID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	empty := arena.Snapshot{}
	c.snapshot.Store(&empty)
	return c
}

func (c *Controller) State() State { return State(c.state.Load()) }

// RunID identifies the current or last match. It is empty before the first Start.
func (c *Controller) RunID() string {
	if id := c.runID.Load(); id != nil {
		return *id
	}
	return ""
}

// Snapshot returns the team health copy published after the last tick or
// lifecycle change. Each call returns its own copy.
func (c *Controller) Snapshot() arena.Snapshot {
	return slices.Clone(*c.snapshot.Load())
}

func (c *Controller) ready() (float64, float64, bool) {
	if c.surface == nil {
		return 0, 0, false
	}
	return c.surface.Size()
}

// Start lays out a fresh match and begins stepping. It does nothing while
// already Active or while the surface is not ready.
func (c *Controller) Start() {
	w, h, ok := c.ready()
	if !ok {
		c.logger.Debug("start ignored, surface not ready")
		return
	}
	if c.State() == StateActive {
		return
	}

	runID := c.newRunID()
	c.runID.Store(&runID)
	c.arena.Reseed(rand.New(rand.NewPCG(c.seed, xxhash.Sum64String(runID))))
	c.arena.Initialize(w, h)
	c.acc = 0
	c.renderer.Clear()
	c.state.Store(uint32(StateActive))
	c.publishSnapshot()

	c.logger.Info("match started",
		log.String("run_id", runID),
		log.Float64("width", w),
		log.Float64("height", h),
		log.Int64("round", c.round),
	)
	c.publish(EventStarted, StartedEvent{RunID: runID})
}

// Stop halts stepping, drops items and clears the drawing. It does nothing
// unless Active.
func (c *Controller) Stop() {
	if _, _, ok := c.ready(); !ok {
		return
	}
	if c.State() != StateActive {
		return
	}

	c.state.Store(uint32(StateStopped))
	c.acc = 0
	c.arena.ClearItems()
	c.renderer.Clear()
	c.publishSnapshot()

	c.logger.Info("match stopped", log.String("run_id", c.RunID()))
	c.publish(EventStopped, StoppedEvent{RunID: c.RunID()})
}

// Apply converges on the desired phase. A live phase starts the match, any
// other phase stops it. Re-asserting a live phase after a winner starts a
// fresh match.
func (c *Controller) Apply(p Phase) {
	if c.phase == nil || *c.phase != p {
		c.phase = &p
		c.publish(EventPhase, PhaseEvent(p))
	}
	c.round = p.Round

	if !p.Live {
		c.Stop()
		return
	}
	c.Start()
}

// Tick advances the match by elapsed real time. Elapsed time is clamped to
// MaxFrame, whole steps are drained from the accumulator, then one frame is
// rendered. A winner stops the match before rendering.
func (c *Controller) Tick(elapsed time.Duration) Effects {
	var eff Effects
	if c.State() != StateActive {
		return eff
	}
	if _, _, ok := c.ready(); !ok {
		return eff
	}

	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed > c.cfg.MaxFrame {
		elapsed = c.cfg.MaxFrame
	}
	c.acc += elapsed

	for c.acc >= c.cfg.Step {
		c.acc -= c.cfg.Step
		eff.Steps++
		team, won := c.arena.Step(c.cfg.Step)
		if !won {
			continue
		}

		eff.Winner = team
		runID := c.RunID()
		c.logger.Info("winner",
			log.String("run_id", runID),
			log.String("team", team.String()),
			log.Int64("round", c.round),
			log.Duration("match_time", c.arena.Elapsed()),
		)
		c.publishSnapshot()
		c.publish(EventWinner, WinnerEvent{RunID: runID, Team: team, Round: c.round})
		c.Stop()
		eff.Stopped = true
		return eff
	}

	c.renderer.Render(c.arena.Frame())
	eff.Rendered = true
	snap := c.publishSnapshot()
	c.publish(EventTick, TickEvent{RunID: c.RunID(), Snapshot: slices.Clone(snap)})
	return eff
}

// Resize updates the surface and rescales a running match in place.
func (c *Controller) Resize(width, height float64) {
	if _, _, ok := c.ready(); !ok {
		return
	}
	if width <= 0 || height <= 0 {
		return
	}
	c.surface.Resize(width, height)
	if c.State() != StateActive {
		return
	}
	c.arena.Resize(width, height)
	c.renderer.Render(c.arena.Frame())
	c.logger.Debug("resized", log.Float64("width", width), log.Float64("height", height))
}

// SetHealth overrides a live team's health. Values are clamped; zero marks
// the team for elimination on the next step.
func (c *Controller) SetHealth(team arena.Team, health int) bool {
	if _, _, ok := c.ready(); !ok {
		return false
	}
	if c.State() != StateActive {
		return false
	}
	if !c.arena.SetHealth(team, health) {
		return false
	}
	c.publishSnapshot()
	c.logger.Info("health override", log.String("team", team.String()), log.Int("health", health))
	return true
}

func (c *Controller) publishSnapshot() arena.Snapshot {
	snap := c.arena.Snapshot()
	c.snapshot.Store(&snap)
	return snap
}

func (c *Controller) publish(eventType string, data any) {
	if c.events == nil {
		return
	}
	if err := c.events.Publish(bus.NewEvent(eventType, eventSource, data)); err != nil {
		c.logger.Warn("event handler failed", log.String("event", eventType), log.Error(err))
	}
}
