package simulation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/arena/internal/core/arena"
)

func TestStartIsIdempotent(t *testing.T) {
	f := newFixture(800, 600)
	events := record(t, f.bus, EventStarted)

	f.ctrl.Start()
	require.Equal(t, StateActive, f.ctrl.State())
	runID := f.ctrl.RunID()
	f.ctrl.Tick(20 * time.Millisecond)
	before := f.arena.Entities()
	steps := f.arena.Steps()

	f.ctrl.Start()
	assert.Equal(t, StateActive, f.ctrl.State())
	assert.Equal(t, runID, f.ctrl.RunID())
	assert.Equal(t, before, f.arena.Entities())
	assert.Equal(t, steps, f.arena.Steps())
	assert.Equal(t, 1, events.count(EventStarted))
}

func TestStopIsIdempotent(t *testing.T) {
	f := newFixture(800, 600)
	events := record(t, f.bus, EventStopped)

	f.ctrl.Stop()
	assert.Equal(t, StateIdle, f.ctrl.State())
	_, clears := f.renderer.counts()
	assert.Zero(t, clears)

	f.ctrl.Start()
	f.ctrl.Stop()
	_, clearsAfterStop := f.renderer.counts()
	f.ctrl.Stop()
	_, clearsAfterSecond := f.renderer.counts()

	assert.Equal(t, StateStopped, f.ctrl.State())
	assert.Equal(t, clearsAfterStop, clearsAfterSecond)
	assert.Equal(t, 1, events.count(EventStopped))
	assert.Zero(t, f.arena.ItemCount())
}

func TestSurfaceNotReadyIsNoop(t *testing.T) {
	f := newFixture(0, 0)

	f.ctrl.Start()
	assert.Equal(t, StateIdle, f.ctrl.State())
	assert.Equal(t, Effects{}, f.ctrl.Tick(time.Second))
	assert.False(t, f.ctrl.SetHealth(arena.TeamBlue, 1))
	f.ctrl.Resize(400, 300)
	f.ctrl.Apply(Phase{Live: true, Round: 1})
	assert.Equal(t, StateIdle, f.ctrl.State())
	assert.Empty(t, f.ctrl.RunID())

	frames, clears := f.renderer.counts()
	assert.Zero(t, frames)
	assert.Zero(t, clears)
}

func TestTickAccumulatesFixedSteps(t *testing.T) {
	f := newFixture(800, 600)
	f.ctrl.Start()

	eff := f.ctrl.Tick(10 * time.Millisecond)
	assert.Equal(t, 0, eff.Steps)
	assert.True(t, eff.Rendered)

	eff = f.ctrl.Tick(10 * time.Millisecond)
	assert.Equal(t, 1, eff.Steps)

	// a stall longer than MaxFrame only counts as 100ms
	eff = f.ctrl.Tick(5 * time.Second)
	assert.Equal(t, 6, eff.Steps)
	assert.EqualValues(t, 7, f.arena.Steps())

	eff = f.ctrl.Tick(-time.Second)
	assert.Equal(t, 0, eff.Steps)
	assert.True(t, eff.Rendered)

	frames, _ := f.renderer.counts()
	assert.Equal(t, 4, frames)
}

func TestTickIgnoredUnlessActive(t *testing.T) {
	f := newFixture(800, 600)
	assert.Equal(t, Effects{}, f.ctrl.Tick(50*time.Millisecond))
	f.ctrl.Start()
	f.ctrl.Stop()
	assert.Equal(t, Effects{}, f.ctrl.Tick(50*time.Millisecond))
}

func TestWinnerStopsMatchOnce(t *testing.T) {
	f := newFixture(800, 600)
	events := record(t, f.bus, EventWinner, EventStopped)

	f.ctrl.Apply(Phase{Live: true, Round: 7})
	require.Equal(t, StateActive, f.ctrl.State())
	for _, team := range []arena.Team{arena.TeamBlue, arena.TeamYellow, arena.TeamPurple} {
		require.True(t, f.ctrl.SetHealth(team, 0))
	}

	eff := f.ctrl.Tick(20 * time.Millisecond)
	assert.Equal(t, arena.TeamRed, eff.Winner)
	assert.True(t, eff.Stopped)
	assert.False(t, eff.Rendered)
	assert.Equal(t, 1, eff.Steps)
	assert.Equal(t, StateStopped, f.ctrl.State())

	require.Equal(t, 1, events.count(EventWinner))
	assert.Equal(t, WinnerEvent{RunID: "run-1", Team: arena.TeamRed, Round: 7}, events.last(EventWinner))
	assert.Equal(t, 1, events.count(EventStopped))
	assert.Equal(t, arena.Snapshot{{Team: arena.TeamRed, Health: 5}}, f.ctrl.Snapshot())

	f.ctrl.Tick(time.Second)
	assert.Equal(t, 1, events.count(EventWinner))
}

func TestLiveRoundReassertedAfterWinnerRestarts(t *testing.T) {
	f := newFixture(800, 600)
	f.ctrl.Apply(Phase{Live: true, Round: 7})
	for _, team := range []arena.Team{arena.TeamBlue, arena.TeamYellow, arena.TeamPurple} {
		f.ctrl.SetHealth(team, 0)
	}
	f.ctrl.Tick(20 * time.Millisecond)
	require.Equal(t, StateStopped, f.ctrl.State())

	for i := 0; i < 5; i++ {
		f.ctrl.Apply(Phase{Live: true, Round: 7})
	}
	assert.Equal(t, StateActive, f.ctrl.State())
	assert.Equal(t, "run-2", f.ctrl.RunID())
	assert.Equal(t, 4, f.arena.LiveCount())
}

func TestBreakAfterWinnerThenLiveRestarts(t *testing.T) {
	f := newFixture(800, 600)
	f.ctrl.Apply(Phase{Live: true, Round: 3})
	for _, team := range []arena.Team{arena.TeamBlue, arena.TeamYellow, arena.TeamPurple} {
		f.ctrl.SetHealth(team, 0)
	}
	f.ctrl.Tick(20 * time.Millisecond)

	f.ctrl.Apply(Phase{Live: false, Round: 3})
	assert.Equal(t, StateStopped, f.ctrl.State())
	f.ctrl.Apply(Phase{Live: true, Round: 4})
	assert.Equal(t, StateActive, f.ctrl.State())
	assert.Equal(t, "run-2", f.ctrl.RunID())
}

func TestNoWinnerWhenLastTwoFallTogether(t *testing.T) {
	f := newFixture(800, 600)
	events := record(t, f.bus, EventWinner)
	f.ctrl.Start()

	f.ctrl.SetHealth(arena.TeamBlue, 0)
	f.ctrl.SetHealth(arena.TeamYellow, 0)
	f.ctrl.Tick(20 * time.Millisecond)
	require.Equal(t, 2, f.arena.LiveCount())

	f.ctrl.SetHealth(arena.TeamPurple, 0)
	f.ctrl.SetHealth(arena.TeamRed, 0)
	eff := f.ctrl.Tick(20 * time.Millisecond)

	assert.Empty(t, eff.Winner)
	assert.False(t, eff.Stopped)
	assert.Zero(t, f.arena.LiveCount())
	assert.Equal(t, StateActive, f.ctrl.State())
	assert.Zero(t, events.count(EventWinner))
}

func TestPhaseToggleRestartsFreshMatch(t *testing.T) {
	f := newFixture(800, 600)

	f.ctrl.Apply(Phase{Live: true, Round: 1})
	f.ctrl.SetHealth(arena.TeamBlue, 2)
	for i := 0; i < 40; i++ {
		f.ctrl.Tick(100 * time.Millisecond)
	}
	require.Positive(t, f.arena.Steps())

	for i := 0; i < 2; i++ {
		f.ctrl.Apply(Phase{Live: false, Round: 1})
		f.ctrl.Apply(Phase{Live: true, Round: 1})
	}

	assert.Equal(t, StateActive, f.ctrl.State())
	assert.Equal(t, "run-3", f.ctrl.RunID())
	assert.Zero(t, f.arena.ItemCount())
	assert.Zero(t, f.arena.Steps())
	assert.Equal(t, 4, f.arena.LiveCount())
	for _, th := range f.ctrl.Snapshot() {
		assert.Equal(t, 5, th.Health, th.Team)
	}
}

func TestApplyPublishesPhaseChanges(t *testing.T) {
	f := newFixture(800, 600)
	events := record(t, f.bus, EventPhase)

	f.ctrl.Apply(Phase{Live: false, Round: 1})
	f.ctrl.Apply(Phase{Live: false, Round: 1})
	f.ctrl.Apply(Phase{Live: true, Round: 1})

	assert.Equal(t, 2, events.count(EventPhase))
	assert.Equal(t, PhaseEvent{Live: true, Round: 1}, events.last(EventPhase))
}

func TestResizeRescalesRunningMatch(t *testing.T) {
	f := newFixture(800, 600)
	f.ctrl.Start()
	before := f.arena.Entities()

	f.ctrl.Resize(400, 300)

	w, h, ok := f.viewport.Size()
	require.True(t, ok)
	assert.Equal(t, 400.0, w)
	assert.Equal(t, 300.0, h)
	after := f.arena.Entities()
	require.Len(t, after, len(before))
	for i := range before {
		assert.InDelta(t, before[i].Pos.X*0.5, after[i].Pos.X, 1e-9)
		assert.InDelta(t, before[i].Pos.Y*0.5, after[i].Pos.Y, 1e-9)
		assert.InDelta(t, before[i].Radius*0.5, after[i].Radius, 1e-9)
		assert.Equal(t, before[i].Dir, after[i].Dir)
	}
	assert.Equal(t, StateActive, f.ctrl.State())
}

func TestResizeWhileStoppedOnlyMovesSurface(t *testing.T) {
	f := newFixture(800, 600)
	f.ctrl.Resize(1000, 500)
	f.ctrl.Resize(-1, 10)
	f.ctrl.Start()

	assert.Equal(t, 1000.0, f.arena.Width())
	assert.Equal(t, 500.0, f.arena.Height())
}

func TestTickPublishesSnapshotCopy(t *testing.T) {
	f := newFixture(800, 600)
	events := record(t, f.bus, EventTick)
	f.ctrl.Start()
	f.ctrl.Tick(20 * time.Millisecond)

	require.Equal(t, 1, events.count(EventTick))
	tick := events.last(EventTick).(TickEvent)
	assert.Equal(t, "run-1", tick.RunID)
	assert.Len(t, tick.Snapshot, 4)

	snap := f.ctrl.Snapshot()
	snap[0].Health = 0
	assert.Equal(t, 5, f.ctrl.Snapshot()[0].Health)

	tick.Snapshot[1].Health = 0
	assert.Equal(t, 5, f.ctrl.Snapshot()[1].Health)
	assert.NotSame(t, &snap[0], &tick.Snapshot[0])
}

func TestSetHealthClampsAndRequiresActive(t *testing.T) {
	f := newFixture(800, 600)
	assert.False(t, f.ctrl.SetHealth(arena.TeamBlue, 3))

	f.ctrl.Start()
	assert.True(t, f.ctrl.SetHealth(arena.TeamBlue, 99))
	hp, ok := f.ctrl.Snapshot().Health(arena.TeamBlue)
	require.True(t, ok)
	assert.Equal(t, 5, hp)

	assert.False(t, f.ctrl.SetHealth(arena.Team("green"), 3))
}

func TestSameSeedAndRunIDReplays(t *testing.T) {
	run := func() []arena.Entity {
		f := newFixture(800, 600)
		f.ctrl.Start()
		for i := 0; i < 120; i++ {
			f.ctrl.Tick(50 * time.Millisecond)
		}
		return f.arena.Entities()
	}
	assert.Equal(t, run(), run())
}
