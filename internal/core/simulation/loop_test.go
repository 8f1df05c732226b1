package simulation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/arena/internal/core/arena"
)

func startLoop(t *testing.T, f *fixture, clock Clock) (*Loop, context.CancelFunc, <-chan error) {
	t.Helper()
	loop, err := NewLoop(f.ctrl, clock, 16*time.Millisecond, nil)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- loop.Run(ctx) }()
	return loop, cancel, errCh
}

func TestNewLoopRejectsInterval(t *testing.T) {
	_, err := NewLoop(newFixture(800, 600).ctrl, nil, 0, nil)
	assert.ErrorIs(t, err, ErrInvalidInterval)
}

func TestLoopTicksOnlyWhileActive(t *testing.T) {
	f := newFixture(800, 600)
	clock := NewManualClock(time.Unix(0, 0))
	loop, cancel, errCh := startLoop(t, f, clock)
	defer cancel()
	ctx := context.Background()

	assert.Zero(t, clock.Tickers())

	require.NoError(t, loop.SetPhase(ctx, Phase{Live: true, Round: 1}))
	require.Eventually(t, func() bool { return clock.Tickers() == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, StateActive, f.ctrl.State())

	clock.Advance(50 * time.Millisecond)
	require.Eventually(t, func() bool {
		frames, _ := f.renderer.counts()
		return frames >= 1
	}, time.Second, time.Millisecond)

	require.NoError(t, loop.SetPhase(ctx, Phase{Live: false, Round: 1}))
	require.Eventually(t, func() bool { return clock.Tickers() == 0 }, time.Second, time.Millisecond)
	assert.Equal(t, StateStopped, f.ctrl.State())

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("loop did not exit")
	}
	assert.ErrorIs(t, loop.SetPhase(ctx, Phase{Live: true}), ErrLoopStopped)
}

func TestLoopStopsMatchOnCancel(t *testing.T) {
	f := newFixture(800, 600)
	clock := NewManualClock(time.Unix(0, 0))
	loop, cancel, errCh := startLoop(t, f, clock)

	require.NoError(t, loop.SetPhase(context.Background(), Phase{Live: true}))
	require.Eventually(t, func() bool { return clock.Tickers() == 1 }, time.Second, time.Millisecond)

	cancel()
	require.NoError(t, <-errCh)
	<-loop.Done()
	assert.Equal(t, StateStopped, f.ctrl.State())
	assert.Zero(t, clock.Tickers())
}

func TestLoopCommands(t *testing.T) {
	f := newFixture(800, 600)
	clock := NewManualClock(time.Unix(0, 0))
	loop, cancel, errCh := startLoop(t, f, clock)
	defer func() {
		cancel()
		<-errCh
	}()
	ctx := context.Background()

	require.NoError(t, loop.SetPhase(ctx, Phase{Live: true}))

	ok, err := loop.SetHealth(ctx, arena.TeamYellow, 2)
	require.NoError(t, err)
	assert.True(t, ok)
	hp, found := loop.Snapshot().Health(arena.TeamYellow)
	require.True(t, found)
	assert.Equal(t, 2, hp)

	require.NoError(t, loop.Resize(ctx, 400, 300))
	require.NoError(t, loop.Stop(ctx))
	ok, err = loop.SetHealth(ctx, arena.TeamYellow, 4)
	require.NoError(t, err)
	assert.False(t, ok)

	w, h, _ := f.viewport.Size()
	assert.Equal(t, 400.0, w)
	assert.Equal(t, 300.0, h)
}

func TestLoopRunsOnce(t *testing.T) {
	f := newFixture(800, 600)
	loop, cancel, errCh := startLoop(t, f, NewManualClock(time.Unix(0, 0)))
	defer func() {
		cancel()
		<-errCh
	}()
	require.Eventually(t, func() bool { return loop.running.Load() }, time.Second, time.Millisecond)
	assert.ErrorIs(t, loop.Run(context.Background()), ErrLoopRunning)
}

func TestManualClockCoalescesTicks(t *testing.T) {
	clock := NewManualClock(time.Unix(0, 0))
	ticker := clock.NewTicker(10 * time.Millisecond)

	clock.Advance(5 * time.Millisecond)
	select {
	case <-ticker.C():
		t.Fatal("ticked early")
	default:
	}

	clock.Advance(100 * time.Millisecond)
	<-ticker.C()
	select {
	case <-ticker.C():
		t.Fatal("missed ticks should coalesce")
	default:
	}

	ticker.Stop()
	assert.Zero(t, clock.Tickers())
	assert.Equal(t, time.Unix(0, 0).Add(105*time.Millisecond), clock.Now())
}
