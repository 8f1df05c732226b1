package simulation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zeusync/arena/internal/core/arena"
	"github.com/zeusync/arena/internal/core/events/bus"
)

type recordingRenderer struct {
	mu     sync.Mutex
	frames []arena.Frame
	clears int
}

func (r *recordingRenderer) Render(f arena.Frame) {
	r.mu.Lock()
	r.frames = append(r.frames, f)
	r.mu.Unlock()
}

func (r *recordingRenderer) Clear() {
	r.mu.Lock()
	r.clears++
	r.mu.Unlock()
}

func (r *recordingRenderer) counts() (frames, clears int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.frames), r.clears
}

type recorder struct {
	mu     sync.Mutex
	events map[string][]any
}

func record(t *testing.T, b bus.EventBus, types ...string) *recorder {
	t.Helper()
	r := &recorder{events: make(map[string][]any)}
	for _, typ := range types {
		_, err := b.Subscribe(typ, func(e bus.Event) error {
			r.mu.Lock()
			r.events[e.Type()] = append(r.events[e.Type()], e.Data())
			r.mu.Unlock()
			return nil
		})
		require.NoError(t, err)
	}
	return r
}

func (r *recorder) count(typ string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events[typ])
}

func (r *recorder) last(typ string) any {
	r.mu.Lock()
	defer r.mu.Unlock()
	evs := r.events[typ]
	if len(evs) == 0 {
		return nil
	}
	return evs[len(evs)-1]
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("run-%d", n)
	}
}

type fixture struct {
	arena    *arena.Arena
	viewport *Viewport
	renderer *recordingRenderer
	bus      bus.EventBus
	ctrl     *Controller
}

func newFixture(width, height float64) *fixture {
	a := arena.New(arena.DefaultTuning(), nil)
	f := &fixture{
		arena:    a,
		viewport: NewViewport(width, height),
		renderer: &recordingRenderer{},
		bus:      bus.New(),
	}
	f.ctrl = NewController(DefaultClockConfig(), a, f.viewport, f.renderer, f.bus, nil,
		WithSeed(42), WithRunIDs(sequentialIDs()))
	return f
}

type scriptedSource struct {
	mu     sync.Mutex
	phases []Phase
	errs   []error
	calls  int
}

func (s *scriptedSource) Phase(context.Context) (Phase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return Phase{}, s.errs[i]
	}
	if i < len(s.phases) {
		return s.phases[i], nil
	}
	return Phase{}, errors.New("script exhausted")
}

type recordingSink struct {
	mu     sync.Mutex
	phases []Phase
	err    error
}

func (s *recordingSink) SetPhase(_ context.Context, p Phase) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.phases = append(s.phases, p)
	return nil
}

func (s *recordingSink) got() []Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Phase(nil), s.phases...)
}
