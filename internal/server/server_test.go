package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/arena/internal/core/arena"
	"github.com/zeusync/arena/internal/core/events/bus"
	"github.com/zeusync/arena/internal/core/simulation"
)

type fakeSim struct {
	mu      sync.Mutex
	snap    arena.Snapshot
	state   simulation.State
	resizes [][2]float64
	health  map[arena.Team]int
}

func newFakeSim() *fakeSim {
	return &fakeSim{
		state: simulation.StateActive,
		snap: arena.Snapshot{
			{Team: arena.TeamBlue, Health: 5},
			{Team: arena.TeamRed, Health: 3},
		},
		health: make(map[arena.Team]int),
	}
}

func (f *fakeSim) Snapshot() arena.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append(arena.Snapshot(nil), f.snap...)
}

func (f *fakeSim) State() simulation.State { return f.state }
func (f *fakeSim) RunID() string           { return "run-1" }

func (f *fakeSim) Resize(_ context.Context, w, h float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resizes = append(f.resizes, [2]float64{w, h})
	return nil
}

func (f *fakeSim) SetHealth(_ context.Context, team arena.Team, hp int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.snap {
		if f.snap[i].Team == team {
			f.snap[i].Health = hp
			f.health[team] = hp
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeSim) resized() [][2]float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][2]float64(nil), f.resizes...)
}

func newTestServer(t *testing.T, cfg Config) (*httptest.Server, *fakeSim, *Hub, bus.EventBus) {
	t.Helper()
	sim := newFakeSim()
	hub := NewHub(cfg.ClientBuffer, nil)
	events := bus.New()
	s := NewServer(cfg, sim, hub, events, nil)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		hub.closeAll()
		ts.Close()
	})
	return ts, sim, hub, events
}

func getJSON(t *testing.T, url string, v any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	return resp.StatusCode
}

func postHealth(t *testing.T, url, body string) (int, map[string]any) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestHealthz(t *testing.T) {
	ts, _, _, _ := newTestServer(t, DefaultConfig())
	var body map[string]bool
	assert.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/healthz", &body))
	assert.True(t, body["ok"])
}

func TestSnapshotEndpoint(t *testing.T) {
	ts, _, _, _ := newTestServer(t, DefaultConfig())
	var snap arena.Snapshot
	assert.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/snapshot", &snap))
	assert.Equal(t, arena.Snapshot{{Team: arena.TeamBlue, Health: 5}, {Team: arena.TeamRed, Health: 3}}, snap)
}

func TestMetricsEndpoint(t *testing.T) {
	ts, _, _, events := newTestServer(t, DefaultConfig())
	_ = events.Publish(bus.NewEvent("x", "test", nil))

	var m Metrics
	assert.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/metrics", &m))
	assert.Equal(t, "active", m.State)
	assert.Equal(t, "run-1", m.RunID)
	assert.Equal(t, 2, m.Live)
	assert.EqualValues(t, 1, m.EventBus.Published)
}

func TestSetHealthDisabledByDefault(t *testing.T) {
	ts, _, _, _ := newTestServer(t, DefaultConfig())
	status, _ := postHealth(t, ts.URL+"/teams/blue/health", `{"health":2}`)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestSetHealthOverride(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AllowHealthOverride = true
	ts, sim, _, _ := newTestServer(t, cfg)

	status, body := postHealth(t, ts.URL+"/teams/red/health", `{"health":"4"}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "red", body["team"])
	assert.EqualValues(t, 4, body["health"])

	status, _ = postHealth(t, ts.URL+"/teams/blue/health", `{"health":"lots"}`)
	assert.Equal(t, http.StatusOK, status)
	sim.mu.Lock()
	assert.Equal(t, 0, sim.health[arena.TeamBlue])
	sim.mu.Unlock()

	status, _ = postHealth(t, ts.URL+"/teams/green/health", `{"health":1}`)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = postHealth(t, ts.URL+"/teams/purple/health", `{"health":1}`)
	assert.Equal(t, http.StatusConflict, status)
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	u := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestWebSocketGreetingAndFrames(t *testing.T) {
	ts, _, hub, _ := newTestServer(t, DefaultConfig())
	conn := dial(t, ts)

	hello := readMessage(t, conn)
	assert.Equal(t, MessageState, hello.Type)
	assert.Equal(t, "active", hello.State)
	assert.Equal(t, "run-1", hello.RunID)

	health := readMessage(t, conn)
	assert.Equal(t, MessageHealth, health.Type)
	assert.Len(t, health.Health, 2)

	hub.Render(arena.Frame{Width: 800, Height: 600, Entities: []arena.EntityView{{Team: arena.TeamBlue, X: 1, Y: 2, Radius: 3, Health: 5}}})
	frame := readMessage(t, conn)
	require.Equal(t, MessageFrame, frame.Type)
	require.NotNil(t, frame.Frame)
	assert.Equal(t, 800.0, frame.Frame.Width)
	assert.Equal(t, arena.TeamBlue, frame.Frame.Entities[0].Team)

	hub.Clear()
	assert.Equal(t, MessageClear, readMessage(t, conn).Type)
}

func TestWebSocketResizeCommand(t *testing.T) {
	ts, sim, hub, _ := newTestServer(t, DefaultConfig())
	conn := dial(t, ts)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, time.Millisecond)

	require.NoError(t, conn.WriteJSON(ClientMessage{Type: MessageResize, Width: 400, Height: 300}))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	require.NoError(t, conn.WriteJSON(ClientMessage{Type: "dance"}))
	require.NoError(t, conn.WriteJSON(ClientMessage{Type: MessageResize, Width: 1024, Height: 768}))

	require.Eventually(t, func() bool { return len(sim.resized()) == 2 }, time.Second, time.Millisecond)
	assert.Equal(t, [][2]float64{{400, 300}, {1024, 768}}, sim.resized())

	_ = conn.Close()
	require.Eventually(t, func() bool { return hub.Clients() == 0 }, time.Second, time.Millisecond)
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.ClientBuffer = 0
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

	cfg = DefaultConfig()
	cfg.ListenAddr = ""
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
}

func TestCheckOrigin(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AllowedOrigins = []string{"https://arena.example"}
	s := NewServer(cfg, newFakeSim(), NewHub(1, nil), nil, nil)

	r := httptest.NewRequest(http.MethodGet, "/ws", nil)
	r.Header.Set("Origin", "https://arena.example")
	assert.True(t, s.checkOrigin(r))
	r.Header.Set("Origin", "https://evil.example")
	assert.False(t, s.checkOrigin(r))
}

func TestRunServesAndStops(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ListenAddr = "127.0.0.1:0"
	s := NewServer(cfg, newFakeSim(), NewHub(4, nil), nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	select {
	case <-s.Ready():
	case <-time.After(2 * time.Second):
		t.Fatal("server not ready")
	}
	var body map[string]bool
	assert.Equal(t, http.StatusOK, getJSON(t, "http://"+s.Addr()+"/healthz", &body))

	cancel()
	require.NoError(t, <-done)
	assert.ErrorIs(t, s.Run(context.Background()), ErrServerClosed)
}
