package server

import (
	"encoding/json"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"

	"github.com/zeusync/arena/internal/core/arena"
	"github.com/zeusync/arena/internal/core/events/bus"
	"github.com/zeusync/arena/internal/core/observability/log"
	"github.com/zeusync/arena/internal/core/simulation"
)

var _ simulation.Renderer = (*Hub)(nil)

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// Hub fans messages out to every connected display client. Each client has
// a bounded queue; a full queue drops the message for that client only, so
// the simulation loop never waits on a slow socket.
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]struct{}
	buffer  int
	logger  log.Log

	dropped atomic.Uint64

	healthMu   sync.Mutex
	lastHealth arena.Snapshot

	subs []bus.Subscription
}

func NewHub(buffer int, logger log.Log) *Hub {
	if buffer <= 0 {
		buffer = 1
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &Hub{
		clients: make(map[*client]struct{}),
		buffer:  buffer,
		logger:  logger.With(log.String("component", "hub")),
	}
}

// Render broadcasts a frame. It is called on the loop goroutine.
func (h *Hub) Render(frame arena.Frame) {
	if h.Clients() == 0 {
		return
	}
	h.Broadcast(Message{Type: MessageFrame, Frame: &frame})
}

// Clear tells clients to wipe the drawing.
func (h *Hub) Clear() {
	h.Broadcast(Message{Type: MessageClear})
}

// Attach subscribes the hub to lifecycle, winner and tick events.
func (h *Hub) Attach(events bus.EventBus) error {
	handlers := map[string]bus.EventHandler{
		simulation.EventWinner:  h.onWinner,
		simulation.EventTick:    h.onTick,
		simulation.EventStarted: h.onLifecycle,
		simulation.EventStopped: h.onLifecycle,
	}
	for typ, handler := range handlers {
		sub, err := events.Subscribe(typ, handler)
		if err != nil {
			h.Detach()
			return err
		}
		h.subs = append(h.subs, sub)
	}
	return nil
}

// Detach cancels the subscriptions made by Attach.
func (h *Hub) Detach() {
	for _, sub := range h.subs {
		_ = sub.Cancel()
	}
	h.subs = nil
}

func (h *Hub) onWinner(e bus.Event) error {
	win, ok := e.Data().(simulation.WinnerEvent)
	if !ok {
		return nil
	}
	h.Broadcast(Message{Type: MessageWinner, Team: win.Team, Round: win.Round, RunID: win.RunID})
	return nil
}

// onTick pushes a health message only when some team's health changed.
func (h *Hub) onTick(e bus.Event) error {
	tick, ok := e.Data().(simulation.TickEvent)
	if !ok {
		return nil
	}
	h.healthMu.Lock()
	changed := !slices.Equal(h.lastHealth, tick.Snapshot)
	if changed {
		h.lastHealth = slices.Clone(tick.Snapshot)
	}
	h.healthMu.Unlock()

	if changed {
		h.Broadcast(Message{Type: MessageHealth, Health: tick.Snapshot, RunID: tick.RunID})
	}
	return nil
}

func (h *Hub) onLifecycle(e bus.Event) error {
	msg := Message{Type: MessageState}
	switch data := e.Data().(type) {
	case simulation.StartedEvent:
		msg.State, msg.RunID = simulation.StateActive.String(), data.RunID
	case simulation.StoppedEvent:
		msg.State, msg.RunID = simulation.StateStopped.String(), data.RunID
	default:
		return nil
	}
	h.healthMu.Lock()
	h.lastHealth = nil
	h.healthMu.Unlock()
	h.Broadcast(msg)
	return nil
}

// Broadcast encodes msg once and queues it for every client.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("encode message", log.String("type", msg.Type), log.Error(err))
		return
	}
	h.broadcastRaw(data)
}

func (h *Hub) broadcastRaw(data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.dropped.Add(1)
		}
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	total := len(h.clients)
	h.mu.Unlock()
	h.logger.Info("client connected", log.String("client_id", c.id), log.Int("total_clients", total))
}

// unregister removes c and closes its queue. Safe to call twice.
func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
		close(c.send)
	}
	total := len(h.clients)
	h.mu.Unlock()
	if ok {
		h.logger.Info("client disconnected", log.String("client_id", c.id), log.Int("total_clients", total))
	}
}

// send queues a message for one client.
func (h *Hub) send(c *client, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	select {
	case c.send <- data:
	default:
		h.dropped.Add(1)
	}
}

// closeAll drops every client, which ends their write pumps.
func (h *Hub) closeAll() {
	h.mu.Lock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Dropped counts messages discarded because a client queue was full.
func (h *Hub) Dropped() uint64 { return h.dropped.Load() }
