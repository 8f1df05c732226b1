package simulation

import "github.com/zeusync/arena/internal/core/arena"

// Event types published on the bus.
const (
	EventStarted = "arena.started"
	EventStopped = "arena.stopped"
	EventWinner  = "arena.winner"
	EventTick    = "arena.tick"
	EventPhase   = "arena.phase"
)

const eventSource = "simulation"

type StartedEvent struct {
	RunID string `json:"runID"`
}

type StoppedEvent struct {
	RunID string `json:"runID"`
}

// WinnerEvent is published once per run, before the controller stops itself.
type WinnerEvent struct {
	RunID string     `json:"runID"`
	Team  arena.Team `json:"team"`
	Round int64      `json:"round"`
}

// TickEvent is published after every rendered frame.
type TickEvent struct {
	RunID    string         `json:"runID"`
	Snapshot arena.Snapshot `json:"snapshot"`
}

type PhaseEvent struct {
	Live  bool  `json:"live"`
	Round int64 `json:"round"`
}
