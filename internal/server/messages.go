package server

import "github.com/zeusync/arena/internal/core/arena"

// Message types sent to display clients.
const (
	MessageFrame  = "frame"
	MessageClear  = "clear"
	MessageHealth = "health"
	MessageWinner = "winner"
	MessageState  = "state"
)

// Message types accepted from display clients.
const (
	MessageResize = "resize"
)

// Message is the envelope for everything pushed over /ws.
type Message struct {
	Type   string         `json:"type"`
	Frame  *arena.Frame   `json:"frame,omitempty"`
	Health arena.Snapshot `json:"health,omitempty"`
	Team   arena.Team     `json:"team,omitempty"`
	Round  int64          `json:"round,omitempty"`
	RunID  string         `json:"runID,omitempty"`
	State  string         `json:"state,omitempty"`
}

// ClientMessage is a command sent by a display client.
type ClientMessage struct {
	Type   string  `json:"type"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}
