package backend

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// Round phases reported by the backend. Only PhaseRunning is live.
const (
	PhaseBreak       = "BREAK"
	PhasePreSnapshot = "PRE_SNAPSHOT"
	PhaseRunning     = "RUNNING"
	PhaseEnded       = "ENDED"
)

// RoundState is the body of GET /state.json.
type RoundState struct {
	RoundNumber       Number    `json:"roundNumber"`
	Phase             string    `json:"phase"`
	BreakEndsAt       Timestamp `json:"breakEndsAt"`
	PrizePoolLamports Number    `json:"prizePoolLamports"`
	SurvivorCount     Number    `json:"survivorCount"`
	Winner            string    `json:"winner,omitempty"`
	SecondsLeft       *Number   `json:"secondsLeft,omitempty"`
}

// Live reports whether the round is running.
func (s RoundState) Live() bool { return s.Phase == PhaseRunning }

const maxFloatNumber = 1 << 62

// Number decodes an integer that may arrive as a JSON number, a numeric
// string or null. Anything unparseable decodes to 0.
type Number int64

func (n *Number) UnmarshalJSON(data []byte) error {
	*n = 0
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	raw := string(data)
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		raw = strings.TrimSpace(s)
	}
	if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
		*n = Number(v)
		return nil
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil && math.Abs(f) < maxFloatNumber {
		*n = Number(math.Trunc(f))
	}
	return nil
}

// Timestamp decodes an ISO-8601 string. Anything unparseable decodes to the
// zero time.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	t.Time = time.Time{}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return nil
	}
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(time.RFC3339Nano))
}

// WinnerReport is the body of POST /winner.
type WinnerReport struct {
	Round int64  `json:"round"`
	Team  string `json:"team"`
}
