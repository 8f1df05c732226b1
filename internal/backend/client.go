package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/zeusync/arena/internal/core/arena"
	"github.com/zeusync/arena/internal/core/simulation"
)

// Config points the client at the round backend.
type Config struct {
	BaseURL        string        `yaml:"base_url" toml:"base_url"`
	PollInterval   time.Duration `yaml:"poll_interval" toml:"poll_interval"`
	RequestTimeout time.Duration `yaml:"request_timeout" toml:"request_timeout"`
	ReportTimeout  time.Duration `yaml:"report_timeout" toml:"report_timeout"`
}

func DefaultConfig() Config {
	return Config{
		BaseURL:        "http://127.0.0.1:8000",
		PollInterval:   time.Second,
		RequestTimeout: 2 * time.Second,
		ReportTimeout:  5 * time.Second,
	}
}

// Client talks to the round backend over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

var _ simulation.PhaseSource = (*Client)(nil)

// NewClient builds a client for cfg. A nil httpClient gets one bounded by
// cfg.RequestTimeout.
func NewClient(cfg Config, httpClient *http.Client) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, ErrNoBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.RequestTimeout}
	}
	return &Client{baseURL: base, http: httpClient}, nil
}

// State fetches GET /state.json.
func (c *Client) State(ctx context.Context) (RoundState, error) {
	var state RoundState
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/state.json", nil)
	if err != nil {
		return state, fmt.Errorf("build state request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-store")

	resp, err := c.http.Do(req)
	if err != nil {
		return state, fmt.Errorf("get state: %w", err)
	}
	defer drain(resp.Body)

	if err = checkStatus(resp); err != nil {
		return state, fmt.Errorf("get state: %w", err)
	}
	if err = json.NewDecoder(resp.Body).Decode(&state); err != nil {
		return state, fmt.Errorf("decode state: %w", err)
	}
	return state, nil
}

// Phase reduces the round state to what the controller needs.
func (c *Client) Phase(ctx context.Context) (simulation.Phase, error) {
	state, err := c.State(ctx)
	if err != nil {
		return simulation.Phase{}, err
	}
	return simulation.Phase{Live: state.Live(), Round: int64(state.RoundNumber)}, nil
}

// ReportWinner posts POST /winner.
func (c *Client) ReportWinner(ctx context.Context, round int64, team arena.Team) error {
	body, err := json.Marshal(WinnerReport{Round: round, Team: team.String()})
	if err != nil {
		return fmt.Errorf("encode winner: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/winner", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build winner request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("post winner: %w", err)
	}
	defer drain(resp.Body)
	if err = checkStatus(resp); err != nil {
		return fmt.Errorf("post winner: %w", err)
	}
	return nil
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status)
}

func drain(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, 64<<10))
	_ = body.Close()
}
