package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/zeusync/arena/internal/backend"
	"github.com/zeusync/arena/internal/core/arena"
	"github.com/zeusync/arena/internal/core/observability/log"
	"github.com/zeusync/arena/internal/core/simulation"
	"github.com/zeusync/arena/internal/server"
)

const (
	// EnvPath names the environment variable that overrides DefaultPath.
	EnvPath     = "ARENA_CONFIG"
	DefaultPath = "config/arena.yaml"
)

var (
	ErrInvalid           = errors.New("invalid config")
	ErrUnsupportedFormat = errors.New("unsupported config format")
)

type Config struct {
	Log     log.Config             `yaml:"log" toml:"log"`
	Arena   ArenaConfig            `yaml:"arena" toml:"arena"`
	Tuning  arena.Tuning           `yaml:"tuning" toml:"tuning"`
	Clock   simulation.ClockConfig `yaml:"clock" toml:"clock"`
	Backend backend.Config         `yaml:"backend" toml:"backend"`
	Server  server.Config          `yaml:"server" toml:"server"`
}

// ArenaConfig sizes the drawing surface the match starts on.
type ArenaConfig struct {
	Width  float64 `yaml:"width" toml:"width"`
	Height float64 `yaml:"height" toml:"height"`
	Seed   uint64  `yaml:"seed" toml:"seed"`
}

func Default() *Config {
	return &Config{
		Log:     log.DefaultConfig(),
		Arena:   ArenaConfig{Width: 800, Height: 600},
		Tuning:  arena.DefaultTuning(),
		Clock:   simulation.DefaultClockConfig(),
		Backend: backend.DefaultConfig(),
		Server:  server.DefaultConfig(),
	}
}

// Resolve picks the config path: the explicit path, then ARENA_CONFIG, then
// DefaultPath. explicit reports whether a missing file is an error.
func Resolve(path string) (resolved string, explicit bool) {
	if path != "" {
		return path, true
	}
	if env := strings.TrimSpace(os.Getenv(EnvPath)); env != "" {
		return env, true
	}
	return DefaultPath, false
}

// Load reads the config at path over the defaults. An empty path goes
// through Resolve; a missing file at DefaultPath yields the defaults.
func Load(path string) (*Config, error) {
	resolved, explicit := Resolve(path)
	data, err := os.ReadFile(resolved)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			cfg := Default()
			return cfg, cfg.Validate()
		}
		return nil, fmt.Errorf("read config %s: %w", resolved, err)
	}

	var cfg *Config
	switch strings.ToLower(filepath.Ext(resolved)) {
	case ".yaml", ".yml":
		cfg, err = LoadYAML(bytes.NewReader(data))
	case ".toml":
		cfg, err = LoadTOML(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, resolved)
	}
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", resolved, err)
	}
	if err = cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", resolved, err)
	}
	return cfg, nil
}

// LoadYAML decodes YAML over the defaults. Unknown keys are rejected.
func LoadYAML(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return cfg, nil
}

// LoadTOML decodes TOML over the defaults. Unknown keys are rejected.
func LoadTOML(r io.Reader) (*Config, error) {
	cfg := Default()
	md, err := toml.NewDecoder(r).Decode(cfg)
	if err != nil {
		return nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%w: unknown key %s", ErrInvalid, undecoded[0])
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Arena.Width <= 0 || c.Arena.Height <= 0 {
		errs = append(errs, fmt.Errorf("%w: arena size must be positive", ErrInvalid))
	}
	if c.Clock.Step <= 0 {
		errs = append(errs, fmt.Errorf("%w: clock.step must be positive", ErrInvalid))
	}
	if c.Clock.FrameInterval <= 0 {
		errs = append(errs, fmt.Errorf("%w: clock.frame_interval must be positive", ErrInvalid))
	}
	if c.Clock.MaxFrame < c.Clock.Step {
		errs = append(errs, fmt.Errorf("%w: clock.max_frame must be at least one step", ErrInvalid))
	}
	if c.Backend.PollInterval <= 0 {
		errs = append(errs, fmt.Errorf("%w: backend.poll_interval must be positive", ErrInvalid))
	}
	if c.Backend.ReportTimeout <= 0 {
		errs = append(errs, fmt.Errorf("%w: backend.report_timeout must be positive", ErrInvalid))
	}
	if c.Tuning.MaxHealth <= 0 {
		errs = append(errs, fmt.Errorf("%w: tuning.max_health must be positive", ErrInvalid))
	}
	if c.Tuning.HarmfulChance < 0 || c.Tuning.HarmfulChance > 1 {
		errs = append(errs, fmt.Errorf("%w: tuning.harmful_chance must be within [0,1]", ErrInvalid))
	}
	if c.Tuning.ItemSpawnInterval <= 0 {
		errs = append(errs, fmt.Errorf("%w: tuning.item_spawn_interval must be positive", ErrInvalid))
	}
	if err := c.Server.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
