// Package config loads mondrian's optional TOML configuration file.
//
// The file is looked up in order:
//
//  1. the path given with --config
//  2. $MONDRIAN_CONFIG
//  3. $XDG_CONFIG_HOME/mondrian/config.toml (or ~/.config/mondrian/config.toml)
//
// A missing file at the default location is not an error; defaults apply.
// A missing file that was named explicitly is. Command-line flags override
// values loaded from the file.
//
// Example:
//
//	[atlas]
//	page_width = 1024
//	page_height = 256
//
//	[cache]
//	backend = "redis"
//	redis_addr = "cache.internal:6379"
//	ttl = "12h"
//
//	[events]
//	nats_url = "nats://bus.internal:4222"
//
//	[telemetry]
//	otlp_endpoint = "otel-collector:4317"
//	sample_rate = 0.1
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/mondrian/pkg/errors"
)

// EnvConfig names the environment variable holding a config path.
const EnvConfig = "MONDRIAN_CONFIG"

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Config is the full configuration file.
type Config struct {
	Atlas  AtlasConfig  `toml:"atlas"`
	Render RenderConfig `toml:"render"`
	Cache  CacheConfig  `toml:"cache"`
	Store  StoreConfig  `toml:"store"`
	Server ServerConfig `toml:"server"`
	Events EventsConfig `toml:"events"`

	Telemetry TelemetryConfig `toml:"telemetry"`
}

// AtlasConfig controls packing.
type AtlasConfig struct {
	PageWidth  int `toml:"page_width"`
	PageHeight int `toml:"page_height"`
	Shards     int `toml:"shards"` // 0 = one per CPU
}

// RenderConfig controls the flame view geometry.
type RenderConfig struct {
	PxPerMS    float64 `toml:"px_per_ms"`
	BarHeight  float64 `toml:"bar_height"`
	BarXGutter float64 `toml:"bar_x_gutter"`
	BarYGutter float64 `toml:"bar_y_gutter"`
	Width      float64 `toml:"width"` // viewport width; 0 = fit the trace at PxPerMS
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	Backend   string   `toml:"backend"`
	Dir       string   `toml:"dir"`
	RedisAddr string   `toml:"redis_addr"`
	RedisDB   int      `toml:"redis_db"`
	Prefix    string   `toml:"prefix"`
	TTL       Duration `toml:"ttl"`
}

// StoreConfig configures layout and atlas persistence. An empty MongoURI
// keeps documents in memory.
type StoreConfig struct {
	MongoURI string `toml:"mongo_uri"`
	Database string `toml:"database"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// EventsConfig configures event publishing. An empty NATSURL disables it.
// The token is read from $MONDRIAN_NATS_TOKEN, never from the file.
type EventsConfig struct {
	NATSURL       string `toml:"nats_url"`
	SubjectPrefix string `toml:"subject_prefix"`
}

// TelemetryConfig configures metrics and tracing for the server.
type TelemetryConfig struct {
	Metrics      bool    `toml:"metrics"`       // expose /metrics
	OTLPEndpoint string  `toml:"otlp_endpoint"` // empty disables tracing
	SampleRate   float64 `toml:"sample_rate"`
}

// Duration is a time.Duration written as a Go duration string ("90s", "12h").
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Atlas: AtlasConfig{PageWidth: 2048, PageHeight: 2048},
		Render: RenderConfig{
			PxPerMS:    1,
			BarHeight:  16,
			BarXGutter: 1,
			BarYGutter: 1,
		},
		Cache: CacheConfig{
			Backend:   BackendFile,
			RedisAddr: "localhost:6379",
			Prefix:    "mondrian:",
		},
		Store:  StoreConfig{Database: "mondrian"},
		Server: ServerConfig{Addr: ":8080"},
		Events: EventsConfig{SubjectPrefix: "mondrian.events"},
		Telemetry: TelemetryConfig{
			Metrics:    true,
			SampleRate: 1,
		},
	}
}

// Load reads the config file at path over the defaults. An empty path
// resolves through [Path]; a file missing at the resolved default location
// yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != "" || os.Getenv(EnvConfig) != ""
	if path == "" {
		path = Path()
	}
	if path == "" {
		return cfg, nil
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if os.IsNotExist(err) {
			if explicit {
				return cfg, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
			}
			return Default(), nil
		}
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, errors.New(errors.ErrCodeInvalidConfig, "unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}
	return cfg, cfg.Validate()
}

// Parse decodes TOML text over the defaults.
func Parse(text string) (Config, error) {
	cfg := Default()
	if _, err := toml.Decode(text, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config")
	}
	return cfg, cfg.Validate()
}

// Path returns the config path from $MONDRIAN_CONFIG or the XDG default.
// It returns "" when no home directory can be determined.
func Path() string {
	if p := os.Getenv(EnvConfig); p != "" {
		return p
	}
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "mondrian", "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "mondrian", "config.toml")
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if err := errors.ValidateDimensions("atlas page", c.Atlas.PageWidth, c.Atlas.PageHeight); err != nil {
		return err
	}
	if c.Atlas.Shards < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "atlas.shards must be >= 0, got %d", c.Atlas.Shards)
	}
	if c.Render.PxPerMS <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "render.px_per_ms must be positive, got %v", c.Render.PxPerMS)
	}
	if c.Render.BarHeight <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "render.bar_height must be positive, got %v", c.Render.BarHeight)
	}
	if c.Render.BarXGutter < 0 || c.Render.BarYGutter < 0 || c.Render.Width < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "render gutters and width must not be negative")
	}
	switch c.Cache.Backend {
	case BackendFile, BackendRedis, BackendNone:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "cache.backend must be file, redis or none, got %q", c.Cache.Backend)
	}
	if c.Cache.Backend == BackendRedis && c.Cache.RedisAddr == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.redis_addr is required for the redis backend")
	}
	if c.Cache.TTL.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.ttl must not be negative")
	}
	if c.Store.MongoURI != "" && c.Store.Database == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "store.database is required with store.mongo_uri")
	}
	if c.Events.NATSURL != "" && c.Events.SubjectPrefix == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "events.subject_prefix is required with events.nats_url")
	}
	if r := c.Telemetry.SampleRate; r < 0 || r > 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "telemetry.sample_rate must be in [0, 1], got %v", r)
	}
	return nil
}
