package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/opsdeck/cheatsheets/constants"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed cheats.config.schema.json
var configSchema string

type Config struct {
	Content ContentConfig  `json:"content"`
	Storage StorageConfig  `json:"storage"`
	Blob    BlobConfig     `json:"blob"`
	Event   EventConfig    `json:"event"`
	HTTP    HTTPConfig     `json:"http"`
	Log     LogConfig      `json:"log"`
	Tracing *TracingConfig `json:"tracing,omitempty"`
	Render  RenderConfig   `json:"render"`
}

// ContentConfig selects where the cheatsheet library is read from.
type ContentConfig struct {
	// Source is one of "embedded", "dir" or "snapshot".
	Source string `json:"source"`
	// Dir is the library root when Source is "dir".
	Dir string `json:"dir,omitempty"`
	// CategoriesFile overrides the embedded categories table.
	CategoriesFile string `json:"categories_file,omitempty"`
	// Watch enables hot reload for the "dir" source.
	Watch bool `json:"watch,omitempty"`
	// DebounceMillis coalesces bursts of file events before reloading.
	DebounceMillis int `json:"debounce_ms,omitempty"`
}

type StorageConfig struct {
	Driver string `json:"driver"`
	DSN    string `json:"dsn"`
}

type BlobConfig struct {
	Driver    string `json:"driver"`
	Directory string `json:"directory,omitempty"`
	Bucket    string `json:"bucket,omitempty"`
	Region    string `json:"region,omitempty"`
	Prefix    string `json:"prefix,omitempty"`
}

type EventConfig struct {
	Driver    string `json:"driver"`
	URL       string `json:"url,omitempty"`
	ClusterID string `json:"cluster_id,omitempty"`
}

type HTTPConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
	// RateLimit is requests per second per client IP. Zero takes the
	// default and a negative value turns limiting off.
	RateLimit      float64 `json:"rate_limit,omitempty"`
	RateLimitBurst int     `json:"rate_limit_burst,omitempty"`
	// TrustedProxies lists the CIDRs or addresses whose X-Forwarded-For
	// header is used to find the client IP.
	TrustedProxies []string `json:"trusted_proxies,omitempty"`
}

type LogConfig struct {
	Level string `json:"level"`
}

// TracingConfig configures the OpenTelemetry exporter.
type TracingConfig struct {
	Exporter    string `json:"exporter"`
	Endpoint    string `json:"endpoint,omitempty"`
	ServiceName string `json:"service_name,omitempty"`
}

// RenderConfig tunes markdown rendering and the rendered-page cache.
type RenderConfig struct {
	CacheTTLSeconds int `json:"cache_ttl_seconds,omitempty"`
	TerminalWidth   int `json:"terminal_width,omitempty"`
}

// Addr returns the listen address for the HTTP server.
func (h HTTPConfig) Addr() string {
	if h.Port == 0 {
		return h.Host + constants.DefaultHTTPAddr
	}
	return fmt.Sprintf("%s:%d", h.Host, h.Port)
}

// LoadConfig reads a JSON config file, validates it against the embedded
// schema and fills in defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseConfig(data)
}

// ParseConfig validates and decodes raw config JSON.
func ParseConfig(data []byte) (*Config, error) {
	if err := ValidateConfig(data); err != nil {
		return nil, err
	}
	var cfg Config
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	ApplyDefaults(&cfg)
	return &cfg, nil
}

// ValidateConfig checks raw config JSON against the embedded schema.
func ValidateConfig(data []byte) error {
	schema, err := jsonschema.CompileString(constants.ConfigSchemaFile, configSchema)
	if err != nil {
		return err
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("invalid config JSON: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("config schema validation error: %w", err)
	}
	return nil
}

// LoadOrDefault loads path if it exists and falls back to the defaults
// otherwise. Environment overrides are applied in both cases.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		cfg = Default()
	}
	ApplyEnv(cfg)
	return cfg, nil
}

// Default returns a config with every default filled in.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills zero values with defaults.
func ApplyDefaults(cfg *Config) {
	if cfg.Content.Source == "" {
		cfg.Content.Source = constants.ContentSourceEmbedded
		if cfg.Content.Dir != "" {
			cfg.Content.Source = constants.ContentSourceDir
		}
	}
	if cfg.Content.DebounceMillis == 0 {
		cfg.Content.DebounceMillis = DefaultDebounceMillis
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = constants.StorageDriverSQLite
	}
	if cfg.Storage.Driver == constants.StorageDriverSQLite && cfg.Storage.DSN == "" {
		cfg.Storage.DSN = DefaultSQLiteDSN
	}
	if cfg.Blob.Driver == "" {
		cfg.Blob.Driver = constants.BlobDriverFilesystem
	}
	if cfg.Blob.Driver == constants.BlobDriverFilesystem && cfg.Blob.Directory == "" {
		cfg.Blob.Directory = DefaultExportDir
	}
	if cfg.Event.Driver == "" {
		cfg.Event.Driver = constants.EventDriverMemory
	}
	if cfg.HTTP.RateLimit == 0 {
		cfg.HTTP.RateLimit = constants.DefaultRateLimitPerSec
	}
	if cfg.HTTP.RateLimitBurst == 0 {
		cfg.HTTP.RateLimitBurst = constants.DefaultRateLimitBurst
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Render.CacheTTLSeconds == 0 {
		cfg.Render.CacheTTLSeconds = DefaultCacheTTLSeconds
	}
	if cfg.Render.TerminalWidth == 0 {
		cfg.Render.TerminalWidth = DefaultTerminalWidth
	}
}

// ApplyEnv applies environment variable overrides.
func ApplyEnv(cfg *Config) {
	if dir := os.Getenv(constants.EnvContentDir); dir != "" {
		cfg.Content.Source = constants.ContentSourceDir
		cfg.Content.Dir = dir
	}
	if dsn := os.Getenv(constants.EnvDatabaseURL); dsn != "" {
		if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
			cfg.Storage.Driver = constants.StorageDriverPostgres
		} else {
			cfg.Storage.Driver = constants.StorageDriverSQLite
		}
		cfg.Storage.DSN = dsn
	}
	if bucket := os.Getenv(constants.EnvS3Bucket); bucket != "" {
		cfg.Blob.Driver = constants.BlobDriverS3
		cfg.Blob.Bucket = bucket
		if region := os.Getenv(constants.EnvS3Region); region != "" {
			cfg.Blob.Region = region
		}
	}
	if addr := os.Getenv(constants.EnvAddr); addr != "" {
		host, port, err := net.SplitHostPort(addr)
		if p, perr := strconv.Atoi(port); err == nil && perr == nil {
			cfg.HTTP.Host = host
			cfg.HTTP.Port = p
		}
	}
	if os.Getenv(constants.EnvDebug) != "" {
		cfg.Log.Level = "debug"
	}
}
