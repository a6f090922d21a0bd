package config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/poiesic/namescan/core"
)

// CurrentVersion is the only configuration layout this build understands.
const CurrentVersion = 1

// Supported source drivers.
const (
	DriverSQLServer = "sqlserver"
	DriverMySQL     = "mysql"
	DriverSQLite    = "sqlite"
)

// Supported audit backends.
const (
	AuditBadger = "badger"
	AuditSQL    = "sql"
)

var drivers = []string{DriverSQLServer, DriverMySQL, DriverSQLite}

// Config is the single, versioned description of what namescan searches and how.
// It is built once at process start and passed by reference to the components
// that need it.
type Config struct {
	Version int            `mapstructure:"version" yaml:"version"`
	Sources []SourceConfig `mapstructure:"sources" yaml:"sources"`
	Targets []TargetConfig `mapstructure:"targets" yaml:"targets"`
	Search  SearchConfig   `mapstructure:"search" yaml:"search"`
	Audit   AuditConfig    `mapstructure:"audit" yaml:"audit"`
	HTTP    HTTPConfig     `mapstructure:"http" yaml:"http"`
}

// SourceConfig describes how to reach one relational source.
type SourceConfig struct {
	ID       string `mapstructure:"id" yaml:"id"`
	Driver   string `mapstructure:"driver" yaml:"driver"`
	Host     string `mapstructure:"host" yaml:"host,omitempty"`
	Port     int    `mapstructure:"port" yaml:"port,omitempty"`
	Database string `mapstructure:"database" yaml:"database,omitempty"`
	Username string `mapstructure:"username" yaml:"username,omitempty"`
	Password string `mapstructure:"password" yaml:"-"`
	// Path is the database file for sqlite sources.
	Path string `mapstructure:"path" yaml:"path,omitempty"`
	// DSN, when set, is used verbatim instead of the fields above.
	DSN string `mapstructure:"dsn" yaml:"-"`
}

// TargetConfig is one searchable column.
type TargetConfig struct {
	Source string `mapstructure:"source" yaml:"source"`
	Schema string `mapstructure:"schema" yaml:"schema"`
	Table  string `mapstructure:"table" yaml:"table"`
	Column string `mapstructure:"column" yaml:"column"`
	// Probability overrides Search.Probability for records from this target.
	Probability *float64 `mapstructure:"probability" yaml:"probability,omitempty"`
}

// SearchConfig tunes the fan-out search.
type SearchConfig struct {
	// PoolSize bounds concurrently open connections. 0 means min(32, 2*GOMAXPROCS).
	PoolSize int `mapstructure:"pool_size" yaml:"pool_size"`

	// Probability is the confidence attached to every match unless a target overrides it.
	Probability float64 `mapstructure:"probability" yaml:"probability"`

	// ConnectTimeout is the structural bound on establishing a connection.
	ConnectTimeout time.Duration `mapstructure:"connect_timeout" yaml:"connect_timeout"`

	// ConnectAttempts is how many times a connection is tried before the target fails.
	ConnectAttempts int `mapstructure:"connect_attempts" yaml:"connect_attempts"`

	// RetryDelay is the base delay of the exponential backoff between attempts.
	RetryDelay time.Duration `mapstructure:"retry_delay" yaml:"retry_delay"`
}

// AuditConfig selects where processed decisions are recorded.
type AuditConfig struct {
	Backend string `mapstructure:"backend" yaml:"backend"`
	// Path is the BadgerDB directory for the badger backend.
	Path string `mapstructure:"path" yaml:"path,omitempty"`
	// Source names a configured source that holds the results table for the sql backend.
	Source string `mapstructure:"source" yaml:"source,omitempty"`
	Table  string `mapstructure:"table" yaml:"table,omitempty"`
}

// HTTPConfig configures the HTTP surface.
type HTTPConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithSources appends source definitions.
func WithSources(sources ...SourceConfig) ConfigOption {
	return func(c *Config) {
		c.Sources = append(c.Sources, sources...)
	}
}

// WithTargets appends target definitions.
func WithTargets(targets ...TargetConfig) ConfigOption {
	return func(c *Config) {
		c.Targets = append(c.Targets, targets...)
	}
}

// WithPoolSize overrides the worker pool size.
func WithPoolSize(size int) ConfigOption {
	return func(c *Config) {
		c.Search.PoolSize = size
	}
}

// WithProbability sets the default match probability.
func WithProbability(p float64) ConfigOption {
	return func(c *Config) {
		c.Search.Probability = p
	}
}

// WithConnectTimeout sets the structural connection timeout.
func WithConnectTimeout(d time.Duration) ConfigOption {
	return func(c *Config) {
		c.Search.ConnectTimeout = d
	}
}

// WithAuditPath selects the badger audit backend at the given directory.
func WithAuditPath(path string) ConfigOption {
	return func(c *Config) {
		c.Audit.Backend = AuditBadger
		c.Audit.Path = path
	}
}

// DefaultConfig returns a Config with no sources and the stock tuning values.
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentVersion,
		Search: SearchConfig{
			PoolSize:        0,
			Probability:     0.95,
			ConnectTimeout:  30 * time.Second,
			ConnectAttempts: 1,
			RetryDelay:      500 * time.Millisecond,
		},
		Audit: AuditConfig{
			Backend: AuditBadger,
			Path:    "./audit_db",
			Table:   "identified_names",
		},
		HTTP: HTTPConfig{
			Addr: ":8000",
		},
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithSources(SourceConfig{ID: "crm", Driver: DriverSQLite, Path: "crm.db"}),
//	    WithTargets(TargetConfig{Source: "crm", Table: "customers", Column: "name"}),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize puts the configuration in canonical form: lowercased drivers,
// trimmed identifiers and each target's schema defaulted from its source.
func (c *Config) Normalize() {
	for i := range c.Sources {
		s := &c.Sources[i]
		s.ID = strings.TrimSpace(s.ID)
		s.Driver = strings.ToLower(strings.TrimSpace(s.Driver))
	}
	for i := range c.Targets {
		t := &c.Targets[i]
		t.Source = strings.TrimSpace(t.Source)
		t.Schema = strings.TrimSpace(t.Schema)
		t.Table = strings.TrimSpace(t.Table)
		t.Column = strings.TrimSpace(t.Column)
		if t.Schema == "" {
			if src, ok := c.Source(t.Source); ok {
				t.Schema = DefaultSchema(src)
			}
		}
	}
	c.Audit.Backend = strings.ToLower(strings.TrimSpace(c.Audit.Backend))
	if c.Search.ConnectAttempts < 1 {
		c.Search.ConnectAttempts = 1
	}
}

// DefaultSchema returns the schema used when a target leaves it blank.
func DefaultSchema(src SourceConfig) string {
	switch src.Driver {
	case DriverSQLServer:
		return "dbo"
	case DriverMySQL:
		return src.Database
	default:
		return "main"
	}
}

// Validate checks that the configuration is complete and consistent.
// It normalizes the configuration first.
func (c *Config) Validate() error {
	c.Normalize()

	if c.Version != CurrentVersion {
		return fmt.Errorf("%w: got %d, want %d", ErrUnsupportedVersion, c.Version, CurrentVersion)
	}

	seen := make(map[string]bool, len(c.Sources))
	for _, s := range c.Sources {
		if s.ID == "" {
			return fmt.Errorf("%w: source id is empty", ErrInvalidSource)
		}
		if seen[s.ID] {
			return fmt.Errorf("%w: %q", ErrDuplicateSource, s.ID)
		}
		seen[s.ID] = true
		if !slices.Contains(drivers, s.Driver) {
			return fmt.Errorf("%w: source %q uses %q", ErrUnsupportedDriver, s.ID, s.Driver)
		}
		if s.Driver == DriverSQLite && s.Path == "" && s.DSN == "" {
			return fmt.Errorf("%w: sqlite source %q needs a path", ErrInvalidSource, s.ID)
		}
	}

	if len(c.Targets) == 0 {
		return ErrNoTargets
	}
	tuples := make(map[core.SearchTarget]bool, len(c.Targets))
	for _, t := range c.Targets {
		if !seen[t.Source] {
			return fmt.Errorf("%w: %q", ErrUnknownSource, t.Source)
		}
		target := t.SearchTarget()
		if err := core.ValidateTarget(target); err != nil {
			return err
		}
		if tuples[target] {
			return fmt.Errorf("%w: %s", ErrDuplicateTarget, target.Qualified())
		}
		tuples[target] = true
		if t.Probability != nil && !core.IsValidProbability(*t.Probability) {
			return fmt.Errorf("%w: target %s", core.ErrInvalidProbability, target.Qualified())
		}
	}

	if c.Search.PoolSize < 0 {
		return fmt.Errorf("%w: pool size %d", ErrInvalidSearch, c.Search.PoolSize)
	}
	if !core.IsValidProbability(c.Search.Probability) {
		return fmt.Errorf("%w: %w", ErrInvalidSearch, core.ErrInvalidProbability)
	}
	if c.Search.ConnectTimeout <= 0 {
		return fmt.Errorf("%w: connect timeout must be positive", ErrInvalidSearch)
	}

	switch c.Audit.Backend {
	case AuditBadger:
		if c.Audit.Path == "" {
			return fmt.Errorf("%w: badger backend needs a path", ErrInvalidAudit)
		}
	case AuditSQL:
		if !seen[c.Audit.Source] {
			return fmt.Errorf("%w: sql backend source %q is not configured", ErrInvalidAudit, c.Audit.Source)
		}
		if err := core.ValidateIdentifier(c.Audit.Table); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidAudit, err)
		}
	default:
		return fmt.Errorf("%w: unknown backend %q", ErrInvalidAudit, c.Audit.Backend)
	}

	return nil
}

// Source looks up a source by id.
func (c *Config) Source(id string) (SourceConfig, bool) {
	for _, s := range c.Sources {
		if s.ID == id {
			return s, true
		}
	}
	return SourceConfig{}, false
}

// SearchTarget converts the entry into its domain form.
func (t TargetConfig) SearchTarget() core.SearchTarget {
	return core.SearchTarget{
		SourceID: t.Source,
		Schema:   t.Schema,
		Table:    t.Table,
		Column:   t.Column,
	}
}

// ProbabilityFor returns the probability attached to matches from target.
func (c *Config) ProbabilityFor(target core.SearchTarget) float64 {
	for _, t := range c.Targets {
		if t.Probability != nil && t.SearchTarget() == target {
			return *t.Probability
		}
	}
	return c.Search.Probability
}
