package source

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strconv"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/poiesic/namescan/config"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"
)

// slowStatementThreshold is the duration above which statements are logged as slow.
const slowStatementThreshold = 2 * time.Second

// Connection is a live handle to one source, scoped to a single query.
type Connection interface {
	// Dialect returns the SQL dialect of the source.
	Dialect() Dialect
	// DB returns the underlying gorm handle.
	DB() *gorm.DB
	// Close releases the connection. It must be called exactly once.
	Close() error
}

// Connector opens connections to named sources.
// Implementations must be safe for concurrent use.
type Connector interface {
	Connect(ctx context.Context, sourceID string) (Connection, error)
}

// Provider opens a fresh connection per call. Nothing is pooled or shared
// between calls, so a broken connection to one source cannot affect another.
type Provider struct {
	sources  map[string]config.SourceConfig
	timeout  time.Duration
	attempts int
	delay    time.Duration
	logger   *slog.Logger
}

var _ Connector = (*Provider)(nil)

// Option configures a Provider.
type Option func(*Provider) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Provider) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithRetry makes Connect try up to attempts times with exponential backoff
// starting at delay.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(p *Provider) error {
		if attempts < 1 {
			return ErrInvalidAttempts
		}
		p.attempts = attempts
		p.delay = delay
		return nil
	}
}

// NewProvider creates a Provider for the sources in cfg.
func NewProvider(cfg *config.Config, opts ...Option) (*Provider, error) {
	if cfg == nil {
		return nil, ErrConfigRequired
	}

	p := &Provider{
		sources:  make(map[string]config.SourceConfig, len(cfg.Sources)),
		timeout:  cfg.Search.ConnectTimeout,
		attempts: max(cfg.Search.ConnectAttempts, 1),
		delay:    cfg.Search.RetryDelay,
		logger:   slog.Default(),
	}
	for _, s := range cfg.Sources {
		p.sources[s.ID] = s
	}

	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	p.logger = p.logger.With("component", "source-provider")

	return p, nil
}

// Connect opens and pings a new connection to sourceID. Failures are
// returned as *core.ConnectionError.
func (p *Provider) Connect(ctx context.Context, sourceID string) (Connection, error) {
	src, ok := p.sources[sourceID]
	if !ok {
		return nil, connectionError(sourceID, ErrUnknownSource)
	}

	var conn Connection
	err := retryWithBackoff(ctx, func() error {
		var openErr error
		conn, openErr = p.open(ctx, src)
		if openErr != nil {
			p.logger.Debug("connect attempt failed", "source", sourceID, "err", openErr)
		}
		return openErr
	}, p.attempts, p.delay)
	if err != nil {
		return nil, connectionError(sourceID, err)
	}
	return conn, nil
}

func (p *Provider) open(ctx context.Context, src config.SourceConfig) (Connection, error) {
	db, dialect, err := OpenDB(ctx, src, p.timeout, p.logger)
	if err != nil {
		return nil, err
	}
	return &gormConnection{db: db, dialect: dialect}, nil
}

// OpenDB opens a gorm handle to src limited to a single connection and pings
// it within timeout. The caller closes the handle through db.DB().
func OpenDB(ctx context.Context, src config.SourceConfig, timeout time.Duration, logger *slog.Logger) (*gorm.DB, Dialect, error) {
	if logger == nil {
		logger = slog.Default()
	}

	dialector, dialect, err := Dialector(src, timeout)
	if err != nil {
		return nil, nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 newGormLogger(logger, slowStatementThreshold),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		sqlDB.Close()
		return nil, nil, err
	}

	return db, dialect, nil
}

// Dialector returns the gorm dialector and query dialect for a source.
// timeout bounds connection establishment where the driver supports it.
func Dialector(src config.SourceConfig, timeout time.Duration) (gorm.Dialector, Dialect, error) {
	dialect, err := DialectFor(src.Driver)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %q", err, src.Driver)
	}

	switch src.Driver {
	case config.DriverSQLServer:
		return sqlserver.Open(sqlServerDSN(src, timeout)), dialect, nil
	case config.DriverMySQL:
		return mysql.Open(mySQLDSN(src, timeout)), dialect, nil
	default:
		registerSQLiteDriver()
		return sqlite.New(sqlite.Config{
			DriverName: SQLiteDriverName,
			DSN:        sqliteDSN(src, timeout),
		}), dialect, nil
	}
}

func sqlServerDSN(src config.SourceConfig, timeout time.Duration) string {
	if src.DSN != "" {
		return src.DSN
	}
	database := src.Database
	if database == "" {
		database = src.ID
	}
	host := src.Host
	if src.Port > 0 {
		host = net.JoinHostPort(src.Host, strconv.Itoa(src.Port))
	}

	query := url.Values{}
	query.Set("database", database)
	query.Set("encrypt", "true")
	query.Set("TrustServerCertificate", "false")
	query.Set("connection timeout", strconv.Itoa(int(timeout.Seconds())))

	u := &url.URL{
		Scheme:   "sqlserver",
		User:     url.UserPassword(src.Username, src.Password),
		Host:     host,
		RawQuery: query.Encode(),
	}
	return u.String()
}

func mySQLDSN(src config.SourceConfig, timeout time.Duration) string {
	if src.DSN != "" {
		return src.DSN
	}
	port := src.Port
	if port == 0 {
		port = 3306
	}
	database := src.Database
	if database == "" {
		database = src.ID
	}

	c := mysqldriver.NewConfig()
	c.User = src.Username
	c.Passwd = src.Password
	c.Net = "tcp"
	c.Addr = net.JoinHostPort(src.Host, strconv.Itoa(port))
	c.DBName = database
	c.Timeout = timeout
	c.ParseTime = true
	c.Params = map[string]string{"charset": "utf8mb4"}
	return c.FormatDSN()
}

func sqliteDSN(src config.SourceConfig, timeout time.Duration) string {
	if src.DSN != "" {
		return src.DSN
	}
	return "file:" + src.Path + "?_busy_timeout=" + strconv.FormatInt(timeout.Milliseconds(), 10)
}

type gormConnection struct {
	db      *gorm.DB
	dialect Dialect
}

func (c *gormConnection) Dialect() Dialect { return c.dialect }

func (c *gormConnection) DB() *gorm.DB { return c.db }

func (c *gormConnection) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
