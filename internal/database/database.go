package database

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"
	"time"

	"catalog/internal/config"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const pingTimeout = 5 * time.Second

// Gateway owns the shared connection pool and hands out one scoped session per unit of work.
type Gateway struct {
	db     *gorm.DB
	sqlDB  *sql.DB
	driver string
	active atomic.Int64
	logger zerolog.Logger
}

// Open resolves the dialect from cfg, opens the pool and verifies connectivity.
// A missing or malformed connection string yields a *config.ConfigurationError.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger zerolog.Logger) (*Gateway, error) {
	driver, dsn, err := cfg.Dialect()
	if err != nil {
		return nil, err
	}

	var dialector gorm.Dialector
	switch driver {
	case config.DriverPostgres:
		dialector = postgres.Open(dsn)
	case config.DriverSQLite:
		dialector = sqlite.Open(dsn)
	default:
		return nil, &config.ConfigurationError{Key: "DATABASE_URL", Reason: fmt.Sprintf("unsupported driver %q", driver)}
	}

	logger = logger.With().Str("component", "gateway").Str("driver", driver).Logger()

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger: gormlogger.New(gormWriter{logger: logger}, gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access connection pool: %w", err)
	}

	if driver == config.DriverSQLite {
		// sqlite allows a single writer, and an in-memory database lives only as
		// long as its last connection.
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetConnMaxLifetime(0)
	} else {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info().
		Int("max_open_conns", sqlDB.Stats().MaxOpenConnections).
		Msg("database connection pool created successfully")

	return &Gateway{
		db:     db,
		sqlDB:  sqlDB,
		driver: driver,
		logger: logger,
	}, nil
}

// View runs fn on a session pinned to a single pooled connection.
// The connection is returned to the pool on every exit path, including panics.
func (g *Gateway) View(ctx context.Context, fn func(tx *gorm.DB) error) error {
	defer g.acquire()()
	return g.db.WithContext(ctx).Connection(fn)
}

// Update runs fn inside one transaction. It commits once when fn returns nil and
// rolls back when fn returns an error or panics.
func (g *Gateway) Update(ctx context.Context, fn func(tx *gorm.DB) error) error {
	defer g.acquire()()
	return g.db.WithContext(ctx).Transaction(fn)
}

func (g *Gateway) acquire() (release func()) {
	g.active.Add(1)
	return func() { g.active.Add(-1) }
}

// Active reports the number of sessions currently held.
func (g *Gateway) Active() int64 {
	return g.active.Load()
}

// EnsureSchema creates each table that does not exist yet. Existing tables are never altered.
func (g *Gateway) EnsureSchema(ctx context.Context, tables ...any) error {
	migrator := g.db.WithContext(ctx).Migrator()
	for _, table := range tables {
		if migrator.HasTable(table) {
			continue
		}
		if err := migrator.CreateTable(table); err != nil {
			return fmt.Errorf("failed to create table for %T: %w", table, err)
		}
		g.logger.Info().Str("table", fmt.Sprintf("%T", table)).Msg("table created")
	}
	return nil
}

// Ping verifies the database is reachable.
func (g *Gateway) Ping(ctx context.Context) error {
	return g.sqlDB.PingContext(ctx)
}

// Stats returns connection pool statistics.
func (g *Gateway) Stats() sql.DBStats {
	return g.sqlDB.Stats()
}

// Driver returns the resolved driver name.
func (g *Gateway) Driver() string {
	return g.driver
}

// Close closes the pool. Sessions still in flight fail afterwards.
func (g *Gateway) Close() error {
	if active := g.Active(); active > 0 {
		g.logger.Warn().Int64("active_sessions", active).Msg("closing gateway with sessions in flight")
	}
	if err := g.sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	g.logger.Info().Msg("database connection pool closed")
	return nil
}

// gormWriter routes gorm's logger output through zerolog.
type gormWriter struct {
	logger zerolog.Logger
}

func (w gormWriter) Printf(format string, args ...interface{}) {
	w.logger.Warn().Str("source", "gorm").Msgf(format, args...)
}
