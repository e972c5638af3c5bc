package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// ErrEmptyDSN is returned when no connection string is configured.
var ErrEmptyDSN = errors.New("postgres DSN is empty")

// Config returns the GORM settings shared by every connection. TranslateError lets adapters
// match gorm.ErrDuplicatedKey and friends instead of raw SQLSTATE codes.
func Config() *gorm.Config {
	return &gorm.Config{TranslateError: true}
}

type poolSettings struct {
	maxOpen     int
	maxIdle     int
	maxLifetime time.Duration
	pingTimeout time.Duration
}

func defaultPoolSettings() poolSettings {
	return poolSettings{maxOpen: 20, maxIdle: 5, maxLifetime: 30 * time.Minute, pingTimeout: 5 * time.Second}
}

// Option tunes the connection pool.
type Option func(*poolSettings)

// WithMaxOpenConns caps concurrent connections. Every unit of work holds one for its duration.
func WithMaxOpenConns(n int) Option {
	return func(s *poolSettings) {
		if n > 0 {
			s.maxOpen = n
		}
	}
}

// WithMaxIdleConns sets how many idle connections are kept.
func WithMaxIdleConns(n int) Option {
	return func(s *poolSettings) {
		if n >= 0 {
			s.maxIdle = n
		}
	}
}

// WithConnMaxLifetime recycles connections after d.
func WithConnMaxLifetime(d time.Duration) Option {
	return func(s *poolSettings) {
		if d > 0 {
			s.maxLifetime = d
		}
	}
}

// WithPingTimeout bounds the connectivity check performed by Connect.
func WithPingTimeout(d time.Duration) Option {
	return func(s *poolSettings) {
		if d > 0 {
			s.pingTimeout = d
		}
	}
}

func newPoolSettings(opts ...Option) poolSettings {
	settings := defaultPoolSettings()
	for _, opt := range opts {
		if opt != nil {
			opt(&settings)
		}
	}
	if settings.maxIdle > settings.maxOpen {
		settings.maxIdle = settings.maxOpen
	}
	return settings
}

// Connect opens a PostgreSQL connection via GORM, applies the pool settings and verifies
// connectivity before returning.
func Connect(ctx context.Context, dsn string, opts ...Option) (*gorm.DB, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, ErrEmptyDSN
	}
	settings := newPoolSettings(opts...)
	db, err := gorm.Open(postgres.Open(dsn), Config())
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(settings.maxOpen)
	sqlDB.SetMaxIdleConns(settings.maxIdle)
	sqlDB.SetConnMaxLifetime(settings.maxLifetime)

	ctx, cancel := context.WithTimeout(ctx, settings.pingTimeout)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// Closer returns a cleanup func releasing the pool behind db. A nil db yields a no-op.
func Closer(db *gorm.DB) func() {
	if db == nil {
		return func() {}
	}
	sqlDB, err := db.DB()
	if err != nil {
		return func() {}
	}
	return func() { _ = sqlDB.Close() }
}
