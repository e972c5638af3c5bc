package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestConnect_RejectsEmptyDSN(t *testing.T) {
	_, err := Connect(context.Background(), "   ")
	require.ErrorIs(t, err, ErrEmptyDSN)
}

func TestNewPoolSettings(t *testing.T) {
	require.Equal(t, defaultPoolSettings(), newPoolSettings())

	tuned := newPoolSettings(
		WithMaxOpenConns(4),
		WithMaxIdleConns(10),
		WithConnMaxLifetime(time.Minute),
		WithPingTimeout(time.Second),
		nil,
	)
	require.Equal(t, 4, tuned.maxOpen)
	require.Equal(t, 4, tuned.maxIdle, "idle connections never exceed the open cap")
	require.Equal(t, time.Minute, tuned.maxLifetime)
	require.Equal(t, time.Second, tuned.pingTimeout)

	ignored := newPoolSettings(WithMaxOpenConns(0), WithConnMaxLifetime(-time.Second))
	require.Equal(t, defaultPoolSettings().maxOpen, ignored.maxOpen)
	require.Equal(t, defaultPoolSettings().maxLifetime, ignored.maxLifetime)
}

func TestConfigTranslatesErrors(t *testing.T) {
	require.True(t, Config().TranslateError)
}

func TestCloser_NilDB(t *testing.T) {
	require.NotPanics(t, func() { Closer(nil)() })
}
