package api

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.temporal.io/sdk/client"

	"github.com/Apurer/supplier-fulfillment/internal/domains/orders/adapters/notify"
	ordersapp "github.com/Apurer/supplier-fulfillment/internal/domains/orders/application"
)

// Config carries environment-driven settings for the fulfillment processes.
type Config struct {
	Port                     string
	PostgresDSN              string
	AutoMigrate              bool
	SeedCatalog              bool
	TemporalAddress          string
	TemporalNamespace        string
	TemporalDisabled         bool
	KafkaBrokers             string
	KafkaTopic               string
	NotifyQueueSize          int
	OrderNumberPrefix        string
	IdempotencyTTL           time.Duration
	CatalogLookupConcurrency int
}

// LoadConfig reads environment variables, applies defaults, and validates basic constraints.
func LoadConfig() (Config, error) {
	cfg := Config{
		Port:              envDefault("PORT", "8080"),
		PostgresDSN:       strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		AutoMigrate:       isTruthy(os.Getenv("POSTGRES_AUTO_MIGRATE")),
		SeedCatalog:       isTruthy(os.Getenv("SEED_DEMO_CATALOG")),
		TemporalAddress:   envDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		TemporalNamespace: envDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		TemporalDisabled:  isTruthy(os.Getenv("TEMPORAL_DISABLED")),
		KafkaBrokers:      strings.TrimSpace(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:        envDefault("KAFKA_TOPIC", "fulfillment.events"),
		OrderNumberPrefix: envDefault("ORDER_NUMBER_PREFIX", ordersapp.DefaultOrderNumberPrefix),
	}
	var err error
	if cfg.NotifyQueueSize, err = positiveInt("NOTIFY_QUEUE_SIZE", notify.DefaultQueueSize); err != nil {
		return Config{}, err
	}
	if cfg.CatalogLookupConcurrency, err = positiveInt("CATALOG_LOOKUP_CONCURRENCY", 8); err != nil {
		return Config{}, err
	}
	ttlHours, err := positiveInt("IDEMPOTENCY_TTL_HOURS", 24)
	if err != nil {
		return Config{}, err
	}
	cfg.IdempotencyTTL = time.Duration(ttlHours) * time.Hour
	if _, err := strconv.Atoi(cfg.Port); err != nil {
		return Config{}, fmt.Errorf("PORT must be numeric, got %q", cfg.Port)
	}
	return cfg, nil
}

// Addr is the listen address derived from Port.
func (c Config) Addr() string {
	return ":" + c.Port
}

func positiveInt(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer", key)
	}
	return value, nil
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}
