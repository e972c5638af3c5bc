package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/Apurer/supplier-fulfillment/internal/app/api"
	orderspostgres "github.com/Apurer/supplier-fulfillment/internal/domains/orders/adapters/persistence/postgres"
	platformpostgres "github.com/Apurer/supplier-fulfillment/internal/platform/postgres"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	cfg, err := api.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	db, err := platformpostgres.Connect(ctx, cfg.PostgresDSN, platformpostgres.WithMaxOpenConns(2))
	if err != nil {
		log.Fatalf("cannot purge idempotency keys: %v", err)
	}
	defer platformpostgres.Closer(db)()

	cutoff := time.Now().UTC().Add(-cfg.IdempotencyTTL)
	removed, err := orderspostgres.NewStore(db).Idempotency().PurgeBefore(ctx, cutoff)
	if err != nil {
		log.Fatalf("failed to purge idempotency keys: %v", err)
	}
	logger.Info("idempotency purge completed", slog.Int64("removed", removed), slog.Time("cutoff", cutoff))
}
