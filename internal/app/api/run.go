package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"

	fulfillmentserver "github.com/Apurer/supplier-fulfillment/go"

	ordersmemory "github.com/Apurer/supplier-fulfillment/internal/domains/orders/adapters/memory"
	ordersnotify "github.com/Apurer/supplier-fulfillment/internal/domains/orders/adapters/notify"
	ordersobs "github.com/Apurer/supplier-fulfillment/internal/domains/orders/adapters/observability"
	orderspostgres "github.com/Apurer/supplier-fulfillment/internal/domains/orders/adapters/persistence/postgres"
	ordersworkflows "github.com/Apurer/supplier-fulfillment/internal/domains/orders/adapters/workflows"
	ordersapp "github.com/Apurer/supplier-fulfillment/internal/domains/orders/application"
	ordersports "github.com/Apurer/supplier-fulfillment/internal/domains/orders/ports"
	platformkafka "github.com/Apurer/supplier-fulfillment/internal/platform/kafka"
	platformmetrics "github.com/Apurer/supplier-fulfillment/internal/platform/metrics"
	"github.com/Apurer/supplier-fulfillment/internal/platform/migrations"
	platformobservability "github.com/Apurer/supplier-fulfillment/internal/platform/observability"
	platformpostgres "github.com/Apurer/supplier-fulfillment/internal/platform/postgres"
)

const serviceName = "fulfillment-api"

// Run boots the fulfillment HTTP API with observability, storage, notifications and workflows wired.
// It returns when ctx is cancelled or the server fails.
func Run(ctx context.Context) error {
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	store, cleanupStore, err := BuildStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanupStore()

	dispatcher, cleanupNotifier := BuildNotifier(cfg, logger)
	defer cleanupNotifier()

	coreService := ordersapp.NewService(
		store,
		store,
		ordersapp.WithNotifier(dispatcher),
		ordersapp.WithCart(ordersmemory.NewCarts()),
		ordersapp.WithLogger(logger),
		ordersapp.WithNumberGenerator(ordersapp.NewSequenceNumberGenerator(cfg.OrderNumberPrefix)),
		ordersapp.WithLookupConcurrency(cfg.CatalogLookupConcurrency),
	)
	orderService := ordersobs.New(
		coreService,
		ordersobs.WithLogger(logger),
		ordersobs.WithTracer(instruments.Tracer("internal.orders.application")),
		ordersobs.WithMeter(instruments.Meter("internal.orders.application")),
	)

	var orderWorkflows ordersports.WorkflowOrchestrator = ordersworkflows.NewInlineOrderWorkflows(orderService)
	if temporalClient, err := connectTemporalClient(cfg, instruments); err != nil {
		logger.Warn("Temporal workflows unavailable, placing orders inline", slog.String("error", err.Error()))
	} else {
		defer temporalClient.Close()
		orderWorkflows = ordersworkflows.NewTemporalOrderWorkflows(temporalClient)
		logger.Info("Temporal workflows enabled", slog.String("namespace", cfg.TemporalNamespace))
	}

	handlers := fulfillmentserver.ApiHandleFunctions{
		OrderAPI:   fulfillmentserver.NewOrderAPI(orderService, orderWorkflows),
		PaymentAPI: fulfillmentserver.NewPaymentAPI(orderService),
	}
	serverMetrics := platformmetrics.NewServerMetrics("api", prometheus.NewRegistry())

	router := gin.New()
	router.Use(gin.Recovery(), otelgin.Middleware(serviceName), serverMetrics.Middleware())
	router = fulfillmentserver.NewRouterWithGinEngine(router, handlers)
	router.GET("/metrics", gin.WrapH(serverMetrics.Handler()))
	router.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Fulfillment API listening", slog.String("addr", server.Addr))
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		logger.Error("Fulfillment API server exited", slog.String("addr", server.Addr), slog.String("error", err.Error()))
		return err
	case <-ctx.Done():
		logger.Info("Fulfillment API shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}

// Store is the storage surface the engine needs: the unit of work and the catalog reader.
type Store interface {
	ordersports.UnitOfWork
	ordersports.CatalogReader
}

// BuildStore returns the Postgres store when POSTGRES_DSN is reachable and the in-memory store
// otherwise. The memory store is always seeded with the demo catalog; Postgres only when
// SEED_DEMO_CATALOG is set.
func BuildStore(ctx context.Context, cfg Config, logger *slog.Logger) (Store, func(), error) {
	if cfg.PostgresDSN == "" {
		logger.Warn("POSTGRES_DSN not set, falling back to in-memory store")
		return memoryStore(logger)
	}
	db, err := platformpostgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Warn("failed to connect to postgres, falling back to in-memory store", slog.String("error", err.Error()))
		return memoryStore(logger)
	}
	cleanup := platformpostgres.Closer(db)
	if cfg.AutoMigrate {
		if err := migrations.Run(db); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("failed to migrate schema: %w", err)
		}
		logger.Info("fulfillment schema migrated")
	}
	store := orderspostgres.NewStore(db)
	if cfg.SeedCatalog {
		for _, product := range demoProducts {
			if err := store.UpsertProduct(ctx, product); err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("failed to seed product %d: %w", product.ID, err)
			}
		}
		for _, service := range demoServices {
			if err := store.UpsertService(ctx, service); err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("failed to seed service %d: %w", service.ID, err)
			}
		}
	}
	logger.Info("order store configured with postgres")
	return store, cleanup, nil
}

func memoryStore(logger *slog.Logger) (Store, func(), error) {
	store := ordersmemory.NewStore()
	for _, product := range demoProducts {
		if err := store.UpsertProduct(product); err != nil {
			return nil, nil, err
		}
	}
	for _, service := range demoServices {
		if err := store.UpsertService(service); err != nil {
			return nil, nil, err
		}
	}
	logger.Info("in-memory store seeded with demo catalog", slog.Int("products", len(demoProducts)), slog.Int("services", len(demoServices)))
	return store, func() {}, nil
}

// BuildNotifier fans order events out to the log and, when KAFKA_BROKERS is set, to Kafka through
// an async dispatcher. The cleanup drains pending events.
func BuildNotifier(cfg Config, logger *slog.Logger) (*ordersnotify.Dispatcher, func()) {
	sinks := ordersnotify.Fanout{ordersnotify.NewLogNotifier(logger)}
	closeWriter := func() {}
	if kafkaClient := platformkafka.NewClient(cfg.KafkaBrokers); kafkaClient.Enabled() {
		writer := kafkaClient.NewWriter(cfg.KafkaTopic)
		sinks = append(sinks, ordersnotify.NewKafkaNotifier(writer))
		closeWriter = func() {
			if err := writer.Close(); err != nil {
				logger.Warn("failed to close kafka writer", slog.String("error", err.Error()))
			}
		}
		logger.Info("order events published to kafka", slog.String("topic", cfg.KafkaTopic), slog.Any("brokers", kafkaClient.Brokers))
	}
	dispatcher := ordersnotify.NewDispatcher(sinks, cfg.NotifyQueueSize, logger)
	return dispatcher, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := dispatcher.Close(ctx); err != nil {
			logger.Warn("pending notifications dropped on shutdown", slog.String("error", err.Error()))
		}
		closeWriter()
	}
}

func connectTemporalClient(cfg Config, instruments *platformobservability.Instruments) (client.Client, error) {
	if cfg.TemporalDisabled {
		return nil, errors.New("temporal disabled via TEMPORAL_DISABLED env")
	}
	tracerOptions := temporalotel.TracerOptions{}
	if instruments != nil {
		tracerOptions.Tracer = instruments.Tracer("temporal-client")
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		return nil, err
	}
	options := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    workerlog.NewStructuredLogger(effectiveLogger(instruments)),
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}

func effectiveLogger(instruments *platformobservability.Instruments) *slog.Logger {
	if instruments != nil && instruments.Logger != nil {
		return instruments.Logger
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}
