package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/supplier-fulfillment/internal/app/api"
	ordersmemory "github.com/Apurer/supplier-fulfillment/internal/domains/orders/adapters/memory"
	ordersobs "github.com/Apurer/supplier-fulfillment/internal/domains/orders/adapters/observability"
	ordersapp "github.com/Apurer/supplier-fulfillment/internal/domains/orders/application"
	platformobservability "github.com/Apurer/supplier-fulfillment/internal/platform/observability"
	orderactivities "github.com/Apurer/supplier-fulfillment/internal/platform/temporal/activities/orders"
	orderworkflows "github.com/Apurer/supplier-fulfillment/internal/platform/temporal/workflows/orders"
)

func main() {
	ctx := context.Background()
	const serviceName = "fulfillment-worker"
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	cfg, err := api.LoadConfig()
	if err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	store, cleanupStore, err := api.BuildStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to build order store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer cleanupStore()
	dispatcher, cleanupNotifier := api.BuildNotifier(cfg, logger)
	defer cleanupNotifier()

	orderService := ordersobs.New(
		ordersapp.NewService(
			store,
			store,
			ordersapp.WithNotifier(dispatcher),
			ordersapp.WithCart(ordersmemory.NewCarts()),
			ordersapp.WithLogger(logger),
			ordersapp.WithNumberGenerator(ordersapp.NewSequenceNumberGenerator(cfg.OrderNumberPrefix)),
			ordersapp.WithLookupConcurrency(cfg.CatalogLookupConcurrency),
		),
		ordersobs.WithLogger(logger),
		ordersobs.WithTracer(instruments.Tracer("internal.orders.application")),
		ordersobs.WithMeter(instruments.Meter("internal.orders.application")),
	)
	orderActivities := orderactivities.NewActivities(orderService)

	tracerOptions := temporalotel.TracerOptions{Tracer: instruments.Tracer("temporal-worker")}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		logger.Error("failed to configure Temporal tracing interceptor", slog.String("error", err.Error()))
		os.Exit(1)
	}
	clientOptions := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    workerlog.NewStructuredLogger(logger),
	}
	clientOptions.Interceptors = append(clientOptions.Interceptors, tracingInterceptor)
	temporalClient, err := client.Dial(clientOptions)
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, orderworkflows.OrderPlacementTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(orderworkflows.OrderPlacementWorkflow, workflow.RegisterOptions{Name: orderworkflows.OrderPlacementWorkflowName})
	w.RegisterActivityWithOptions(orderActivities.PlaceOrder, activity.RegisterOptions{Name: orderactivities.PlaceOrderActivityName})

	logger.Info("worker listening", slog.String("taskQueue", orderworkflows.OrderPlacementTaskQueue), slog.String("namespace", clientOptions.Namespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}
