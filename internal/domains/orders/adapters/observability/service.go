package observability

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Apurer/supplier-fulfillment/internal/domains/orders/application"
	ordertypes "github.com/Apurer/supplier-fulfillment/internal/domains/orders/application/types"
	"github.com/Apurer/supplier-fulfillment/internal/domains/orders/domain"
	"github.com/Apurer/supplier-fulfillment/internal/domains/orders/ports"
)

const tracerName = "github.com/Apurer/supplier-fulfillment/internal/domains/orders/adapters/observability/service"

// Service decorates the fulfillment engine with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithTracer injects a tracer implementation.
func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

// WithMeter injects the meter used to create service metrics instruments.
func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wires a decorator around the core service.
func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  defaultLogger(),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if s.logger == nil {
		s.logger = defaultLogger()
	}
	return s
}

// PlaceOrder places an order with instrumentation.
func (s *Service) PlaceOrder(ctx context.Context, input ordertypes.PlaceOrderInput) (*ordertypes.OrderProjection, error) {
	ctx, span := s.startSpan(ctx, "Service.PlaceOrder",
		attribute.Int64("customer.id", input.CustomerID),
		attribute.Int("order.lines.requested", len(input.Items)),
		attribute.String("payment.method", input.PaymentMethod),
		attribute.Bool("idempotency.keyed", input.IdempotencyKey != ""),
	)
	defer span.End()

	s.logInfo(ctx, "placing order", slog.Int64("customer.id", input.CustomerID), slog.Int("lines", len(input.Items)))
	result, err := s.inner.PlaceOrder(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, "PlaceOrder", err, "failed to place order", slog.Int64("customer.id", input.CustomerID))
	}
	s.recordPlaced(ctx, span, result)
	return result, nil
}

// PlaceOrderFromCart checks out the customer's cart with instrumentation.
func (s *Service) PlaceOrderFromCart(ctx context.Context, input ordertypes.CheckoutInput) (*ordertypes.OrderProjection, error) {
	ctx, span := s.startSpan(ctx, "Service.PlaceOrderFromCart",
		attribute.Int64("customer.id", input.CustomerID),
		attribute.String("payment.method", input.PaymentMethod),
	)
	defer span.End()

	s.logInfo(ctx, "checking out cart", slog.Int64("customer.id", input.CustomerID))
	result, err := s.inner.PlaceOrderFromCart(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, "PlaceOrderFromCart", err, "failed to check out cart", slog.Int64("customer.id", input.CustomerID))
	}
	s.recordPlaced(ctx, span, result)
	return result, nil
}

func (s *Service) recordPlaced(ctx context.Context, span trace.Span, result *ordertypes.OrderProjection) {
	if result == nil || result.Order == nil {
		return
	}
	order := result.Order
	span.SetAttributes(
		attribute.Int64("order.id", order.ID),
		attribute.String("order.number", order.Number),
		attribute.Int64("order.total_amount", order.TotalAmount),
	)
	s.metrics.recordPlaced(ctx, order.PaymentMethod)
	s.logInfo(ctx, "order placed",
		slog.Int64("order.id", order.ID),
		slog.String("order.number", order.Number),
		slog.Int64("order.total_amount", order.TotalAmount))
}

// AdvanceStatus moves an order forward with instrumentation.
func (s *Service) AdvanceStatus(ctx context.Context, input ordertypes.AdvanceStatusInput) (*ordertypes.OrderProjection, error) {
	ctx, span := s.startSpan(ctx, "Service.AdvanceStatus",
		attribute.Int64("order.id", input.OrderID),
		attribute.String("order.status.target", input.Target),
	)
	defer span.End()

	s.logInfo(ctx, "advancing order status", slog.Int64("order.id", input.OrderID), slog.String("target", input.Target))
	result, err := s.inner.AdvanceStatus(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, "AdvanceStatus", err, "failed to advance order status",
			slog.Int64("order.id", input.OrderID), slog.String("target", input.Target))
	}
	if result != nil && result.Order != nil {
		s.metrics.recordStatusChanged(ctx, result.Order.Status)
		if payment := result.CurrentPayment(); payment != nil && result.Order.Status == domain.StatusDelivered && payment.Status == domain.PaymentPaid {
			s.metrics.recordSettled(ctx, payment.Method)
		}
		s.logInfo(ctx, "order status advanced", slog.Int64("order.id", result.Order.ID), slog.String("status", string(result.Order.Status)))
	}
	return result, nil
}

// CancelOrder cancels an order with instrumentation.
func (s *Service) CancelOrder(ctx context.Context, input ordertypes.CancelOrderInput) (*ordertypes.OrderProjection, error) {
	ctx, span := s.startSpan(ctx, "Service.CancelOrder", attribute.Int64("order.id", input.OrderID))
	defer span.End()

	s.logInfo(ctx, "cancelling order", slog.Int64("order.id", input.OrderID))
	result, err := s.inner.CancelOrder(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, "CancelOrder", err, "failed to cancel order", slog.Int64("order.id", input.OrderID))
	}
	s.metrics.recordCancelled(ctx)
	s.logInfo(ctx, "order cancelled", slog.Int64("order.id", input.OrderID), slog.String("reason", input.Reason))
	return result, nil
}

// SettlePayment records a manual settlement with instrumentation.
func (s *Service) SettlePayment(ctx context.Context, input ordertypes.SettlePaymentInput) (*ordertypes.OrderProjection, error) {
	ctx, span := s.startSpan(ctx, "Service.SettlePayment", attribute.Int64("order.id", input.OrderID))
	defer span.End()

	s.logInfo(ctx, "settling payment", slog.Int64("order.id", input.OrderID), slog.String("verified_by", input.VerifiedBy))
	result, err := s.inner.SettlePayment(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, "SettlePayment", err, "failed to settle payment", slog.Int64("order.id", input.OrderID))
	}
	if payment := result.CurrentPayment(); payment != nil {
		s.metrics.recordSettled(ctx, payment.Method)
		span.SetAttributes(attribute.Int64("payment.id", payment.ID))
	}
	s.logInfo(ctx, "payment settled", slog.Int64("order.id", input.OrderID))
	return result, nil
}

// FailPayment records a failed payment attempt with instrumentation.
func (s *Service) FailPayment(ctx context.Context, input ordertypes.FailPaymentInput) (*ordertypes.OrderProjection, error) {
	ctx, span := s.startSpan(ctx, "Service.FailPayment", attribute.Int64("order.id", input.OrderID))
	defer span.End()

	s.logInfo(ctx, "failing payment", slog.Int64("order.id", input.OrderID), slog.String("reason", input.Reason))
	result, err := s.inner.FailPayment(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, "FailPayment", err, "failed to mark payment failed", slog.Int64("order.id", input.OrderID))
	}
	s.metrics.recordPaymentFailed(ctx)
	s.logInfo(ctx, "payment failed", slog.Int64("order.id", input.OrderID))
	return result, nil
}

// RetryPayment opens a new payment attempt with instrumentation.
func (s *Service) RetryPayment(ctx context.Context, input ordertypes.OrderIdentifier) (*ordertypes.OrderProjection, error) {
	ctx, span := s.startSpan(ctx, "Service.RetryPayment", attribute.Int64("order.id", input.ID))
	defer span.End()

	s.logInfo(ctx, "retrying payment", slog.Int64("order.id", input.ID))
	result, err := s.inner.RetryPayment(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, "RetryPayment", err, "failed to retry payment", slog.Int64("order.id", input.ID))
	}
	s.logInfo(ctx, "payment retried", slog.Int64("order.id", input.ID), slog.Int("attempts", len(result.Payments)))
	return result, nil
}

// GetOrder loads a single order.
func (s *Service) GetOrder(ctx context.Context, input ordertypes.OrderIdentifier) (*ordertypes.OrderProjection, error) {
	ctx, span := s.startSpan(ctx, "Service.GetOrder", attribute.Int64("order.id", input.ID))
	defer span.End()

	result, err := s.inner.GetOrder(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, "GetOrder", err, "failed to load order", slog.Int64("order.id", input.ID))
	}
	return result, nil
}

// ListCustomerOrders lists the orders of one customer.
func (s *Service) ListCustomerOrders(ctx context.Context, input ordertypes.CustomerIdentifier) ([]*domain.Order, error) {
	ctx, span := s.startSpan(ctx, "Service.ListCustomerOrders", attribute.Int64("customer.id", input.CustomerID))
	defer span.End()

	result, err := s.inner.ListCustomerOrders(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, "ListCustomerOrders", err, "failed to list customer orders", slog.Int64("customer.id", input.CustomerID))
	}
	span.SetAttributes(attribute.Int("order.result.count", len(result)))
	return result, nil
}

// ListPayments lists the payment attempts of an order.
func (s *Service) ListPayments(ctx context.Context, input ordertypes.OrderIdentifier) ([]*domain.Payment, error) {
	ctx, span := s.startSpan(ctx, "Service.ListPayments", attribute.Int64("order.id", input.ID))
	defer span.End()

	result, err := s.inner.ListPayments(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, "ListPayments", err, "failed to list payments", slog.Int64("order.id", input.ID))
	}
	span.SetAttributes(attribute.Int("payment.result.count", len(result)))
	return result, nil
}

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := s.tracer
	if tracer == nil {
		tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, level slog.Level, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, level, msg, attrs...)
}

// handleError records the failure on the span and in metrics. Business rejections are logged
// at WARN; only internal failures are logged at ERROR.
func (s *Service) handleError(ctx context.Context, span trace.Span, operation string, err error, msg string, attrs ...slog.Attr) error {
	if err == nil {
		return nil
	}
	kind := application.ErrorKind(err)
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.String("error.kind", kind))
	}
	s.metrics.recordRejected(ctx, operation, kind)
	level := slog.LevelWarn
	if kind == "internal" {
		level = slog.LevelError
	}
	s.logError(ctx, level, msg, err, append(attrs, slog.String("error.kind", kind))...)
	return err
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type serviceMetrics struct {
	ordersPlaced     metric.Int64Counter
	ordersCancelled  metric.Int64Counter
	statusChanges    metric.Int64Counter
	paymentsSettled  metric.Int64Counter
	paymentsFailed   metric.Int64Counter
	requestsRejected metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	ordersPlaced, _ := m.Int64Counter("orders.service.placed", metric.WithDescription("Number of orders placed"))
	ordersCancelled, _ := m.Int64Counter("orders.service.cancelled", metric.WithDescription("Number of orders cancelled"))
	statusChanges, _ := m.Int64Counter("orders.service.status_changed", metric.WithDescription("Number of forward status transitions"))
	paymentsSettled, _ := m.Int64Counter("orders.service.payments_settled", metric.WithDescription("Number of payments settled"))
	paymentsFailed, _ := m.Int64Counter("orders.service.payments_failed", metric.WithDescription("Number of payment attempts marked failed"))
	requestsRejected, _ := m.Int64Counter("orders.service.rejected", metric.WithDescription("Number of operations that returned an error"))
	return serviceMetrics{
		ordersPlaced:     ordersPlaced,
		ordersCancelled:  ordersCancelled,
		statusChanges:    statusChanges,
		paymentsSettled:  paymentsSettled,
		paymentsFailed:   paymentsFailed,
		requestsRejected: requestsRejected,
	}
}

func (m serviceMetrics) recordPlaced(ctx context.Context, method domain.PaymentMethod) {
	addCounter(ctx, m.ordersPlaced, 1, attribute.String("payment.method", string(method)))
}

func (m serviceMetrics) recordCancelled(ctx context.Context) {
	addCounter(ctx, m.ordersCancelled, 1)
}

func (m serviceMetrics) recordStatusChanged(ctx context.Context, to domain.Status) {
	addCounter(ctx, m.statusChanges, 1, attribute.String("order.status", string(to)))
}

func (m serviceMetrics) recordSettled(ctx context.Context, method domain.PaymentMethod) {
	addCounter(ctx, m.paymentsSettled, 1, attribute.String("payment.method", string(method)))
}

func (m serviceMetrics) recordPaymentFailed(ctx context.Context) {
	addCounter(ctx, m.paymentsFailed, 1)
}

func (m serviceMetrics) recordRejected(ctx context.Context, operation, kind string) {
	addCounter(ctx, m.requestsRejected, 1, attribute.String("operation", operation), attribute.String("error.kind", kind))
}

func addCounter(ctx context.Context, counter metric.Int64Counter, value int64, attrs ...attribute.KeyValue) {
	if counter == nil {
		return
	}
	counter.Add(ctx, value, metric.WithAttributes(attrs...))
}

var _ ports.Service = (*Service)(nil)
