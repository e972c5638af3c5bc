package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	ordertypes "github.com/Apurer/supplier-fulfillment/internal/domains/orders/application/types"
	"github.com/Apurer/supplier-fulfillment/internal/domains/orders/domain"
	"github.com/Apurer/supplier-fulfillment/internal/domains/orders/ports"
)

const (
	defaultLookupConcurrency = 8
	defaultNumberAttempts    = 5
	deliverySettlementNote   = "collected on delivery"
)

// Service is the fulfillment engine: it places orders, drives their lifecycle and keeps
// stock and payments consistent with order status.
type Service struct {
	uow               ports.UnitOfWork
	catalog           ports.CatalogReader
	cart              ports.CartReader
	notifier          ports.Notifier
	numbers           NumberGenerator
	clock             func() time.Time
	logger            *slog.Logger
	lookupConcurrency int
	numberAttempts    int
}

// Option configures optional collaborators of the Service.
type Option func(*Service)

// WithCart wires the cart collaborator used by PlaceOrderFromCart.
func WithCart(cart ports.CartReader) Option {
	return func(s *Service) {
		s.cart = cart
	}
}

// WithNotifier wires the notification dispatcher.
func WithNotifier(n ports.Notifier) Option {
	return func(s *Service) {
		s.notifier = n
	}
}

// WithNumberGenerator overrides the order number generator.
func WithNumberGenerator(g NumberGenerator) Option {
	return func(s *Service) {
		if g != nil {
			s.numbers = g
		}
	}
}

// WithClock overrides the time source.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithLogger sets the logger used for best-effort side effects.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithLookupConcurrency bounds concurrent catalog lookups per placement.
func WithLookupConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.lookupConcurrency = n
		}
	}
}

// WithNumberAttempts bounds how often a colliding order number is regenerated.
func WithNumberAttempts(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.numberAttempts = n
		}
	}
}

// NewService wires the engine over a unit of work and a catalog reader.
func NewService(uow ports.UnitOfWork, catalog ports.CatalogReader, opts ...Option) *Service {
	s := &Service{
		uow:               uow,
		catalog:           catalog,
		numbers:           NewSequenceNumberGenerator(DefaultOrderNumberPrefix),
		clock:             time.Now,
		logger:            slog.New(slog.DiscardHandler),
		lookupConcurrency: defaultLookupConcurrency,
		numberAttempts:    defaultNumberAttempts,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

type requestedItem struct {
	ref      domain.ItemRef
	quantity int32
}

// PlaceOrder validates the request, snapshots catalog prices and atomically reserves stock,
// creates the order and opens its payment.
func (s *Service) PlaceOrder(ctx context.Context, input ordertypes.PlaceOrderInput) (*ordertypes.OrderProjection, error) {
	items, method, err := normalizeRequest(input)
	if err != nil {
		return nil, mapError(err)
	}

	key := strings.TrimSpace(input.IdempotencyKey)
	var fingerprint string
	if key != "" {
		fingerprint, err = FingerprintPlaceOrder(input)
		if err != nil {
			return nil, mapError(err)
		}
		replay, err := s.replay(ctx, key, fingerprint)
		if err != nil || replay != nil {
			return replay, err
		}
	}

	lines, err := s.resolveLines(ctx, items)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	order, err := domain.NewOrder(input.CustomerID, lines, method, input.ShippingAddress, input.Notes, now)
	if err != nil {
		return nil, mapError(err)
	}

	var placed *ordertypes.OrderProjection
	for attempt := 1; ; attempt++ {
		order.Number = s.numbers.Next(now)
		placed, err = s.commitPlacement(ctx, order, key, fingerprint)
		if err == nil {
			break
		}
		if errors.Is(err, ports.ErrDuplicateOrderNumber) && attempt < s.numberAttempts {
			s.logger.LogAttrs(ctx, slog.LevelWarn, "order number collision, regenerating",
				slog.String("order.number", order.Number), slog.Int("attempt", attempt))
			continue
		}
		if errors.Is(err, ports.ErrIdempotencyKeyExists) {
			replay, replayErr := s.replay(ctx, key, fingerprint)
			if replayErr != nil {
				return nil, replayErr
			}
			if replay != nil {
				return replay, nil
			}
		}
		return nil, mapError(err)
	}

	s.publish(ctx, domain.OrderPlaced{
		BaseEvent:     domain.BaseEvent{Timestamp: now, OrderID: placed.Order.ID},
		Number:        placed.Order.Number,
		CustomerID:    placed.Order.CustomerID,
		TotalAmount:   placed.Order.TotalAmount,
		PaymentMethod: placed.Order.PaymentMethod,
		ItemCount:     len(placed.Order.Items),
	})
	return placed, nil
}

func (s *Service) commitPlacement(ctx context.Context, order *domain.Order, key, fingerprint string) (*ordertypes.OrderProjection, error) {
	var result *ordertypes.OrderProjection
	err := s.uow.RunInTx(ctx, func(ctx context.Context, tx ports.Repositories) error {
		for _, line := range order.StockLines() {
			if err := tx.Stock().Reserve(ctx, line.Ref.ID, line.Quantity); err != nil {
				return reservationError(line, err)
			}
		}
		created, err := tx.Orders().Create(ctx, order.Clone())
		if err != nil {
			return err
		}
		payment, err := tx.Payments().Create(ctx, domain.NewPendingPayment(created, created.CreatedAt))
		if err != nil {
			return err
		}
		if key != "" {
			record := ports.IdempotencyRecord{Key: key, RequestHash: fingerprint, OrderID: created.ID, CreatedAt: created.CreatedAt}
			if err := tx.Idempotency().Create(ctx, record); err != nil {
				return err
			}
		}
		result = &ordertypes.OrderProjection{Order: created, Payments: []*domain.Payment{payment}}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) replay(ctx context.Context, key, fingerprint string) (*ordertypes.OrderProjection, error) {
	record, err := s.uow.Idempotency().Get(ctx, key)
	if err != nil {
		return nil, mapError(err)
	}
	if record == nil {
		return nil, nil
	}
	if record.RequestHash != fingerprint {
		return nil, fmt.Errorf("%w: key %q", ErrIdempotencyConflict, key)
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "replaying idempotent order placement",
		slog.String("idempotency.key", key), slog.Int64("order.id", record.OrderID))
	return s.loadProjection(ctx, record.OrderID)
}

// PlaceOrderFromCart places an order for the items currently in the customer's cart and
// clears the cart once the order is committed.
func (s *Service) PlaceOrderFromCart(ctx context.Context, input ordertypes.CheckoutInput) (*ordertypes.OrderProjection, error) {
	if s.cart == nil {
		return nil, mapError(errCartNotConfigured)
	}
	if input.CustomerID <= 0 {
		return nil, mapError(domain.ErrInvalidCustomerID)
	}
	// A committed checkout has already emptied the cart, so retries are answered from the key.
	if key := strings.TrimSpace(input.IdempotencyKey); key != "" {
		replay, err := s.replayCheckout(ctx, key, input)
		if err != nil || replay != nil {
			return replay, err
		}
	}
	cartItems, err := s.cart.Items(ctx, input.CustomerID)
	if err != nil {
		return nil, mapError(err)
	}
	if len(cartItems) == 0 {
		return nil, mapError(errEmptyCart)
	}
	items := make([]ordertypes.ItemInput, 0, len(cartItems))
	for _, it := range cartItems {
		items = append(items, ordertypes.ItemInput{Kind: string(it.Ref.Kind), ItemID: it.Ref.ID, Quantity: it.Quantity})
	}
	placed, err := s.PlaceOrder(ctx, ordertypes.PlaceOrderInput{
		CustomerID:      input.CustomerID,
		Items:           items,
		PaymentMethod:   input.PaymentMethod,
		ShippingAddress: input.ShippingAddress,
		Notes:           input.Notes,
		IdempotencyKey:  input.IdempotencyKey,
	})
	if err != nil {
		return nil, err
	}
	if err := s.cart.Clear(ctx, input.CustomerID); err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "failed to clear cart after checkout",
			slog.Int64("customer.id", input.CustomerID), slog.Int64("order.id", placed.Order.ID), slog.String("error", err.Error()))
	}
	return placed, nil
}

// replayCheckout returns the order a previous checkout committed under key. The cart contents
// are gone by then, so the request is matched on the checkout fields instead of a fingerprint.
func (s *Service) replayCheckout(ctx context.Context, key string, input ordertypes.CheckoutInput) (*ordertypes.OrderProjection, error) {
	record, err := s.uow.Idempotency().Get(ctx, key)
	if err != nil {
		return nil, mapError(err)
	}
	if record == nil {
		return nil, nil
	}
	projection, err := s.loadProjection(ctx, record.OrderID)
	if err != nil {
		return nil, err
	}
	order := projection.Order
	if order.CustomerID != input.CustomerID ||
		string(order.PaymentMethod) != strings.TrimSpace(input.PaymentMethod) ||
		order.ShippingAddress != strings.TrimSpace(input.ShippingAddress) ||
		order.Notes != strings.TrimSpace(input.Notes) {
		return nil, fmt.Errorf("%w: key %q", ErrIdempotencyConflict, key)
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "replaying idempotent checkout",
		slog.String("idempotency.key", key), slog.Int64("order.id", order.ID))
	return projection, nil
}

// AdvanceStatus moves an order one step forward. Delivering a cash-on-delivery order settles
// its pending payment in the same unit of work.
func (s *Service) AdvanceStatus(ctx context.Context, input ordertypes.AdvanceStatusInput) (*ordertypes.OrderProjection, error) {
	target, err := domain.ParseStatus(strings.TrimSpace(input.Target))
	if err != nil {
		return nil, mapError(err)
	}
	now := s.clock()
	var (
		before  *domain.Order
		settled *domain.Payment
	)
	err = s.uow.RunInTx(ctx, func(ctx context.Context, tx ports.Repositories) error {
		order, err := tx.Orders().GetByID(ctx, input.OrderID)
		if err != nil {
			return err
		}
		if err := order.CheckAdvance(target); err != nil {
			return err
		}
		if err := tx.Orders().CompareAndSetStatus(ctx, order.ID, order.Status, target, now); err != nil {
			return err
		}
		before = order
		if target == domain.StatusDelivered && order.PaymentMethod.DefersSettlement() {
			payment, err := settleOnDelivery(ctx, tx, order.ID, now)
			if err != nil {
				return err
			}
			settled = payment
		}
		return nil
	})
	if err != nil {
		return nil, mapError(err)
	}

	s.publish(ctx, domain.OrderStatusChanged{
		BaseEvent:  domain.BaseEvent{Timestamp: now, OrderID: before.ID},
		Number:     before.Number,
		CustomerID: before.CustomerID,
		FromStatus: before.Status,
		ToStatus:   target,
	})
	if settled != nil {
		s.publishSettled(ctx, settled, now)
	}
	return s.loadProjection(ctx, before.ID)
}

func settleOnDelivery(ctx context.Context, tx ports.Repositories, orderID int64, now time.Time) (*domain.Payment, error) {
	payments, err := tx.Payments().ListByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	pending := latestWithStatus(payments, domain.PaymentPending)
	if pending == nil {
		return nil, fmt.Errorf("%w: no pending payment to settle for order %d", ports.ErrPaymentNotFound, orderID)
	}
	settled := pending.Clone()
	if err := settled.Settle(now, "", deliverySettlementNote); err != nil {
		return nil, err
	}
	if err := tx.Payments().CompareAndSetStatus(ctx, paymentUpdate(pending.Status, settled)); err != nil {
		return nil, err
	}
	return settled, nil
}

// CancelOrder cancels a PENDING or PROCESSING order, returns its reserved stock and voids its payments.
func (s *Service) CancelOrder(ctx context.Context, input ordertypes.CancelOrderInput) (*ordertypes.OrderProjection, error) {
	now := s.clock()
	var before *domain.Order
	err := s.uow.RunInTx(ctx, func(ctx context.Context, tx ports.Repositories) error {
		order, err := tx.Orders().GetByID(ctx, input.OrderID)
		if err != nil {
			return err
		}
		if err := order.CheckCancel(); err != nil {
			return err
		}
		// The status swap is what makes the release below happen at most once per order.
		if err := tx.Orders().CompareAndSetStatus(ctx, order.ID, order.Status, domain.StatusCancelled, now); err != nil {
			return err
		}
		for _, line := range order.StockLines() {
			if err := tx.Stock().Release(ctx, line.Ref.ID, line.Quantity); err != nil {
				return err
			}
		}
		payments, err := tx.Payments().ListByOrder(ctx, order.ID)
		if err != nil {
			return err
		}
		for _, payment := range payments {
			if payment.Status != domain.PaymentPending && payment.Status != domain.PaymentPaid {
				continue
			}
			cancelled := payment.Clone()
			if err := cancelled.Cancel(now); err != nil {
				return err
			}
			if err := tx.Payments().CompareAndSetStatus(ctx, paymentUpdate(payment.Status, cancelled)); err != nil {
				return err
			}
		}
		before = order
		return nil
	})
	if err != nil {
		return nil, mapError(err)
	}

	s.publish(ctx, domain.OrderCancelled{
		BaseEvent:      domain.BaseEvent{Timestamp: now, OrderID: before.ID},
		Number:         before.Number,
		CustomerID:     before.CustomerID,
		PreviousStatus: before.Status,
		Reason:         strings.TrimSpace(input.Reason),
	})
	return s.loadProjection(ctx, before.ID)
}

// SettlePayment records a verified settlement of the open payment of a non-deferred order.
func (s *Service) SettlePayment(ctx context.Context, input ordertypes.SettlePaymentInput) (*ordertypes.OrderProjection, error) {
	verifier := strings.TrimSpace(input.VerifiedBy)
	if verifier == "" {
		return nil, mapError(errVerifierRequired)
	}
	now := s.clock()
	var settled *domain.Payment
	err := s.withPayableOrder(ctx, input.OrderID, func(ctx context.Context, tx ports.Repositories, _ *domain.Order, payments []*domain.Payment) error {
		pending := latestWithStatus(payments, domain.PaymentPending)
		if pending == nil {
			return errNoOpenPayment
		}
		next := pending.Clone()
		if err := next.Settle(now, verifier, strings.TrimSpace(input.Notes)); err != nil {
			return err
		}
		if err := tx.Payments().CompareAndSetStatus(ctx, paymentUpdate(pending.Status, next)); err != nil {
			return err
		}
		settled = next
		return nil
	})
	if err != nil {
		return nil, mapError(err)
	}
	s.publishSettled(ctx, settled, now)
	return s.loadProjection(ctx, input.OrderID)
}

// FailPayment marks the open payment attempt as failed.
func (s *Service) FailPayment(ctx context.Context, input ordertypes.FailPaymentInput) (*ordertypes.OrderProjection, error) {
	now := s.clock()
	var failed *domain.Payment
	err := s.withPayableOrder(ctx, input.OrderID, func(ctx context.Context, tx ports.Repositories, _ *domain.Order, payments []*domain.Payment) error {
		pending := latestWithStatus(payments, domain.PaymentPending)
		if pending == nil {
			return errNoOpenPayment
		}
		next := pending.Clone()
		if err := next.Fail(now, strings.TrimSpace(input.Reason)); err != nil {
			return err
		}
		if err := tx.Payments().CompareAndSetStatus(ctx, paymentUpdate(pending.Status, next)); err != nil {
			return err
		}
		failed = next
		return nil
	})
	if err != nil {
		return nil, mapError(err)
	}
	s.publish(ctx, domain.PaymentAttemptFailed{
		BaseEvent: domain.BaseEvent{Timestamp: now, OrderID: failed.OrderID},
		PaymentID: failed.ID,
		Reason:    failed.Notes,
	})
	return s.loadProjection(ctx, input.OrderID)
}

// RetryPayment opens a new pending attempt after the latest one failed.
func (s *Service) RetryPayment(ctx context.Context, input ordertypes.OrderIdentifier) (*ordertypes.OrderProjection, error) {
	now := s.clock()
	var opened *domain.Payment
	err := s.withPayableOrder(ctx, input.ID, func(ctx context.Context, tx ports.Repositories, order *domain.Order, payments []*domain.Payment) error {
		if len(payments) == 0 || payments[len(payments)-1].Status != domain.PaymentFailed {
			return errNoFailedAttempt
		}
		created, err := tx.Payments().Create(ctx, domain.NewPendingPayment(order, now))
		if err != nil {
			return err
		}
		opened = created
		return nil
	})
	if err != nil {
		return nil, mapError(err)
	}
	s.publish(ctx, domain.PaymentRetried{
		BaseEvent: domain.BaseEvent{Timestamp: now, OrderID: opened.OrderID},
		PaymentID: opened.ID,
		Amount:    opened.Amount,
	})
	return s.loadProjection(ctx, input.ID)
}

// withPayableOrder runs fn in a unit of work for an order whose payments may still be managed manually.
func (s *Service) withPayableOrder(ctx context.Context, orderID int64, fn func(context.Context, ports.Repositories, *domain.Order, []*domain.Payment) error) error {
	return s.uow.RunInTx(ctx, func(ctx context.Context, tx ports.Repositories) error {
		order, err := tx.Orders().GetByID(ctx, orderID)
		if err != nil {
			return err
		}
		if order.Status == domain.StatusCancelled {
			return errOrderCancelled
		}
		if order.PaymentMethod.DefersSettlement() {
			return domain.ErrSettlementDeferred
		}
		payments, err := tx.Payments().ListByOrder(ctx, order.ID)
		if err != nil {
			return err
		}
		if latestWithStatus(payments, domain.PaymentPaid) != nil {
			return errAlreadySettled
		}
		return fn(ctx, tx, order, payments)
	})
}

// GetOrder returns the order together with its payment attempts.
func (s *Service) GetOrder(ctx context.Context, input ordertypes.OrderIdentifier) (*ordertypes.OrderProjection, error) {
	return s.loadProjection(ctx, input.ID)
}

// ListCustomerOrders returns every order placed by a customer, newest first.
func (s *Service) ListCustomerOrders(ctx context.Context, input ordertypes.CustomerIdentifier) ([]*domain.Order, error) {
	if input.CustomerID <= 0 {
		return nil, mapError(domain.ErrInvalidCustomerID)
	}
	orders, err := s.uow.Orders().ListByCustomer(ctx, input.CustomerID)
	if err != nil {
		return nil, mapError(err)
	}
	return orders, nil
}

// ListPayments returns the payment attempts of an order, oldest first.
func (s *Service) ListPayments(ctx context.Context, input ordertypes.OrderIdentifier) ([]*domain.Payment, error) {
	projection, err := s.loadProjection(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return projection.Payments, nil
}

func (s *Service) loadProjection(ctx context.Context, orderID int64) (*ordertypes.OrderProjection, error) {
	order, err := s.uow.Orders().GetByID(ctx, orderID)
	if err != nil {
		return nil, mapError(err)
	}
	payments, err := s.uow.Payments().ListByOrder(ctx, orderID)
	if err != nil {
		return nil, mapError(err)
	}
	return &ordertypes.OrderProjection{Order: order, Payments: payments}, nil
}

func (s *Service) resolveLines(ctx context.Context, items []requestedItem) ([]domain.LineItem, error) {
	lines := make([]domain.LineItem, len(items))
	errs := make([]error, len(items))
	var g errgroup.Group
	g.SetLimit(s.lookupConcurrency)
	for idx := range items {
		g.Go(func() error {
			lines[idx], errs[idx] = s.resolveLine(ctx, items[idx])
			return nil
		})
	}
	_ = g.Wait()
	// Lookups finish in any order; the reported failure is the first in request order.
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return lines, nil
}

func (s *Service) resolveLine(ctx context.Context, item requestedItem) (domain.LineItem, error) {
	switch item.ref.Kind {
	case domain.KindProduct:
		product, err := s.catalog.GetProduct(ctx, item.ref.ID)
		if err != nil {
			return domain.LineItem{}, catalogError(item, err)
		}
		if !product.Active {
			return domain.LineItem{}, &ItemError{Ref: item.ref, Requested: item.quantity, Err: ErrItemInactive}
		}
		if product.Stock < int64(item.quantity) {
			return domain.LineItem{}, &ItemError{Ref: item.ref, Requested: item.quantity, Available: product.Stock, Err: ErrInsufficientStock}
		}
		return domain.LineItem{Ref: item.ref, Name: product.Name, Quantity: item.quantity, UnitPrice: product.Price}, nil
	case domain.KindService:
		service, err := s.catalog.GetService(ctx, item.ref.ID)
		if err != nil {
			return domain.LineItem{}, catalogError(item, err)
		}
		if !service.Active {
			return domain.LineItem{}, &ItemError{Ref: item.ref, Requested: item.quantity, Err: ErrItemInactive}
		}
		return domain.LineItem{Ref: item.ref, Name: service.Name, Quantity: item.quantity, UnitPrice: service.Price}, nil
	default:
		return domain.LineItem{}, mapError(domain.ErrInvalidItemRef)
	}
}

func catalogError(item requestedItem, err error) error {
	if errors.Is(err, ports.ErrCatalogItemNotFound) {
		return &ItemError{Ref: item.ref, Requested: item.quantity, Err: ErrItemNotFound}
	}
	return fmt.Errorf("%w: resolve %s: %w", ErrInternal, item.ref, err)
}

func reservationError(line domain.LineItem, err error) error {
	switch {
	case errors.Is(err, ports.ErrInsufficientStock):
		return &ItemError{Ref: line.Ref, Requested: line.Quantity, Err: ErrInsufficientStock}
	case errors.Is(err, ports.ErrProductNotFound):
		return &ItemError{Ref: line.Ref, Requested: line.Quantity, Err: ErrItemNotFound}
	default:
		return err
	}
}

// normalizeRequest validates the cheap parts of a placement and merges repeated references.
func normalizeRequest(input ordertypes.PlaceOrderInput) ([]requestedItem, domain.PaymentMethod, error) {
	if input.CustomerID <= 0 {
		return nil, "", domain.ErrInvalidCustomerID
	}
	if len(input.Items) == 0 {
		return nil, "", domain.ErrEmptyItems
	}
	method, err := domain.ParsePaymentMethod(strings.TrimSpace(input.PaymentMethod))
	if err != nil {
		return nil, "", err
	}
	merged := make([]requestedItem, 0, len(input.Items))
	index := map[domain.ItemRef]int{}
	hasProduct := false
	for _, raw := range input.Items {
		kind, err := domain.ParseItemKind(strings.TrimSpace(raw.Kind))
		if err != nil {
			return nil, "", err
		}
		ref := domain.ItemRef{Kind: kind, ID: raw.ItemID}
		if err := ref.Validate(); err != nil {
			return nil, "", err
		}
		if raw.Quantity < 1 {
			return nil, "", fmt.Errorf("%w: %s", domain.ErrInvalidQuantity, ref)
		}
		hasProduct = hasProduct || ref.TracksStock()
		if i, ok := index[ref]; ok {
			sum := int64(merged[i].quantity) + int64(raw.Quantity)
			if sum > math.MaxInt32 {
				return nil, "", fmt.Errorf("%w: %s", domain.ErrInvalidQuantity, ref)
			}
			merged[i].quantity = int32(sum)
			continue
		}
		index[ref] = len(merged)
		merged = append(merged, requestedItem{ref: ref, quantity: raw.Quantity})
	}
	if hasProduct && strings.TrimSpace(input.ShippingAddress) == "" {
		return nil, "", domain.ErrMissingAddress
	}
	return merged, method, nil
}

func latestWithStatus(payments []*domain.Payment, status domain.PaymentStatus) *domain.Payment {
	for i := len(payments) - 1; i >= 0; i-- {
		if payments[i].Status == status {
			return payments[i]
		}
	}
	return nil
}

func paymentUpdate(expected domain.PaymentStatus, next *domain.Payment) ports.PaymentUpdate {
	return ports.PaymentUpdate{
		PaymentID:  next.ID,
		Expected:   expected,
		Next:       next.Status,
		SettledAt:  next.SettledAt,
		VerifiedBy: next.VerifiedBy,
		Notes:      next.Notes,
		At:         next.UpdatedAt,
	}
}

func (s *Service) publishSettled(ctx context.Context, payment *domain.Payment, now time.Time) {
	s.publish(ctx, domain.PaymentSettled{
		BaseEvent:  domain.BaseEvent{Timestamp: now, OrderID: payment.OrderID},
		PaymentID:  payment.ID,
		Amount:     payment.Amount,
		Method:     payment.Method,
		VerifiedBy: payment.VerifiedBy,
	})
}

// publish hands an event to the notifier after commit. Failures are logged and never undo the commit.
func (s *Service) publish(ctx context.Context, event domain.Event) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, event); err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "order event dispatch failed",
			slog.String("event", event.EventName()),
			slog.Int64("order.id", event.AggregateID()),
			slog.String("error", err.Error()))
	}
}

var _ ports.Service = (*Service)(nil)
