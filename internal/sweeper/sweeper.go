// Package sweeper forces deadline-based order transitions that no user
// action will ever trigger: unpaid orders get cancelled, undelivered orders
// get completed.
package sweeper

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"eatery/internal/metrics"
	"eatery/internal/model"
)

const cancelReasonTimeout = "timed out, auto-cancelled"

type Store interface {
	SelectByStatusOlderThan(ctx context.Context, status model.OrderStatus, deadline time.Time) ([]model.Order, error)
	CancelExpired(ctx context.Context, id int64, reason string, at time.Time) error
	CompleteDelivered(ctx context.Context, id int64, at time.Time) error
}

type Sweeper struct {
	store         Store
	met           *metrics.Registry
	paymentGrace  time.Duration
	deliveryGrace time.Duration
	now           func() time.Time
}

func New(store Store, met *metrics.Registry, paymentGrace, deliveryGrace time.Duration) *Sweeper {
	return &Sweeper{
		store:         store,
		met:           met,
		paymentGrace:  paymentGrace,
		deliveryGrace: deliveryGrace,
		now:           time.Now,
	}
}

// Run installs both passes on their cron schedules and blocks until ctx is
// cancelled and any in-flight pass has finished.
func (s *Sweeper) Run(ctx context.Context, paymentSpec, deliverySpec string) error {
	c := cron.New()

	if _, err := c.AddFunc(paymentSpec, func() {
		if err := s.SweepUnpaid(ctx); err != nil {
			slog.Error("unpaid sweep failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("schedule unpaid sweep: %w", err)
	}

	if _, err := c.AddFunc(deliverySpec, func() {
		if err := s.SweepUndelivered(ctx); err != nil {
			slog.Error("undelivered sweep failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("schedule undelivered sweep: %w", err)
	}

	slog.Info("starting sweeper", "payment_spec", paymentSpec, "delivery_spec", deliverySpec)
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	slog.Info("sweeper stopped")
	return nil
}

// SweepUnpaid cancels orders that sat in PENDING_PAYMENT past the grace
// period. Rows are handled independently: a failed update is logged and the
// loop moves on.
func (s *Sweeper) SweepUnpaid(ctx context.Context) error {
	now := s.now()
	deadline := now.Add(-s.paymentGrace)

	orders, err := s.store.SelectByStatusOlderThan(ctx, model.StatusPendingPayment, deadline)
	if err != nil {
		return fmt.Errorf("select unpaid orders: %w", err)
	}

	for _, order := range orders {
		if err := s.store.CancelExpired(ctx, order.ID, cancelReasonTimeout, now); err != nil {
			slog.Error("failed to cancel expired order", "number", order.Number, "error", err)
			continue
		}
		s.met.SweepCancelled.Inc()
		slog.Info("order cancelled by sweep", "number", order.Number, "order_time", order.OrderTime)
	}

	return nil
}

// SweepUndelivered completes orders stuck in DELIVERY_IN_PROGRESS past the
// delivery grace period.
func (s *Sweeper) SweepUndelivered(ctx context.Context) error {
	now := s.now()
	deadline := now.Add(-s.deliveryGrace)

	orders, err := s.store.SelectByStatusOlderThan(ctx, model.StatusDeliveryInProgress, deadline)
	if err != nil {
		return fmt.Errorf("select undelivered orders: %w", err)
	}

	for _, order := range orders {
		if err := s.store.CompleteDelivered(ctx, order.ID, now); err != nil {
			slog.Error("failed to complete delivered order", "number", order.Number, "error", err)
			continue
		}
		s.met.SweepCompleted.Inc()
		slog.Info("order completed by sweep", "number", order.Number)
	}

	return nil
}
