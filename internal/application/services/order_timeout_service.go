package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/emberwok/takeout/configs"
	"github.com/emberwok/takeout/internal/core/domain/order"
	"github.com/emberwok/takeout/internal/core/ports"
	"github.com/emberwok/takeout/internal/observability"
)

// OrderTimeoutService repairs orders abandoned mid-workflow. Both sweeps
// are idempotent: the selection predicate only matches rows still in the
// transient status, so a rerun after a completed sweep selects nothing.
// The sweeps never touch the cache; order state is not cached, and cache
// entries age out on their own TTLs.
type OrderTimeoutService struct {
	repo   ports.OrderRepository
	cfg    *configs.ReconcilerConfig
	logger *logrus.Logger
}

func NewOrderTimeoutService(repo ports.OrderRepository, cfg *configs.ReconcilerConfig, logger *logrus.Logger) *OrderTimeoutService {
	return &OrderTimeoutService{repo: repo, cfg: cfg, logger: logger}
}

// ReapUnpaid cancels orders that sat in PENDING_PAYMENT past the payment
// window, stamping the cancel reason and time.
func (s *OrderTimeoutService) ReapUnpaid(ctx context.Context) error {
	cutoff := time.Now().Add(-s.cfg.UnpaidWindow)
	stale, err := s.repo.ListByStatusOlderThan(ctx, order.StatusPendingPayment, cutoff)
	if err != nil {
		return fmt.Errorf("selecting unpaid orders: %w", err)
	}
	if len(stale) == 0 {
		return nil
	}

	now := time.Now()
	var failed int
	for _, o := range stale {
		o.Status = order.StatusCancelled
		o.CancelReason = order.CancelReasonPaymentTimeout
		o.CancelTime = &now
		if err := s.repo.Update(ctx, o); err != nil {
			// One bad row must not abort the sweep.
			failed++
			s.logger.WithError(err).WithField("order_id", o.ID).Error("failed to cancel timed-out order")
			continue
		}
		observability.ReconcilerTransitions.WithLabelValues("unpaid").Inc()
	}
	s.logger.WithFields(logrus.Fields{"cancelled": len(stale) - failed, "failed": failed}).Info("unpaid order sweep finished")
	return nil
}

// ReapUndelivered completes orders stuck in DELIVERY_IN_PROGRESS past the
// delivery window.
func (s *OrderTimeoutService) ReapUndelivered(ctx context.Context) error {
	cutoff := time.Now().Add(-s.cfg.DeliveryWindow)
	stale, err := s.repo.ListByStatusOlderThan(ctx, order.StatusDeliveryInProgress, cutoff)
	if err != nil {
		return fmt.Errorf("selecting undelivered orders: %w", err)
	}
	if len(stale) == 0 {
		return nil
	}

	var failed int
	for _, o := range stale {
		o.Status = order.StatusCompleted
		if err := s.repo.Update(ctx, o); err != nil {
			failed++
			s.logger.WithError(err).WithField("order_id", o.ID).Error("failed to complete stuck delivery")
			continue
		}
		observability.ReconcilerTransitions.WithLabelValues("delivery").Inc()
	}
	s.logger.WithFields(logrus.Fields{"completed": len(stale) - failed, "failed": failed}).Info("stuck delivery sweep finished")
	return nil
}
