package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/emberwok/takeout/internal/core/domain/order"
	"github.com/emberwok/takeout/internal/core/ports"
)

// ErrCartEmpty rejects submission of an order with nothing in the cart.
var ErrCartEmpty = errors.New("shopping cart is empty")

// ErrOrderNotOwned rejects operations on another user's order.
var ErrOrderNotOwned = errors.New("order does not belong to user")

// OrderService handles order submission and the user-driven status
// transitions. Submission runs under the per-user submit lock so a
// double-tapped submit produces one order and one "please retry".
type OrderService struct {
	guard     *MutationGuard
	orderRepo ports.OrderRepository
	cartRepo  ports.CartRepository
	logger    *logrus.Logger
}

func NewOrderService(guard *MutationGuard, orderRepo ports.OrderRepository, cartRepo ports.CartRepository, logger *logrus.Logger) ports.OrderService {
	return &OrderService{guard: guard, orderRepo: orderRepo, cartRepo: cartRepo, logger: logger}
}

func (s *OrderService) Submit(ctx context.Context, userID int64, req *order.SubmitOrderRequest) (*order.Order, error) {
	var created *order.Order
	err := s.guard.WithUserLock(ctx, userID, ScopeOrderSubmit, func(ctx context.Context) error {
		items, err := s.cartRepo.List(ctx, userID)
		if err != nil {
			return fmt.Errorf("loading cart: %w", err)
		}
		if len(items) == 0 {
			return ErrCartEmpty
		}

		o := &order.Order{
			Number:    uuid.NewString(),
			UserID:    userID,
			Status:    order.StatusPendingPayment,
			Address:   req.Address,
			OrderTime: time.Now(),
		}
		details := make([]order.Detail, 0, len(items))
		for _, item := range items {
			lineAmount := item.Amount * int64(item.Number)
			o.Amount += lineAmount
			details = append(details, order.Detail{
				DishID:     item.DishID,
				Name:       item.Name,
				DishFlavor: item.DishFlavor,
				Number:     item.Number,
				Amount:     lineAmount,
			})
		}

		if err := s.orderRepo.Create(ctx, o, details); err != nil {
			return fmt.Errorf("creating order: %w", err)
		}
		if err := s.cartRepo.Clean(ctx, userID); err != nil {
			// The order is committed; a surviving cart is an annoyance,
			// not a correctness problem.
			s.logger.WithError(err).WithField("user_id", userID).Warn("failed to clean cart after submit")
		}
		created = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{"user_id": userID, "order": created.Number, "amount": created.Amount}).Info("order submitted")
	return created, nil
}

func (s *OrderService) Pay(ctx context.Context, userID int64, orderID int64) error {
	o, err := s.loadOwned(ctx, userID, orderID)
	if err != nil {
		return err
	}
	now := time.Now()
	o.Status = order.StatusToBeConfirmed
	o.CheckoutTime = &now
	if err := s.orderRepo.Update(ctx, o); err != nil {
		return fmt.Errorf("paying order %d: %w", orderID, err)
	}
	return nil
}

func (s *OrderService) Cancel(ctx context.Context, userID int64, orderID int64) error {
	o, err := s.loadOwned(ctx, userID, orderID)
	if err != nil {
		return err
	}
	now := time.Now()
	o.Status = order.StatusCancelled
	o.CancelReason = order.CancelReasonUser
	o.CancelTime = &now
	if err := s.orderRepo.Update(ctx, o); err != nil {
		return fmt.Errorf("cancelling order %d: %w", orderID, err)
	}
	return nil
}

func (s *OrderService) loadOwned(ctx context.Context, userID, orderID int64) (*order.Order, error) {
	o, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, ErrOrderNotOwned
	}
	return o, nil
}
