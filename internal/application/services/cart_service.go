package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/emberwok/takeout/internal/core/domain/cart"
	"github.com/emberwok/takeout/internal/core/ports"
)

// CartService mutates the shopping cart under the per-user cart lock, so
// two concurrent adds of the same dish cannot both insert a fresh row.
// Dish lookups go through the dish repository decorator and therefore hit
// the read-through cache.
type CartService struct {
	guard    *MutationGuard
	cartRepo ports.CartRepository
	dishRepo ports.DishRepository
	logger   *logrus.Logger
}

func NewCartService(guard *MutationGuard, cartRepo ports.CartRepository, dishRepo ports.DishRepository, logger *logrus.Logger) ports.CartService {
	return &CartService{guard: guard, cartRepo: cartRepo, dishRepo: dishRepo, logger: logger}
}

// Add puts one unit of a dish (with a chosen flavor) in the cart,
// incrementing the existing row when the user already has that combination.
func (s *CartService) Add(ctx context.Context, userID int64, req *cart.AddItemRequest) error {
	return s.guard.WithUserLock(ctx, userID, ScopeCartOp, func(ctx context.Context) error {
		existing, err := s.cartRepo.Find(ctx, userID, req.DishID, req.DishFlavor)
		if err != nil {
			return fmt.Errorf("looking up cart row: %w", err)
		}
		if existing != nil {
			return s.cartRepo.UpdateNumber(ctx, existing.ID, existing.Number+1)
		}

		v, err := s.dishRepo.GetView(ctx, req.DishID)
		if err != nil {
			return fmt.Errorf("resolving dish %d: %w", req.DishID, err)
		}
		item := &cart.Item{
			UserID:     userID,
			DishID:     v.ID,
			Name:       v.Name,
			DishFlavor: req.DishFlavor,
			Number:     1,
			Amount:     v.Price,
			Image:      v.Image,
		}
		if err := s.cartRepo.Insert(ctx, item); err != nil {
			return err
		}
		s.logger.WithFields(logrus.Fields{"user_id": userID, "dish_id": v.ID}).Debug("cart item added")
		return nil
	})
}

func (s *CartService) List(ctx context.Context, userID int64) ([]*cart.Item, error) {
	return s.cartRepo.List(ctx, userID)
}

func (s *CartService) Clean(ctx context.Context, userID int64) error {
	return s.guard.WithUserLock(ctx, userID, ScopeCartOp, func(ctx context.Context) error {
		return s.cartRepo.Clean(ctx, userID)
	})
}
