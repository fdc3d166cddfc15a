package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/emberwok/takeout/internal/core/domain/dish"
	"github.com/emberwok/takeout/internal/core/ports"
)

// DishService manages menu items. It is handed the caching repository
// decorator, so reads go through the read-through cache and every mutation
// invalidates the affected cache entries before returning.
type DishService struct {
	repo   ports.DishRepository
	logger *logrus.Logger
}

func NewDishService(repo ports.DishRepository, logger *logrus.Logger) ports.DishService {
	return &DishService{repo: repo, logger: logger}
}

// SaveWithFlavors inserts the dish, then its flavor rows under the
// generated dish id.
func (s *DishService) SaveWithFlavors(ctx context.Context, req *dish.CreateDishRequest) (*dish.View, error) {
	d := dish.Dish{
		Name:        req.Name,
		CategoryID:  req.CategoryID,
		Price:       req.Price,
		Image:       req.Image,
		Description: req.Description,
		Status:      req.Status,
	}
	if err := s.repo.Create(ctx, &d, req.Flavors); err != nil {
		return nil, fmt.Errorf("saving dish: %w", err)
	}
	s.logger.WithFields(logrus.Fields{"dish_id": d.ID, "flavors": len(req.Flavors)}).Info("dish created")

	flavors := req.Flavors
	for i := range flavors {
		flavors[i].DishID = d.ID
	}
	return &dish.View{Dish: d, Flavors: flavors}, nil
}

func (s *DishService) GetWithFlavors(ctx context.Context, id int64) (*dish.View, error) {
	return s.repo.GetView(ctx, id)
}

func (s *DishService) ListByCategory(ctx context.Context, categoryID int64) ([]*dish.View, error) {
	return s.repo.ListByCategory(ctx, categoryID)
}

func (s *DishService) Update(ctx context.Context, req *dish.UpdateDishRequest) error {
	d := dish.Dish{
		ID:          req.ID,
		Name:        req.Name,
		CategoryID:  req.CategoryID,
		Price:       req.Price,
		Image:       req.Image,
		Description: req.Description,
		Status:      req.Status,
	}
	if err := s.repo.Update(ctx, &d, req.Flavors); err != nil {
		return fmt.Errorf("updating dish %d: %w", req.ID, err)
	}
	s.logger.WithField("dish_id", req.ID).Info("dish updated")
	return nil
}

// DeleteBatch refuses to delete dishes that are still on sale; the whole
// batch is rejected before anything is removed.
func (s *DishService) DeleteBatch(ctx context.Context, ids []int64) error {
	for _, id := range ids {
		v, err := s.repo.GetView(ctx, id)
		if err != nil {
			if errors.Is(err, ports.ErrDishNotFound) {
				continue
			}
			return fmt.Errorf("checking dish %d: %w", id, err)
		}
		if v.Status == dish.StatusEnabled {
			return fmt.Errorf("dish %d: %w", id, ports.ErrDishOnSale)
		}
	}

	for _, id := range ids {
		if err := s.repo.Delete(ctx, id); err != nil && !errors.Is(err, ports.ErrDishNotFound) {
			return fmt.Errorf("deleting dish %d: %w", id, err)
		}
	}
	s.logger.WithField("count", len(ids)).Info("dishes deleted")
	return nil
}
