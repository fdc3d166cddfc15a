package ports

import (
	"context"
	"errors"

	"github.com/emberwok/takeout/internal/core/domain/dish"
)

var (
	ErrDishNotFound = errors.New("dish not found")
	// ErrDishOnSale blocks deletion of dishes that are still for sale.
	ErrDishOnSale = errors.New("dish is on sale and cannot be deleted")
)

// DishRepository is the authoritative store for dishes and their flavors.
// GetView assembles the dish together with its flavor rows; it returns
// ErrDishNotFound when the dish is absent (distinct from a store failure).
type DishRepository interface {
	Create(ctx context.Context, d *dish.Dish, flavors []dish.Flavor) error
	GetView(ctx context.Context, id int64) (*dish.View, error)
	ListByCategory(ctx context.Context, categoryID int64) ([]*dish.View, error)
	Update(ctx context.Context, d *dish.Dish, flavors []dish.Flavor) error
	Delete(ctx context.Context, id int64) error
}

type DishService interface {
	SaveWithFlavors(ctx context.Context, req *dish.CreateDishRequest) (*dish.View, error)
	GetWithFlavors(ctx context.Context, id int64) (*dish.View, error)
	ListByCategory(ctx context.Context, categoryID int64) ([]*dish.View, error)
	Update(ctx context.Context, req *dish.UpdateDishRequest) error
	DeleteBatch(ctx context.Context, ids []int64) error
}
