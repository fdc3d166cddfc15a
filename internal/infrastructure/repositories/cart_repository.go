package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/emberwok/takeout/internal/core/domain/cart"
	"github.com/emberwok/takeout/internal/core/ports"
	"github.com/emberwok/takeout/internal/infrastructure/db"
)

// CartRepository implements the shopping cart repository over Postgres.
type CartRepository struct {
	db     *db.Database
	logger *logrus.Logger
}

func NewCartRepository(database *db.Database, logger *logrus.Logger) ports.CartRepository {
	return &CartRepository{db: database, logger: logger}
}

// Find returns the row for (userID, dishID, flavor), or nil when the user
// has not added that combination yet.
func (r *CartRepository) Find(ctx context.Context, userID, dishID int64, flavor string) (*cart.Item, error) {
	var item cart.Item
	query := `
		SELECT id, user_id, dish_id, name, dish_flavor, number, amount, image, created_at
		FROM shopping_cart
		WHERE user_id = $1 AND dish_id = $2 AND dish_flavor = $3`
	if err := r.db.DB.GetContext(ctx, &item, query, userID, dishID, flavor); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find cart item: %w", err)
	}
	return &item, nil
}

func (r *CartRepository) Insert(ctx context.Context, item *cart.Item) error {
	query := `
		INSERT INTO shopping_cart (user_id, dish_id, name, dish_flavor, number, amount, image)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`
	err := r.db.DB.QueryRowxContext(ctx, query,
		item.UserID, item.DishID, item.Name, item.DishFlavor, item.Number, item.Amount, item.Image,
	).Scan(&item.ID, &item.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert cart item: %w", err)
	}
	return nil
}

func (r *CartRepository) UpdateNumber(ctx context.Context, id int64, number int) error {
	if _, err := r.db.DB.ExecContext(ctx, `UPDATE shopping_cart SET number = $2 WHERE id = $1`, id, number); err != nil {
		return fmt.Errorf("failed to update cart item %d: %w", id, err)
	}
	return nil
}

func (r *CartRepository) List(ctx context.Context, userID int64) ([]*cart.Item, error) {
	var items []*cart.Item
	query := `
		SELECT id, user_id, dish_id, name, dish_flavor, number, amount, image, created_at
		FROM shopping_cart
		WHERE user_id = $1
		ORDER BY created_at`
	if err := r.db.DB.SelectContext(ctx, &items, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list cart for user %d: %w", userID, err)
	}
	return items, nil
}

func (r *CartRepository) Clean(ctx context.Context, userID int64) error {
	if _, err := r.db.DB.ExecContext(ctx, `DELETE FROM shopping_cart WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to clean cart for user %d: %w", userID, err)
	}
	return nil
}
