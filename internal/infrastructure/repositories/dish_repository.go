package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/emberwok/takeout/internal/core/domain/dish"
	"github.com/emberwok/takeout/internal/core/ports"
	"github.com/emberwok/takeout/internal/infrastructure/db"
)

// DishRepository implements the dish repository interface over Postgres.
type DishRepository struct {
	db     *db.Database
	logger *logrus.Logger
}

func NewDishRepository(database *db.Database, logger *logrus.Logger) ports.DishRepository {
	return &DishRepository{db: database, logger: logger}
}

// Create inserts the dish first to obtain its generated id, then batch
// inserts the flavors referencing it. Runs in one transaction so a flavor
// failure cannot leave a flavorless dish behind.
func (r *DishRepository) Create(ctx context.Context, d *dish.Dish, flavors []dish.Flavor) error {
	tx, err := r.db.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO dish (name, category_id, price, image, description, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	err = tx.QueryRowxContext(ctx, query,
		d.Name, d.CategoryID, d.Price, d.Image, d.Description, d.Status,
	).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create dish: %w", err)
	}

	if err := insertFlavors(ctx, tx, d.ID, flavors); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit dish create: %w", err)
	}
	return nil
}

func insertFlavors(ctx context.Context, tx *sqlx.Tx, dishID int64, flavors []dish.Flavor) error {
	if len(flavors) == 0 {
		return nil
	}
	query := `INSERT INTO dish_flavor (dish_id, name, value) VALUES ($1, $2, $3)`
	for i := range flavors {
		flavors[i].DishID = dishID
		if _, err := tx.ExecContext(ctx, query, dishID, flavors[i].Name, flavors[i].Value); err != nil {
			return fmt.Errorf("failed to insert flavor for dish %d: %w", dishID, err)
		}
	}
	return nil
}

// GetView returns the dish together with its flavor rows.
func (r *DishRepository) GetView(ctx context.Context, id int64) (*dish.View, error) {
	var v dish.View
	query := `
		SELECT id, name, category_id, price, image, description, status, created_at, updated_at
		FROM dish
		WHERE id = $1`
	if err := r.db.DB.GetContext(ctx, &v.Dish, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ports.ErrDishNotFound
		}
		return nil, fmt.Errorf("failed to get dish %d: %w", id, err)
	}

	flavorQuery := `SELECT id, dish_id, name, value FROM dish_flavor WHERE dish_id = $1 ORDER BY id`
	if err := r.db.DB.SelectContext(ctx, &v.Flavors, flavorQuery, id); err != nil {
		return nil, fmt.Errorf("failed to get flavors for dish %d: %w", id, err)
	}
	return &v, nil
}

// ListByCategory returns the assembled views of all enabled dishes in a category.
func (r *DishRepository) ListByCategory(ctx context.Context, categoryID int64) ([]*dish.View, error) {
	var dishes []dish.Dish
	query := `
		SELECT id, name, category_id, price, image, description, status, created_at, updated_at
		FROM dish
		WHERE category_id = $1 AND status = $2
		ORDER BY id`
	if err := r.db.DB.SelectContext(ctx, &dishes, query, categoryID, dish.StatusEnabled); err != nil {
		return nil, fmt.Errorf("failed to list dishes for category %d: %w", categoryID, err)
	}

	views := make([]*dish.View, 0, len(dishes))
	for i := range dishes {
		var flavors []dish.Flavor
		flavorQuery := `SELECT id, dish_id, name, value FROM dish_flavor WHERE dish_id = $1 ORDER BY id`
		if err := r.db.DB.SelectContext(ctx, &flavors, flavorQuery, dishes[i].ID); err != nil {
			return nil, fmt.Errorf("failed to get flavors for dish %d: %w", dishes[i].ID, err)
		}
		views = append(views, &dish.View{Dish: dishes[i], Flavors: flavors})
	}
	return views, nil
}

// Update rewrites the dish row and replaces its flavor set.
func (r *DishRepository) Update(ctx context.Context, d *dish.Dish, flavors []dish.Flavor) error {
	tx, err := r.db.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE dish
		SET name = $2, category_id = $3, price = $4, image = $5, description = $6, status = $7, updated_at = NOW()
		WHERE id = $1`
	res, err := tx.ExecContext(ctx, query,
		d.ID, d.Name, d.CategoryID, d.Price, d.Image, d.Description, d.Status)
	if err != nil {
		return fmt.Errorf("failed to update dish %d: %w", d.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ports.ErrDishNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM dish_flavor WHERE dish_id = $1`, d.ID); err != nil {
		return fmt.Errorf("failed to clear flavors for dish %d: %w", d.ID, err)
	}
	if err := insertFlavors(ctx, tx, d.ID, flavors); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit dish update: %w", err)
	}
	return nil
}

// Delete removes the dish and its flavor rows.
func (r *DishRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM dish_flavor WHERE dish_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete flavors for dish %d: %w", id, err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM dish WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete dish %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ports.ErrDishNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit dish delete: %w", err)
	}
	return nil
}
