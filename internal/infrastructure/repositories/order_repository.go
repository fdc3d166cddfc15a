package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/emberwok/takeout/internal/core/domain/order"
	"github.com/emberwok/takeout/internal/core/ports"
	"github.com/emberwok/takeout/internal/infrastructure/db"
)

// OrderRepository implements the order repository interface over Postgres.
type OrderRepository struct {
	db     *db.Database
	logger *logrus.Logger
}

func NewOrderRepository(database *db.Database, logger *logrus.Logger) ports.OrderRepository {
	return &OrderRepository{db: database, logger: logger}
}

// Create inserts the order and its detail rows in one transaction. The
// order row is written first so the details can reference its generated id.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order, details []order.Detail) error {
	tx, err := r.db.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO orders (number, user_id, status, amount, address, order_time)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	err = tx.QueryRowxContext(ctx, query,
		o.Number, o.UserID, o.Status, o.Amount, o.Address, o.OrderTime,
	).Scan(&o.ID)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	detailQuery := `
		INSERT INTO order_detail (order_id, dish_id, name, dish_flavor, number, amount)
		VALUES ($1, $2, $3, $4, $5, $6)`
	for i := range details {
		details[i].OrderID = o.ID
		if _, err := tx.ExecContext(ctx, detailQuery,
			o.ID, details[i].DishID, details[i].Name, details[i].DishFlavor, details[i].Number, details[i].Amount); err != nil {
			return fmt.Errorf("failed to insert order detail: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit order create: %w", err)
	}
	return nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*order.Order, error) {
	var o order.Order
	query := `
		SELECT id, number, user_id, status, amount, address, order_time, checkout_time, cancel_reason, cancel_time
		FROM orders
		WHERE id = $1`
	if err := r.db.DB.GetContext(ctx, &o, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ports.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order %d: %w", id, err)
	}
	return &o, nil
}

// ListByStatusOlderThan selects orders stuck in status since before cutoff.
func (r *OrderRepository) ListByStatusOlderThan(ctx context.Context, status order.Status, cutoff time.Time) ([]*order.Order, error) {
	var orders []*order.Order
	query := `
		SELECT id, number, user_id, status, amount, address, order_time, checkout_time, cancel_reason, cancel_time
		FROM orders
		WHERE status = $1 AND order_time < $2
		ORDER BY order_time`
	if err := r.db.DB.SelectContext(ctx, &orders, query, status, cutoff); err != nil {
		return nil, fmt.Errorf("failed to list orders by status %d: %w", status, err)
	}
	return orders, nil
}

func (r *OrderRepository) Update(ctx context.Context, o *order.Order) error {
	query := `
		UPDATE orders
		SET status = $2, checkout_time = $3, cancel_reason = $4, cancel_time = $5
		WHERE id = $1`
	res, err := r.db.DB.ExecContext(ctx, query,
		o.ID, o.Status, o.CheckoutTime, o.CancelReason, o.CancelTime)
	if err != nil {
		return fmt.Errorf("failed to update order %d: %w", o.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ports.ErrOrderNotFound
	}
	return nil
}
