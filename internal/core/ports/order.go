package ports

import (
	"context"
	"errors"
	"time"

	"github.com/emberwok/takeout/internal/core/domain/order"
)

var ErrOrderNotFound = errors.New("order not found")

type OrderRepository interface {
	Create(ctx context.Context, o *order.Order, details []order.Detail) error
	GetByID(ctx context.Context, id int64) (*order.Order, error)
	// ListByStatusOlderThan selects orders stuck in status whose order time
	// predates cutoff. The status predicate is what makes the timeout
	// sweeps idempotent: already-transitioned rows never match again.
	ListByStatusOlderThan(ctx context.Context, status order.Status, cutoff time.Time) ([]*order.Order, error)
	Update(ctx context.Context, o *order.Order) error
}

type OrderService interface {
	Submit(ctx context.Context, userID int64, req *order.SubmitOrderRequest) (*order.Order, error)
	Pay(ctx context.Context, userID int64, orderID int64) error
	Cancel(ctx context.Context, userID int64, orderID int64) error
}
