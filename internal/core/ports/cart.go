package ports

import (
	"context"

	"github.com/emberwok/takeout/internal/core/domain/cart"
)

type CartRepository interface {
	// Find returns the existing row for (userID, dishID, flavor), or nil.
	Find(ctx context.Context, userID, dishID int64, flavor string) (*cart.Item, error)
	Insert(ctx context.Context, item *cart.Item) error
	UpdateNumber(ctx context.Context, id int64, number int) error
	List(ctx context.Context, userID int64) ([]*cart.Item, error)
	Clean(ctx context.Context, userID int64) error
}

type CartService interface {
	Add(ctx context.Context, userID int64, req *cart.AddItemRequest) error
	List(ctx context.Context, userID int64) ([]*cart.Item, error)
	Clean(ctx context.Context, userID int64) error
}
