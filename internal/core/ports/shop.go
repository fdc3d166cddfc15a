package ports

import "context"

// ShopService exposes the store-wide open/closed flag, kept in the cache
// store because it is pure ephemeral operational state.
type ShopService interface {
	SetStatus(ctx context.Context, open bool) error
	GetStatus(ctx context.Context) (bool, error)
}
