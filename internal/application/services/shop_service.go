package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/emberwok/takeout/internal/core/ports"
)

// shopStatusKey is shared with other deployments; do not change.
const shopStatusKey = "SHOP_STATUS"

// ShopService keeps the store-wide open/closed flag in the cache store.
// Unlike data entries it has no TTL: it is operational state, not a cache
// of anything.
type ShopService struct {
	cache  ports.Cache
	logger *logrus.Logger
}

func NewShopService(cache ports.Cache, logger *logrus.Logger) ports.ShopService {
	return &ShopService{cache: cache, logger: logger}
}

func (s *ShopService) SetStatus(ctx context.Context, open bool) error {
	val := []byte("0")
	if open {
		val = []byte("1")
	}
	if err := s.cache.Set(ctx, shopStatusKey, val, 0); err != nil {
		return fmt.Errorf("setting shop status: %w", err)
	}
	s.logger.WithField("open", open).Info("shop status changed")
	return nil
}

// GetStatus reports whether the shop is taking orders. A missing flag reads
// as closed.
func (s *ShopService) GetStatus(ctx context.Context) (bool, error) {
	raw, ok, err := s.cache.Get(ctx, shopStatusKey)
	if err != nil {
		return false, fmt.Errorf("getting shop status: %w", err)
	}
	return ok && string(raw) == "1", nil
}
