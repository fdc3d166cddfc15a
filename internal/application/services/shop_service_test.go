package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	impl "github.com/emberwok/takeout/internal/application/services"
)

func TestShopStatus_MissingFlagReadsClosed(t *testing.T) {
	svc := impl.NewShopService(newMemCache(), testLogger())

	open, err := svc.GetStatus(context.Background())
	require.NoError(t, err)
	require.False(t, open, "missing flag must read as closed")
}

func TestShopStatus_RoundTrip(t *testing.T) {
	cache := newMemCache()
	svc := impl.NewShopService(cache, testLogger())
	ctx := context.Background()

	require.NoError(t, svc.SetStatus(ctx, true))
	raw, ok, err := cache.Get(ctx, "SHOP_STATUS")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "1", string(raw))

	open, err := svc.GetStatus(ctx)
	require.NoError(t, err)
	require.True(t, open)

	require.NoError(t, svc.SetStatus(ctx, false))
	open, err = svc.GetStatus(ctx)
	require.NoError(t, err)
	require.False(t, open)
}
