package settings_test

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/billd/internal/settings"
	"github.com/noah-isme/billd/internal/store"
)

func newService(t *testing.T) (*settings.Service, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return &settings.Service{Store: store.New(client, zerolog.Nop())}, mr
}

func TestGetReturnsDefaultsWhenUnset(t *testing.T) {
	svc, _ := newService(t)
	got := svc.Get(context.Background())
	require.Equal(t, settings.Defaults(), got)
	require.Equal(t, "INV-", got.InvoicePrefix)
	require.Equal(t, 2, got.DecimalPrecision)
	require.True(t, got.LowStockWarnings)
	require.False(t, got.AutoDeductInventory)
}

func TestGetReturnsDefaultsOnMalformedDocument(t *testing.T) {
	svc, mr := newService(t)
	require.NoError(t, mr.Set(store.KeySettings, "{not json"))
	require.Equal(t, settings.Defaults(), svc.Get(context.Background()))
}

func TestUpdateRoundTrip(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	cfg := settings.Defaults()
	cfg.CurrencySymbol = "Rp"
	cfg.InvoicePrefix = "FAK-"
	cfg.DefaultTaxRate = 11
	cfg.AutoDeductInventory = true
	cfg.QRCodeSettings.Enabled = true
	cfg.QRCodeSettings.Data = "custom"
	cfg.QRCodeSettings.CustomData = "https://pay.example"

	require.NoError(t, svc.Update(ctx, cfg))
	require.Equal(t, cfg, svc.Get(ctx))
}

func TestUpdateReplacesWholeDocument(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	first := settings.Defaults()
	first.Theme = "dark"
	require.NoError(t, svc.Update(ctx, first))

	// A later update with zero-valued fields overwrites them rather than merging.
	var second settings.AppSettings
	second.CurrencySymbol = "€"
	require.NoError(t, svc.Update(ctx, second))

	got := svc.Get(ctx)
	require.Equal(t, "€", got.CurrencySymbol)
	require.Empty(t, got.Theme)
	require.Zero(t, got.DecimalPrecision)
}
