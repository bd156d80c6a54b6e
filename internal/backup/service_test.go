package backup_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/billd/internal/backup"
	"github.com/noah-isme/billd/internal/billing"
	"github.com/noah-isme/billd/internal/invoice"
	"github.com/noah-isme/billd/internal/settings"
	"github.com/noah-isme/billd/internal/store"
)

func newService(t *testing.T) (*backup.Service, *invoice.Service, *settings.Service) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	kv := store.New(client, zerolog.Nop())
	now := func() time.Time { return time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC) }

	settingsSvc := &settings.Service{Store: kv}
	invoiceSvc := &invoice.Service{Store: kv, Settings: settingsSvc, Log: zerolog.Nop(), Now: now}
	svc := &backup.Service{Invoices: invoiceSvc, Settings: settingsSvc, Log: zerolog.Nop(), Now: now}
	return svc, invoiceSvc, settingsSvc
}

func TestExportSnapshotShape(t *testing.T) {
	svc, invoices, settingsSvc := newService(t)
	ctx := context.Background()

	_, err := invoices.Save(ctx, billing.Invoice{ID: "INV-1", LineItems: []billing.LineItem{{ID: "l1", Quantity: 1, Price: 25}}})
	require.NoError(t, err)

	cfg := settings.Defaults()
	cfg.CurrencySymbol = "Rp"
	require.NoError(t, settingsSvc.Update(ctx, cfg))

	snap, err := svc.Export(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Invoices, 1)
	require.Equal(t, 25.0, snap.Invoices[0].Total)
	require.Equal(t, "Rp", snap.Settings.CurrencySymbol)
	require.Equal(t, "2026-08-28T12:00:00Z", snap.ExportDate)
}

func TestImportUpsertsInvoicesAndReplacesSettings(t *testing.T) {
	svc, invoices, settingsSvc := newService(t)
	ctx := context.Background()

	// Pre-existing invoice with the same id gets overwritten, not duplicated.
	_, err := invoices.Save(ctx, billing.Invoice{ID: "INV-1", LineItems: []billing.LineItem{{ID: "l1", Quantity: 1, Price: 10}}})
	require.NoError(t, err)

	cfg := settings.Defaults()
	cfg.Theme = "dark"
	snap := backup.Snapshot{
		Invoices: []billing.Invoice{
			{ID: "INV-1", LineItems: []billing.LineItem{{ID: "l1", Quantity: 1, Price: 99}}},
			{ID: "INV-2", LineItems: []billing.LineItem{{ID: "l2", Quantity: 2, Price: 5}}},
		},
		Settings:   cfg,
		ExportDate: "2026-08-01T00:00:00Z",
	}
	raw, err := json.Marshal(snap)
	require.NoError(t, err)

	result, err := svc.Import(ctx, raw)
	require.NoError(t, err)
	require.Equal(t, 2, result.InvoicesImported)
	require.True(t, result.SettingsReplaced)

	all, err := invoices.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)

	inv1, err := invoices.Get(ctx, "INV-1")
	require.NoError(t, err)
	require.Equal(t, 99.0, inv1.Total)

	require.Equal(t, "dark", settingsSvc.Get(ctx).Theme)
}

func TestImportRejectsMalformedDocument(t *testing.T) {
	svc, invoices, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Import(ctx, []byte("{broken"))
	require.Error(t, err)

	all, err := invoices.List(ctx)
	require.NoError(t, err)
	require.Empty(t, all)
}

func TestImportSkipsZeroSettings(t *testing.T) {
	svc, _, settingsSvc := newService(t)
	ctx := context.Background()

	cfg := settings.Defaults()
	cfg.Theme = "dark"
	require.NoError(t, settingsSvc.Update(ctx, cfg))

	raw, err := json.Marshal(backup.Snapshot{ExportDate: "2026-08-01T00:00:00Z"})
	require.NoError(t, err)

	result, err := svc.Import(ctx, raw)
	require.NoError(t, err)
	require.Zero(t, result.InvoicesImported)
	require.False(t, result.SettingsReplaced)
	require.Equal(t, "dark", settingsSvc.Get(ctx).Theme)
}

func TestExportImportRoundTrip(t *testing.T) {
	src, invoices, _ := newService(t)
	ctx := context.Background()

	_, err := invoices.Save(ctx, billing.Invoice{ID: "INV-1", LineItems: []billing.LineItem{{ID: "l1", Quantity: 3, Price: 7}}})
	require.NoError(t, err)

	snap, err := src.Export(ctx)
	require.NoError(t, err)
	raw, err := json.Marshal(snap)
	require.NoError(t, err)

	dst, dstInvoices, _ := newService(t)
	result, err := dst.Import(ctx, raw)
	require.NoError(t, err)
	require.Equal(t, 1, result.InvoicesImported)

	got, err := dstInvoices.Get(ctx, "INV-1")
	require.NoError(t, err)
	require.Equal(t, 21.0, got.Total)
}
