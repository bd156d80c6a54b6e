package store_test

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/billd/internal/store"
)

func newStore(t *testing.T) (*store.Store, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return store.New(client, zerolog.Nop()), mr
}

func TestGetJSONMissingKey(t *testing.T) {
	s, _ := newStore(t)

	var out []string
	found, err := s.GetJSON(context.Background(), store.KeyInvoices, &out)
	require.NoError(t, err)
	require.False(t, found)
	require.Empty(t, out)
}

func TestSetAndGetJSONRoundTrip(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	in := map[string]any{"id": "INV-1", "total": 42.5}
	require.NoError(t, s.SetJSON(ctx, store.KeyInvoices, in))

	var out map[string]any
	found, err := s.GetJSON(ctx, store.KeyInvoices, &out)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "INV-1", out["id"])
	require.Equal(t, 42.5, out["total"])
}

func TestGetJSONMalformedDocumentTreatedAsMissing(t *testing.T) {
	s, mr := newStore(t)

	require.NoError(t, mr.Set(store.KeyProducts, "{not json"))

	var out []string
	found, err := s.GetJSON(context.Background(), store.KeyProducts, &out)
	require.NoError(t, err)
	require.False(t, found)
}

func TestSetJSONMultiWritesAllKeys(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	err := s.SetJSONMulti(ctx, map[string]any{
		store.KeyProducts:     []string{"p1"},
		store.KeyTransactions: []string{"t1", "t2"},
		store.KeyAlerts:       []string{},
	})
	require.NoError(t, err)

	var products, transactions, alerts []string
	for key, dst := range map[string]*[]string{
		store.KeyProducts:     &products,
		store.KeyTransactions: &transactions,
		store.KeyAlerts:       &alerts,
	} {
		found, err := s.GetJSON(ctx, key, dst)
		require.NoError(t, err)
		require.True(t, found, key)
	}
	require.Len(t, products, 1)
	require.Len(t, transactions, 2)
	require.Empty(t, alerts)
}

func TestSetJSONSurfacesWriteFailure(t *testing.T) {
	s, mr := newStore(t)
	mr.Close()

	err := s.SetJSON(context.Background(), store.KeySettings, map[string]string{"a": "b"})
	require.Error(t, err)
}
