package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/storefront-inventory/internal/domain"
	"github.com/jhoicas/storefront-inventory/internal/domain/entity"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "inventory.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpen_Idempotente(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.db")
	s1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	var mode string
	require.NoError(t, s2.DB().QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)
}

func TestStockRepo_CrearYLeer(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 1, 2, 3, 4, 5, 6000, time.UTC)

	require.NoError(t, s.Stocks().Create(ctx, &entity.StockRecord{
		ProductID: "p1", Quantity: 10, LowStockThreshold: 5, InitialQuantity: 10, CreatedAt: now, UpdatedAt: now,
	}))

	got, err := s.Stocks().Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 10, got.Quantity)
	assert.True(t, got.UpdatedAt.Equal(now))

	missing, err := s.Stocks().Get(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	err = s.Stocks().Create(ctx, &entity.StockRecord{ProductID: "p1", CreatedAt: now, UpdatedAt: now})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestStockRepo_CheckNoNegativo(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	now := time.Now()
	require.NoError(t, s.Stocks().Create(ctx, &entity.StockRecord{ProductID: "p1", Quantity: 1, CreatedAt: now, UpdatedAt: now}))

	err := s.Stocks().UpdateQuantity(ctx, "p1", -1, now)

	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	got, err := s.Stocks().Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Quantity)
}

func TestStockRepo_UpdateProductoInexistente(t *testing.T) {
	s := openTestStore(t)

	err := s.Stocks().UpdateQuantity(context.Background(), "nope", 3, time.Now())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStockRepo_ListLowStock(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	now := time.Now()
	for _, rec := range []*entity.StockRecord{
		{ProductID: "a", Quantity: 10, LowStockThreshold: 5},
		{ProductID: "b", Quantity: 5, LowStockThreshold: 5},
		{ProductID: "c", Quantity: 0, LowStockThreshold: 3},
	} {
		rec.CreatedAt, rec.UpdatedAt = now, now
		require.NoError(t, s.Stocks().Create(ctx, rec))
	}

	low, err := s.Stocks().ListLowStock(ctx)

	require.NoError(t, err)
	require.Len(t, low, 2)
	assert.Equal(t, "c", low[0].ProductID)
	assert.Equal(t, "b", low[1].ProductID)

	n, err := s.Stocks().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestLedgerRepo_OrdenYSeq(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	ts := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.Stocks().Create(ctx, &entity.StockRecord{ProductID: "p1", Quantity: 10, CreatedAt: ts, UpdatedAt: ts}))

	first := &entity.LedgerEntry{ProductID: "p1", QuantityChange: -1, Kind: entity.LedgerKindPurchase, CreatedBy: "u", CreatedAt: ts}
	second := &entity.LedgerEntry{ProductID: "p1", QuantityChange: -2, Kind: entity.LedgerKindPurchase, CreatedBy: "u", CreatedAt: ts}
	require.NoError(t, s.Ledger().Append(ctx, first))
	require.NoError(t, s.Ledger().Append(ctx, second))
	assert.Greater(t, second.Seq, first.Seq)

	list, err := s.Ledger().ListByProduct(ctx, "p1", 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID, "mismo created_at: gana el seq mayor")

	last, ok, err := s.Ledger().LatestCreatedAt(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, last.Equal(ts))

	sum, err := s.Ledger().SumByProduct(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, -3, sum)

	_, ok, err = s.Ledger().LatestCreatedAt(ctx, "otro")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUserRepo(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	now := time.Now()
	u := &entity.User{ID: "u1", Email: "a@b.co", PasswordHash: "h", Name: "A", Role: entity.RoleAdmin, Status: "active", CreatedAt: now, UpdatedAt: now}

	require.NoError(t, s.Users().Create(ctx, u))
	assert.ErrorIs(t, s.Users().Create(ctx, &entity.User{ID: "u2", Email: "a@b.co", CreatedAt: now, UpdatedAt: now}), domain.ErrDuplicate)

	got, err := s.Users().FindByEmail(ctx, "a@b.co")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.ID)

	byID, err := s.Users().GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, byID.Role)

	none, err := s.Users().FindByEmail(ctx, "x@b.co")
	require.NoError(t, err)
	assert.Nil(t, none)
}
