package inventory_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/jhoicas/storefront-inventory/internal/domain/entity"
	"github.com/jhoicas/storefront-inventory/internal/domain/repository"
)

// MockStockRepository simula el repositorio de stock
type MockStockRepository struct {
	mock.Mock
}

func (m *MockStockRepository) Get(ctx context.Context, productID string) (*entity.StockRecord, error) {
	args := m.Called(ctx, productID)
	return stockArg(args, 0), args.Error(1)
}

func (m *MockStockRepository) GetForUpdate(ctx context.Context, productID string) (*entity.StockRecord, error) {
	args := m.Called(ctx, productID)
	return stockArg(args, 0), args.Error(1)
}

func (m *MockStockRepository) Create(ctx context.Context, stock *entity.StockRecord) error {
	return m.Called(ctx, stock).Error(0)
}

func (m *MockStockRepository) UpdateQuantity(ctx context.Context, productID string, quantity int, updatedAt time.Time) error {
	return m.Called(ctx, productID, quantity, updatedAt).Error(0)
}

func (m *MockStockRepository) List(ctx context.Context, limit, offset int) ([]*entity.StockRecord, error) {
	args := m.Called(ctx, limit, offset)
	list, _ := args.Get(0).([]*entity.StockRecord)
	return list, args.Error(1)
}

func (m *MockStockRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockStockRepository) ListLowStock(ctx context.Context) ([]*entity.StockRecord, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]*entity.StockRecord)
	return list, args.Error(1)
}

// MockLedgerRepository simula el ledger append-only
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) Append(ctx context.Context, entry *entity.LedgerEntry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *MockLedgerRepository) LatestCreatedAt(ctx context.Context, productID string) (time.Time, bool, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).(time.Time), args.Bool(1), args.Error(2)
}

func (m *MockLedgerRepository) ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.LedgerEntry, error) {
	args := m.Called(ctx, productID, limit, offset)
	list, _ := args.Get(0).([]*entity.LedgerEntry)
	return list, args.Error(1)
}

func (m *MockLedgerRepository) CountByProduct(ctx context.Context, productID string) (int, error) {
	args := m.Called(ctx, productID)
	return args.Int(0), args.Error(1)
}

func (m *MockLedgerRepository) SumByProduct(ctx context.Context, productID string) (int, error) {
	args := m.Called(ctx, productID)
	return args.Int(0), args.Error(1)
}

// MockStockReportGenerator simula el generador de PDF
type MockStockReportGenerator struct {
	mock.Mock
}

func (m *MockStockReportGenerator) GenerateStockCard(ctx context.Context, stock *entity.StockRecord, entries []*entity.LedgerEntry) ([]byte, error) {
	args := m.Called(ctx, stock, entries)
	out, _ := args.Get(0).([]byte)
	return out, args.Error(1)
}

// fakeTxRunner entrega los mismos mocks como repos "transaccionales" y cuenta las transacciones.
type fakeTxRunner struct {
	stock  repository.StockRepository
	ledger repository.LedgerEntryRepository
	runs   int
}

func (f *fakeTxRunner) Run(ctx context.Context, fn func(repository.StockRepository, repository.LedgerEntryRepository) error) error {
	f.runs++
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(f.stock, f.ledger)
}

func stockArg(args mock.Arguments, i int) *entity.StockRecord {
	s, _ := args.Get(i).(*entity.StockRecord)
	return s
}
