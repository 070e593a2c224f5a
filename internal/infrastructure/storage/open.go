// Package storage arma el backend persistente del ledger según el driver configurado.
package storage

import (
	"context"
	"fmt"

	"github.com/jhoicas/storefront-inventory/internal/application/inventory"
	"github.com/jhoicas/storefront-inventory/internal/domain/repository"
	"github.com/jhoicas/storefront-inventory/internal/infrastructure/postgres"
	"github.com/jhoicas/storefront-inventory/internal/infrastructure/sqlite"
	"github.com/jhoicas/storefront-inventory/pkg/config"
)

// Backend repositorios y runner transaccional de un mismo store.
type Backend struct {
	Driver   string
	TxRunner inventory.TxRunner
	Stocks   repository.StockRepository
	Ledger   repository.LedgerEntryRepository
	Users    repository.UserRepository
	close    func()
}

// Close libera el pool o la conexión del store.
func (b *Backend) Close() {
	if b.close != nil {
		b.close()
	}
}

// Open conecta el store indicado por cfg.Store.Driver y aplica el esquema.
func Open(ctx context.Context, cfg *config.Config) (*Backend, error) {
	switch cfg.Store.Driver {
	case config.DriverSQLite:
		return OpenSQLite(cfg.Store.SQLitePath)
	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB, cfg.Store.Timeout())
		if err != nil {
			return nil, err
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		return &Backend{
			Driver:   config.DriverPostgres,
			TxRunner: postgres.NewTxRunner(pool),
			Stocks:   postgres.NewStockRepository(pool),
			Ledger:   postgres.NewLedgerEntryRepository(pool),
			Users:    postgres.NewUserRepository(pool),
			close:    pool.Close,
		}, nil
	default:
		return nil, fmt.Errorf("storage: driver desconocido %q", cfg.Store.Driver)
	}
}

// OpenSQLite abre el store embebido en path.
func OpenSQLite(path string) (*Backend, error) {
	st, err := sqlite.Open(path)
	if err != nil {
		return nil, err
	}
	return &Backend{
		Driver:   config.DriverSQLite,
		TxRunner: st.TxRunner(),
		Stocks:   st.Stocks(),
		Ledger:   st.Ledger(),
		Users:    st.Users(),
		close:    func() { _ = st.Close() },
	}, nil
}
