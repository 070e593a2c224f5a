// Package sqlite implementa el ledger de inventario sobre un archivo SQLite.
// Es el store embebido para desarrollo, el CLI en modo local y los tests de integración;
// producción usa el adaptador postgres con el mismo contrato.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/jhoicas/storefront-inventory/internal/domain"
)

//go:embed schema.sql
var schemaSQL string

// Store envuelve la conexión SQLite.
//
// Se usa una única conexión abierta: SQLite admite un solo escritor y, con ella, las
// transacciones del ledger quedan serializadas. Una transacción retiene la conexión hasta
// su Commit/Rollback y las demás esperan en el pool respetando el deadline del contexto.
type Store struct {
	db *sql.DB
}

// Open crea o abre la base en path, aplica pragmas y el esquema. Es idempotente.
func Open(path string) (*Store, error) {
	// _txlock=immediate: BEGIN IMMEDIATE toma el lock de escritura al iniciar la transacción.
	dsn := fmt.Sprintf("%s?_txlock=immediate&_busy_timeout=5000&_foreign_keys=on", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w: %w", domain.ErrStoreUnavailable, err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close cierra la conexión.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB devuelve el *sql.DB subyacente.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Stocks repositorio de stock fuera de transacción.
func (s *Store) Stocks() *StockRepo { return NewStockRepository(s.db) }

// Ledger repositorio del ledger fuera de transacción.
func (s *Store) Ledger() *LedgerEntryRepo { return NewLedgerEntryRepository(s.db) }

// Users repositorio de usuarios.
func (s *Store) Users() *UserRepo { return NewUserRepository(s.db) }

// TxRunner runner transaccional sobre este store.
func (s *Store) TxRunner() *TxRunner { return NewTxRunner(s.db) }

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %q: %w", pragma, err)
		}
	}
	return nil
}

// querier es el subconjunto común de *sql.DB y *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Los instantes se guardan como nanosegundos Unix en UTC.
func toUnix(t time.Time) int64 { return t.UTC().UnixNano() }

func fromUnix(n int64) time.Time { return time.Unix(0, n).UTC() }
