package postgres

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/storefront-inventory/internal/domain"
	"github.com/jhoicas/storefront-inventory/pkg/config"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Valores por defecto del pool cuando DB_MAX_CONNS no está definido.
const (
	defaultMaxConns    = 10
	minConns           = 1
	maxConnLifetime    = time.Hour
	maxConnIdleTime    = 10 * time.Minute
	healthCheckPeriod  = time.Minute
	applicationNameTag = "storefront-inventory"
)

// NewPool abre el pool del ledger y verifica la conexión.
// timeout es el plazo por operación del store: acota el dial, el ping inicial y, vía lock_timeout
// y statement_timeout, la espera de una fila bloqueada por otra mutación.
func NewPool(ctx context.Context, db config.DBConfig, timeout time.Duration) (*pgxpool.Pool, error) {
	poolCfg, err := poolConfig(db, timeout)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("crear pool: %w", err)
	}

	pingCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping DB: %w: %w", domain.ErrStoreUnavailable, err)
	}
	return pool, nil
}

// poolConfig traduce la configuración de la app a pgxpool.Config.
func poolConfig(db config.DBConfig, timeout time.Duration) (*pgxpool.Config, error) {
	poolCfg, err := pgxpool.ParseConfig(db.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parse DSN: %w", err)
	}

	maxConns := db.MaxConns
	if maxConns <= 0 {
		maxConns = defaultMaxConns
	}
	poolCfg.MaxConns = int32(maxConns)
	poolCfg.MinConns = minConns
	poolCfg.MaxConnLifetime = maxConnLifetime
	poolCfg.MaxConnIdleTime = maxConnIdleTime
	poolCfg.HealthCheckPeriod = healthCheckPeriod

	params := poolCfg.ConnConfig.RuntimeParams
	if _, ok := params["application_name"]; !ok {
		params["application_name"] = applicationNameTag
	}
	if timeout > 0 {
		ms := strconv.FormatInt(timeout.Milliseconds(), 10)
		poolCfg.ConnConfig.ConnectTimeout = timeout
		// Un FOR UPDATE en espera falla con 55P03 y una sentencia lenta con 57014: ambos son
		// ErrStoreUnavailable (ver storeErr).
		params["lock_timeout"] = ms
		params["statement_timeout"] = ms
	}
	return poolCfg, nil
}

// Migrate aplica en orden los scripts embebidos de migrations/. Son idempotentes (IF NOT EXISTS).
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	files, err := fs.Glob(migrations, "migrations/*.sql")
	if err != nil {
		return err
	}
	sort.Strings(files)
	for _, name := range files {
		script, err := migrations.ReadFile(name)
		if err != nil {
			return fmt.Errorf("leer %s: %w", name, err)
		}
		if _, err := pool.Exec(ctx, string(script)); err != nil {
			return fmt.Errorf("aplicar %s: %w", name, storeErr(err))
		}
	}
	return nil
}
