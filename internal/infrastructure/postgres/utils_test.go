package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/storefront-inventory/internal/domain"
	"github.com/jhoicas/storefront-inventory/pkg/config"
)

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.True(t, isUniqueViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23514"}))
}

func TestStoreErr(t *testing.T) {
	assert.NoError(t, storeErr(nil))

	err := storeErr(&pgconn.PgError{Code: "23514", ConstraintName: "inventory_quantity_non_negative"})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	err = storeErr(context.DeadlineExceeded)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	err = storeErr(&pgconn.PgError{Code: "08006"})
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)

	err = storeErr(fmt.Errorf("update: %w", &pgconn.PgError{Code: "22003"}))
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "fuera de rango de INTEGER")

	assert.ErrorIs(t, storeErr(&pgconn.PgError{Code: "55P03"}), domain.ErrStoreUnavailable)
	assert.ErrorIs(t, storeErr(&pgconn.PgError{Code: "57014"}), domain.ErrStoreUnavailable)

	other := errors.New("syntax error")
	assert.Equal(t, other, storeErr(other))
}

func TestMigrationsEmbebidas(t *testing.T) {
	script, err := migrations.ReadFile("migrations/001_inventory.sql")
	assert.NoError(t, err)
	assert.Contains(t, string(script), "CHECK (quantity >= 0)")
	assert.Contains(t, string(script), "seq             BIGSERIAL")
}

func TestPoolConfig_DerivaTimeoutsDelStore(t *testing.T) {
	db := config.DBConfig{DatabaseURL: "postgres://app:secret@db:5432/inv?sslmode=disable", MaxConns: 4}

	cfg, err := poolConfig(db, 250*time.Millisecond)

	require.NoError(t, err)
	assert.Equal(t, int32(4), cfg.MaxConns)
	assert.Equal(t, 250*time.Millisecond, cfg.ConnConfig.ConnectTimeout)
	assert.Equal(t, "250", cfg.ConnConfig.RuntimeParams["lock_timeout"])
	assert.Equal(t, "250", cfg.ConnConfig.RuntimeParams["statement_timeout"])
	assert.Equal(t, "storefront-inventory", cfg.ConnConfig.RuntimeParams["application_name"])
}

func TestPoolConfig_SinTimeoutNiMaxConns(t *testing.T) {
	db := config.DBConfig{Host: "db", Port: 5432, User: "app", DBName: "inv", SSLMode: "disable"}

	cfg, err := poolConfig(db, 0)

	require.NoError(t, err)
	assert.Equal(t, int32(defaultMaxConns), cfg.MaxConns)
	assert.NotContains(t, cfg.ConnConfig.RuntimeParams, "lock_timeout")
}

func TestPoolConfig_DSNInvalido(t *testing.T) {
	_, err := poolConfig(config.DBConfig{DatabaseURL: "postgres://%zz"}, time.Second)
	assert.Error(t, err)
}
