// Package cli implementa ledgerctl: operación del ledger de inventario desde la terminal,
// contra el store local (postgres/sqlite según config) o contra la API (--api-url).
package cli

import (
	"fmt"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/jhoicas/storefront-inventory/pkg/config"
	"github.com/jhoicas/storefront-inventory/pkg/logger"
)

// RootOptions flags globales de todos los comandos.
type RootOptions struct {
	Verbose bool
	Format  string // "text" | "json"
	APIURL  string // vacío = store local
	Token   string
	Actor   string
	SQLite  string // fuerza driver sqlite con esta ruta

	cfg *config.Config
	log *logger.Logger
	now func() time.Time // reloj del store local, reemplazable en tests
}

// ValidFormats formatos de salida permitidos.
var ValidFormats = []string{"text", "json"}

// NewRootCommand crea el comando raíz de ledgerctl.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledgerctl",
		Short: "Operación del ledger de inventario del storefront",
		Long: `ledgerctl consulta y muta el ledger de inventario.

Sin --api-url trabaja directo contra el store configurado (STORE_DRIVER, DATABASE_URL,
SQLITE_PATH). Con --api-url habla con la API HTTP usando --token.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("formato inválido %q: debe ser uno de %v", opts.Format, ValidFormats))
			}
			cfg, err := config.Load()
			if err != nil {
				return WrapExitError(ExitCommandError, "cargar configuración", err)
			}
			if opts.SQLite != "" {
				cfg.Store.Driver = config.DriverSQLite
				cfg.Store.SQLitePath = opts.SQLite
			}
			opts.cfg = cfg
			level := "warn"
			if opts.Verbose {
				level = "debug"
			}
			opts.log = logger.New(logger.Config{Env: "development", Level: level, Out: cmd.ErrOrStderr()})
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "salida de diagnóstico en stderr")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "formato de salida (text|json)")
	cmd.PersistentFlags().StringVar(&opts.APIURL, "api-url", "", "URL base de la API (vacío = store local)")
	cmd.PersistentFlags().StringVar(&opts.Token, "token", "", "token Bearer para --api-url")
	cmd.PersistentFlags().StringVar(&opts.Actor, "actor", "ledgerctl", "usuario registrado en created_by (solo store local)")
	cmd.PersistentFlags().StringVar(&opts.SQLite, "sqlite", "", "usar el store SQLite en esta ruta")

	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewStockCommand(opts))
	cmd.AddCommand(NewAvailabilityCommand(opts))
	cmd.AddCommand(NewAdjustCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewLowStockCommand(opts))
	cmd.AddCommand(NewReconcileCommand(opts))
	cmd.AddCommand(NewStockCardCommand(opts))
	cmd.AddCommand(NewUserCommand(opts))
	cmd.AddCommand(NewTokenCommand(opts))

	return cmd
}
