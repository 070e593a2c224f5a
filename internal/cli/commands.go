package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jhoicas/storefront-inventory/internal/application/dto"
	"github.com/jhoicas/storefront-inventory/internal/domain"
	"github.com/jhoicas/storefront-inventory/internal/domain/entity"
)

// withLedger abre el ledger, ejecuta fn y lo cierra.
func withLedger(cmd *cobra.Command, opts *RootOptions, fn func(ctx context.Context, l Ledger, p printer) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	l, closeFn, err := openLedger(ctx, opts)
	if err != nil {
		return err
	}
	defer closeFn()
	return fn(ctx, l, printer{format: opts.Format, w: cmd.OutOrStdout()})
}

// SeedFile formato del archivo de --file.
type SeedFile struct {
	Products []dto.OnboardStockRequest `yaml:"products"`
}

// NewSeedCommand da de alta productos desde un YAML. Los ya existentes se omiten.
func NewSeedCommand(opts *RootOptions) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed --file inventory.yaml",
		Short: "Dar de alta el stock inicial desde un archivo YAML",
		Long: `Da de alta los productos listados. Formato:

  products:
    - product_id: sku-1
      quantity: 10
      low_stock_threshold: 5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(file)
			if err != nil {
				return WrapExitError(ExitCommandError, "leer --file", err)
			}
			var seed SeedFile
			if err := yaml.Unmarshal(raw, &seed); err != nil {
				return WrapExitError(ExitCommandError, "YAML inválido", err)
			}
			return withLedger(cmd, opts, func(ctx context.Context, l Ledger, p printer) error {
				created, skipped := 0, 0
				for _, item := range seed.Products {
					_, err := l.Onboard(ctx, item)
					switch {
					case err == nil:
						created++
						fmt.Fprintf(p.w, "%s: creado con %d (umbral %d)\n", item.ProductID, item.Quantity, item.LowStockThreshold)
					case errors.Is(err, domain.ErrDuplicate):
						skipped++
						fmt.Fprintf(p.w, "%s: ya existe, omitido\n", item.ProductID)
					default:
						return fmt.Errorf("%s: %w", item.ProductID, err)
					}
				}
				_, err := fmt.Fprintf(p.w, "%d creados, %d omitidos\n", created, skipped)
				return err
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "archivo YAML con los productos")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// NewStockCommand muestra el stock actual de uno o varios productos.
func NewStockCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stock <product-id>...",
		Short: "Stock actual de productos",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLedger(cmd, opts, func(ctx context.Context, l Ledger, p printer) error {
				list := make([]dto.StockResponse, 0, len(args))
				for _, id := range args {
					s, err := l.GetStock(ctx, id)
					if err != nil {
						return fmt.Errorf("%s: %w", id, err)
					}
					list = append(list, *s)
				}
				return p.stocks(list)
			})
		},
	}
}

// NewAvailabilityCommand consulta disponibilidad sin reservar.
func NewAvailabilityCommand(opts *RootOptions) *cobra.Command {
	var quantity int
	cmd := &cobra.Command{
		Use:   "availability <product-id>",
		Short: "Disponibilidad para una cantidad (lectura, sin reserva)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLedger(cmd, opts, func(ctx context.Context, l Ledger, p printer) error {
				av, err := l.CheckAvailability(ctx, args[0], quantity)
				if err != nil {
					return err
				}
				return p.availability(av)
			})
		},
	}
	cmd.Flags().IntVarP(&quantity, "quantity", "q", 1, "cantidad pedida")
	return cmd
}

// NewAdjustCommand aplica una mutación: reposición, compra o ajuste.
func NewAdjustCommand(opts *RootOptions) *cobra.Command {
	var (
		change int
		kind   string
		notes  string
	)
	cmd := &cobra.Command{
		Use:   "adjust <product-id> --change N",
		Short: "Aplicar una mutación de stock",
		Long: `Aplica una mutación al producto. --change es un entero con signo:
restock debe ser positivo, purchase negativo y adjustment cualquiera distinto de cero.

Ejemplo:
  ledgerctl adjust sku-1 --change -3 --kind purchase --notes "pedido 1042"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLedger(cmd, opts, func(ctx context.Context, l Ledger, p printer) error {
				m, err := l.ApplyMutation(ctx, args[0], dto.ApplyMutationRequest{QuantityChange: change, Kind: kind, Notes: notes})
				if err != nil {
					return err
				}
				return p.mutation(m)
			})
		},
	}
	cmd.Flags().IntVarP(&change, "change", "c", 0, "cambio con signo")
	cmd.Flags().StringVarP(&kind, "kind", "k", entity.LedgerKindAdjustment, "restock | purchase | adjustment")
	cmd.Flags().StringVarP(&notes, "notes", "n", "", "nota libre para el ledger")
	_ = cmd.MarkFlagRequired("change")
	return cmd
}

// NewHistoryCommand lista el historial del producto, más reciente primero.
func NewHistoryCommand(opts *RootOptions) *cobra.Command {
	var page dto.PageRequest
	cmd := &cobra.Command{
		Use:   "history <product-id>",
		Short: "Historial de movimientos (más reciente primero)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLedger(cmd, opts, func(ctx context.Context, l Ledger, p printer) error {
				list, err := l.ListTransactions(ctx, args[0], page)
				if err != nil {
					return err
				}
				return p.history(args[0], list)
			})
		},
	}
	cmd.Flags().IntVar(&page.Limit, "limit", dto.DefaultPageLimit, "tamaño de página (máximo 100)")
	cmd.Flags().IntVar(&page.Offset, "offset", 0, "desplazamiento")
	return cmd
}

// NewLowStockCommand lista los productos con quantity <= umbral.
func NewLowStockCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "low-stock",
		Short: "Productos en o por debajo de su umbral",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLedger(cmd, opts, func(ctx context.Context, l Ledger, p printer) error {
				list, err := l.ListLowStock(ctx)
				if err != nil {
					return err
				}
				return p.stocks(list)
			})
		},
	}
}

// NewReconcileCommand verifica contador contra ledger. Sale con ExitFailure si no coinciden.
func NewReconcileCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile <product-id>...",
		Short: "Verificar que el contador coincide con la suma del ledger",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLedger(cmd, opts, func(ctx context.Context, l Ledger, p printer) error {
				inconsistent := 0
				for _, id := range args {
					r, err := l.Reconcile(ctx, id)
					if err != nil {
						return fmt.Errorf("%s: %w", id, err)
					}
					if !r.Consistent {
						inconsistent++
					}
					if err := p.reconciliation(r); err != nil {
						return err
					}
				}
				if inconsistent > 0 {
					return NewExitError(ExitFailure, fmt.Sprintf("%d productos inconsistentes", inconsistent))
				}
				return nil
			})
		},
	}
}

// NewStockCardCommand escribe la tarjeta de stock en PDF.
func NewStockCardCommand(opts *RootOptions) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "stock-card <product-id> --out card.pdf",
		Short: "Generar la tarjeta de stock (kardex) en PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLedger(cmd, opts, func(ctx context.Context, l Ledger, p printer) error {
				pdf, err := l.StockCard(ctx, args[0])
				if err != nil {
					return err
				}
				if err := os.WriteFile(out, pdf, 0o644); err != nil {
					return WrapExitError(ExitCommandError, "escribir PDF", err)
				}
				_, err = fmt.Fprintf(p.w, "%s: tarjeta escrita en %s (%d bytes)\n", args[0], out, len(pdf))
				return err
			})
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "archivo PDF de salida")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

// NewUserCommand agrupa la administración de usuarios.
func NewUserCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Administración de usuarios (store local)",
	}
	cmd.AddCommand(newUserAddCommand(opts))
	return cmd
}

func newUserAddCommand(opts *RootOptions) *cobra.Command {
	var in dto.RegisterRequest
	cmd := &cobra.Command{
		Use:   "add --email a@b.co --password ...",
		Short: "Crear un usuario (admin o customer)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			uc, closeFn, err := openAuth(ctx, opts)
			if err != nil {
				return err
			}
			defer closeFn()
			u, err := uc.RegisterUser(ctx, in)
			if err != nil {
				return err
			}
			p := printer{format: opts.Format, w: cmd.OutOrStdout()}
			if p.format == "json" {
				return p.json(u)
			}
			_, err = fmt.Fprintf(p.w, "usuario creado: %s (%s)\n", u.Email, u.Role)
			return err
		},
	}
	cmd.Flags().StringVar(&in.Email, "email", "", "email del usuario")
	cmd.Flags().StringVar(&in.Password, "password", "", "password (mínimo 8 caracteres)")
	cmd.Flags().StringVar(&in.Name, "name", "", "nombre visible")
	cmd.Flags().StringVar(&in.Role, "role", entity.RoleAdmin, "admin | customer")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

// NewTokenCommand emite un JWT para un usuario existente sin pedir password.
func NewTokenCommand(opts *RootOptions) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "token --email a@b.co",
		Short: "Emitir un token para un usuario existente (store local)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			uc, closeFn, err := openAuth(ctx, opts)
			if err != nil {
				return err
			}
			defer closeFn()
			tok, err := uc.IssueTokenByEmail(ctx, email)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), tok)
			return err
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email del usuario")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
