package cli

import (
	"context"
	"time"

	"github.com/jhoicas/storefront-inventory/internal/application/auth"
	"github.com/jhoicas/storefront-inventory/internal/application/dto"
	"github.com/jhoicas/storefront-inventory/internal/application/inventory"
	"github.com/jhoicas/storefront-inventory/internal/infrastructure/pdf"
	"github.com/jhoicas/storefront-inventory/internal/infrastructure/storage"
	"github.com/jhoicas/storefront-inventory/pkg/client"
)

const remoteTimeout = 30 * time.Second

// Ledger operaciones que ledgerctl necesita, locales o remotas.
type Ledger interface {
	GetStock(ctx context.Context, productID string) (*dto.StockResponse, error)
	CheckAvailability(ctx context.Context, productID string, quantity int) (*dto.AvailabilityResponse, error)
	ListTransactions(ctx context.Context, productID string, page dto.PageRequest) (*dto.TransactionListResponse, error)
	ListLowStock(ctx context.Context) ([]dto.StockResponse, error)
	Onboard(ctx context.Context, in dto.OnboardStockRequest) (*dto.StockResponse, error)
	ApplyMutation(ctx context.Context, productID string, in dto.ApplyMutationRequest) (*dto.MutationResponse, error)
	Reconcile(ctx context.Context, productID string) (*dto.ReconciliationResponse, error)
	StockCard(ctx context.Context, productID string) ([]byte, error)
}

var _ Ledger = (*client.Client)(nil)

// localLedger adapta los casos de uso al contrato de Ledger con un actor fijo.
type localLedger struct {
	*inventory.LedgerUseCase
	stockCard *inventory.StockCardUseCase
	actor     string
}

func (l *localLedger) ApplyMutation(ctx context.Context, productID string, in dto.ApplyMutationRequest) (*dto.MutationResponse, error) {
	return l.ApplyMutationFromRequest(ctx, l.actor, productID, in)
}

func (l *localLedger) StockCard(ctx context.Context, productID string) ([]byte, error) {
	return l.stockCard.Generate(ctx, productID)
}

// openLedger abre el backend indicado por las opciones. close libera el store local.
func openLedger(ctx context.Context, opts *RootOptions) (Ledger, func(), error) {
	if opts.APIURL != "" {
		return client.New(opts.APIURL, opts.Token, remoteTimeout), func() {}, nil
	}
	backend, err := storage.Open(ctx, opts.cfg)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "abrir store", err)
	}
	zl := opts.log.Zerolog()
	ucOpts := []inventory.Option{
		inventory.WithLogger(zl),
		inventory.WithTimeout(opts.cfg.Store.Timeout()),
	}
	if opts.now != nil {
		ucOpts = append(ucOpts, inventory.WithClock(opts.now))
	}
	return &localLedger{
		LedgerUseCase: inventory.NewLedgerUseCase(backend.TxRunner, backend.Stocks, backend.Ledger, ucOpts...),
		stockCard:     inventory.NewStockCardUseCase(backend.Stocks, backend.Ledger, pdf.NewMarotoStockCardGenerator(), zl),
		actor:         opts.Actor,
	}, backend.Close, nil
}

// openAuth abre el caso de uso de auth sobre el store local (user add, token).
func openAuth(ctx context.Context, opts *RootOptions) (*auth.AuthUseCase, func(), error) {
	if opts.APIURL != "" {
		return nil, nil, NewExitError(ExitCommandError, "este comando solo opera sobre el store local (sin --api-url)")
	}
	backend, err := storage.Open(ctx, opts.cfg)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "abrir store", err)
	}
	uc := auth.NewAuthUseCase(backend.Users, auth.JWTConfig{
		Secret:     opts.cfg.JWT.Secret,
		ExpMinutes: opts.cfg.JWT.Expiration,
		Issuer:     opts.cfg.JWT.Issuer,
	})
	return uc, backend.Close, nil
}
