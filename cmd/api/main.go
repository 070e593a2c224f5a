package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jhoicas/storefront-inventory/internal/application/auth"
	"github.com/jhoicas/storefront-inventory/internal/application/inventory"
	infrapdf "github.com/jhoicas/storefront-inventory/internal/infrastructure/pdf"
	"github.com/jhoicas/storefront-inventory/internal/infrastructure/storage"
	"github.com/jhoicas/storefront-inventory/internal/infrastructure/telemetry"
	httpRouter "github.com/jhoicas/storefront-inventory/internal/interfaces/http"
	"github.com/jhoicas/storefront-inventory/pkg/config"
	"github.com/jhoicas/storefront-inventory/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET es obligatorio para la API")
	}

	ctx := context.Background()
	shutdownTelemetry, err := telemetry.Setup(ctx, cfg.OTEL)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar OpenTelemetry")
	}

	backend, err := storage.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión al store")
	}
	defer backend.Close()

	zl := log.Zerolog()
	ledgerUC := inventory.NewLedgerUseCase(
		backend.TxRunner, backend.Stocks, backend.Ledger,
		inventory.WithLogger(zl.With().Str("component", "ledger").Logger()),
		inventory.WithTimeout(cfg.Store.Timeout()),
	)
	// PDF: tarjeta de stock (kardex) por producto
	stockCardUC := inventory.NewStockCardUseCase(backend.Stocks, backend.Ledger, infrapdf.NewMarotoStockCardGenerator(), zl)
	authUC := auth.NewAuthUseCase(backend.Users, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := httpRouter.NewApp(httpRouter.AppConfig{
		Name:        cfg.App.Name,
		SwaggerFile: cfg.HTTP.SwaggerFile,
	}, httpRouter.RouterDeps{
		LedgerUC:    ledgerUC,
		StockCardUC: stockCardUC,
		AuthUC:      authUC,
		JWTSecret:   cfg.JWT.Secret,
		Logger:      zl,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado de OpenTelemetry")
	}

	log.Info().Msg("aplicación detenida")
}
