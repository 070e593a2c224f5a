package inventory

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/storefront-inventory/internal/domain"
)

const instrumentationName = "github.com/jhoicas/storefront-inventory/internal/application/inventory"

// Resultados posibles del contador inventory.mutations.
const (
	outcomeApplied      = "applied"
	outcomeInsufficient = "insufficient_stock"
	outcomeNotFound     = "not_found"
	outcomeInvalid      = "invalid_argument"
	outcomeUnauthorized = "unauthorized"
	outcomeUnavailable  = "store_unavailable"
	outcomeError        = "error"
)

type instruments struct {
	tracer    trace.Tracer
	mutations metric.Int64Counter
}

// newInstruments toma el tracer y el meter globales; sin proveedor configurado ambos son no-op.
func newInstruments() *instruments {
	meter := otel.Meter(instrumentationName)
	counter, err := meter.Int64Counter(
		"inventory.mutations",
		metric.WithDescription("Mutaciones del ledger por tipo y resultado"),
		metric.WithUnit("{mutation}"),
	)
	if err != nil {
		counter, _ = noop.NewMeterProvider().Meter(instrumentationName).Int64Counter("inventory.mutations")
	}
	return &instruments{
		tracer:    otel.Tracer(instrumentationName),
		mutations: counter,
	}
}

func (i *instruments) start(ctx context.Context, op, productID string) (context.Context, trace.Span) {
	ctx, span := i.tracer.Start(ctx, "inventory."+op)
	if productID != "" {
		span.SetAttributes(attribute.String("inventory.product_id", productID))
	}
	return ctx, span
}

func (i *instruments) countMutation(ctx context.Context, kind string, err error) {
	i.mutations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("outcome", outcomeOf(err)),
	))
}

func finishSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return outcomeApplied
	case errors.Is(err, domain.ErrInsufficientStock):
		return outcomeInsufficient
	case errors.Is(err, domain.ErrNotFound):
		return outcomeNotFound
	case errors.Is(err, domain.ErrInvalidInput):
		return outcomeInvalid
	case errors.Is(err, domain.ErrUnauthorized):
		return outcomeUnauthorized
	case errors.Is(err, domain.ErrStoreUnavailable):
		return outcomeUnavailable
	default:
		return outcomeError
	}
}
