package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"

	"github.com/jhoicas/storefront-inventory/pkg/config"
)

func TestSetup_SinEndpointEsNoop(t *testing.T) {
	shutdown, err := Setup(context.Background(), config.OTELConfig{ServiceName: "x"})

	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestNewResource(t *testing.T) {
	res, err := NewResource(context.Background(), "storefront-inventory")

	require.NoError(t, err)
	v, ok := res.Set().Value(semconv.ServiceNameKey)
	require.True(t, ok)
	assert.Equal(t, "storefront-inventory", v.AsString())
}
