package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithNoneExporterReturnsNoopProviders(t *testing.T) {
	providers, err := New(Config{Exporter: "none"})
	require.NoError(t, err)
	require.NotNil(t, providers.TracerProvider)
	require.NotNil(t, providers.MeterProvider)
	assert.NoError(t, providers.Shutdown(context.Background()))
}

func TestNewWithEmptyExporterDefaultsToNoop(t *testing.T) {
	providers, err := New(Config{})
	require.NoError(t, err)
	assert.NoError(t, providers.Shutdown(context.Background()))
}

func TestNewWithStdoutExporterBuildsRealProviders(t *testing.T) {
	providers, err := New(Config{ServiceName: "transact-test", Exporter: "stdout"})
	require.NoError(t, err)
	require.NotNil(t, providers.TracerProvider)
	require.NotNil(t, providers.MeterProvider)

	tracer := providers.TracerProvider.Tracer("test")
	_, span := tracer.Start(context.Background(), "test-span")
	span.End()

	assert.NoError(t, providers.Shutdown(context.Background()))
}

func TestNewWithUnsupportedExporterErrors(t *testing.T) {
	_, err := New(Config{Exporter: "otlp"})
	assert.Error(t, err)
}
