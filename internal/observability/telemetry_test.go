package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/trace"
)

func TestInitTelemetry(t *testing.T) {
	prev := otel.GetTracerProvider()
	defer otel.SetTracerProvider(prev)

	shutdown, err := InitTelemetry(context.Background(), "veinminer-test")
	require.NoError(t, err)

	_, ok := otel.GetTracerProvider().(*trace.TracerProvider)
	assert.True(t, ok, "Глобальный провайдер заменён SDK-провайдером")

	// Без спанов экспорт не выполняется, и завершение не обращается к сети
	assert.NoError(t, shutdown(context.Background()))
}

func TestNoop(t *testing.T) {
	var shutdown ShutdownFunc = Noop
	assert.NoError(t, shutdown(context.Background()))
}
