package telemetry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/donaldgifford/mws-sync/internal/config"
	"github.com/donaldgifford/mws-sync/internal/telemetry"
)

func TestSetup_Disabled(t *testing.T) {
	t.Parallel()

	shutdown, err := telemetry.Setup(context.Background(), &config.TracingConfig{}, "test")
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func TestNewTracerProvider_Sampling(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		ratio     float64
		wantSpans int
	}{
		{name: "always", ratio: 1, wantSpans: 1},
		{name: "never", ratio: 0, wantSpans: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := tracetest.NewSpanRecorder()
			cfg := &config.TracingConfig{ServiceName: "mws-sync", SampleRatio: tt.ratio}
			tp := telemetry.NewTracerProvider(rec, cfg, "v1.2.3")
			t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

			_, span := tp.Tracer("test").Start(context.Background(), "op")
			span.End()

			spans := rec.Ended()
			require.Len(t, spans, tt.wantSpans)
			if tt.wantSpans == 0 {
				return
			}
			attrs := spans[0].Resource().Attributes()
			assert.Contains(t, attrs, attribute.String("service.name", "mws-sync"))
			assert.Contains(t, attrs, attribute.String("service.version", "v1.2.3"))
		})
	}
}
