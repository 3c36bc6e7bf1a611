package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestStartSpan_RecordsOnGlobalProvider(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	_, span := StartSpan(context.Background(), "plan.rank", attribute.Int("candidates", 4))
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "plan.rank", ended[0].Name())
	assert.Contains(t, ended[0].Attributes(), attribute.Int("candidates", 4))
}

func TestObservability_NilSafe(t *testing.T) {
	var o *Observability
	assert.NotPanics(t, func() {
		o.RecordJobProcessed(context.Background(), "plan-options", "completed")
		o.RecordJobDuration(context.Background(), "plan-options", time.Second, "completed")
		o.Shutdown()
	})
}
