package otel_test

import (
	"context"
	"errors"
	"fleet/infras/otel"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newRecorded(t *testing.T) (otel.Otel, *tracetest.SpanRecorder) {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	tracer := otel.NewWithProvider(trace.NewTracerProvider(trace.WithSpanProcessor(recorder)))

	t.Cleanup(func() { _ = tracer.Shutdown(context.Background()) })

	return tracer, recorder
}

func TestScope_Attributes(t *testing.T) {
	tracer, recorder := newRecorded(t)

	_, scope := tracer.NewScope(context.Background(), "service", "service.Return")
	scope.SetAttributes(map[string]any{
		"booking.id":     "b-1",
		"fee.total":      350.5,
		"car.mileage":    int64(12000),
		"days":           3,
		"is_late":        true,
		"equipment":      []string{"jack", "spare tire"},
		"payment.status": struct{ V int }{1},
	})
	scope.AddEvent("settled")
	scope.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "service.Return", spans[0].Name())

	got := map[attribute.Key]attribute.Value{}
	for _, kv := range spans[0].Attributes() {
		got[kv.Key] = kv.Value
	}

	assert.Equal(t, "b-1", got["booking.id"].AsString())
	assert.InDelta(t, 350.5, got["fee.total"].AsFloat64(), 0.0001)
	assert.Equal(t, int64(12000), got["car.mileage"].AsInt64())
	assert.Equal(t, int64(3), got["days"].AsInt64())
	assert.True(t, got["is_late"].AsBool())
	assert.Equal(t, []string{"jack", "spare tire"}, got["equipment"].AsStringSlice())
	assert.Equal(t, "{1}", got["payment.status"].AsString())

	require.Len(t, spans[0].Events(), 1)
	assert.Equal(t, "settled", spans[0].Events()[0].Name)
}

func TestScope_TraceIfError(t *testing.T) {
	tracer, recorder := newRecorded(t)

	_, ok := tracer.NewScope(context.Background(), "repository", "ok")
	ok.TraceIfError(nil)
	ok.End()

	_, failed := tracer.NewScope(context.Background(), "repository", "failed")
	failed.TraceIfError(errors.New("pq: deadlock detected"))
	failed.End()

	spans := recorder.Ended()
	require.Len(t, spans, 2)

	assert.Equal(t, codes.Unset, spans[0].Status().Code)
	assert.Equal(t, codes.Error, spans[1].Status().Code)
	assert.Equal(t, "pq: deadlock detected", spans[1].Status().Description)
}
