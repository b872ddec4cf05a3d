package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func withRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	prev := tracer
	tracer = tp.Tracer("test")
	t.Cleanup(func() { tracer = prev })
	return rec
}

func attr(attrs []attribute.KeyValue, key string) attribute.Value {
	for _, kv := range attrs {
		if string(kv.Key) == key {
			return kv.Value
		}
	}
	return attribute.Value{}
}

func TestBatchAndImageSpans(t *testing.T) {
	rec := withRecorder(t)

	ctx, batch := StartBatchSpan(context.Background(), "b-1", 2, "/out")
	_, img := StartImageSpan(ctx, "/in/a.jpg", "/out/a.jpeg")
	img.End()
	EndBatchSpan(batch, 1, 1)

	spans := rec.Ended()
	require.Len(t, spans, 2)

	imgSpan, batchSpan := spans[0], spans[1]
	assert.Equal(t, "image.watermark", imgSpan.Name())
	assert.Equal(t, "batch.run", batchSpan.Name())
	assert.Equal(t, batchSpan.SpanContext().SpanID(), imgSpan.Parent().SpanID())
	assert.Equal(t, "/in/a.jpg", attr(imgSpan.Attributes(), "image.source").AsString())
	assert.Equal(t, int64(1), attr(batchSpan.Attributes(), "batch.failed").AsInt64())
	assert.Equal(t, "b-1", attr(batchSpan.Attributes(), "batch.id").AsString())
}

func TestRecordError(t *testing.T) {
	rec := withRecorder(t)

	ctx, span := StartSpan(context.Background(), "op")
	RecordError(ctx, errors.New("boom"))
	span.End()

	spans := rec.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Len(t, spans[0].Events(), 1)
}

func TestInitDisabled(t *testing.T) {
	prev := tracer
	defer func() { tracer = prev }()

	shutdown, err := Init(context.Background(), &Config{Enabled: false})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
	assert.NotNil(t, Tracer())
}

func TestInitWithExporter(t *testing.T) {
	prev := tracer
	defer func() { tracer = prev }()

	exp := tracetest.NewInMemoryExporter()
	shutdown, err := Init(context.Background(), &Config{
		ServiceVersion: "1.2.3",
		Enabled:        true,
		SampleRate:     1,
		Exporter:       exp,
	})
	require.NoError(t, err)

	_, span := StartSpan(context.Background(), "image.encode")
	span.End()

	spans := exp.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "image.encode", spans[0].Name)

	var service string
	for _, kv := range spans[0].Resource.Attributes() {
		if kv.Key == "service.name" {
			service = kv.Value.AsString()
		}
	}
	assert.Equal(t, "photomark", service)
	assert.NoError(t, shutdown(context.Background()))
}

func TestSamplerFor(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{1, "AlwaysOnSampler"},
		{2, "AlwaysOnSampler"},
		{0, "AlwaysOffSampler"},
		{-1, "AlwaysOffSampler"},
		{0.5, "TraceIDRatioBased{0.5}"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, samplerFor(tt.rate).Description())
	}
}
