package tracing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

func StartBatchSpan(ctx context.Context, batchID string, total int, outDir string) (context.Context, trace.Span) {
	ctx, span := Tracer().Start(ctx, "batch.run",
		trace.WithSpanKind(trace.SpanKindInternal),
	)
	span.SetAttributes(
		attribute.String("batch.id", batchID),
		attribute.Int("batch.total", total),
		attribute.String("batch.output_dir", outDir),
	)
	return ctx, span
}

func StartImageSpan(ctx context.Context, src, dst string) (context.Context, trace.Span) {
	ctx, span := Tracer().Start(ctx, "image.watermark")
	span.SetAttributes(
		attribute.String("image.source", src),
		attribute.String("image.output", dst),
	)
	return ctx, span
}

// EndBatchSpan stamps the summary counters on the span and ends it.
func EndBatchSpan(span trace.Span, succeeded, failed int) {
	span.SetAttributes(
		attribute.Int("batch.succeeded", succeeded),
		attribute.Int("batch.failed", failed),
	)
	span.End()
}
