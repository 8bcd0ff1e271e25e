package handler

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/hupe1980/atlas/pipeline"
)

const tracerName = "github.com/hupe1980/atlas"

// spanMetadataKey is where the open span is parked between the before and
// after chains of a single intercepted call.
const spanMetadataKey = "otel.span"

// TraceStart opens an OpenTelemetry span for the intercepted call and stores
// it in the context metadata. Pair it with TraceEnd on the matching after
// event; the span stays open across the real call in between.
type TraceStart struct {
	tracer trace.Tracer
}

// NewTraceStart creates a span-opening handler using the global tracer
// provider.
func NewTraceStart() *TraceStart {
	return &TraceStart{tracer: otel.Tracer(tracerName)}
}

// Handle implements pipeline.Handler.
func (h *TraceStart) Handle(ctx context.Context, pc *pipeline.Context, next pipeline.Next) (*pipeline.Context, error) {
	ctx, span := h.tracer.Start(ctx, pc.Pipeline, trace.WithAttributes(
		attribute.String("atlas.pipeline", pc.Pipeline),
		attribute.String("atlas.context_id", pc.ID),
	))
	if pc.Metadata == nil {
		pc.Metadata = map[string]any{}
	}
	pc.Metadata[spanMetadataKey] = span

	out, err := next(ctx, pc)
	if err != nil {
		// The chain failed before the real call happened, so the after
		// chain will never close the span.
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.End()
	}
	return out, err
}

// TraceEnd closes the span opened by TraceStart. Register it on the after
// event matching the before event TraceStart was registered on.
type TraceEnd struct{}

// NewTraceEnd creates a span-closing handler.
func NewTraceEnd() *TraceEnd {
	return &TraceEnd{}
}

// Handle implements pipeline.Handler.
func (h *TraceEnd) Handle(ctx context.Context, pc *pipeline.Context, next pipeline.Next) (*pipeline.Context, error) {
	out, err := next(ctx, pc)

	span, ok := pc.Metadata[spanMetadataKey].(trace.Span)
	if !ok {
		return out, err
	}
	delete(pc.Metadata, spanMetadataKey)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()

	return out, err
}
