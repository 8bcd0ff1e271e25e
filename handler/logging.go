package handler

import (
	"context"
	"time"

	"github.com/hupe1980/atlas/logging"
	"github.com/hupe1980/atlas/pipeline"
)

// Logging records structured entry/exit logs for every chain it is part of.
// Register it on before and after events to trace hook execution; it never
// alters the context.
type Logging struct {
	logger logging.Logger
}

// NewLogging creates a logging handler. A nil logger silently succeeds.
func NewLogging(logger logging.Logger) *Logging {
	return &Logging{logger: logger}
}

// Handle implements pipeline.Handler.
func (h *Logging) Handle(ctx context.Context, pc *pipeline.Context, next pipeline.Next) (*pipeline.Context, error) {
	if h.logger == nil {
		return next(ctx, pc)
	}

	h.logger.Debug("pipeline handler chain entered", "pipeline", pc.Pipeline, "context_id", pc.ID)
	start := time.Now()

	out, err := next(ctx, pc)
	if err != nil {
		h.logger.Error("pipeline handler chain failed", "pipeline", pc.Pipeline, "context_id", pc.ID, "duration", time.Since(start), "error", err)
		return out, err
	}
	h.logger.Debug("pipeline handler chain completed", "pipeline", pc.Pipeline, "context_id", pc.ID, "duration", time.Since(start))
	return out, nil
}
