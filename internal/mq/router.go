package mq

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
)

type TypedHandlerFunc func(ctx context.Context, data json.RawMessage) error

// DedupGate decides whether an event delivery is the first of its kind.
type DedupGate interface {
	AcquireOnce(ctx context.Context, handler, eventID string) bool
}

// Router dispatches Event envelopes to per-type handlers. It lets one queue
// bound with a wildcard routing key fan out to typed handlers.
type Router struct {
	routes map[string]TypedHandlerFunc
	dedup  DedupGate
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		routes: make(map[string]TypedHandlerFunc),
		logger: logger,
	}
}

// SetDeduper makes Dispatch drop redelivered events by envelope ID.
func (r *Router) SetDeduper(d DedupGate) {
	r.dedup = d
}

func (r *Router) Register(eventType string, h TypedHandlerFunc) {
	r.routes[eventType] = h
}

// Dispatch unmarshals the envelope and routes it. Unknown event types are
// dropped, not errors, so new producers don't wedge old workers.
func (r *Router) Dispatch(ctx context.Context, raw json.RawMessage) error {
	var evt Event
	if err := json.Unmarshal(raw, &evt); err != nil {
		return fmt.Errorf("malformed event envelope: %w", err)
	}

	h, ok := r.routes[evt.Type]
	if !ok {
		r.logger.Debug("No handler for event type", zap.String("type", evt.Type))
		return nil
	}

	if r.dedup != nil && evt.ID != "" && !r.dedup.AcquireOnce(ctx, evt.Type, evt.ID) {
		r.logger.Debug("Duplicate event dropped",
			zap.String("type", evt.Type),
			zap.String("id", evt.ID),
		)
		return nil
	}

	return h(ctx, evt.Data)
}
