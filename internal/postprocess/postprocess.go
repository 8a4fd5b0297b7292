// Package postprocess runs the ordered post-processing steps over a crawled
// entry collection. The step named Order always runs last.
package postprocess

import (
	"log/slog"
	"time"

	"git.home.luguber.info/inful/flatsite/internal/entry"
	ferrors "git.home.luguber.info/inful/flatsite/internal/foundation/errors"
	"git.home.luguber.info/inful/flatsite/internal/logfields"
	"git.home.luguber.info/inful/flatsite/internal/registry"
)

// Step filters, enriches or reorders entries.
type Step func(entries []*entry.Entry) []*entry.Entry

// Registry maps step names to steps, in execution order.
type Registry = registry.Registry[Step]

// NewRegistry returns an empty step registry.
func NewRegistry() *Registry {
	return registry.New[Step]()
}

// OrderStep is the name of the step that runs after all others.
const OrderStep = "Order"

// Run applies every step except Order in registration order, then Order.
func Run(r *Registry, entries []*entry.Entry) ([]*entry.Entry, error) {
	order, ok := r.Get(OrderStep)
	if !ok {
		return nil, ferrors.ConfigError("post-processor pipeline has no Order step").
			WithCause(ErrOrderMissing).
			Build()
	}
	for name, step := range r.All() {
		if registry.Fold(name) == registry.Fold(OrderStep) {
			continue
		}
		entries = timed(name, step, entries)
	}
	return timed(OrderStep, order, entries), nil
}

func timed(name string, step Step, entries []*entry.Entry) []*entry.Entry {
	start := time.Now()
	in := len(entries)
	entries = step(entries)
	slog.Debug("Post-processor finished",
		logfields.Step(name),
		slog.Int("in", in),
		logfields.Count(len(entries)),
		logfields.DurationMS(float64(time.Since(start).Microseconds())/1000))
	return entries
}
