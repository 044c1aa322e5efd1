package passes

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"sixtyfps-go/packages/compiler/src/config"
	"sixtyfps-go/packages/compiler/src/object_tree"
	"sixtyfps-go/packages/compiler/src/telemetry"
)

// Phase is a lowering pass over one top-level component.
type Phase struct {
	Name string
	Fn   func(*object_tree.Component)
}

var phasesList = []Phase{
	{"repeater_component", ProcessRepeaterComponents},
}

// Phases returns the names of the passes Run executes, in order.
func Phases() []string {
	names := make([]string, len(phasesList))
	for i, phase := range phasesList {
		names[i] = phase.Name
	}
	return names
}

// Run runs all passes in order against comp, then verifies the result when cfg asks for it.
// The passes own the tree for the whole call.
func Run(ctx context.Context, comp *object_tree.Component, cfg *config.CompilerConfig) error {
	tracer := telemetry.Tracer("sixtyfps-go/passes")
	ctx, span := tracer.Start(ctx, "passes.Run",
		trace.WithAttributes(attribute.String("component", comp.ID)),
	)
	defer span.End()

	for _, phase := range phasesList {
		_, phaseSpan := tracer.Start(ctx, "passes."+phase.Name)
		slog.DebugContext(ctx, "running pass",
			slog.String("pass", phase.Name),
			slog.String("component", comp.ID),
		)
		phase.Fn(comp)
		phaseSpan.End()
	}

	recordRepeaters(ctx, comp)

	if cfg != nil && cfg.VerifyPasses {
		if err := CheckRepeaterInvariants(comp); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "pass invariant violated")
			return fmt.Errorf("component %s: %w", comp.ID, err)
		}
	}
	return nil
}

// recordRepeaters counts the repeated elements lowered in comp.
func recordRepeaters(ctx context.Context, comp *object_tree.Component) {
	counter, err := telemetry.Meter("sixtyfps-go/passes").Int64Counter("passes.repeaters",
		metric.WithDescription("Repeated elements lowered into sub-components"),
		metric.WithUnit("{element}"),
	)
	if err != nil {
		slog.WarnContext(ctx, "failed to create repeater counter", slog.String("error", err.Error()))
		return
	}
	var n int64
	object_tree.RecurseElemIncludingSubComponents(comp, func(e *object_tree.Element) {
		if e.Repeated != nil {
			n++
		}
	})
	counter.Add(ctx, n, metric.WithAttributes(attribute.String("component", comp.ID)))
}
