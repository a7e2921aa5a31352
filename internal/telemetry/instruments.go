package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Instruments are the counters recorded by the lifecycle services.
// A nil *Instruments records nothing.
type Instruments struct {
	transitions   metric.Int64Counter
	rejections    metric.Int64Counter
	escalations   metric.Int64Counter
	sweepRepairs  metric.Int64Counter
	sweepFailures metric.Int64Counter
}

// NewInstruments creates the counters on meter
func NewInstruments(meter metric.Meter) (*Instruments, error) {
	var (
		in  Instruments
		err error
	)
	if in.transitions, err = meter.Int64Counter("prodflow.transitions",
		metric.WithDescription("Lifecycle transitions applied")); err != nil {
		return nil, err
	}
	if in.rejections, err = meter.Int64Counter("prodflow.transitions.rejected",
		metric.WithDescription("Lifecycle requests rejected by validation")); err != nil {
		return nil, err
	}
	if in.escalations, err = meter.Int64Counter("prodflow.escalations",
		metric.WithDescription("Escalation attempts by outcome")); err != nil {
		return nil, err
	}
	if in.sweepRepairs, err = meter.Int64Counter("prodflow.sweep.repairs",
		metric.WithDescription("Paused delivery items restored to design")); err != nil {
		return nil, err
	}
	if in.sweepFailures, err = meter.Int64Counter("prodflow.sweep.failures",
		metric.WithDescription("Sweep repairs that failed")); err != nil {
		return nil, err
	}
	return &in, nil
}

// Transition records an applied transition of the given kind
func (in *Instruments) Transition(ctx context.Context, kind string) {
	if in == nil {
		return
	}
	in.transitions.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

// Rejected records a transition request refused for rule
func (in *Instruments) Rejected(ctx context.Context, kind, rule string) {
	if in == nil {
		return
	}
	in.rejections.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("rule", rule),
	))
}

// Escalation records an escalation attempt outcome (created, duplicate, rejected, failed)
func (in *Instruments) Escalation(ctx context.Context, outcome string) {
	if in == nil {
		return
	}
	in.escalations.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// Sweep records the results of one sweep pass
func (in *Instruments) Sweep(ctx context.Context, repaired, failed int) {
	if in == nil {
		return
	}
	in.sweepRepairs.Add(ctx, int64(repaired))
	in.sweepFailures.Add(ctx, int64(failed))
}
