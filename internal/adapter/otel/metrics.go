package otel

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "opsplane"

// Metrics holds all OpsPlane metric instruments.
type Metrics struct {
	TasksCreated   metric.Int64Counter
	ClaimsWon      metric.Int64Counter
	ClaimConflicts metric.Int64Counter
	PoliciesFired  metric.Int64Counter
	CostRecorded   metric.Float64Histogram
}

// NewMetrics creates all metric instruments.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.TasksCreated, err = meter.Int64Counter("opsplane.tasks.created",
		metric.WithDescription("Number of tasks created"))
	if err != nil {
		return nil, err
	}

	m.ClaimsWon, err = meter.Int64Counter("opsplane.claims.won",
		metric.WithDescription("Number of successful task claims"))
	if err != nil {
		return nil, err
	}

	m.ClaimConflicts, err = meter.Int64Counter("opsplane.claims.conflict",
		metric.WithDescription("Number of claims rejected because the task was not open"))
	if err != nil {
		return nil, err
	}

	m.PoliciesFired, err = meter.Int64Counter("opsplane.policies.fired",
		metric.WithDescription("Number of policy breaches that produced an alert task"))
	if err != nil {
		return nil, err
	}

	m.CostRecorded, err = meter.Float64Histogram("opsplane.cost.event_usd",
		metric.WithDescription("Per-call cost in USD as recorded in the ledger"))
	if err != nil {
		return nil, err
	}

	return m, nil
}
