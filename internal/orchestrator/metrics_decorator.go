package orchestrator

import (
	"context"
	"time"

	"github.com/allisson/planexec/internal/metrics"
	planDomain "github.com/allisson/planexec/internal/plan/domain"
)

// Executor runs validated execution plans to a terminal state.
type Executor interface {
	Execute(ctx context.Context, plan *planDomain.ExecutionPlan) (*Outcome, error)
}

// executorWithMetrics decorates an Executor with metrics instrumentation.
type executorWithMetrics struct {
	next    Executor
	metrics metrics.BusinessMetrics
}

// NewExecutorWithMetrics wraps an Executor with metrics recording.
func NewExecutorWithMetrics(executor Executor, m metrics.BusinessMetrics) Executor {
	return &executorWithMetrics{
		next:    executor,
		metrics: m,
	}
}

// Execute records metrics for plan execution, labeled by the terminal state.
func (e *executorWithMetrics) Execute(
	ctx context.Context,
	plan *planDomain.ExecutionPlan,
) (*Outcome, error) {
	start := time.Now()
	outcome, err := e.next.Execute(ctx, plan)

	status := "error"
	if err == nil && outcome != nil {
		status = string(outcome.State)
	}

	e.metrics.RecordOperation(ctx, "plans", "plan_execute", status)
	e.metrics.RecordDuration(ctx, "plans", "plan_execute", time.Since(start), status)

	return outcome, err
}
