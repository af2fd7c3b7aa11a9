// Package orchestrator runs validated execution plans through the gate
// pipeline, one step at a time, in fixed order.
//
// Each execution is a state machine: NotStarted, Running at a step index,
// then one of the terminal states Completed, Failed, or Incomplete. Failed
// means nothing executed; Incomplete means at least one step completed before
// the abort. Terminal states are final and an execution is never reused.
package orchestrator

import (
	"context"
	"errors"

	auditDomain "github.com/allisson/planexec/internal/audit/domain"
	auditUseCase "github.com/allisson/planexec/internal/audit/usecase"
	apperrors "github.com/allisson/planexec/internal/errors"
	"github.com/allisson/planexec/internal/handler"
	"github.com/allisson/planexec/internal/pipeline"
	planDomain "github.com/allisson/planexec/internal/plan/domain"
	tokenDomain "github.com/allisson/planexec/internal/token/domain"
	tokenUseCase "github.com/allisson/planexec/internal/token/usecase"
)

// State is the execution state machine's position.
type State string

const (
	StateNotStarted State = "not_started"
	StateRunning    State = "running"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
	StateIncomplete State = "incomplete"
)

// Outcome is what the caller receives when an execution reaches a terminal
// state: the state itself, every step result that was produced, the full
// ordered audit trail for the execution, and the first failure's reason. No
// partial-success summary is synthesized beyond this.
type Outcome struct {
	State         State
	StepResults   []map[string]any
	AuditTrail    []*auditDomain.Event
	FailureReason string
}

// Orchestrator executes plans. It is safe for reuse across plans; all
// per-execution state lives in the execution created by Execute.
type Orchestrator struct {
	tokens   tokenUseCase.TokenUseCase
	pipeline *pipeline.Pipeline
	registry *handler.Registry
	recorder auditUseCase.Recorder
}

// New creates an orchestrator.
func New(
	tokens tokenUseCase.TokenUseCase,
	gates *pipeline.Pipeline,
	registry *handler.Registry,
	recorder auditUseCase.Recorder,
) *Orchestrator {
	return &Orchestrator{
		tokens:   tokens,
		pipeline: gates,
		registry: registry,
		recorder: recorder,
	}
}

// Execute runs the plan to completion or first failure, synchronously. The
// returned Outcome always carries a terminal state and the audit trail; the
// error is non-nil only when the audit log itself could not be written, which
// aborts before any further domain side effects.
func (o *Orchestrator) Execute(ctx context.Context, plan *planDomain.ExecutionPlan) (*Outcome, error) {
	e := &execution{
		orchestrator: o,
		plan:         plan,
		state:        StateNotStarted,
	}
	return e.run(ctx)
}

// execution holds the state of a single plan run.
type execution struct {
	orchestrator  *Orchestrator
	plan          *planDomain.ExecutionPlan
	token         *tokenDomain.CapabilityToken
	state         State
	stepResults   []map[string]any
	trail         []*auditDomain.Event
	failureReason string
}

func (e *execution) run(ctx context.Context) (*Outcome, error) {
	if err := e.validateToken(ctx); err != nil {
		return e.outcome(), e.auditError(err)
	}
	if e.state == StateFailed {
		return e.outcome(), nil
	}

	for i := 0; i < e.plan.StepCount(); i++ {
		e.state = StateRunning

		done, err := e.runStep(ctx, i)
		if err != nil {
			return e.outcome(), e.auditError(err)
		}
		if done {
			return e.outcome(), nil
		}
	}

	e.state = StateCompleted
	return e.outcome(), nil
}

// validateToken runs gate one and records the TOKEN_VALIDATION outcome (or
// TOKEN_EXPIRED when expiry is the failing check). On a denial it also
// records EXECUTION_DENIED and moves to Failed. A passing maiden-use token
// gets its first use marked.
func (e *execution) validateToken(ctx context.Context) error {
	token, err := e.orchestrator.tokens.Validate(
		ctx,
		e.plan.TokenFingerprint(),
		e.plan.UserID(),
		e.plan.Trigger(),
	)
	if err != nil {
		kind := auditDomain.TokenValidation
		if errors.Is(err, tokenDomain.ErrTokenExpired) {
			kind = auditDomain.TokenExpired
		}
		if recordErr := e.record(ctx, kind, "", "", auditDomain.OutcomeDenied, err.Error()); recordErr != nil {
			return recordErr
		}
		return e.deny(ctx, err.Error())
	}

	if recordErr := e.record(ctx, auditDomain.TokenValidation, "", "", auditDomain.OutcomeSuccess, ""); recordErr != nil {
		return recordErr
	}

	if token.FirstUsedAt == nil {
		if err := e.orchestrator.tokens.MarkFirstUse(ctx, token); err != nil {
			return err
		}
	}

	e.token = token
	return nil
}

// runStep runs gates two through five for step i, resolves its data
// bindings, and invokes the domain handler. Returns done=true when the
// execution reached a terminal state.
func (e *execution) runStep(ctx context.Context, i int) (bool, error) {
	step := e.plan.Step(i)

	// Gate 2: scope authorization. An unknown domain fails here too; it must
	// never silently no-op.
	domainHandler, err := e.orchestrator.registry.Get(step.Domain)
	if err != nil {
		return true, e.denyStep(ctx, auditDomain.ScopeCheck, step, err)
	}
	if err := e.orchestrator.pipeline.CheckScope(e.token, step.Domain, step.Method); err != nil {
		return true, e.denyStep(ctx, auditDomain.ScopeCheck, step, err)
	}
	if err := e.recordStep(ctx, auditDomain.ScopeCheck, step, auditDomain.OutcomeSuccess, ""); err != nil {
		return true, err
	}

	// Gate 3: resource limits, read-only
	if err := e.orchestrator.pipeline.CheckLimits(e.token); err != nil {
		return true, e.denyStep(ctx, auditDomain.ResourceLimitCheck, step, err)
	}
	if err := e.recordStep(ctx, auditDomain.ResourceLimitCheck, step, auditDomain.OutcomeSuccess, ""); err != nil {
		return true, err
	}

	// Resolve data bindings from earlier step results
	if err := e.resolveBindings(i, &step); err != nil {
		return true, e.denyStep(ctx, auditDomain.BoundaryViolation, step, err)
	}

	// Gate 4: data boundary enforcement
	isolated, err := e.orchestrator.pipeline.IsolateParams(step.Parameters)
	if err != nil {
		return true, e.denyStep(ctx, auditDomain.BoundaryViolation, step, err)
	}

	// Gate 5: authority boundary enforcement
	if err := e.orchestrator.pipeline.CheckAuthority(step.Method, isolated); err != nil {
		return true, e.denyStep(ctx, auditDomain.BoundaryViolation, step, err)
	}

	// The start must be durably recorded before the handler runs, so a crash
	// mid-step leaves a STARTED-without-COMPLETED trace instead of a gap.
	if err := e.recordStep(ctx, auditDomain.ExecutionStarted, step, auditDomain.OutcomeSuccess, ""); err != nil {
		return true, err
	}

	result, err := domainHandler.Invoke(ctx, step.Method, isolated)
	if err != nil {
		reason := apperrors.Wrap(handler.ErrDomainExecution, err.Error()).Error()
		if recordErr := e.recordStep(ctx, auditDomain.OperationAborted, step, auditDomain.OutcomeFailed, reason); recordErr != nil {
			return true, recordErr
		}
		e.fail(reason)
		return true, nil
	}

	if err := e.recordStep(ctx, auditDomain.ExecutionCompleted, step, auditDomain.OutcomeSuccess, ""); err != nil {
		return true, err
	}

	// Charge the token only after the step fully succeeded
	e.orchestrator.pipeline.CommitUsage(e.token)
	e.stepResults = append(e.stepResults, result)

	return false, nil
}

// resolveBindings copies values from earlier step results into the step's
// parameters, checking each against its declared expected type.
func (e *execution) resolveBindings(i int, step *planDomain.DomainInvocation) error {
	for _, binding := range e.plan.BindingsForTarget(i) {
		sourceResult := e.stepResults[binding.SourceStep]

		value, err := planDomain.LookupPath(sourceResult, binding.SourcePath)
		if err != nil {
			return err
		}
		if err := planDomain.CheckExpectedType(value, binding.ExpectedType); err != nil {
			return err
		}

		copied, err := planDomain.DeepCopyValue(value)
		if err != nil {
			return apperrors.Wrap(planDomain.ErrBindingResolution, err.Error())
		}
		step.Parameters[binding.TargetParam] = copied
	}
	return nil
}

// denyStep records the failing gate's event followed by EXECUTION_DENIED and
// moves to the terminal state.
func (e *execution) denyStep(
	ctx context.Context,
	kind auditDomain.EventKind,
	step planDomain.DomainInvocation,
	cause error,
) error {
	if err := e.recordStep(ctx, kind, step, auditDomain.OutcomeDenied, cause.Error()); err != nil {
		return err
	}
	return e.deny(ctx, cause.Error())
}

// deny records EXECUTION_DENIED and moves to Failed or Incomplete.
func (e *execution) deny(ctx context.Context, reason string) error {
	if err := e.record(ctx, auditDomain.ExecutionDenied, "", "", auditDomain.OutcomeDenied, reason); err != nil {
		return err
	}
	e.fail(reason)
	return nil
}

// fail moves to Failed when nothing executed, Incomplete when prior steps
// already completed.
func (e *execution) fail(reason string) {
	if len(e.stepResults) > 0 {
		e.state = StateIncomplete
	} else {
		e.state = StateFailed
	}
	e.failureReason = reason
}

func (e *execution) recordStep(
	ctx context.Context,
	kind auditDomain.EventKind,
	step planDomain.DomainInvocation,
	outcome auditDomain.Outcome,
	reason string,
) error {
	return e.record(ctx, kind, step.Domain, step.Method, outcome, reason)
}

func (e *execution) record(
	ctx context.Context,
	kind auditDomain.EventKind,
	domain, method string,
	outcome auditDomain.Outcome,
	reason string,
) error {
	event, err := e.orchestrator.recorder.Record(ctx, &auditUseCase.EventInput{
		Kind:             kind,
		UserID:           e.plan.UserID(),
		TokenFingerprint: e.plan.TokenFingerprint(),
		Domain:           domain,
		Method:           method,
		Outcome:          outcome,
		Reason:           reason,
	})
	if err != nil {
		return err
	}

	e.trail = append(e.trail, event)
	return nil
}

// auditError finalizes the execution after an audit write failure: the
// in-flight step aborts before any further domain side effects.
func (e *execution) auditError(err error) error {
	e.fail(err.Error())
	return err
}

func (e *execution) outcome() *Outcome {
	return &Outcome{
		State:         e.state,
		StepResults:   e.stepResults,
		AuditTrail:    e.trail,
		FailureReason: e.failureReason,
	}
}
