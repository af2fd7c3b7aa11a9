// Package domain defines the append-only, hash-linked audit event model.
//
// Every event embeds the SHA-256 content hash of the previous event, making
// post-hoc edits to history detectable. The chain provides tamper-evidence
// only: it detects modified or removed history but does not prove who wrote
// an event (there is no cryptographic signing).
package domain

// EventKind identifies the transition an audit event records. The set is
// closed; external forensics tooling depends on these exact values.
type EventKind string

const (
	// TokenIssued records the creation of a capability token by the authority surface.
	TokenIssued EventKind = "TOKEN_ISSUED"

	// TokenFirstUsed records a token's first successful validation.
	TokenFirstUsed EventKind = "TOKEN_FIRST_USED"

	// TokenValidation records the outcome of the token validation gate.
	TokenValidation EventKind = "TOKEN_VALIDATION"

	// ScopeCheck records the outcome of the scope authorization gate.
	ScopeCheck EventKind = "SCOPE_CHECK"

	// ResourceLimitCheck records the outcome of the resource limit gate.
	ResourceLimitCheck EventKind = "RESOURCE_LIMIT_CHECK"

	// ExecutionStarted records that a step is about to invoke its domain
	// handler. Always written before the handler runs, so a crash mid-step
	// leaves a STARTED-without-COMPLETED trace rather than a silent gap.
	ExecutionStarted EventKind = "EXECUTION_STARTED"

	// ExecutionCompleted records a step's successful domain invocation.
	ExecutionCompleted EventKind = "EXECUTION_COMPLETED"

	// ExecutionDenied records a gate denial or binding failure that aborted the plan.
	ExecutionDenied EventKind = "EXECUTION_DENIED"

	// TokenRevoked records a token revocation by the authority surface.
	TokenRevoked EventKind = "TOKEN_REVOKED"

	// TokenExpired records a validation attempt with an expired token.
	TokenExpired EventKind = "TOKEN_EXPIRED"

	// BoundaryViolation records a data or authority boundary gate failure.
	BoundaryViolation EventKind = "BOUNDARY_VIOLATION"

	// OperationAborted records a domain handler failure that aborted the plan.
	OperationAborted EventKind = "OPERATION_ABORTED"
)

// Outcome classifies the result an audit event records.
type Outcome string

const (
	// OutcomeSuccess indicates the recorded transition succeeded.
	OutcomeSuccess Outcome = "success"

	// OutcomeDenied indicates a gate denied the transition.
	OutcomeDenied Outcome = "denied"

	// OutcomeFailed indicates the transition was attempted but failed.
	OutcomeFailed Outcome = "failed"
)
