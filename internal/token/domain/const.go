// Package domain defines the capability token model.
//
// A capability token is a scoped, revocable credential that authorizes a
// bounded set of domain/method invocations. Scope and resource limits are
// fixed at issuance; the only mutable property is the one-way revoked flag.
package domain

// TriggerType describes how a plan execution was initiated. Tokens carry an
// allow-list of trigger types; an invocation whose trigger is not on the
// list is denied during token validation.
type TriggerType string

const (
	// ManualTrigger indicates a human operator started the execution.
	ManualTrigger TriggerType = "manual"

	// ScheduledTrigger indicates a scheduler started the execution.
	ScheduledTrigger TriggerType = "scheduled"

	// WebhookTrigger indicates an inbound webhook started the execution.
	WebhookTrigger TriggerType = "webhook"

	// APITrigger indicates a direct API call started the execution.
	APITrigger TriggerType = "api"
)

// KnownTriggerTypes lists every trigger type the system accepts. Plan intake
// rejects documents whose trigger is not on this list.
var KnownTriggerTypes = []TriggerType{
	ManualTrigger,
	ScheduledTrigger,
	WebhookTrigger,
	APITrigger,
}

// IsKnownTriggerType reports whether value is one of the enumerated trigger types.
func IsKnownTriggerType(value string) bool {
	for _, trigger := range KnownTriggerTypes {
		if string(trigger) == value {
			return true
		}
	}
	return false
}
