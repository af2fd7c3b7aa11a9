// Package pipeline implements the ordered validation gates a step must pass
// before its domain handler is invoked.
//
// Gate order is fixed: token validation, scope authorization, resource
// limits, data boundary enforcement, authority boundary enforcement. Each
// gate can independently deny; a denial skips the remaining gates and aborts
// the whole plan. Token validation itself lives with the token use case; this
// package covers gates two through five.
package pipeline

import (
	apperrors "github.com/allisson/planexec/internal/errors"
	planDomain "github.com/allisson/planexec/internal/plan/domain"
	tokenDomain "github.com/allisson/planexec/internal/token/domain"
)

// forbiddenMethods enumerates method names no domain handler may be asked to
// run: recursive orchestrator invocation, audit log writes, token lifecycle
// operations, and configuration mutation.
var forbiddenMethods = map[string]struct{}{
	"execute_plan":        {},
	"run_plan":            {},
	"invoke_orchestrator": {},
	"append_audit_event":  {},
	"issue_token":         {},
	"revoke_token":        {},
	"set_config":          {},
	"mutate_config":       {},
}

// forbiddenParamKeys enumerates parameter keys that would smuggle privileged
// objects across the domain boundary.
var forbiddenParamKeys = map[string]struct{}{
	"audit_log":        {},
	"audit_events":     {},
	"capability_token": {},
	"execution_plan":   {},
	"orchestrator":     {},
	"config":           {},
}

// Pipeline evaluates gates two through five for a proposed invocation.
type Pipeline struct {
	tracker *UsageTracker
}

// New creates a pipeline backed by the given usage tracker.
func New(tracker *UsageTracker) *Pipeline {
	return &Pipeline{tracker: tracker}
}

// CheckScope verifies the target domain is in the token's domain set and the
// target method is in that domain's allowed method set. Both checks are
// required; either failing denies.
func (p *Pipeline) CheckScope(token *tokenDomain.CapabilityToken, domain, method string) error {
	if !token.AllowsDomain(domain) {
		return apperrors.Wrapf(ErrScopeViolation, "domain %q not in token scope", domain)
	}
	if !token.AllowsMethod(domain, method) {
		return apperrors.Wrapf(ErrScopeViolation, "method %q not allowed for domain %q", method, domain)
	}
	return nil
}

// CheckLimits verifies the token has capacity for one more invocation. The
// check is read-only: capacity is consumed by CommitUsage only after the step
// fully succeeds.
func (p *Pipeline) CheckLimits(token *tokenDomain.CapabilityToken) error {
	return p.tracker.Check(token.Fingerprint, token.Limits)
}

// IsolateParams deep-copies the step's parameters into a fresh structure the
// domain handler can receive. Nothing from the execution context (token,
// audit log, plan) is reachable from the copy. A value that cannot be
// structurally copied is a data boundary violation.
func (p *Pipeline) IsolateParams(params map[string]any) (map[string]any, error) {
	isolated, err := planDomain.DeepCopyParams(params)
	if err != nil {
		return nil, apperrors.Wrap(ErrDataBoundaryViolation, err.Error())
	}
	return isolated, nil
}

// CheckAuthority matches the requested method and the isolated parameters
// against the forbidden-operation list. Any match denies.
func (p *Pipeline) CheckAuthority(method string, params map[string]any) error {
	if _, forbidden := forbiddenMethods[method]; forbidden {
		return apperrors.Wrapf(ErrAuthorityBoundaryViolation, "method %q is forbidden", method)
	}
	return checkParamKeys(params)
}

// CommitUsage charges one invocation against the token. Called only after the
// step's domain call returned successfully.
func (p *Pipeline) CommitUsage(token *tokenDomain.CapabilityToken) {
	p.tracker.Commit(token.Fingerprint, token.Limits)
}

func checkParamKeys(value any) error {
	switch typed := value.(type) {
	case map[string]any:
		for key, element := range typed {
			if _, forbidden := forbiddenParamKeys[key]; forbidden {
				return apperrors.Wrapf(ErrAuthorityBoundaryViolation, "parameter key %q is forbidden", key)
			}
			if err := checkParamKeys(element); err != nil {
				return err
			}
		}
	case []any:
		for _, element := range typed {
			if err := checkParamKeys(element); err != nil {
				return err
			}
		}
	}
	return nil
}
