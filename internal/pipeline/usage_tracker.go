package pipeline

import (
	"sync"
	"time"

	"golang.org/x/time/rate"

	apperrors "github.com/allisson/planexec/internal/errors"
	tokenDomain "github.com/allisson/planexec/internal/token/domain"
)

// UsageTracker maintains per-token resource-limit counters: a lifetime
// invocation count and a per-window frequency limiter. Check is read-only;
// Commit consumes capacity and is called only after a step fully succeeds, so
// denied or failed attempts are never charged.
type UsageTracker struct {
	mu    sync.Mutex
	usage map[string]*tokenUsage
}

type tokenUsage struct {
	count   int64
	limiter *rate.Limiter
}

// NewUsageTracker creates an empty tracker.
func NewUsageTracker() *UsageTracker {
	return &UsageTracker{usage: make(map[string]*tokenUsage)}
}

// Check verifies that one more invocation fits within the token's limits.
// A zero limit means unlimited. Returns ErrResourceLimitExceeded when either
// the lifetime count or the window frequency is exhausted.
func (u *UsageTracker) Check(fingerprint string, limits tokenDomain.ResourceLimits) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	usage := u.get(fingerprint, limits)

	if limits.MaxInvocations > 0 && usage.count >= int64(limits.MaxInvocations) {
		return apperrors.Wrapf(
			ErrResourceLimitExceeded,
			"invocation count %d reached limit %d", usage.count, limits.MaxInvocations,
		)
	}

	if usage.limiter != nil && usage.limiter.Tokens() < 1 {
		return apperrors.Wrapf(
			ErrResourceLimitExceeded,
			"frequency limit %d per %s reached", limits.MaxPerWindow, limits.Window,
		)
	}

	return nil
}

// Commit charges one invocation against the token's limits.
func (u *UsageTracker) Commit(fingerprint string, limits tokenDomain.ResourceLimits) {
	u.mu.Lock()
	defer u.mu.Unlock()

	usage := u.get(fingerprint, limits)
	usage.count++
	if usage.limiter != nil {
		usage.limiter.Allow()
	}
}

// Count returns the committed invocation count for a token.
func (u *UsageTracker) Count(fingerprint string) int64 {
	u.mu.Lock()
	defer u.mu.Unlock()

	usage, exists := u.usage[fingerprint]
	if !exists {
		return 0
	}
	return usage.count
}

func (u *UsageTracker) get(fingerprint string, limits tokenDomain.ResourceLimits) *tokenUsage {
	usage, exists := u.usage[fingerprint]
	if !exists {
		usage = &tokenUsage{}
		if limits.MaxPerWindow > 0 && limits.Window > 0 {
			usage.limiter = rate.NewLimiter(
				rate.Every(limits.Window/time.Duration(limits.MaxPerWindow)),
				limits.MaxPerWindow,
			)
		}
		u.usage[fingerprint] = usage
	}
	return usage
}
