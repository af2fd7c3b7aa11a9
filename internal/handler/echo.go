package handler

import (
	"context"

	apperrors "github.com/allisson/planexec/internal/errors"
)

// EchoHandler returns its parameters unchanged. Useful for plan smoke tests
// and for exercising the failure path on demand.
type EchoHandler struct{}

// NewEchoHandler creates the echo domain handler.
func NewEchoHandler() *EchoHandler {
	return &EchoHandler{}
}

// Name returns the domain name.
func (e *EchoHandler) Name() string {
	return "echo"
}

// Methods returns the implemented method names.
func (e *EchoHandler) Methods() []string {
	return []string{"echo", "fail"}
}

// Invoke dispatches to the requested method.
func (e *EchoHandler) Invoke(
	_ context.Context,
	method string,
	params map[string]any,
) (map[string]any, error) {
	switch method {
	case "echo":
		result := make(map[string]any, len(params))
		for key, value := range params {
			result[key] = value
		}
		return result, nil
	case "fail":
		return nil, apperrors.Wrap(ErrDomainExecution, "fail method invoked")
	default:
		return nil, apperrors.Wrapf(ErrUnknownMethod, "method %q", method)
	}
}
