// Package http provides the HTTP handler for plan execution.
package http

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/planexec/internal/httputil"
	"github.com/allisson/planexec/internal/orchestrator"
	"github.com/allisson/planexec/internal/plan/http/dto"
	"github.com/allisson/planexec/internal/plan/intake"
)

// PlanHandler handles HTTP requests for plan execution.
type PlanHandler struct {
	executor orchestrator.Executor
	logger   *slog.Logger
}

// NewPlanHandler creates a new plan handler with required dependencies.
func NewPlanHandler(executor orchestrator.Executor, logger *slog.Logger) *PlanHandler {
	return &PlanHandler{
		executor: executor,
		logger:   logger,
	}
}

// ExecuteHandler parses a plan document and runs it to a terminal state.
// POST /v1/plans/execute
// A schema rejection returns 422 before anything executes or is audited; a
// plan that was denied or aborted mid-flight still returns 200 with the
// terminal state and audit trail.
func (h *PlanHandler) ExecuteHandler(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	plan, err := intake.ParseJSON(body)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	outcome, err := h.executor.Execute(c.Request.Context(), plan)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.NewExecutionResponse(outcome))
}
