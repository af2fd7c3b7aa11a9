// Package http provides HTTP handlers for the audit log forensic surface.
package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	auditDomain "github.com/allisson/planexec/internal/audit/domain"
	"github.com/allisson/planexec/internal/audit/http/dto"
	auditUseCase "github.com/allisson/planexec/internal/audit/usecase"
	"github.com/allisson/planexec/internal/httputil"
)

// AuditLogHandler handles HTTP requests for reading and verifying the audit log.
type AuditLogHandler struct {
	auditLogUseCase auditUseCase.AuditLogUseCase
	logger          *slog.Logger
}

// NewAuditLogHandler creates a new audit log handler with required dependencies.
func NewAuditLogHandler(useCase auditUseCase.AuditLogUseCase, logger *slog.Logger) *AuditLogHandler {
	return &AuditLogHandler{
		auditLogUseCase: useCase,
		logger:          logger,
	}
}

// ListHandler lists audit events in append order with pagination.
// GET /v1/audit-events
func (h *AuditLogHandler) ListHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	events, err := h.auditLogUseCase.List(c.Request.Context(), offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	total, err := h.auditLogUseCase.Count(c.Request.Context())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	responses := make([]*dto.EventResponse, len(events))
	for i, event := range events {
		responses[i] = dto.NewEventResponse(event)
	}

	c.JSON(http.StatusOK, &dto.ListEventsResponse{
		Events: responses,
		Total:  total,
		Offset: offset,
		Limit:  limit,
	})
}

// VerifyHandler recomputes the hash chain across the whole log.
// GET /v1/audit-events/verify
// A broken chain is a finding, not a server error: it returns 200 with
// chain_intact set to false and the failing reason.
func (h *AuditLogHandler) VerifyHandler(c *gin.Context) {
	verified, err := h.auditLogUseCase.VerifyChain(c.Request.Context())
	if err != nil {
		if errors.Is(err, auditDomain.ErrChainBroken) {
			c.JSON(http.StatusOK, &dto.VerifyChainResponse{
				ChainIntact:    false,
				VerifiedEvents: verified,
				Reason:         err.Error(),
			})
			return
		}

		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, &dto.VerifyChainResponse{
		ChainIntact:    true,
		VerifiedEvents: verified,
	})
}
