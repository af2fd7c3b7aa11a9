// Package http provides HTTP handlers for the token authority surface.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/planexec/internal/httputil"
	"github.com/allisson/planexec/internal/token/http/dto"
	tokenUseCase "github.com/allisson/planexec/internal/token/usecase"
)

// TokenHandler handles HTTP requests for capability token lifecycle operations.
type TokenHandler struct {
	tokenUseCase tokenUseCase.TokenUseCase
	logger       *slog.Logger
}

// NewTokenHandler creates a new token handler with required dependencies.
func NewTokenHandler(useCase tokenUseCase.TokenUseCase, logger *slog.Logger) *TokenHandler {
	return &TokenHandler{
		tokenUseCase: useCase,
		logger:       logger,
	}
}

// IssueHandler issues a new capability token.
// POST /v1/tokens
// Returns 201 Created with the plain token, which is never retrievable again.
func (h *TokenHandler) IssueHandler(c *gin.Context) {
	var req dto.IssueTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	output, err := h.tokenUseCase.Issue(c.Request.Context(), req.ToInput())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.NewIssueTokenResponse(output))
}

// GetHandler retrieves a token's metadata by fingerprint.
// GET /v1/tokens/:fingerprint
func (h *TokenHandler) GetHandler(c *gin.Context) {
	fingerprint := c.Param("fingerprint")

	token, err := h.tokenUseCase.Get(c.Request.Context(), fingerprint)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.NewTokenResponse(token))
}

// RevokeHandler revokes a token, one-way.
// POST /v1/tokens/:fingerprint/revoke
func (h *TokenHandler) RevokeHandler(c *gin.Context) {
	fingerprint := c.Param("fingerprint")

	if err := h.tokenUseCase.Revoke(c.Request.Context(), fingerprint); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, gin.H{"fingerprint": fingerprint, "revoked": true})
}
