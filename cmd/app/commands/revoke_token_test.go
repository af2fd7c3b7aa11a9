package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	tokenDomain "github.com/allisson/planexec/internal/token/domain"
)

func TestRunRevokeToken(t *testing.T) {
	ctx := context.Background()
	logger := discardLogger()

	t.Run("success-text", func(t *testing.T) {
		mockUseCase := &mockTokenUseCase{}
		mockUseCase.On("Revoke", ctx, "fp-1234").Return(nil)

		var out bytes.Buffer
		err := RunRevokeToken(ctx, mockUseCase, logger, &out, "fp-1234", "text")
		require.NoError(t, err)
		require.Contains(t, out.String(), "fp-1234 revoked")
		mockUseCase.AssertExpectations(t)
	})

	t.Run("success-json", func(t *testing.T) {
		mockUseCase := &mockTokenUseCase{}
		mockUseCase.On("Revoke", ctx, "fp-1234").Return(nil)

		var out bytes.Buffer
		err := RunRevokeToken(ctx, mockUseCase, logger, &out, "fp-1234", "json")
		require.NoError(t, err)

		var result map[string]interface{}
		require.NoError(t, json.Unmarshal(out.Bytes(), &result))
		require.Equal(t, true, result["revoked"])
		mockUseCase.AssertExpectations(t)
	})

	t.Run("already-revoked", func(t *testing.T) {
		mockUseCase := &mockTokenUseCase{}
		mockUseCase.On("Revoke", ctx, "fp-1234").Return(tokenDomain.ErrAlreadyRevoked)

		var out bytes.Buffer
		err := RunRevokeToken(ctx, mockUseCase, logger, &out, "fp-1234", "text")
		require.Error(t, err)
		require.ErrorIs(t, err, tokenDomain.ErrAlreadyRevoked)
		mockUseCase.AssertExpectations(t)
	})
}
