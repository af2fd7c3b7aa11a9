package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	tokenUseCase "github.com/allisson/planexec/internal/token/usecase"
)

// RunRevokeToken revokes a capability token by fingerprint. Revocation is
// one-way: a revoked token can never be un-revoked.
func RunRevokeToken(
	ctx context.Context,
	useCase tokenUseCase.TokenUseCase,
	logger *slog.Logger,
	writer io.Writer,
	fingerprint string,
	format string,
) error {
	logger.Info("revoking capability token", slog.String("fingerprint", fingerprint))

	if err := useCase.Revoke(ctx, fingerprint); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	if format == "json" {
		result := map[string]interface{}{
			"fingerprint": fingerprint,
			"revoked":     true,
		}
		jsonBytes, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		_, _ = fmt.Fprintln(writer, string(jsonBytes))
		return nil
	}

	_, _ = fmt.Fprintf(writer, "Token %s revoked.\n", fingerprint)
	return nil
}
