package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	tokenDomain "github.com/allisson/planexec/internal/token/domain"
	tokenUseCase "github.com/allisson/planexec/internal/token/usecase"
)

// RunIssueToken issues a new capability token and prints the plain token.
// The plain token is shown once and is never retrievable again; only the
// fingerprint is stored.
//
// The scope is a JSON array of documents, e.g.
// [{"domain": "echo", "methods": ["*"]}], and triggers is a comma-separated
// list of trigger types.
func RunIssueToken(
	ctx context.Context,
	useCase tokenUseCase.TokenUseCase,
	logger *slog.Logger,
	writer io.Writer,
	userID string,
	scopeJSON string,
	triggers string,
	maxInvocations, maxPerWindow int,
	windowSeconds, expiresInSeconds int64,
	format string,
) error {
	var scope []tokenDomain.ScopeDocument
	if err := json.Unmarshal([]byte(scopeJSON), &scope); err != nil {
		return fmt.Errorf("invalid scope JSON: %w", err)
	}
	if len(scope) == 0 {
		return fmt.Errorf("scope must contain at least one domain")
	}

	allowedTriggers, err := parseTriggers(triggers)
	if err != nil {
		return err
	}

	input := &tokenDomain.IssueTokenInput{
		UserID:          userID,
		Scope:           scope,
		AllowedTriggers: allowedTriggers,
		Limits: tokenDomain.ResourceLimits{
			MaxInvocations: maxInvocations,
			MaxPerWindow:   maxPerWindow,
			Window:         time.Duration(windowSeconds) * time.Second,
		},
	}
	if expiresInSeconds > 0 {
		expiresAt := time.Now().UTC().Add(time.Duration(expiresInSeconds) * time.Second)
		input.ExpiresAt = &expiresAt
	}

	logger.Info("issuing capability token", slog.String("user_id", userID))

	output, err := useCase.Issue(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to issue token: %w", err)
	}

	if format == "json" {
		result := map[string]interface{}{
			"id":          output.ID,
			"plain_token": output.PlainToken,
			"fingerprint": output.Fingerprint,
		}
		jsonBytes, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		_, _ = fmt.Fprintln(writer, string(jsonBytes))
		return nil
	}

	_, _ = fmt.Fprintf(writer, "Capability Token Issued\n")
	_, _ = fmt.Fprintf(writer, "=======================\n\n")
	_, _ = fmt.Fprintf(writer, "ID:          %s\n", output.ID)
	_, _ = fmt.Fprintf(writer, "Fingerprint: %s\n", output.Fingerprint)
	_, _ = fmt.Fprintf(writer, "Token:       %s\n\n", output.PlainToken)
	_, _ = fmt.Fprintf(writer, "Store the token now. It cannot be retrieved again.\n")

	return nil
}

// parseTriggers parses a comma-separated trigger list into trigger types.
func parseTriggers(triggers string) ([]tokenDomain.TriggerType, error) {
	parts := strings.Split(triggers, ",")
	parsed := make([]tokenDomain.TriggerType, 0, len(parts))

	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		if !tokenDomain.IsKnownTriggerType(trimmed) {
			return nil, fmt.Errorf("unknown trigger type: %s", trimmed)
		}
		parsed = append(parsed, tokenDomain.TriggerType(trimmed))
	}

	if len(parsed) == 0 {
		return nil, fmt.Errorf("at least one trigger type is required")
	}

	return parsed, nil
}
