package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/planexec/cmd/app/commands"
	"github.com/allisson/planexec/internal/app"
	"github.com/allisson/planexec/internal/config"
)

func getTokenCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "issue-token",
			Usage: "Issue a new capability token",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "user-id",
					Aliases:  []string{"u"},
					Required: true,
					Usage:    "User the token is bound to",
				},
				&cli.StringFlag{
					Name:     "scope",
					Aliases:  []string{"s"},
					Required: true,
					Usage:    `JSON array of scope documents, e.g. [{"domain": "echo", "methods": ["*"]}]`,
				},
				&cli.StringFlag{
					Name:     "triggers",
					Aliases:  []string{"t"},
					Required: true,
					Usage:    "Comma-separated trigger types (manual, scheduled, webhook, api)",
				},
				&cli.IntFlag{
					Name:  "max-invocations",
					Value: 0,
					Usage: "Lifetime invocation limit (0 for unlimited)",
				},
				&cli.IntFlag{
					Name:  "max-per-window",
					Value: 0,
					Usage: "Invocation limit per window (0 for unlimited)",
				},
				&cli.IntFlag{
					Name:  "window-seconds",
					Value: 60,
					Usage: "Sliding window size in seconds for the per-window limit",
				},
				&cli.IntFlag{
					Name:  "expires-in-seconds",
					Value: 0,
					Usage: "Token lifetime in seconds (0 means no expiry)",
				},
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				tokenUseCase, err := container.TokenUseCase()
				if err != nil {
					return err
				}

				return commands.RunIssueToken(
					ctx,
					tokenUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("user-id"),
					cmd.String("scope"),
					cmd.String("triggers"),
					int(cmd.Int("max-invocations")),
					int(cmd.Int("max-per-window")),
					int64(cmd.Int("window-seconds")),
					int64(cmd.Int("expires-in-seconds")),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "revoke-token",
			Usage: "Revoke a capability token (one-way)",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "fingerprint",
					Aliases:  []string{"p"},
					Required: true,
					Usage:    "Fingerprint of the token to revoke",
				},
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				tokenUseCase, err := container.TokenUseCase()
				if err != nil {
					return err
				}

				return commands.RunRevokeToken(
					ctx,
					tokenUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("fingerprint"),
					cmd.String("format"),
				)
			},
		},
	}
}
