package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/planexec/cmd/app/commands"
	"github.com/allisson/planexec/internal/app"
	"github.com/allisson/planexec/internal/config"
)

func getPlanCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "run-plan",
			Usage: "Execute a plan document from a file",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "file",
					Aliases:  []string{"i"},
					Required: true,
					Usage:    "Path to the plan document (.json, .yaml or .yml)",
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

				executor, err := container.Executor()
				if err != nil {
					return err
				}

				return commands.RunPlan(
					ctx,
					executor,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("file"),
					cmd.String("format"),
				)
			},
		},
	}
}
