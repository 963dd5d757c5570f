// Package cli implements the enricher operator command.
package cli

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/octobees/contact-enricher/internal/config"
	"github.com/octobees/contact-enricher/internal/logging"
)

// runtime is the state prepared by the root command before any subcommand runs.
type runtime struct {
	cfg    *config.Config
	logger *slog.Logger
	out    io.Writer
	errOut io.Writer
}

// Run executes the CLI with args.
func Run(ctx context.Context, args []string, version string) error {
	rt := &runtime{out: os.Stdout, errOut: os.Stderr}
	if err := newCommand(rt, version).Run(ctx, args); err != nil {
		if rt.logger != nil {
			rt.logger.Error("command failed", slog.Any("error", err))
		} else {
			slog.Error("command failed", slog.Any("error", err))
		}
		return err
	}
	return nil
}

func newCommand(rt *runtime, version string) *cli.Command {
	var logLevel, logFormat string

	return &cli.Command{
		Name:    "enricher",
		Usage:   "Resolve contacts with the people-data provider and sync them into Notion",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "debug, info, warn or error",
				Sources:     cli.EnvVars("LOG_LEVEL"),
				Destination: &logLevel,
			},
			&cli.StringFlag{
				Name:        "log-format",
				Usage:       "text or json",
				Sources:     cli.EnvVars("LOG_FORMAT"),
				Destination: &logFormat,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			cfg, err := config.Load()
			if err != nil {
				return ctx, err
			}
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}
			if logFormat != "" {
				cfg.LogFormat = logFormat
			}
			rt.cfg = cfg
			if c.Root().Writer != nil {
				rt.out = c.Root().Writer
			}
			if c.Root().ErrWriter != nil {
				rt.errOut = c.Root().ErrWriter
			}
			rt.logger = logging.NewWithWriter(rt.errOut, cfg.LogLevel, cfg.LogFormat)
			slog.SetDefault(rt.logger)
			return ctx, nil
		},
		Commands: []*cli.Command{
			cmdEnrich(rt),
			cmdSchema(rt),
			cmdStrategy(rt),
			cmdUser(rt),
			cmdMigrate(rt),
			cmdKeygen(rt),
		},
	}
}
