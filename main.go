package main

import (
	"context"
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/okra-platform/typesupport/internal/codegen"
	"github.com/okra-platform/typesupport/internal/commands"
	"github.com/okra-platform/typesupport/internal/watch"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	short := commit
	if len(commit) > 7 {
		short = commit[:7]
	}

	return fmt.Sprintf("%s (%s) %s", version, short, date)
}

func main() {
	ctrl := &commands.Controller{
		Flags: &commands.Flags{},
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	app := &cli.Command{
		Name:    "typesupport",
		Usage:   `Generate Fast-RTPS type support sources from .msg and .srv interface files.`,
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "log level (debug, info, warn, error, fatal, panic)",
				Sources: cli.EnvVars("TYPESUPPORT_LOG_LEVEL"),
				Value:   "info",
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			level, err := zerolog.ParseLevel(c.String("log-level"))
			if err != nil {
				return ctx, errors.Wrap(err, "failed to parse log level")
			}

			ctrl.Flags.LogLevel = level.String()
			log.Logger = log.Level(level)

			return ctx, nil
		},
		Commands: []*cli.Command{
			{
				Name:      "generate",
				Usage:     "Generate type support for the packages described by arguments files",
				ArgsUsage: "[ARGS_FILE...]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "typesupport",
						Usage: fmt.Sprintf("override the binding of every arguments file (%v)", codegen.DefaultRegistry.Names()),
					},
					&cli.BoolFlag{
						Name:  "descriptor-set",
						Usage: "also write a protobuf descriptor set of the package's types",
					},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					return ctrl.Generate(ctx, commands.GenerateOptions{
						ArgsFiles:     c.Args().Slice(),
						TypeSupport:   c.String("typesupport"),
						DescriptorSet: c.Bool("descriptor-set"),
					})
				},
			},
			{
				Name:      "watch",
				Usage:     "Generate, then regenerate whenever inputs change",
				ArgsUsage: "[ARGS_FILE]",
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "debounce",
						Usage: "how long changes must settle before regenerating",
						Value: watch.DefaultDebounce,
					},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					return ctrl.Watch(ctx, commands.WatchOptions{
						ArgsFile: c.Args().First(),
						Debounce: c.Duration("debounce"),
					})
				},
			},
			{
				Name:  "init",
				Usage: "Create a new interface package with the default templates",
				Action: func(ctx context.Context, c *cli.Command) error {
					return ctrl.Init(ctx)
				},
			},
			{
				Name:      "format",
				Usage:     "Print interface files in canonical form",
				ArgsUsage: "FILE...",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "package",
						Usage: "package name of the files (default: the directory above msg/ or srv/)",
					},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					return ctrl.Format(ctx, commands.FormatOptions{
						Files:       c.Args().Slice(),
						PackageName: c.String("package"),
					})
				},
			},
		},
	}

	ctx := context.Background()

	if err := app.Run(ctx, os.Args); err != nil {
		event := log.Error().Err(err)
		if hints := errors.FlattenHints(err); hints != "" {
			event = event.Str("hint", hints)
		}
		event.Msg("failed to run typesupport")
		os.Exit(1)
	}
}
