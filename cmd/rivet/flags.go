package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/samcharles93/rivet/internal/logger"
	"github.com/samcharles93/rivet/pkg/riv"
	"github.com/urfave/cli/v3"
)

var (
	logLevel  string
	logFormat string
	logFile   string
	debug     bool

	closeLog = func() error { return nil }
)

func loggingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (pretty, json, text)",
			Value:       "pretty",
			Destination: &logFormat,
		},
		&cli.StringFlag{
			Name:        "log-file",
			Usage:       "also write JSON logs to this file",
			Destination: &logFile,
		},
		&cli.BoolFlag{
			Name:        "debug",
			Usage:       "enable debug logging (shorthand for --log-level=debug)",
			Destination: &debug,
		},
	}
}

// setupLogging loads the config file, builds the logger and stores both in
// the context for the subcommands.
func setupLogging(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return ctx, err
	}
	applyLoggingConfig(cmd, cfg)
	if debug {
		logLevel = "debug"
	}

	log, closeFn, err := logger.Setup(os.Stderr, logger.Options{
		Level:  logLevel,
		Format: logFormat,
		File:   logFile,
	})
	if err != nil {
		return ctx, err
	}
	closeLog = closeFn
	ctx = logger.WithContext(ctx, log)
	return withConfig(ctx, cfg), nil
}

func closeLogging(ctx context.Context, cmd *cli.Command) error {
	return closeLog()
}

// decodeFlags are shared by every command that reads a container.
type decodeFlags struct {
	strict   bool
	recovery bool
	toc      string
}

func (d *decodeFlags) flags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:        "strict",
			Usage:       "fail on properties missing from the property table",
			Destination: &d.strict,
		},
		&cli.BoolFlag{
			Name:        "recover",
			Usage:       "keep the records decoded before a truncation",
			Destination: &d.recovery,
		},
		&cli.StringFlag{
			Name:        "toc",
			Usage:       "property table layout (pairs, packed)",
			Value:       riv.TOCPairs.String(),
			Destination: &d.toc,
		},
	}
}

func (d *decodeFlags) apply(cmd *cli.Command, cfg Config) {
	if cfg.Strict != nil && !cmd.IsSet("strict") {
		d.strict = *cfg.Strict
	}
	if cfg.TOCLayout != "" && !cmd.IsSet("toc") {
		d.toc = cfg.TOCLayout
	}
}

func (d *decodeFlags) options() ([]riv.Option, error) {
	layout, ok := riv.ParseTOCLayout(d.toc)
	if !ok {
		return nil, fmt.Errorf("unknown property table layout %q", d.toc)
	}
	opts := []riv.Option{riv.WithTOCLayout(layout)}
	if d.strict {
		opts = append(opts, riv.WithStrict())
	}
	if d.recovery {
		opts = append(opts, riv.WithRecovery())
	}
	return opts, nil
}

func stdout(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func requirePath(cmd *cli.Command) (string, error) {
	path := cmd.Args().First()
	if path == "" {
		return "", cli.Exit(fmt.Sprintf("error: %s needs a .riv file argument", cmd.Name), 2)
	}
	return path, nil
}
