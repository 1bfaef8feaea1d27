package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/samcharles93/rivet/internal/api"
	"github.com/samcharles93/rivet/internal/logger"
	"github.com/samcharles93/rivet/internal/webui"
	"github.com/samcharles93/rivet/pkg/riv"
	"github.com/urfave/cli/v3"
)

func serveCmd() *cli.Command {
	var (
		df          decodeFlags
		addr        string
		readTimeout time.Duration
		maxBody     int64
		maxPatches  int
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the inspect and patch REST API",
		Flags: append(df.flags(),
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address",
				Value:       "127.0.0.1:8080",
				Destination: &addr,
			},
			&cli.DurationFlag{
				Name:        "read-timeout",
				Usage:       "read timeout",
				Value:       30 * time.Second,
				Destination: &readTimeout,
			},
			&cli.Int64Flag{
				Name:        "max-body",
				Usage:       "largest accepted container in bytes",
				Value:       64 << 20,
				Destination: &maxBody,
			},
			&cli.IntFlag{
				Name:        "max-patches",
				Usage:       "patched containers kept in memory (0 = unlimited)",
				Value:       64,
				Destination: &maxPatches,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			cfg := configFrom(ctx)
			df.apply(cmd, cfg)
			applyServeConfig(cmd, cfg, &addr, &maxPatches)

			layout, ok := riv.ParseTOCLayout(df.toc)
			if !ok {
				return cli.Exit(fmt.Sprintf("error: unknown property table layout %q", df.toc), 2)
			}

			server := api.NewServer(api.NewPatchStore(maxPatches), api.Config{
				MaxBody: maxBody,
				Strict:  df.strict,
				Recover: df.recovery,
				Layout:  layout,
				Log:     log.With("component", "api"),
			})
			e := echo.New()
			e.Use(middleware.RequestLogger())
			e.Use(middleware.Recover())
			server.Register(e)
			e.GET("/", echo.WrapHandler(webui.Handler()))
			log.Info("starting server", "address", addr)
			sc := echo.StartConfig{
				Address: addr,
				BeforeServeFunc: func(srv *http.Server) error {
					srv.ReadHeaderTimeout = readTimeout
					return nil
				},
			}
			return sc.Start(ctx, e)
		},
	}
}
