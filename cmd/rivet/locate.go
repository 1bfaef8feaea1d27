package main

import (
	"context"
	"errors"
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/samcharles93/rivet/internal/rivstore"
	"github.com/samcharles93/rivet/pkg/riv"
	"github.com/urfave/cli/v3"
)

func locateCmd() *cli.Command {
	var (
		df     decodeFlags
		anchor string
		asJSON bool
	)

	return &cli.Command{
		Name:      "locate",
		Usage:     "Print the object id and splice point of a state machine",
		ArgsUsage: "FILE",
		Flags: append(df.flags(),
			&cli.StringFlag{Name: "anchor", Aliases: []string{"a"}, Usage: "state machine name", Destination: &anchor},
			&cli.BoolFlag{Name: "json", Usage: "print JSON instead of text", Destination: &asJSON},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg := configFrom(ctx)
			df.apply(cmd, cfg)
			applyAnchorConfig(cmd, cfg, &anchor)

			path, err := requirePath(cmd)
			if err != nil {
				return err
			}
			if anchor == "" {
				return cli.Exit("error: --anchor is required", 2)
			}
			opts, err := df.options()
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 2)
			}

			f, err := rivstore.Open(path, opts...)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			defer func() { _ = f.Close() }()

			loc, err := f.Locate(anchor)
			if errors.Is(err, riv.ErrAnchorNotFound) {
				return cli.Exit(fmt.Sprintf("error: %v", err), 3)
			}
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}

			w := stdout(cmd)
			if asJSON {
				b, err := json.MarshalIndent(loc, "", "  ")
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(w, string(b))
				return err
			}
			_, _ = fmt.Fprintf(w, "state machine %q\n", loc.Name)
			_, _ = fmt.Fprintf(w, "  object id:     %d\n", loc.ID)
			_, _ = fmt.Fprintf(w, "  name key:      %d\n", loc.NameKey)
			_, _ = fmt.Fprintf(w, "  record offset: %d\n", loc.RecordOffset)
			_, _ = fmt.Fprintf(w, "  insert at:     %d\n", loc.InsertAt)
			_, _ = fmt.Fprintf(w, "  inputs:        %d\n", loc.Inputs)
			_, _ = fmt.Fprintf(w, "  layers:        %d\n", loc.Layers)
			return nil
		},
	}
}
