package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/samcharles93/rivet/internal/logger"
	"github.com/samcharles93/rivet/internal/rivstore"
	"github.com/samcharles93/rivet/internal/vmservice"
	"github.com/samcharles93/rivet/pkg/riv"
	"github.com/urfave/cli/v3"
)

func injectCmd() *cli.Command {
	var (
		df              decodeFlags
		rf              reloadFlags
		anchor          string
		numbers         []string
		bools           []string
		triggers        []string
		parentID        uint64
		out             string
		dryRun          bool
		reload          bool
		allowUndeclared bool
	)

	return &cli.Command{
		Name:      "inject",
		Usage:     "Add state machine inputs to a .riv file",
		ArgsUsage: "FILE",
		Flags: append(append(df.flags(), rf.flags()...),
			&cli.StringFlag{Name: "anchor", Aliases: []string{"a"}, Usage: "state machine to add the inputs to", Destination: &anchor},
			&cli.StringSliceFlag{Name: "number", Usage: "number input as name=default (repeatable)", Destination: &numbers},
			&cli.StringSliceFlag{Name: "bool", Usage: "boolean input as name=true|false (repeatable)", Destination: &bools},
			&cli.StringSliceFlag{Name: "trigger", Usage: "trigger input name (repeatable)", Destination: &triggers},
			&cli.Uint64Flag{Name: "parent-id", Usage: "write an explicit parent object id (0 relies on record order)", Destination: &parentID},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output path (default: overwrite FILE)", Destination: &out},
			&cli.BoolFlag{Name: "dry-run", Usage: "report what would change without writing", Destination: &dryRun},
			&cli.BoolFlag{Name: "reload", Usage: "hot reload the running app after writing", Destination: &reload},
			&cli.BoolFlag{Name: "allow-undeclared", Usage: "splice even if the property table lacks the input keys", Destination: &allowUndeclared},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			cfg := configFrom(ctx)
			df.apply(cmd, cfg)
			rf.apply(cmd, cfg)
			applyAnchorConfig(cmd, cfg, &anchor)

			path, err := requirePath(cmd)
			if err != nil {
				return err
			}
			if anchor == "" {
				return cli.Exit("error: --anchor is required", 2)
			}
			specs, err := parseInputSpecs(numbers, bools, triggers, parentID)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 2)
			}
			if len(specs) == 0 {
				return cli.Exit("error: nothing to inject, use --number, --bool or --trigger", 2)
			}
			opts, err := df.options()
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 2)
			}

			data, err := readContainer(path)
			if err != nil {
				return err
			}
			res, err := rivstore.Inject(data, rivstore.Plan{
				Anchor:          anchor,
				Inputs:          specs,
				AllowUndeclared: allowUndeclared,
				Options:         opts,
			})
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: inject into %s: %v", path, err), 1)
			}
			for _, name := range res.Skipped {
				log.Info("input already present, skipping", "input", name, "anchor", anchor)
			}
			if len(res.Undeclared) > 0 {
				log.Warn("property table does not declare injected keys", "keys", fmt.Sprint(res.Undeclared))
			}

			w := stdout(cmd)
			_, _ = fmt.Fprintf(w, "anchor %q (object %d) insert at %d: added %d, skipped %d\n",
				anchor, res.Location.ID, res.Location.InsertAt, len(res.Added), len(res.Skipped))
			if dryRun || len(res.Added) == 0 {
				return nil
			}

			if out == "" {
				out = path
			}
			if err := rivstore.WriteFile(out, res.Data); err != nil {
				return cli.Exit(fmt.Sprintf("error: write %s: %v", out, err), 1)
			}
			log.Info("wrote patched container", "path", out, "bytes", len(res.Data), "added", strings.Join(res.Added, ","))

			if reload {
				return rf.run(ctx, w)
			}
			return nil
		},
	}
}

// parseInputSpecs turns the repeated --number, --bool and --trigger values
// into input specs, numbers first.
func parseInputSpecs(numbers, bools, triggers []string, parentID uint64) ([]riv.InputSpec, error) {
	var specs []riv.InputSpec
	for _, s := range numbers {
		name, raw, err := splitAssignment(s, "0")
		if err != nil {
			return nil, fmt.Errorf("--number %q: %w", s, err)
		}
		v, err := strconv.ParseFloat(raw, 32)
		if err != nil {
			return nil, fmt.Errorf("--number %q: %w", s, err)
		}
		specs = append(specs, riv.InputSpec{Name: name, Kind: riv.InputNumber, Number: float32(v), ParentID: parentID})
	}
	for _, s := range bools {
		name, raw, err := splitAssignment(s, "false")
		if err != nil {
			return nil, fmt.Errorf("--bool %q: %w", s, err)
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("--bool %q: %w", s, err)
		}
		specs = append(specs, riv.InputSpec{Name: name, Kind: riv.InputBoolean, Bool: v, ParentID: parentID})
	}
	for _, name := range triggers {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("--trigger: empty name")
		}
		specs = append(specs, riv.InputSpec{Name: name, Kind: riv.InputTrigger, ParentID: parentID})
	}
	return specs, nil
}

// splitAssignment splits name=value; a bare name takes def.
func splitAssignment(s, def string) (string, string, error) {
	name, value, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if name == "" {
		return "", "", fmt.Errorf("empty name")
	}
	if !ok {
		return name, def, nil
	}
	return name, strings.TrimSpace(value), nil
}

type reloadFlags struct {
	url     string
	urlFile string
	logGlob string
	timeout time.Duration
}

func (r *reloadFlags) flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "vm-url", Usage: "Dart VM service URL", Destination: &r.url},
		&cli.StringFlag{Name: "vm-url-file", Usage: "file holding the VM service URL", Destination: &r.urlFile},
		&cli.StringFlag{Name: "vm-log-glob", Usage: "log files to scan for the VM service URL", Destination: &r.logGlob},
		&cli.DurationFlag{Name: "reload-timeout", Usage: "hot reload timeout", Value: 30 * time.Second, Destination: &r.timeout},
	}
}

func (r *reloadFlags) apply(cmd *cli.Command, cfg Config) {
	if cfg.VMURL != "" && !cmd.IsSet("vm-url") {
		r.url = cfg.VMURL
	}
	if cfg.VMURLFile != "" && !cmd.IsSet("vm-url-file") {
		r.urlFile = cfg.VMURLFile
	}
	if cfg.VMLogGlob != "" && !cmd.IsSet("vm-log-glob") {
		r.logGlob = cfg.VMLogGlob
	}
}

func (r *reloadFlags) run(ctx context.Context, w io.Writer) error {
	log := logger.FromContext(ctx)
	vmURL, err := vmservice.Discover(vmservice.Source{URL: r.url, URLFile: r.urlFile, LogGlob: r.logGlob})
	if err != nil {
		return cli.Exit(fmt.Sprintf("error: %v (is the app running?)", err), 1)
	}
	log.Debug("using VM service", "url", vmURL)

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	iso, err := vmservice.Reload(ctx, vmURL)
	if err != nil {
		return cli.Exit(fmt.Sprintf("error: hot reload: %v", err), 1)
	}
	_, _ = fmt.Fprintf(w, "hot reload succeeded (isolate %s)\n", iso.ID)
	return nil
}
