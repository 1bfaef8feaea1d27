package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/samcharles93/rivet/internal/api"
	"github.com/samcharles93/rivet/internal/logger"
	"github.com/samcharles93/rivet/pkg/riv"
	"github.com/urfave/cli/v3"
)

type recordJSON struct {
	ID         uint64            `json:"id"`
	Type       string            `json:"type"`
	Tag        uint64            `json:"tag"`
	Offset     int               `json:"offset"`
	End        int               `json:"end"`
	Properties map[string]string `json:"properties"`
}

type inspectJSON struct {
	api.InspectResponse
	File        string       `json:"file"`
	Size        int          `json:"size"`
	RecordsList []recordJSON `json:"records_list,omitempty"`
}

func inspectCmd() *cli.Command {
	var (
		df          decodeFlags
		showRecords bool
		showTable   bool
		asJSON      bool
	)

	return &cli.Command{
		Name:      "inspect",
		Usage:     "Summarise the state machines in a .riv file",
		ArgsUsage: "FILE",
		Flags: append(df.flags(),
			&cli.BoolFlag{Name: "records", Usage: "list every record with its properties", Destination: &showRecords},
			&cli.BoolFlag{Name: "table", Usage: "print the property table", Destination: &showTable},
			&cli.BoolFlag{Name: "json", Usage: "print JSON instead of text", Destination: &asJSON},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			df.apply(cmd, configFrom(ctx))

			path, err := requirePath(cmd)
			if err != nil {
				return err
			}
			opts, err := df.options()
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 2)
			}
			f, err := riv.Open(path, opts...)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: decode %s: %v", path, err), 1)
			}
			defer func() { _ = f.Close() }()

			c := f.Container
			for _, d := range c.Diagnostics {
				log.Warn("decode diagnostic", "key", uint64(d.Key), "offset", d.Offset, "record_offset", d.RecordOffset, "error", d.Err)
			}
			if c.Partial {
				log.Warn("container is truncated, showing the records decoded before the cut")
			}

			w := stdout(cmd)
			if asJSON {
				out := inspectJSON{
					InspectResponse: api.Summarize(c),
					File:            path,
					Size:            len(f.Data),
				}
				if showRecords {
					out.RecordsList = recordsJSON(c)
				}
				b, err := json.MarshalIndent(out, "", "  ")
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(w, string(b))
				return err
			}

			printSummary(w, path, len(f.Data), c)
			if showTable {
				printTable(w, c.Table)
			}
			if showRecords {
				printRecords(w, c)
			}
			return nil
		},
	}
}

func printSummary(w io.Writer, path string, size int, c *riv.Container) {
	_, _ = fmt.Fprintf(w, "RIV Inspect: %s\n", path)
	_, _ = fmt.Fprintf(w, "File: %s (%d bytes)\n", filepath.Base(path), size)
	_, _ = fmt.Fprintf(w, "Version: %d.%d  File ID: %d\n", c.Header.Major, c.Header.Minor, c.Header.FileID)
	_, _ = fmt.Fprintf(w, "Properties: %d  Records: %d  Stream offset: %d\n", c.Table.Len(), len(c.Records), c.StreamOffset)
	if c.Partial {
		_, _ = fmt.Fprintln(w, "Partial: true")
	}
	if len(c.Diagnostics) > 0 {
		_, _ = fmt.Fprintf(w, "Diagnostics: %d\n", len(c.Diagnostics))
	}
	if len(c.Orphans) > 0 {
		_, _ = fmt.Fprintf(w, "Orphans: %d\n", len(c.Orphans))
	}

	_, _ = fmt.Fprintf(w, "\nState machines (%d)\n", len(c.StateMachines))
	for _, sm := range c.StateMachines {
		_, _ = fmt.Fprintf(w, "  [%d] %q @%d\n", sm.ID, sm.Name, sm.Record.Offset)
		for i, in := range sm.Inputs {
			def := ""
			if v := in.Default(); v != nil {
				def = fmt.Sprintf(" = %v", v)
			}
			_, _ = fmt.Fprintf(w, "    input %d [%d] %-8s %q%s\n", i, in.ID, in.Kind, in.Name, def)
		}
		for _, l := range sm.Layers {
			_, _ = fmt.Fprintf(w, "    layer [%d] %q states=%d transitions=%d\n", l.ID, l.Name, len(l.States), len(l.Transitions))
			for i, s := range l.States {
				b := s.Base()
				_, _ = fmt.Fprintf(w, "      state %d [%d] %s %s\n", i, b.ID, b.Record.Type, stateDetail(s))
			}
			for _, t := range l.Transitions {
				_, _ = fmt.Fprintf(w, "      transition [%d] %d -> state %d conditions=%d\n", t.ID, t.FromStateID, t.ToStateID, len(t.Conditions))
			}
		}
	}
}

func stateDetail(s riv.State) string {
	switch v := s.(type) {
	case *riv.AnimationState:
		return fmt.Sprintf("animation=%d", v.AnimationID)
	case *riv.BlendState1D:
		return fmt.Sprintf("input=%d animations=%d", v.InputID, len(v.Animations))
	default:
		return ""
	}
}

func printTable(w io.Writer, t *riv.PropertyTable) {
	_, _ = fmt.Fprintf(w, "\nProperty table (%d)\n", t.Len())
	keys := t.Keys()
	slices.Sort(keys)
	for _, k := range keys {
		wt, _ := t.Lookup(k)
		_, _ = fmt.Fprintf(w, "  %5d %s\n", k, wt)
	}
}

func printRecords(w io.Writer, c *riv.Container) {
	_, _ = fmt.Fprintf(w, "\nRecords (%d)\n", len(c.Records))
	for _, rec := range c.Records {
		_, _ = fmt.Fprintf(w, "  %4d @%-6d %-20s %s\n", rec.ID, rec.Offset, rec.Type, formatProperties(rec))
	}
}

func sortedKeys(rec *riv.Record) []riv.PropertyKey {
	keys := make([]riv.PropertyKey, 0, len(rec.Properties))
	for k := range rec.Properties {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func formatProperties(rec *riv.Record) string {
	var sb strings.Builder
	for i, k := range sortedKeys(rec) {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%d=%s", k, rec.Properties[k])
	}
	return sb.String()
}

func recordsJSON(c *riv.Container) []recordJSON {
	out := make([]recordJSON, 0, len(c.Records))
	for _, rec := range c.Records {
		props := make(map[string]string, len(rec.Properties))
		for _, k := range sortedKeys(rec) {
			props[fmt.Sprint(k)] = rec.Properties[k].String()
		}
		out = append(out, recordJSON{
			ID:         rec.ID,
			Type:       rec.Type.String(),
			Tag:        uint64(rec.Type),
			Offset:     rec.Offset,
			End:        rec.End,
			Properties: props,
		})
	}
	return out
}

// readContainer reads path fully, for commands that produce a modified copy.
func readContainer(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, cli.Exit(fmt.Sprintf("error: read %s: %v", path, err), 1)
	}
	return data, nil
}
