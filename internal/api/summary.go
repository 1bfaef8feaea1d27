package api

import "github.com/samcharles93/rivet/pkg/riv"

// Summarize reduces a decoded container to the JSON shape served by
// /v1/inspect and printed by `rivet inspect --json`.
func Summarize(c *riv.Container) InspectResponse {
	out := InspectResponse{
		Major:         c.Header.Major,
		Minor:         c.Header.Minor,
		FileID:        c.Header.FileID,
		Properties:    c.Table.Len(),
		Records:       len(c.Records),
		Partial:       c.Partial,
		Orphans:       len(c.Orphans),
		StateMachines: make([]StateMachineSummary, 0, len(c.StateMachines)),
	}
	for _, sm := range c.StateMachines {
		s := StateMachineSummary{
			ID:     sm.ID,
			Name:   sm.Name,
			Offset: sm.Record.Offset,
			Inputs: make([]InputSummary, 0, len(sm.Inputs)),
			Layers: make([]LayerSummary, 0, len(sm.Layers)),
		}
		for _, in := range sm.Inputs {
			s.Inputs = append(s.Inputs, InputSummary{
				ID:      in.ID,
				Name:    in.Name,
				Type:    in.Kind.String(),
				Default: in.Default(),
			})
		}
		for _, l := range sm.Layers {
			s.Layers = append(s.Layers, LayerSummary{
				ID:          l.ID,
				Name:        l.Name,
				States:      len(l.States),
				Transitions: len(l.Transitions),
			})
		}
		out.StateMachines = append(out.StateMachines, s)
	}
	for _, d := range c.Diagnostics {
		out.Diagnostics = append(out.Diagnostics, DiagnosticSummary{
			Message:      d.Error(),
			Key:          uint64(d.Key),
			Offset:       d.Offset,
			RecordOffset: d.RecordOffset,
		})
	}
	return out
}
