package api

type ResponseError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

type InspectResponse struct {
	Major         uint64                `json:"major"`
	Minor         uint64                `json:"minor"`
	FileID        uint64                `json:"file_id"`
	Properties    int                   `json:"properties"`
	Records       int                   `json:"records"`
	Partial       bool                  `json:"partial,omitempty"`
	StateMachines []StateMachineSummary `json:"state_machines"`
	Orphans       int                   `json:"orphans,omitempty"`
	Diagnostics   []DiagnosticSummary   `json:"diagnostics,omitempty"`
}

type StateMachineSummary struct {
	ID     uint64         `json:"id"`
	Name   string         `json:"name"`
	Offset int            `json:"offset"`
	Inputs []InputSummary `json:"inputs"`
	Layers []LayerSummary `json:"layers"`
}

type InputSummary struct {
	ID      uint64 `json:"id"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	Default any    `json:"default,omitempty"`
}

type LayerSummary struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name,omitempty"`
	States      int    `json:"states"`
	Transitions int    `json:"transitions"`
}

type DiagnosticSummary struct {
	Message      string `json:"message"`
	Key          uint64 `json:"key,omitempty"`
	Offset       int    `json:"offset"`
	RecordOffset int    `json:"record_offset"`
}

type PatchInput struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Value any    `json:"value,omitempty"`
}

type PatchRequest struct {
	Data            []byte       `json:"data"`
	Anchor          string       `json:"anchor"`
	Inputs          []PatchInput `json:"inputs"`
	ParentID        uint64       `json:"parent_id,omitempty"`
	AllowUndeclared bool         `json:"allow_undeclared,omitempty"`
}

type PatchResponse struct {
	ID         string   `json:"id"`
	Object     string   `json:"object"`
	CreatedAt  int64    `json:"created_at"`
	Size       int      `json:"size"`
	StateID    uint64   `json:"state_machine_id"`
	InsertedAt int      `json:"inserted_at"`
	Added      []string `json:"added"`
	Skipped    []string `json:"skipped"`
	Undeclared []uint64 `json:"undeclared,omitempty"`
}
