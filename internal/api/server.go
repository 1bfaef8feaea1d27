package api

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/samcharles93/rivet/internal/logger"
	"github.com/samcharles93/rivet/internal/rivstore"
	"github.com/samcharles93/rivet/pkg/riv"
)

const defaultMaxBody = 64 << 20

type Config struct {
	// MaxBody bounds uploaded containers. Zero selects 64 MiB.
	MaxBody int64
	// Strict makes unknown properties fatal unless a request overrides it.
	Strict bool
	// Recover returns partial containers for truncated uploads unless a
	// request overrides it.
	Recover bool
	Layout  riv.TOCLayout
	Log     logger.Logger
}

type Server struct {
	store *PatchStore
	cfg   Config
	clock func() time.Time
}

func NewServer(store *PatchStore, cfg Config) *Server {
	if store == nil {
		store = NewPatchStore(0)
	}
	if cfg.MaxBody <= 0 {
		cfg.MaxBody = defaultMaxBody
	}
	if cfg.Log == nil {
		cfg.Log = logger.Default()
	}
	return &Server{
		store: store,
		cfg:   cfg,
		clock: time.Now,
	}
}

func (s *Server) Register(e *echo.Echo) {
	e.POST("/v1/inspect", s.handleInspect)
	e.POST("/v1/patches", s.handleCreatePatch)
	e.GET("/v1/patches/:id", s.handleGetPatch)
	e.DELETE("/v1/patches/:id", s.handleDeletePatch)
}

// decodeOptions applies the server defaults and the strict, recover and toc
// query parameters.
func (s *Server) decodeOptions(c *echo.Context) ([]riv.Option, error) {
	strict := s.cfg.Strict
	if q := c.QueryParam("strict"); q != "" {
		v, err := strconv.ParseBool(q)
		if err != nil {
			return nil, newInvalidRequest("strict: " + err.Error())
		}
		strict = v
	}
	layout := s.cfg.Layout
	if q := c.QueryParam("toc"); q != "" {
		l, ok := riv.ParseTOCLayout(q)
		if !ok {
			return nil, newInvalidRequest(fmt.Sprintf("toc: unknown layout %q", q))
		}
		layout = l
	}
	opts := []riv.Option{riv.WithTOCLayout(layout)}
	if strict {
		opts = append(opts, riv.WithStrict())
	}
	recovery := s.cfg.Recover
	if q := c.QueryParam("recover"); q != "" {
		v, err := strconv.ParseBool(q)
		if err != nil {
			return nil, newInvalidRequest("recover: " + err.Error())
		}
		recovery = v
	}
	if recovery {
		opts = append(opts, riv.WithRecovery())
	}
	return opts, nil
}

func (s *Server) handleInspect(c *echo.Context) error {
	opts, err := s.decodeOptions(c)
	if err != nil {
		return writeFailure(c, err)
	}
	data, err := readBody(c, s.cfg.MaxBody)
	if err != nil {
		return writeFailure(c, err)
	}
	container, err := riv.Decode(data, opts...)
	if err != nil {
		return writeFailure(c, err)
	}
	return c.JSON(http.StatusOK, Summarize(container))
}

func (s *Server) handleCreatePatch(c *echo.Context) error {
	opts, err := s.decodeOptions(c)
	if err != nil {
		return writeFailure(c, err)
	}
	// base64 inflates the container by a third
	req, err := decodeJSON[PatchRequest](io.LimitReader(c.Request().Body, s.cfg.MaxBody*2))
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	if len(req.Data) == 0 {
		return writeBadRequest(c, "data is required")
	}
	if req.Anchor == "" {
		return writeBadRequest(c, "anchor is required")
	}
	specs, err := inputSpecs(req.Inputs, req.ParentID)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}

	res, err := rivstore.Inject(req.Data, rivstore.Plan{
		Anchor:          req.Anchor,
		Inputs:          specs,
		AllowUndeclared: req.AllowUndeclared,
		Options:         opts,
	})
	if err != nil {
		return writeFailure(c, err)
	}

	resp := PatchResponse{
		StateID:    res.Location.ID,
		InsertedAt: res.Location.InsertAt,
		Added:      nonNil(res.Added),
		Skipped:    nonNil(res.Skipped),
	}
	for _, k := range res.Undeclared {
		resp.Undeclared = append(resp.Undeclared, uint64(k))
	}
	resp = s.store.Create(resp, res.Data, s.clock())
	s.cfg.Log.Info("patch created",
		"id", resp.ID,
		"anchor", req.Anchor,
		"added", len(resp.Added),
		"skipped", len(resp.Skipped),
	)
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleGetPatch(c *echo.Context) error {
	id := c.Param("id")
	rec, ok := s.store.Get(id)
	if !ok {
		return writeNotFound(c, "patch not found")
	}
	if c.QueryParam("format") == "json" {
		return c.JSON(http.StatusOK, rec.Response)
	}
	c.Response().Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", id+".riv"))
	return c.Blob(http.StatusOK, echo.MIMEOctetStream, rec.Data)
}

func (s *Server) handleDeletePatch(c *echo.Context) error {
	id := c.Param("id")
	if !s.store.Delete(id) {
		return writeNotFound(c, "patch not found")
	}
	return c.JSON(http.StatusOK, map[string]any{
		"id":      id,
		"object":  "patch.deleted",
		"deleted": true,
	})
}

func inputSpecs(inputs []PatchInput, parentID uint64) ([]riv.InputSpec, error) {
	if len(inputs) == 0 {
		return nil, newInvalidRequest("inputs must not be empty")
	}
	specs := make([]riv.InputSpec, 0, len(inputs))
	for i, in := range inputs {
		if in.Name == "" {
			return nil, newInvalidRequest(fmt.Sprintf("inputs[%d]: name is required", i))
		}
		kind, ok := riv.ParseInputKind(in.Type)
		if !ok {
			return nil, newInvalidRequest(fmt.Sprintf("inputs[%d]: unknown type %q", i, in.Type))
		}
		spec := riv.InputSpec{Name: in.Name, Kind: kind, ParentID: parentID}
		switch kind {
		case riv.InputNumber:
			switch v := in.Value.(type) {
			case nil:
			case float64:
				spec.Number = float32(v)
			default:
				return nil, newInvalidRequest(fmt.Sprintf("inputs[%d]: number value must be numeric", i))
			}
		case riv.InputBoolean:
			switch v := in.Value.(type) {
			case nil:
			case bool:
				spec.Bool = v
			default:
				return nil, newInvalidRequest(fmt.Sprintf("inputs[%d]: boolean value must be true or false", i))
			}
		case riv.InputTrigger:
			if in.Value != nil {
				return nil, newInvalidRequest(fmt.Sprintf("inputs[%d]: trigger inputs take no value", i))
			}
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
