package server

import (
	"encoding/json"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/log"

	"github.com/diagramtool/diagramtool/pkg/errors"
	"github.com/diagramtool/diagramtool/pkg/layout"
	"github.com/diagramtool/diagramtool/pkg/model"
	"github.com/diagramtool/diagramtool/pkg/pipeline"
	"github.com/diagramtool/diagramtool/pkg/render"
)

// Handler serves diagrams of the Python files below Root.
type Handler struct {
	Root   string
	Runner *pipeline.Runner
	Logger *log.Logger
}

// NewHandler returns a handler for root. A nil runner runs without a cache.
func NewHandler(root string, runner *pipeline.Runner, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.Default()
	}
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, logger)
	}
	return &Handler{Root: root, Runner: runner, Logger: logger}
}

type formatsResponse struct {
	Formats    []render.Format `json:"formats"`
	Strategies []string        `json:"strategies"`
}

// Formats lists the accepted format and strategy names.
func (h *Handler) Formats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, formatsResponse{
		Formats:    render.Formats(),
		Strategies: layout.Names(),
	})
}

// Diagram renders the entry file in a single format.
func (h *Handler) Diagram(w http.ResponseWriter, r *http.Request) {
	opts, err := h.options(r)
	if err != nil {
		h.fail(w, err)
		return
	}
	format, err := render.ParseFormat(queryDefault(r, "format", string(render.FormatSVG)))
	if err != nil {
		h.fail(w, err)
		return
	}
	opts.Formats = []string{string(format)}

	result, err := h.Runner.Execute(r.Context(), opts)
	if err != nil {
		h.fail(w, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("X-Run-Id", result.RunID)
	w.Header().Set("X-Cache", cacheStatus(result.CacheInfo))
	_, _ = w.Write(result.Artifacts[string(format)])
}

// Model returns the extracted model of the entry file.
func (h *Handler) Model(w http.ResponseWriter, r *http.Request) {
	opts, err := h.options(r)
	if err != nil {
		h.fail(w, err)
		return
	}
	if err := opts.ValidateForParse(); err != nil {
		h.fail(w, err)
		return
	}
	m, err := h.Runner.Parse(r.Context(), opts)
	if err != nil {
		h.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := model.WriteJSON(m, w); err != nil {
		h.Logger.Error("write model", "err", err)
	}
}

// options reads the query parameters shared by every endpoint.
func (h *Handler) options(r *http.Request) (pipeline.Options, error) {
	q := r.URL.Query()
	entry := q.Get("entry")
	if err := errors.ValidatePath(entry); err != nil {
		return pipeline.Options{}, err
	}
	if err := errors.ValidateSourceFile(entry); err != nil {
		return pipeline.Options{}, err
	}

	opts := pipeline.Options{
		Entry:    filepath.Join(h.Root, filepath.FromSlash(entry)),
		Boundary: h.Root,
		Strategy: q.Get("strategy"),
		Logger:   h.Logger,
	}
	var err error
	if opts.Margin, err = queryFloat(r, "margin"); err != nil {
		return opts, err
	}
	if opts.Recenter, err = queryBool(r, "recenter", false); err != nil {
		return opts, err
	}
	if opts.Border, err = queryBool(r, "border", false); err != nil {
		return opts, err
	}
	if opts.Graphviz, err = queryBool(r, "graphviz", false); err != nil {
		return opts, err
	}
	if opts.Refresh, err = queryBool(r, "refresh", false); err != nil {
		return opts, err
	}
	imports, err := queryBool(r, "imports", true)
	if err != nil {
		return opts, err
	}
	opts.NoImports = !imports
	return opts, nil
}

type errorResponse struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	if status >= http.StatusInternalServerError {
		h.Logger.Error("request failed", "code", code, "err", err)
	} else {
		h.Logger.Debug("request rejected", "code", code, "err", err)
	}
	writeJSON(w, status, errorResponse{Code: code, Message: errors.UserMessage(err)})
}

// StatusFor maps an error to its HTTP status.
func StatusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidPath,
		errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidStrategy:
		return http.StatusBadRequest
	case errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errors.ErrCodeLineOutOfRange, errors.ErrCodeInvalidSource,
		errors.ErrCodeUnsupportedFile, errors.ErrCodeInheritanceCycle:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func cacheStatus(info pipeline.CacheInfo) string {
	switch {
	case info.RenderHit:
		return "hit"
	case info.LayoutHit:
		return "layout"
	default:
		return "miss"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func queryDefault(r *http.Request, key, def string) string {
	if v := r.URL.Query().Get(key); v != "" {
		return v
	}
	return def
}

func queryBool(r *http.Request, key string, def bool) (bool, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, errors.New(errors.ErrCodeInvalidInput, "query parameter %s: %q is not a boolean", key, v)
	}
	return b, nil
}

func queryFloat(r *http.Request, key string) (float64, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidInput, "query parameter %s: %q is not a number", key, v)
	}
	return f, nil
}
