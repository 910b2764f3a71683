// Package api implements the jeffc conversion HTTP service.
//
// The service exposes the same pipeline the CLI runs, sharing its
// result cache through the pipeline.Runner:
//
//	POST /v1/convert?mode=hugr|mermaid|dot&compress=1
//	POST /v1/render?format=mermaid|dot|svg
//	GET  /healthz
//
// Request bodies are raw program containers. Responses carry the
// converted artifact with a mode-appropriate content type, or a JSON
// error body. Validation failures answer 422 with one entry per
// finding; undecodable containers answer 400.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/hugrlab/jeffc/pkg/buildinfo"
	"github.com/hugrlab/jeffc/pkg/graph"
	"github.com/hugrlab/jeffc/pkg/jeff"
	"github.com/hugrlab/jeffc/pkg/pipeline"
)

// maxBodySize bounds request bodies; containers are compact, so 32 MiB
// leaves generous headroom.
const maxBodySize = 32 << 20

// statusClientClosedRequest is the nginx convention for requests the
// client abandoned before the response was written.
const statusClientClosedRequest = 499

// convertModes are the formats /v1/convert can produce.
var convertModes = map[string]bool{
	pipeline.ModeHugr:    true,
	pipeline.ModeMermaid: true,
	pipeline.ModeDOT:     true,
}

// renderFormats are the formats /v1/render can produce.
var renderFormats = map[string]bool{
	pipeline.ModeMermaid: true,
	pipeline.ModeDOT:     true,
	pipeline.ModeSVG:     true,
}

// server holds the shared dependencies of all handlers.
type server struct {
	runner *pipeline.Runner
	logger *log.Logger
}

// NewHandler builds the service's HTTP handler around runner. The
// logger receives one structured line per request.
func NewHandler(runner *pipeline.Runner, logger *log.Logger) http.Handler {
	s := &server{runner: runner, logger: logger}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(requestLogger(logger))
	r.Use(recoverer(logger))

	r.Post("/v1/convert", s.handleConvert)
	r.Post("/v1/render", s.handleRender)
	r.Get("/healthz", s.handleHealth)

	return r
}

// =============================================================================
// Handlers
// =============================================================================

// handleConvert converts the container in the request body. The mode
// query parameter selects the artifact; compress=1 enables zstd for
// hugr envelopes.
func (s *server) handleConvert(w http.ResponseWriter, r *http.Request) {
	mode := r.URL.Query().Get("mode")
	if mode == "" {
		mode = pipeline.ModeHugr
	}
	if !convertModes[mode] {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:   "invalid_mode",
			Message: fmt.Sprintf("mode %q is not one of hugr, mermaid, dot", mode),
		})
		return
	}
	compress, _ := strconv.ParseBool(r.URL.Query().Get("compress"))

	s.convert(w, r, pipeline.Options{Mode: mode, Compress: compress})
}

// handleRender renders the container in the request body as a diagram.
func (s *server) handleRender(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.ModeMermaid
	}
	if !renderFormats[format] {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:   "invalid_format",
			Message: fmt.Sprintf("format %q is not one of mermaid, dot, svg", format),
		})
		return
	}

	s.convert(w, r, pipeline.Options{Mode: format})
}

// convert runs the pipeline for both endpoints and writes the artifact
// or the mapped error.
func (s *server) convert(w http.ResponseWriter, r *http.Request, opts pipeline.Options) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{
				Error:   "body_too_large",
				Message: fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit),
			})
			return
		}
		s.writeError(w, r, err)
		return
	}

	opts.Logger = s.logger
	opts.RequestID = requestIDFromContext(r.Context())

	result, err := s.runner.Convert(r.Context(), body, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", contentTypeFor(opts.Mode))
	if result.CacheHit {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	_, _ = w.Write(result.Output)
}

// handleHealth reports liveness and the running version.
func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:  "ok",
		Version: buildinfo.Version,
	})
}

// =============================================================================
// Responses
// =============================================================================

// errorResponse is the JSON body of every non-2xx answer.
type errorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message,omitempty"`
	Errors  []validationIssue `json:"errors,omitempty"`
}

// validationIssue is one finding in a 422 response.
type validationIssue struct {
	Kind string `json:"kind"`
	Msg  string `json:"msg"`
}

// healthResponse is the body of GET /healthz.
type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// writeError maps pipeline errors onto status codes: 400 for inputs
// that never became a graph, 422 for graphs that failed validation,
// 499 when the client went away, 500 otherwise.
func (s *server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		vf   *pipeline.ValidationFailed
		derr *jeff.DecodeError
		berr *graph.BuildError
	)
	switch {
	case errors.Is(err, context.Canceled) || r.Context().Err() != nil:
		w.WriteHeader(statusClientClosedRequest)

	case errors.As(err, &vf):
		issues := make([]validationIssue, len(vf.Errors))
		for i, ve := range vf.Errors {
			issues[i] = validationIssue{Kind: ve.Kind.String(), Msg: ve.Msg}
		}
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:  "validation_failed",
			Errors: issues,
		})

	case errors.As(err, &derr), errors.As(err, &berr):
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:   "invalid_container",
			Message: err.Error(),
		})

	default:
		s.logger.Error("conversion failed",
			"request_id", requestIDFromContext(r.Context()),
			"error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:   "internal",
			Message: "conversion failed",
		})
	}
}

// contentTypeFor returns the response content type for a pipeline mode.
func contentTypeFor(mode string) string {
	switch mode {
	case pipeline.ModeSVG:
		return "image/svg+xml"
	case pipeline.ModeMermaid, pipeline.ModeDOT:
		return "text/plain; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}

// writeJSON writes v as the JSON response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
