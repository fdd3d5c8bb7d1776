package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/moose/Algorithm-C3/pkg/buildinfo"
	"github.com/moose/Algorithm-C3/pkg/c3"
	apperrors "github.com/moose/Algorithm-C3/pkg/errors"
	"github.com/moose/Algorithm-C3/pkg/hierarchy"
	"github.com/moose/Algorithm-C3/pkg/observability"
	"github.com/moose/Algorithm-C3/pkg/pipeline"
)

// LinearizeRequest is the body of POST /v1/linearize.
type LinearizeRequest struct {
	Hierarchy *hierarchy.Hierarchy `json:"hierarchy"`
	Root      string               `json:"root"`
	Refresh   bool                 `json:"refresh,omitempty"`
}

// LinearizeResponse is the body of a successful POST /v1/linearize.
type LinearizeResponse struct {
	Root   string   `json:"root"`
	Order  []string `json:"order"`
	Cached bool     `json:"cached"`
}

// CheckRequest is the body of POST /v1/check.
type CheckRequest struct {
	Hierarchy *hierarchy.Hierarchy `json:"hierarchy"`
	Workers   int                  `json:"workers,omitempty"`
	Refresh   bool                 `json:"refresh,omitempty"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
		"commit":  buildinfo.Commit,
	})
}

func (s *Server) handleLinearize(w http.ResponseWriter, r *http.Request) {
	var req LinearizeRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	if req.Hierarchy == nil {
		writeError(w, r, http.StatusBadRequest, apperrors.New(apperrors.ErrCodeInvalidInput, "hierarchy is required"))
		return
	}
	if err := apperrors.ValidateNodeID(req.Root); err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	res, err := s.runner.Linearize(r.Context(), req.Hierarchy, req.Root, pipeline.Options{Refresh: req.Refresh})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, LinearizeResponse{Root: res.Root, Order: res.Order, Cached: res.Cached})
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	var req CheckRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	if req.Hierarchy == nil {
		writeError(w, r, http.StatusBadRequest, apperrors.New(apperrors.ErrCodeInvalidInput, "hierarchy is required"))
		return
	}

	opts := pipeline.Options{Workers: req.Workers, Refresh: req.Refresh}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		writeError(w, r, http.StatusBadRequest, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "invalid options"))
		return
	}
	opts.Logger = s.logger

	report, err := s.runner.Check(r.Context(), req.Hierarchy, opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// fail maps a runner error onto a status code and error body.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, c3.ErrConfiguration),
		errors.Is(err, c3.ErrInconsistentHierarchy),
		errors.Is(err, c3.ErrCyclicHierarchy):
		writeError(w, r, http.StatusUnprocessableEntity, err)
	case apperrors.Is(err, apperrors.ErrCodeInvalidInput):
		writeError(w, r, http.StatusBadRequest, err)
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, r, http.StatusServiceUnavailable, apperrors.Wrap(apperrors.ErrCodeTimeout, err, "request timed out"))
	default:
		s.logger.Error("request failed", "error", err, "request_id", RequestIDFromContext(r.Context()))
		writeError(w, r, http.StatusInternalServerError, err)
	}
}

// decode reads a JSON body of at most MaxBodyBytes into v.
func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "malformed request body")
	}
	return nil
}

func errNotFound(path string) error {
	return apperrors.New(apperrors.ErrCodeNotFound, "no route for %s", path)
}

// writeError renders err as an ErrorResponse. Linearization failures carry
// their structured fields in details.
func writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	classified := apperrors.Classify(err)
	body := ErrorResponse{
		Code:      string(apperrors.GetCode(classified)),
		Message:   apperrors.UserMessage(classified),
		Details:   details(err),
		RequestID: RequestIDFromContext(r.Context()),
	}
	if status >= http.StatusInternalServerError && body.Code == string(apperrors.ErrCodeInternal) {
		body.Message = "internal error"
	}
	observability.HTTP().OnError(r.Context(), r.Method, r.URL.Path, body.Code, err)
	writeJSON(w, status, body)
}

func details(err error) map[string]any {
	var (
		cfg *c3.ConfigError[string]
		inc *c3.InconsistentError[string]
		cyc *c3.CycleError[string]
	)
	switch {
	case errors.As(err, &cfg):
		return map[string]any{"node": cfg.Node, "error": err.Error()}
	case errors.As(err, &inc):
		return map[string]any{"root": inc.Root, "partial": inc.Partial, "blocked": inc.Blocked, "error": err.Error()}
	case errors.As(err, &cyc):
		return map[string]any{"node": cyc.Node, "path": cyc.Path, "error": err.Error()}
	}
	var ae *apperrors.Error
	if errors.As(err, &ae) && ae.Cause != nil {
		return map[string]any{"error": ae.Cause.Error()}
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
