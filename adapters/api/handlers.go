package api

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strconv"

	"creditrisk/domain/core"
	"creditrisk/internal/errors"
	"creditrisk/internal/report"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// MetricsRequest is the body of POST /api/v1/metrics
type MetricsRequest struct {
	YTrue  []int     `json:"y_true"`
	YPred  []int     `json:"y_pred"`
	YProba []float64 `json:"y_proba"`
}

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "ok"})
}

func (s *Server) handleComputeMetrics(w http.ResponseWriter, r *http.Request) {
	var req MetricsRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			render.Status(r, http.StatusRequestEntityTooLarge)
			render.JSON(w, r, ErrorResponse{
				Code:  errors.CodeInvalidArgument,
				Error: "request body exceeds " + strconv.FormatInt(tooLarge.Limit, 10) + " bytes",
			})
			return
		}
		s.writeError(w, r, errors.InvalidArgument("malformed request body: %v", err))
		return
	}

	bundle, err := s.metrics.Compute(req.YTrue, req.YPred, req.YProba)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	render.JSON(w, r, bundle)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.writeError(w, r, errors.InvalidArgument("limit must be a non-negative integer, got %q", raw))
			return
		}
		limit = n
	}

	records, err := s.runs.List(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	render.JSON(w, r, records)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseRunID(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, errors.InvalidArgument("%v", err))
		return
	}

	record, err := s.runs.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	render.JSON(w, r, record)
}

func (s *Server) handleRunReport(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseRunID(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, errors.InvalidArgument("%v", err))
		return
	}
	format, err := report.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		s.writeError(w, r, errors.InvalidArgument("%v", err))
		return
	}

	record, err := s.runs.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if format == report.FormatHTML {
		render.HTML(w, r, string(report.HTML(record)))
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Write([]byte(report.Markdown(record)))
}

// writeError maps an error code to an HTTP status and writes {code, error}
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	status := statusFor(code)
	if status >= http.StatusInternalServerError {
		s.logger.Error("%s %s failed: %v", r.Method, r.URL.Path, err)
	}
	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Code: code, Error: err.Error()})
}

func statusFor(code string) int {
	switch code {
	case errors.CodeInvalidArgument, errors.CodeDegenerateInput, errors.CodeSchema:
		return http.StatusBadRequest
	case errors.CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
