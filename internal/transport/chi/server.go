package chi

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/gitdocs/docsearch/internal/domain/search/category"
	"github.com/gitdocs/docsearch/internal/domain/search/query"
	"github.com/gitdocs/docsearch/internal/domain/search/result"
	"github.com/gitdocs/docsearch/internal/logger"
	"github.com/gitdocs/docsearch/internal/metrics"
	healthuc "github.com/gitdocs/docsearch/internal/usecase/health"
	searchuc "github.com/gitdocs/docsearch/internal/usecase/search"
)

// Server implements ServerInterface.
type Server struct {
	search *searchuc.Service
	health *healthuc.Service
	logger *zap.Logger
}

var _ ServerInterface = (*Server)(nil)

// NewServer creates an HTTP API server.
func NewServer(search *searchuc.Service, health *healthuc.Service, logger *zap.Logger) *Server {
	return &Server{search: search, health: health, logger: logger}
}

// SearchAll handles GET /search.
func (s *Server) SearchAll(w http.ResponseWriter, r *http.Request, params SearchParams) {
	keywords, ok := requireKeywords(w, params)
	if !ok {
		return
	}

	envs := s.search.SearchAll(r.Context(), keywords, optionsFromParams(params))

	results := make([]EnvelopeResponse, len(envs))
	for i := range envs {
		results[i] = envelopeToResponse(&envs[i])
	}
	writeJSON(w, http.StatusOK, SearchAllResponse{Term: keywords, Results: results})
}

// SearchCategory handles GET /search/{category}.
func (s *Server) SearchCategory(w http.ResponseWriter, r *http.Request, label string, params SearchParams) {
	c, ok := category.Parse(label)
	if !ok {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeUnknownCategory, "unknown category "+label)
		return
	}
	keywords, ok := requireKeywords(w, params)
	if !ok {
		return
	}

	env, found := s.search.Search(r.Context(), keywords, c.TypeID(), optionsFromParams(params))
	if !found {
		logger.FromContextOr(r.Context(), s.logger).Debug("No matches",
			zap.String("category", c.Label()),
			zap.String("keywords", keywords),
		)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, envelopeToResponse(&env))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, HealthResponse{Status: string(report.Status), Checks: checks})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	metrics.Handler().ServeHTTP(w, r)
}

func requireKeywords(w http.ResponseWriter, params SearchParams) (string, bool) {
	if strings.TrimSpace(params.Q) == "" {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeValidationFailed, "q must not be empty")
		return "", false
	}
	return params.Q, true
}

func optionsFromParams(params SearchParams) query.Options {
	var opts query.Options
	if params.Lang != nil {
		opts.Lang = *params.Lang
	}
	return opts
}

func envelopeToResponse(e *result.Envelope) EnvelopeResponse {
	matches := make([]MatchResponse, len(e.Matches()))
	for i, m := range e.Matches() {
		item := MatchResponse{Name: m.Name(), Score: m.Score(), URL: m.URL()}
		if hl, ok := m.Highlight(); ok {
			item.Highlight = &hl
		}
		matches[i] = item
	}
	return EnvelopeResponse{Category: e.Category(), Term: e.Term(), Matches: matches}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorResponseCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// BadRequestHandler answers parameter binding failures.
func BadRequestHandler(w http.ResponseWriter, _ *http.Request, err error) {
	writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, err.Error())
}
