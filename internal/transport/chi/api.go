package chi

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// ErrorResponseCode is a machine-readable error code.
type ErrorResponseCode string

// Error codes.
const (
	ErrorResponseCodeBadRequest       ErrorResponseCode = "bad_request"
	ErrorResponseCodeValidationFailed ErrorResponseCode = "validation_failed"
	ErrorResponseCodeUnknownCategory  ErrorResponseCode = "unknown_category"
	ErrorResponseCodeUnauthorized     ErrorResponseCode = "unauthorized"
	ErrorResponseCodeInternalError    ErrorResponseCode = "internal_error"
)

// ErrorResponse is the JSON body of every non-2xx answer.
type ErrorResponse struct {
	Code    ErrorResponseCode `json:"code"`
	Message string            `json:"message"`
}

// MatchResponse is a single hit.
type MatchResponse struct {
	Name      string  `json:"name"`
	Score     float64 `json:"score"`
	Highlight *string `json:"highlight,omitempty"`
	URL       string  `json:"url"`
}

// EnvelopeResponse groups the hits of one category.
type EnvelopeResponse struct {
	Category string          `json:"category"`
	Term     string          `json:"term"`
	Matches  []MatchResponse `json:"matches"`
}

// SearchAllResponse is the answer of GET /search.
type SearchAllResponse struct {
	Term    string             `json:"term"`
	Results []EnvelopeResponse `json:"results"`
}

// HealthResponse is the answer of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// SearchParams are the query parameters shared by the search routes.
type SearchParams struct {
	Q    string  `form:"q" json:"q"`
	Lang *string `form:"lang,omitempty" json:"lang,omitempty"`
}

// ServerInterface is implemented by the API server.
type ServerInterface interface {
	// SearchAll handles GET /search.
	SearchAll(w http.ResponseWriter, r *http.Request, params SearchParams)
	// SearchCategory handles GET /search/{category}.
	SearchCategory(w http.ResponseWriter, r *http.Request, category string, params SearchParams)
	// HealthCheck handles GET /health.
	HealthCheck(w http.ResponseWriter, r *http.Request)
	// Metrics handles GET /metrics.
	Metrics(w http.ResponseWriter, r *http.Request)
}

// ChiServerOptions configures route registration.
type ChiServerOptions struct {
	BaseRouter       chi.Router
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// HandlerWithOptions registers the API routes on the base router.
func HandlerWithOptions(si ServerInterface, options ChiServerOptions) http.Handler {
	r := options.BaseRouter
	if r == nil {
		r = chi.NewRouter()
	}
	if options.ErrorHandlerFunc == nil {
		options.ErrorHandlerFunc = func(w http.ResponseWriter, _ *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
	}
	wrapper := serverInterfaceWrapper{handler: si, errorHandlerFunc: options.ErrorHandlerFunc}

	r.Get("/search", wrapper.SearchAll)
	r.Get("/search/{category}", wrapper.SearchCategory)
	r.Get("/health", wrapper.HealthCheck)
	r.Get("/metrics", wrapper.Metrics)
	return r
}

// serverInterfaceWrapper binds path and query parameters before dispatching.
type serverInterfaceWrapper struct {
	handler          ServerInterface
	errorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

func (w *serverInterfaceWrapper) SearchAll(rw http.ResponseWriter, r *http.Request) {
	params, err := bindSearchParams(r)
	if err != nil {
		w.errorHandlerFunc(rw, r, err)
		return
	}
	w.handler.SearchAll(rw, r, params)
}

func (w *serverInterfaceWrapper) SearchCategory(rw http.ResponseWriter, r *http.Request) {
	var category string
	err := runtime.BindStyledParameterWithOptions("simple", "category", chi.URLParam(r, "category"), &category,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		w.errorHandlerFunc(rw, r, fmt.Errorf("invalid format for parameter category: %w", err))
		return
	}

	params, err := bindSearchParams(r)
	if err != nil {
		w.errorHandlerFunc(rw, r, err)
		return
	}
	w.handler.SearchCategory(rw, r, category, params)
}

func (w *serverInterfaceWrapper) HealthCheck(rw http.ResponseWriter, r *http.Request) {
	w.handler.HealthCheck(rw, r)
}

func (w *serverInterfaceWrapper) Metrics(rw http.ResponseWriter, r *http.Request) {
	w.handler.Metrics(rw, r)
}

func bindSearchParams(r *http.Request) (SearchParams, error) {
	var params SearchParams
	query := r.URL.Query()

	if err := runtime.BindQueryParameter("form", true, true, "q", query, &params.Q); err != nil {
		return params, fmt.Errorf("invalid format for parameter q: %w", err)
	}
	if err := runtime.BindQueryParameter("form", true, false, "lang", query, &params.Lang); err != nil {
		return params, fmt.Errorf("invalid format for parameter lang: %w", err)
	}
	return params, nil
}
