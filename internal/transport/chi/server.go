package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/homedex/internal/domain"
	"github.com/kailas-cloud/homedex/internal/domain/search/page"
	"github.com/kailas-cloud/homedex/internal/domain/search/refine"
	"github.com/kailas-cloud/homedex/internal/usecase/browse"
	healthuc "github.com/kailas-cloud/homedex/internal/usecase/health"
	"github.com/kailas-cloud/homedex/internal/version"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server exposes the browse controllers over the session API.
type Server struct {
	hub           *Hub
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(hub *Hub, health *healthuc.Service, logger *zap.Logger) *Server {
	s := &Server{
		hub:    hub,
		health: health,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrSessionNotFound, http.StatusNotFound, codeSessionNotFound),
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, codeInvalidQuery),
		sentinelHandler(domain.ErrInvalidFilter, http.StatusBadRequest, codeInvalidFilter),
		sentinelHandler(domain.ErrPageOutOfRange, http.StatusBadRequest, codePageOutOfRange),
		sentinelHandler(domain.ErrNoActiveSearch, http.StatusConflict, codeNoActiveSearch),
		sentinelHandler(domain.ErrRetryNotAllowed, http.StatusConflict, codeNothingToRetry),
		sentinelHandler(domain.ErrUpstream, http.StatusBadGateway, codeUpstreamUnavailable),
	}
	return s
}

// Mount attaches every route to the router.
func (s *Server) Mount(r chi.Router) {
	r.Get("/healthz", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Route("/v1/sessions", func(r chi.Router) {
		r.Post("/", s.CreateSession)
		r.Route("/{session}", func(r chi.Router) {
			r.Delete("/", s.DeleteSession)
			r.Get("/view", s.GetView)
			r.Post("/search", s.Search)
			r.Post("/page", s.Navigate)
			r.Post("/refine", s.Refine)
			r.Post("/retry", s.Retry)
			r.Get("/suggest", s.Suggest)
			r.Get("/filter-options", s.FilterOptions)
		})
	})
}

// CreateSession handles POST /v1/sessions. The body is optional; an
// explicit page_size overrides the server default for this session.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.PageSize < 0 || req.PageSize > page.MaxSize {
		writeError(w, http.StatusBadRequest, codeBadRequest,
			fmt.Sprintf("page_size must be between 1 and %d", page.MaxSize))
		return
	}

	id, svc := s.hub.Create(req.PageSize)
	writeJSON(w, http.StatusCreated, sessionResponse{
		SessionID: id,
		View:      viewToWire(svc.View()),
	})
}

// DeleteSession handles DELETE /v1/sessions/{session}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}
	if err := s.hub.Delete(id); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetView handles GET /v1/sessions/{session}/view.
func (s *Server) GetView(w http.ResponseWriter, r *http.Request) {
	svc, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, viewToWire(svc.View()))
}

// Search handles POST /v1/sessions/{session}/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	svc, ok := s.session(w, r)
	if !ok {
		return
	}

	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	view, err := svc.Search(r.Context(), req.Text, req.Filters)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewToWire(view))
}

// Navigate handles POST /v1/sessions/{session}/page. The action is
// "goto" (default) with a 1-based page, "next", or "previous".
func (s *Server) Navigate(w http.ResponseWriter, r *http.Request) {
	svc, ok := s.session(w, r)
	if !ok {
		return
	}

	var req pageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	var view browse.View
	var err error
	switch req.Action {
	case "", actionGoTo:
		view, err = svc.GoToPage(r.Context(), req.Page)
	case actionNext:
		view, err = svc.GoToNext(r.Context())
	case actionPrevious:
		view, err = svc.GoToPrevious(r.Context())
	default:
		writeError(w, http.StatusBadRequest, codeBadRequest,
			fmt.Sprintf("unknown page action %q", req.Action))
		return
	}
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewToWire(view))
}

// Refine handles POST /v1/sessions/{session}/refine. Filters apply to
// the cached records only; empty strings clear the matching filter.
func (s *Server) Refine(w http.ResponseWriter, r *http.Request) {
	svc, ok := s.session(w, r)
	if !ok {
		return
	}

	var req refineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	view, err := svc.SetFilters(req.Location, req.Agent, req.Bedrooms, req.ExactMatch)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewToWire(view))
}

// Retry handles POST /v1/sessions/{session}/retry.
func (s *Server) Retry(w http.ResponseWriter, r *http.Request) {
	svc, ok := s.session(w, r)
	if !ok {
		return
	}

	view, err := svc.Retry(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewToWire(view))
}

// Suggest handles GET /v1/sessions/{session}/suggest.
func (s *Server) Suggest(w http.ResponseWriter, r *http.Request) {
	svc, ok := s.session(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	var field, input string
	var limit int
	if err := runtime.BindQueryParameter("form", true, true, "field", q, &field); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "input", q, &input); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "limit", q, &limit); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}

	suggestions, err := svc.Suggest(field, input, limit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, suggestResponse{
		Field:       field,
		Input:       input,
		Suggestions: suggestions,
	})
}

// FilterOptions handles GET /v1/sessions/{session}/filter-options:
// the distinct cached values each client filter can take.
func (s *Server) FilterOptions(w http.ResponseWriter, r *http.Request) {
	svc, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, filterOptionsResponse{
		Locations:      svc.Locations(),
		Agents:         svc.Agents(),
		BedroomBuckets: refine.BedroomBuckets(),
	})
}

// HealthCheck handles GET /healthz.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status:  string(report.Status),
		Version: version.Version,
		Checks:  checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// sessionID binds and validates the session path parameter.
func (s *Server) sessionID(w http.ResponseWriter, r *http.Request) (string, bool) {
	var id string
	err := runtime.BindStyledParameterWithOptions("simple", "session", chi.URLParam(r, "session"), &id,
		runtime.BindStyledParameterOptions{
			ParamLocation: runtime.ParamLocationPath,
			Required:      true,
		})
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid session id: "+err.Error())
		return "", false
	}
	return id, true
}

// session resolves the session path parameter to its controller,
// writing the error response itself when it cannot.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*browse.Service, bool) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return nil, false
	}
	svc, err := s.hub.Get(id)
	if err != nil {
		s.handleDomainError(w, err)
		return nil, false
	}
	return svc, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code errorCode, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrSessionNotFound,
		domain.ErrInvalidQuery,
		domain.ErrInvalidFilter,
		domain.ErrPageOutOfRange,
		domain.ErrNoActiveSearch,
		domain.ErrRetryNotAllowed,
		domain.ErrStaleResponse,
		domain.ErrUpstream,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code errorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		// клиент ушёл, отвечать уже некому
		return
	}
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
