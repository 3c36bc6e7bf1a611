// internal/api/server.go
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"assistant-workers/internal/common/logger"
	classifyintent "assistant-workers/internal/workers/assistant/classify-intent"
	confirmoption "assistant-workers/internal/workers/assistant/confirm-option"
	extractrequest "assistant-workers/internal/workers/assistant/extract-request"
	planoptions "assistant-workers/internal/workers/assistant/plan-options"
)

const maxBodyBytes = 1 << 20

type Classifier interface {
	Execute(ctx context.Context, input *classifyintent.Input) (*classifyintent.Output, error)
}

type Extractor interface {
	Execute(ctx context.Context, input *extractrequest.Input) (*extractrequest.Output, error)
}

type Planner interface {
	Execute(ctx context.Context, input *planoptions.Input) (*planoptions.Output, error)
}

type Confirmer interface {
	Execute(ctx context.Context, input *confirmoption.Input) (*confirmoption.Output, error)
}

// ReadinessCheck reports whether one dependency is usable.
type ReadinessCheck func(ctx context.Context) error

// Handlers are the worker handlers exposed over HTTP. Nil entries leave the route unregistered.
type Handlers struct {
	Classify Classifier
	Extract  Extractor
	Plan     Planner
	Confirm  Confirmer
}

type Server struct {
	handlers Handlers
	checks   map[string]ReadinessCheck
	logger   logger.Logger
	router   *httprouter.Router
}

func NewServer(handlers Handlers, checks map[string]ReadinessCheck, log logger.Logger) *Server {
	s := &Server{
		handlers: handlers,
		checks:   checks,
		logger:   logger.OrNoOp(log).WithFields(map[string]interface{}{"component": "api"}),
		router:   httprouter.New(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.GET("/health", s.health)
	s.router.GET("/ready", s.ready)
	s.router.Handler(http.MethodGet, "/metrics", promhttp.Handler())

	if s.handlers.Classify != nil {
		s.router.POST("/api/v1/classify", s.classify)
	}
	if s.handlers.Extract != nil {
		s.router.POST("/api/v1/extract", s.extract)
	}
	if s.handlers.Plan != nil {
		s.router.POST("/api/v1/plan", s.plan)
	}
	if s.handlers.Confirm != nil {
		s.router.POST("/api/v1/confirm", s.confirm)
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// HTTPServer wraps the router with the timeouts used in production.
func (s *Server) HTTPServer(port int) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
	}
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	s.write(w, "health", http.StatusOK, healthResponse{Status: "ok"})
}

func (s *Server) ready(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := healthResponse{Status: "ready", Checks: make(map[string]string, len(s.checks))}
	status := http.StatusOK
	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			s.logger.Warn("Readiness check failed", map[string]interface{}{
				"check": name,
				"error": err.Error(),
			})
			resp.Checks[name] = "error"
			resp.Status = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}
	s.write(w, "ready", status, resp)
}

func (s *Server) classify(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var input classifyintent.Input
	if !s.decode(w, r, "classify", &input) {
		return
	}
	out, err := s.handlers.Classify.Execute(r.Context(), &input)
	s.respond(w, "classify", out, err)
}

func (s *Server) extract(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var input extractrequest.Input
	if !s.decode(w, r, "extract", &input) {
		return
	}
	out, err := s.handlers.Extract.Execute(r.Context(), &input)
	s.respond(w, "extract", out, err)
}

// plan answers 200 for every completed status, NO_OPTIONS included.
func (s *Server) plan(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var input planoptions.Input
	if !s.decode(w, r, "plan", &input) {
		return
	}
	out, err := s.handlers.Plan.Execute(r.Context(), &input)
	s.respond(w, "plan", out, err)
}

func (s *Server) confirm(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var input confirmoption.Input
	if !s.decode(w, r, "confirm", &input) {
		return
	}
	out, err := s.handlers.Confirm.Execute(r.Context(), &input)
	s.respond(w, "confirm", out, err)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, handler string, v interface{}) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		s.write(w, handler, http.StatusBadRequest, ErrorResponse{Error: ErrorBody{
			Code:    "INPUT_VALIDATION_FAILED",
			Message: "invalid request body: " + err.Error(),
		}})
		return false
	}
	return true
}

func (s *Server) respond(w http.ResponseWriter, handler string, out interface{}, err error) {
	if err != nil {
		status, code := errorStatus(err)
		if status >= http.StatusInternalServerError || status == http.StatusBadGateway {
			s.logger.Error("Request failed", map[string]interface{}{
				"handler": handler,
				"code":    code,
				"error":   err.Error(),
			})
		}
		s.write(w, handler, status, ErrorResponse{Error: ErrorBody{Code: code, Message: err.Error()}})
		return
	}
	s.write(w, handler, http.StatusOK, out)
}

func (s *Server) write(w http.ResponseWriter, handler string, status int, data interface{}) {
	if err := writeJSON(w, status, data); err != nil {
		s.logger.Error("failed to write JSON response", map[string]interface{}{
			"handler": handler,
			"error":   err.Error(),
		})
	}
}
