package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/aretw0/ticketflow"
	"github.com/aretw0/ticketflow/internal/logging"
	"github.com/aretw0/ticketflow/internal/presentation/graph"
	"github.com/aretw0/ticketflow/pkg/domain"
	"github.com/aretw0/ticketflow/pkg/ports"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes an Engine over HTTP.
type Server struct {
	Engine  ports.Engine
	Streams *StreamManager

	logger   *slog.Logger
	gatherer prometheus.Gatherer
	unwatch  func()
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithGatherer selects the registry served at /metrics
// (default: prometheus.DefaultGatherer).
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

// NewServer creates a Server for engine.
func NewServer(engine ports.Engine, opts ...Option) *Server {
	s := &Server{
		Engine:   engine,
		logger:   logging.NewNop(),
		gatherer: prometheus.DefaultGatherer,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams = NewStreamManager(s.logger)
	s.unwatch = engine.Watch(s.publish)
	return s
}

// Close stops forwarding engine changes to the event streams.
func (s *Server) Close() {
	s.unwatch()
}

// NewHandler creates the HTTP handler for the engine.
func NewHandler(engine ports.Engine, opts ...Option) http.Handler {
	return NewServer(engine, opts...).Routes()
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/", s.Index)
	r.Route("/api", func(r chi.Router) {
		r.Post("/step", s.Step)
		r.Post("/run", s.Run)
		r.Post("/reset", s.Reset)
		r.Get("/random", s.Random)
		r.Get("/automaton", s.Describe)
		r.Get("/graph", s.Graph)
		r.Get("/events", s.SubscribeEvents)
	})
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(rawSpec)
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+SessionHeader)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type stepRequest struct {
	Symbol string `json:"symbol"`
}

type runRequest struct {
	Sequence sequence `json:"sequence"`
}

// sequence accepts either "auth select" or ["auth", "select"].
type sequence []string

func (s *sequence) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*s = strings.Fields(text)
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("sequence must be a string or a list of strings")
	}
	*s = list
	return nil
}

// Step handles POST /api/step.
func (s *Server) Step(w http.ResponseWriter, r *http.Request) {
	var body stepRequest
	if err := decodeBody(r, &body); err != nil {
		s.reject(w, r, "Step", err)
		return
	}
	sid, err := resolveSession(w, r)
	if err != nil {
		s.reject(w, r, "Step", err)
		return
	}

	res, err := s.Engine.Step(r.Context(), sid, body.Symbol)
	if err != nil {
		s.reject(w, r, "Step", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Run handles POST /api/run.
func (s *Server) Run(w http.ResponseWriter, r *http.Request) {
	var body runRequest
	if err := decodeBody(r, &body); err != nil {
		s.reject(w, r, "Run", err)
		return
	}
	sid, err := resolveSession(w, r)
	if err != nil {
		s.reject(w, r, "Run", err)
		return
	}

	res, err := s.Engine.Run(r.Context(), sid, body.Sequence)
	if err != nil {
		s.reject(w, r, "Run", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Reset handles POST /api/reset.
func (s *Server) Reset(w http.ResponseWriter, r *http.Request) {
	sid, err := resolveSession(w, r)
	if err != nil {
		s.reject(w, r, "Reset", err)
		return
	}

	res, err := s.Engine.Reset(r.Context(), sid)
	if err != nil {
		s.reject(w, r, "Reset", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Random handles GET /api/random.
func (s *Server) Random(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Engine.PickRandomTrail())
}

// Describe handles GET /api/automaton.
func (s *Server) Describe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Engine.Describe())
}

// Graph handles GET /api/graph. The session trace is drawn as an overlay.
func (s *Server) Graph(w http.ResponseWriter, r *http.Request) {
	sid, err := resolveSession(w, r)
	if err != nil {
		s.reject(w, r, "Graph", err)
		return
	}
	snap, err := s.Engine.Snapshot(r.Context(), sid)
	if err != nil {
		s.reject(w, r, "Graph", err)
		return
	}

	var opts []graph.Option
	if withErrors, _ := strconv.ParseBool(r.URL.Query().Get("errors")); withErrors {
		opts = append(opts, graph.WithErrorEdges())
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, graph.GenerateMermaid(s.Engine.Table(), graph.OverlayFromTrace(snap.Trace), opts...))
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if doc, err := GetSwagger(); err == nil && doc.Info != nil {
		apiVersion = doc.Info.Version
	} else if err != nil {
		s.logger.Error("Failed to load OpenAPI spec", "error", err)
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"app":         "ticketflow-http",
		"version":     strings.TrimSpace(ticketflow.Version),
		"api_version": apiVersion,
	})
}

// SubscribeEvents handles GET /api/events (SSE).
// The first message carries the whole session; later ones carry diffs.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	sid := r.URL.Query().Get("session_id")
	var err error
	if sid == "" {
		sid, err = resolveSession(w, r)
	} else {
		sid, err = checkSession(sid)
	}
	if err != nil {
		s.reject(w, r, "SubscribeEvents", err)
		return
	}

	ch, cancel := s.Streams.Subscribe(sid)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")

	if snap, err := s.Engine.Snapshot(r.Context(), sid); err == nil {
		if payload, err := json.Marshal(domain.Diff(nil, snap)); err == nil {
			fmt.Fprintf(w, "data: %s\n\n", payload)
		}
	}
	flusher.Flush()
	s.logger.Info("SSE client subscribed", "session_id", sid)

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE client disconnected", "session_id", sid)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

// publish broadcasts the diff of a committed change to the session's
// subscribers. It runs under the session lock, so diffs go out in commit order.
func (s *Server) publish(_ context.Context, ev *domain.ChangeEvent) {
	if s.Streams.Subscribers(ev.SessionID) == 0 {
		return
	}
	diff := domain.Diff(ev.Before, ev.After)
	if diff == nil {
		return
	}
	payload, err := json.Marshal(diff)
	if err != nil {
		s.logger.Error("Diff encode failed", "error", err)
		return
	}
	s.Streams.Broadcast(ev.SessionID, string(payload))
}

var errBadBody = errors.New("invalid request body")

func decodeBody(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return fmt.Errorf("%w: %v", errBadBody, err)
}

// reject maps err to a status code and writes it as {"error": "..."}.
func (s *Server) reject(w http.ResponseWriter, r *http.Request, op string, err error) {
	reqID := middleware.GetReqID(r.Context())
	switch {
	case errors.Is(err, domain.ErrNoSymbol),
		errors.Is(err, errInvalidSession),
		errors.Is(err, errBadBody):
		s.logger.Warn(op+": request rejected", "error", err, "request_id", reqID)
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error(op+" failed", "error", err, "request_id", reqID)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
