// Package mcp exposes the booking automaton as Model Context Protocol tools.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/ticketflow"
	"github.com/aretw0/ticketflow/internal/logging"
	"github.com/aretw0/ticketflow/internal/presentation/graph"
	"github.com/aretw0/ticketflow/pkg/domain"
	"github.com/aretw0/ticketflow/pkg/ports"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	// DefaultSessionID is used when a tool call names no session.
	DefaultSessionID = "mcp"

	automatonURI = "ticketflow://automaton"
	graphURI     = "ticketflow://graph"
)

// SessionArgs selects the session of a tool call.
type SessionArgs struct {
	SessionID string `json:"session_id,omitempty"`
}

type StepArgs struct {
	SessionArgs
	Symbol string `json:"symbol"`
}

type RunArgs struct {
	SessionArgs
	Sequence string `json:"sequence"`
}

type GraphArgs struct {
	SessionArgs
	ErrorEdges bool `json:"error_edges,omitempty"`
}

// GraphResponse carries a Mermaid flowchart.
type GraphResponse struct {
	Mermaid string `json:"mermaid" jsonschema_description:"Mermaid flowchart with the session trace highlighted"`
}

// Server wraps the Engine and exposes it as an MCP Server.
type Server struct {
	engine    ports.Engine
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the server logger. It must not write to Stdout when serving stdio.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// NewServer creates a new MCP Server instance.
func NewServer(engine ports.Engine, opts ...Option) *Server {
	s := &Server{
		engine:    engine,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("ticketflow-mcp", strings.TrimSpace(ticketflow.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer { return s.mcpServer }

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the SSE transport on port until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func sessionOption() mcp.ToolOption {
	return mcp.WithString("session_id", mcp.Description("Session to operate on (default: "+DefaultSessionID+")"))
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("step",
		mcp.WithDescription("Consume one input symbol in the session. Unknown symbols move the automaton to its error state."),
		sessionOption(),
		mcp.WithString("symbol", mcp.Required(), mcp.Description("Input symbol, e.g. auth")),
		mcp.WithOutputSchema[domain.StepResult](),
	), mcp.NewStructuredToolHandler(s.handleStep))

	s.mcpServer.AddTool(mcp.NewTool("run",
		mcp.WithDescription("Reset the session and consume a whole space separated sequence."),
		sessionOption(),
		mcp.WithString("sequence", mcp.Required(), mcp.Description("Symbols separated by spaces")),
		mcp.WithOutputSchema[domain.RunResult](),
	), mcp.NewStructuredToolHandler(s.handleRun))

	s.mcpServer.AddTool(mcp.NewTool("reset",
		mcp.WithDescription("Return the session to the start state."),
		sessionOption(),
		mcp.WithOutputSchema[domain.RunResult](),
	), mcp.NewStructuredToolHandler(s.handleReset))

	s.mcpServer.AddTool(mcp.NewTool("random_trail",
		mcp.WithDescription("Pick an example sequence with its expected verdict."),
		mcp.WithOutputSchema[domain.Trail](),
	), mcp.NewStructuredToolHandler(s.handleRandomTrail))

	s.mcpServer.AddTool(mcp.NewTool("describe",
		mcp.WithDescription("Describe the automaton: states, alphabet, start, accepting and sink states, legend."),
		mcp.WithOutputSchema[domain.Description](),
	), mcp.NewStructuredToolHandler(s.handleDescribe))

	s.mcpServer.AddTool(mcp.NewTool("graph",
		mcp.WithDescription("Render the automaton as a Mermaid flowchart with the session trace highlighted."),
		sessionOption(),
		mcp.WithBoolean("error_edges", mcp.Description("Also draw the moves into the error state")),
		mcp.WithOutputSchema[GraphResponse](),
	), mcp.NewStructuredToolHandler(s.handleGraph))
}

func sessionOf(args SessionArgs) string {
	if id := strings.TrimSpace(args.SessionID); id != "" {
		return id
	}
	return DefaultSessionID
}

func (s *Server) handleStep(ctx context.Context, _ mcp.CallToolRequest, args StepArgs) (domain.StepResult, error) {
	res, err := s.engine.Step(ctx, sessionOf(args.SessionArgs), args.Symbol)
	if err != nil {
		s.logger.Warn("MCP step rejected", "error", err, "size", len(args.Symbol))
		return domain.StepResult{}, err
	}
	return *res, nil
}

func (s *Server) handleRun(ctx context.Context, _ mcp.CallToolRequest, args RunArgs) (domain.RunResult, error) {
	res, err := s.engine.Run(ctx, sessionOf(args.SessionArgs), []string{args.Sequence})
	if err != nil {
		s.logger.Warn("MCP run rejected", "error", err)
		return domain.RunResult{}, err
	}
	return *res, nil
}

func (s *Server) handleReset(ctx context.Context, _ mcp.CallToolRequest, args SessionArgs) (domain.RunResult, error) {
	res, err := s.engine.Reset(ctx, sessionOf(args))
	if err != nil {
		return domain.RunResult{}, err
	}
	return *res, nil
}

func (s *Server) handleRandomTrail(context.Context, mcp.CallToolRequest, struct{}) (domain.Trail, error) {
	trail := s.engine.PickRandomTrail()
	if trail.Seq == "" {
		return domain.Trail{}, errors.New("the trail catalog is empty")
	}
	return trail, nil
}

func (s *Server) handleDescribe(context.Context, mcp.CallToolRequest, struct{}) (domain.Description, error) {
	return s.engine.Describe(), nil
}

func (s *Server) handleGraph(ctx context.Context, _ mcp.CallToolRequest, args GraphArgs) (GraphResponse, error) {
	snap, err := s.engine.Snapshot(ctx, sessionOf(args.SessionArgs))
	if err != nil {
		return GraphResponse{}, err
	}
	var opts []graph.Option
	if args.ErrorEdges {
		opts = append(opts, graph.WithErrorEdges())
	}
	return GraphResponse{
		Mermaid: graph.GenerateMermaid(s.engine.Table(), graph.OverlayFromTrace(snap.Trace), opts...),
	}, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(automatonURI, "Booking automaton",
		mcp.WithResourceDescription("States, alphabet and legend of the booking workflow"),
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		data, err := json.Marshal(s.engine.Describe())
		if err != nil {
			return nil, fmt.Errorf("failed to encode automaton: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      automatonURI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})

	s.mcpServer.AddResource(mcp.NewResource(graphURI, "Booking flowchart",
		mcp.WithResourceDescription("Mermaid flowchart of the booking workflow"),
		mcp.WithMIMEType("text/plain"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      graphURI,
				MIMEType: "text/plain",
				Text:     graph.GenerateMermaid(s.engine.Table(), nil),
			},
		}, nil
	})
}
