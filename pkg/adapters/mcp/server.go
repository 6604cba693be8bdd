package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/aretw0/flipper"
	"github.com/aretw0/flipper/pkg/domain"
	"github.com/aretw0/flipper/pkg/ports"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// defaultListLimit bounds list_runs when the caller does not ask for a size.
const defaultListLimit = 10

// RunResponse aligns with the HTTP API schema and provides a unified structure across adapters.
type RunResponse struct {
	Run     *domain.Run `json:"run,omitempty" jsonschema_description:"The terminal run record"`
	Skipped bool        `json:"skipped,omitempty" jsonschema_description:"True when a run was already in flight and nothing was started"`
}

// RunListResponse wraps the run history for the list_runs tool.
type RunListResponse struct {
	Runs []*domain.Run `json:"runs" jsonschema_description:"Run records, most recently started first"`
}

// Server exposes the flipper pipeline as an MCP Server so agent hosts can
// trigger runs and inspect their outcomes.
type Server struct {
	pipeline      ports.Pipeline
	store         ports.RunStore
	portfolioPath string
	mcpServer     *server.MCPServer
}

// NewServer creates a new MCP Server instance. portfolioPath points at the
// rendered markdown report inside the workspace data directory.
func NewServer(pipeline ports.Pipeline, store ports.RunStore, portfolioPath string) *Server {
	s := &Server{
		pipeline:      pipeline,
		store:         store,
		portfolioPath: portfolioPath,
		mcpServer:     server.NewMCPServer("flipper-mcp", strings.TrimSpace(flipper.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	// Start the SSE server
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)

	go func() {
		slog.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		// Create a timeout context for the graceful shutdown
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		fmt.Println("\nShutdown signal received, shutting down server...")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		slog.Debug("CORS Middleware", "method", r.Method, "path", r.URL.Path)
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With, Baggage, Sentry-Trace")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: trigger_run
	triggerTool := mcp.NewTool("trigger_run",
		mcp.WithDescription("Trigger a pipeline run now: provision, agent, publish. Skips when a run is already in flight."),
		mcp.WithOutputSchema[RunResponse](),
	)
	s.mcpServer.AddTool(triggerTool, mcp.NewStructuredToolHandler(s.handleTriggerRun))

	// TOOL: get_run
	getTool := mcp.NewTool("get_run",
		mcp.WithDescription("Get one run record by ID."),
		mcp.WithString("run_id", mcp.Required(), mcp.Description("Run ID")),
		mcp.WithOutputSchema[RunResponse](),
	)
	s.mcpServer.AddTool(getTool, mcp.NewStructuredToolHandler(s.handleGetRun))

	// TOOL: list_runs
	listTool := mcp.NewTool("list_runs",
		mcp.WithDescription("List recent runs, most recently started first."),
		mcp.WithNumber("limit", mcp.Description("Maximum number of records to return (default 10)")),
		mcp.WithOutputSchema[RunListResponse](),
	)
	s.mcpServer.AddTool(listTool, mcp.NewStructuredToolHandler(s.handleListRuns))

	// TOOL: get_portfolio
	s.mcpServer.AddTool(mcp.NewTool("get_portfolio",
		mcp.WithDescription("Get the latest published portfolio report as markdown."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		report, err := s.readPortfolio()
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("portfolio unavailable: %v", err)), nil
		}
		return mcp.NewToolResultText(report), nil
	})
}

// Handler methods for structured tools

func (s *Server) handleTriggerRun(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (RunResponse, error) {
	run, err := s.pipeline.Execute(ctx, domain.TriggerManual)
	if errors.Is(err, domain.ErrRunInProgress) {
		slog.Info("MCP TriggerRun: skipped, a run is already in flight")
		return RunResponse{Skipped: true}, nil
	}
	if err != nil && run == nil {
		return RunResponse{}, fmt.Errorf("run failed: %w", err)
	}
	if err != nil {
		// The run record carries the failure; surface it to the host as data.
		slog.Error("MCP TriggerRun: run failed", "run_id", run.ID, "error", err)
	}

	return RunResponse{Run: run}, nil
}

func (s *Server) handleGetRun(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (RunResponse, error) {
	id, _ := args["run_id"].(string)
	if id == "" {
		return RunResponse{}, errors.New("run_id is required")
	}

	run, err := s.store.Load(ctx, id)
	if err != nil {
		return RunResponse{}, fmt.Errorf("load failed: %w", err)
	}

	return RunResponse{Run: run}, nil
}

func (s *Server) handleListRuns(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (RunListResponse, error) {
	limit := defaultListLimit
	if v, ok := args["limit"].(float64); ok && v > 0 {
		limit = int(v)
	}

	runs, err := s.store.List(ctx, limit)
	if err != nil {
		return RunListResponse{}, fmt.Errorf("list failed: %w", err)
	}

	return RunListResponse{Runs: runs}, nil
}

func (s *Server) readPortfolio() (string, error) {
	data, err := os.ReadFile(s.portfolioPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("no portfolio has been published yet at %s", s.portfolioPath)
		}
		return "", err
	}
	return string(data), nil
}

func (s *Server) registerResources() {
	// EXPOSE: flipper://portfolio
	s.mcpServer.AddResource(mcp.NewResource("flipper://portfolio", "Latest Portfolio Report",
		mcp.WithMIMEType("text/markdown"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		report, err := s.readPortfolio()
		if err != nil {
			return nil, fmt.Errorf("failed to read portfolio: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "flipper://portfolio",
				MIMEType: "text/markdown",
				Text:     report,
			},
		}, nil
	})
}
