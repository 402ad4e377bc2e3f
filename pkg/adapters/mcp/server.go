package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	cloudify "github.com/NotMyFault/cloudify-plugin"
	"github.com/NotMyFault/cloudify-plugin/pkg/codec"
	"github.com/NotMyFault/cloudify-plugin/pkg/domain"
	"github.com/NotMyFault/cloudify-plugin/pkg/mapping"
)

// ShutdownTimeout bounds the graceful shutdown of the SSE transport.
const ShutdownTimeout = 5 * time.Second

// TransformResponse is the structured result of the transform tool.
type TransformResponse struct {
	Inputs   string   `json:"inputs" jsonschema_description:"The inputs document as canonical JSON text"`
	Resolved []string `json:"resolved" jsonschema_description:"Mapping keys present in the inputs document"`
	Omitted  []string `json:"omitted" jsonschema_description:"Mapping keys whose path did not resolve"`
}

// ValidateResponse is the structured result of the validate tool.
type ValidateResponse struct {
	Valid   bool `json:"valid" jsonschema_description:"Always true; invalid mappings fail the call"`
	Entries int  `json:"entries" jsonschema_description:"Number of entries in the mapping"`
}

type transformArgs struct {
	Outputs string `json:"outputs"`
	Mapping string `json:"mapping"`
}

type validateArgs struct {
	Mapping string `json:"mapping"`
}

// Engine defines the transform core exposed as MCP tools.
type Engine interface {
	Transform(ctx context.Context, outputs, spec *domain.Document) (*domain.Document, error)
}

// Server wraps the mapping engine and exposes it as an MCP server.
type Server struct {
	engine    Engine
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP server for engine. A nil logger falls back to slog.Default.
func NewServer(engine Engine, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		engine:    engine,
		logger:    logger,
		mcpServer: server.NewMCPServer("cfy-outputs-mcp", strings.TrimSpace(cloudify.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio serves JSON-RPC over in and out until ctx is cancelled or in is closed.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	return server.NewStdioServer(s.mcpServer).Listen(ctx, in, out)
}

// ServeSSE serves the SSE transport on ln until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, ln net.Listener) error {
	baseURL := "http://" + ln.Addr().String()
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	r := chi.NewRouter()
	r.Use(corsMiddleware)
	r.Handle("/sse", sseServer.SSEHandler())
	r.Handle("/message", sseServer.MessageHandler())

	// SSE streams run until their request context ends, so shutdown cancels the base context.
	baseCtx, cancelStreams := context.WithCancel(context.Background())
	defer cancelStreams()

	httpServer := &http.Server{
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "addr", ln.Addr().String())
		serverErrors <- httpServer.Serve(ln)
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()

		cancelStreams()
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
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	transformTool := mcp.NewTool("transform",
		mcp.WithDescription("Build an inputs document from an outputs document and a mapping. "+
			"Mapping values are dot-separated paths into the outputs; entries that do not resolve are left out."),
		mcp.WithString("outputs", mcp.Required(), mcp.Description("The outputs document as JSON or YAML text")),
		mcp.WithString("mapping", mcp.Required(), mcp.Description("The mapping as JSON or YAML text")),
		mcp.WithOutputSchema[TransformResponse](),
	)
	s.mcpServer.AddTool(transformTool, mcp.NewStructuredToolHandler(s.handleTransform))

	validateTool := mcp.NewTool("validate",
		mcp.WithDescription("Check that every mapping value is a well-formed path expression."),
		mcp.WithString("mapping", mcp.Required(), mcp.Description("The mapping as JSON or YAML text")),
		mcp.WithOutputSchema[ValidateResponse](),
	)
	s.mcpServer.AddTool(validateTool, mcp.NewStructuredToolHandler(s.handleValidate))
}

func (s *Server) handleTransform(ctx context.Context, _ mcp.CallToolRequest, args transformArgs) (TransformResponse, error) {
	outputs, err := codec.ParseFrom("outputs", []byte(args.Outputs))
	if err != nil {
		return TransformResponse{}, s.failed("transform", err)
	}
	spec, err := codec.ParseFrom("mapping", []byte(args.Mapping))
	if err != nil {
		return TransformResponse{}, s.failed("transform", err)
	}

	result, err := s.engine.Transform(ctx, outputs, spec)
	if err != nil {
		return TransformResponse{}, s.failed("transform", err)
	}
	data, err := codec.Marshal(result)
	if err != nil {
		return TransformResponse{}, s.failed("transform", err)
	}

	resp := TransformResponse{
		Inputs:   string(data),
		Resolved: domain.Keys(result),
		Omitted:  []string{},
	}
	for pair := spec.Oldest(); pair != nil; pair = pair.Next() {
		if _, ok := result.Get(pair.Key); !ok {
			resp.Omitted = append(resp.Omitted, pair.Key)
		}
	}
	return resp, nil
}

func (s *Server) handleValidate(_ context.Context, _ mcp.CallToolRequest, args validateArgs) (ValidateResponse, error) {
	spec, err := codec.ParseFrom("mapping", []byte(args.Mapping))
	if err != nil {
		return ValidateResponse{}, s.failed("validate", err)
	}
	if err := mapping.Validate(spec); err != nil {
		return ValidateResponse{}, s.failed("validate", err)
	}
	return ValidateResponse{Valid: true, Entries: spec.Len()}, nil
}

// failed prefixes err with its error class so callers can tell the cases apart.
func (s *Server) failed(tool string, err error) error {
	kind := domain.Kind(err)
	s.logger.Debug("MCP tool failed", "tool", tool, "kind", kind, "error", err)
	return fmt.Errorf("%s error: %w", kind, err)
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource("cfy://info", "Server information",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(map[string]string{
			"app":     "cfy-outputs",
			"version": strings.TrimSpace(cloudify.Version),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to encode info: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "cfy://info",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
