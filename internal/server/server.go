package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/ironsheep/shape-features-mcp/internal/config"
	"github.com/ironsheep/shape-features-mcp/internal/imaging"
	"github.com/ironsheep/shape-features-mcp/internal/logging"
	"github.com/ironsheep/shape-features-mcp/internal/shape"
)

// Server handles MCP protocol communication
type Server struct {
	cache    *imaging.ImageCache
	cfg      config.Config
	pipeline *shape.Pipeline
	base     zerolog.Logger
	log      zerolog.Logger
	version  string
	in       io.Reader
	out      io.Writer
}

// MCPRequest represents an incoming JSON-RPC request
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an outgoing JSON-RPC response
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents a JSON-RPC error
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Option customises a Server.
type Option func(*Server)

// WithLogger sets the logger. Protocol traffic is never written to it.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) {
		s.base = l
	}
}

// WithIO replaces stdin and stdout.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(s *Server) {
		s.in = in
		s.out = out
	}
}

// WithVersion sets the version reported during initialize.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.version = v
	}
}

// New creates a new MCP server instance
func New(cfg config.Config, opts ...Option) (*Server, error) {
	s := &Server{
		cache:   imaging.NewImageCache(),
		cfg:     cfg,
		base:    zerolog.Nop(),
		version: "dev",
		in:      os.Stdin,
		out:     os.Stdout,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = logging.Component(s.base, "server")

	p, err := s.newPipeline(cfg.Shape)
	if err != nil {
		return nil, err
	}
	s.pipeline = p
	return s, nil
}

// newPipeline builds a pipeline that shares the server's image cache.
func (s *Server) newPipeline(cfg shape.Config) (*shape.Pipeline, error) {
	return shape.New(cfg,
		shape.WithLogger(logging.Component(s.base, "pipeline")),
		shape.WithLoader(s.cache),
	)
}

// Run reads requests line by line until the input is exhausted or ctx is
// cancelled between requests.
func (s *Server) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(s.in)
	// Increase buffer size for large requests
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	encoder := json.NewEncoder(s.out)

	s.log.Info().Str("version", s.version).Msg("server started")
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.log.Warn().Err(err).Msg("failed to parse request")
			continue
		}

		resp := s.handleRequest(ctx, &req)
		if resp != nil {
			if err := encoder.Encode(resp); err != nil {
				s.log.Error().Err(err).Msg("failed to encode response")
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}
	s.log.Info().Msg("input closed")
	return nil
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(ctx context.Context, req *MCPRequest) *MCPResponse {
	s.log.Debug().Str("method", req.Method).Interface("id", req.ID).Msg("request")

	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		// Client acknowledgment, no response needed
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(ctx, req)
	case "ping":
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  map[string]interface{}{},
		}
	default:
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error: &MCPError{
				Code:    -32601,
				Message: fmt.Sprintf("Method not found: %s", req.Method),
			},
		}
	}
}

// handleInitialize responds to the initialize request
func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": "2024-11-05",
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    "shape-features-mcp",
				"version": s.version,
			},
		},
	}
}
