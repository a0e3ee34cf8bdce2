package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/ironsheep/rudl-extract/internal/ocr"
	"github.com/ironsheep/rudl-extract/internal/report"
	"github.com/ironsheep/rudl-extract/internal/storage"
)

// Protocol constants.
const (
	ProtocolVersion = "2024-11-05"
	ServerName      = "rudl-extract"

	// MaxRequestBytes bounds one request line. Photos arrive base64
	// encoded, so lines are large.
	MaxRequestBytes = 64 << 20
)

// JSON-RPC error codes.
const (
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeToolFailed     = -32000
)

// Extractor runs license extraction. *pipeline.Pipeline implements it.
type Extractor interface {
	Extract(ctx context.Context, front, back []byte) report.Response
	Overlay(ctx context.Context, role string, data []byte) (*image.RGBA, error)
}

// Server handles MCP protocol communication
type Server struct {
	extractor Extractor
	store     *storage.Store
	engine    ocr.Engine
	logger    *slog.Logger
	version   string
	ttl       time.Duration

	in  io.Reader
	out io.Writer
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger. Protocol traffic never goes to it.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithStore exposes the upload store to the cleanup and listing tools.
func WithStore(st *storage.Store) Option {
	return func(s *Server) { s.store = st }
}

// WithEngine lets ocr_info describe the text recognition engine.
func WithEngine(e ocr.Engine) Option {
	return func(s *Server) { s.engine = e }
}

// WithVersion sets the version reported on initialize.
func WithVersion(v string) Option {
	return func(s *Server) { s.version = v }
}

// WithCleanupTTL sets the retention uploads_cleanup uses when the call
// does not name one.
func WithCleanupTTL(ttl time.Duration) Option {
	return func(s *Server) { s.ttl = ttl }
}

// WithIO replaces stdin and stdout.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(s *Server) { s.in, s.out = in, out }
}

// MCPRequest represents an incoming JSON-RPC request
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an outgoing JSON-RPC response
type MCPResponse struct {
	JSONRPC string    `json:"jsonrpc"`
	ID      any       `json:"id"`
	Result  any       `json:"result,omitempty"`
	Error   *MCPError `json:"error,omitempty"`
}

// MCPError represents a JSON-RPC error
type MCPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// New creates a server answering license_extract calls with extractor.
func New(extractor Extractor, opts ...Option) *Server {
	s := &Server{
		extractor: extractor,
		logger:    slog.Default(),
		version:   "dev",
		ttl:       storage.DefaultTTL,
		in:        os.Stdin,
		out:       os.Stdout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run reads one request per line until the input ends or ctx is done.
// Requests are handled in order.
func (s *Server) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(s.in)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxRequestBytes)

	encoder := json.NewEncoder(s.out)
	s.logger.Info("mcp server started", "version", s.version)

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
			s.logger.Warn("failed to parse request", "error", err)
			continue
		}

		resp := s.handleRequest(ctx, &req)
		if resp == nil {
			continue
		}
		if err := encoder.Encode(resp); err != nil {
			s.logger.Error("failed to encode response", "method", req.Method, "error", err)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}
	return nil
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(ctx context.Context, req *MCPRequest) *MCPResponse {
	s.logger.Debug("request", "method", req.Method, "id", req.ID)

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
			Result:  map[string]any{},
		}
	default:
		return s.errorResponse(req.ID, codeMethodNotFound, fmt.Sprintf("Method not found: %s", req.Method), "")
	}
}

// handleInitialize responds to the initialize request
func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]any{
			"protocolVersion": ProtocolVersion,
			"capabilities": map[string]any{
				"tools": map[string]any{},
			},
			"serverInfo": map[string]any{
				"name":    ServerName,
				"version": s.version,
			},
		},
	}
}
