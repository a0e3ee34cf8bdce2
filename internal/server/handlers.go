package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ironsheep/rudl-extract/internal/imaging"
	"github.com/ironsheep/rudl-extract/internal/ocr"
	"github.com/ironsheep/rudl-extract/internal/report"
	"github.com/ironsheep/rudl-extract/internal/storage"
)

// Result formats of license_extract.
const (
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
)

// ErrNoStore is returned by the storage tools when the server has no store.
var ErrNoStore = errors.New("upload storage is not configured")

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "license_extract").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// textResult is returned as is instead of being marshaled to JSON.
type textResult string

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
// A failed extraction is not an error: its response carries status "failed".
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
	}

	start := time.Now()
	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.logger.Warn("tool failed", "tool", params.Name, "error", err)
		return s.errorResponse(req.ID, codeToolFailed, "Tool execution failed", err.Error())
	}
	s.logger.Debug("tool done", "tool", params.Name, "elapsed", time.Since(start))

	text, ok := result.(textResult)
	if !ok {
		text = textResult(mustMarshalJSON(result))
	}
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]any{
			"content": []map[string]any{
				{
					"type": "text",
					"text": string(text),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (any, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	switch name {
	case ToolLicenseExtract:
		return s.handleLicenseExtract(ctx, args)
	case ToolLicenseOverlay:
		return s.handleLicenseOverlay(ctx, args)
	case ToolUploadsCleanup:
		return s.handleUploadsCleanup(ctx, args)
	case ToolUploadsList:
		return s.handleUploadsList(ctx, args)
	case ToolOCRInfo:
		return s.handleOCRInfo(ctx)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id any, code int, message, data string) *MCPResponse {
	e := &MCPError{Code: code, Message: message}
	if data != "" {
		e.Data = data
	}
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error:   e,
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// loadImage returns the bytes of an image given either as a path or as
// base64. Neither being set yields nil.
func loadImage(side, path, b64 string) ([]byte, error) {
	switch {
	case path != "" && b64 != "":
		return nil, fmt.Errorf("%s: give either a path or base64 data, not both", side)
	case path != "":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", side, err)
		}
		return data, nil
	case b64 != "":
		if i := strings.Index(b64, ";base64,"); i >= 0 && strings.HasPrefix(b64, "data:") {
			b64 = b64[i+len(";base64,"):]
		}
		data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(b64))
		if err != nil {
			return nil, fmt.Errorf("%s: invalid base64: %w", side, err)
		}
		return data, nil
	}
	return nil, nil
}

// === Extraction Handlers ===

type licenseExtractArgs struct {
	FrontPath   string `json:"front_path"`
	FrontBase64 string `json:"front_base64"`
	BackPath    string `json:"back_path"`
	BackBase64  string `json:"back_base64"`
	Format      string `json:"format"`
}

func (s *Server) handleLicenseExtract(ctx context.Context, args json.RawMessage) (any, error) {
	var a licenseExtractArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Format == "" {
		a.Format = FormatJSON
	}
	if a.Format != FormatJSON && a.Format != FormatMarkdown {
		return nil, fmt.Errorf("unsupported format %q", a.Format)
	}

	front, err := loadImage("front", a.FrontPath, a.FrontBase64)
	if err != nil {
		return nil, err
	}
	back, err := loadImage("back", a.BackPath, a.BackBase64)
	if err != nil {
		return nil, err
	}

	resp := s.extractor.Extract(ctx, front, back)
	if a.Format == FormatMarkdown {
		var buf bytes.Buffer
		if err := report.WriteMarkdown(&buf, resp); err != nil {
			return nil, err
		}
		return textResult(buf.String()), nil
	}
	return resp, nil
}

type licenseOverlayArgs struct {
	Role   string `json:"role"`
	Path   string `json:"path"`
	Base64 string `json:"base64"`
}

// OverlayResult is the license_overlay result.
type OverlayResult struct {
	Role     string `json:"role"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	MimeType string `json:"mime_type"`
	Image    string `json:"image"`
}

func (s *Server) handleLicenseOverlay(ctx context.Context, args json.RawMessage) (any, error) {
	var a licenseOverlayArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	data, err := loadImage(a.Role, a.Path, a.Base64)
	if err != nil {
		return nil, err
	}
	img, err := s.extractor.Overlay(ctx, a.Role, data)
	if err != nil {
		return nil, err
	}
	encoded, err := imaging.PNGBase64(img)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	return OverlayResult{
		Role:     a.Role,
		Width:    b.Dx(),
		Height:   b.Dy(),
		MimeType: "image/png",
		Image:    encoded,
	}, nil
}

// === Storage Handlers ===

type uploadsCleanupArgs struct {
	TTLHours *float64 `json:"ttl_hours"`
}

// CleanupResult is the uploads_cleanup result.
type CleanupResult struct {
	storage.CleanupReport
	Summary string `json:"summary"`
}

func (s *Server) handleUploadsCleanup(ctx context.Context, args json.RawMessage) (any, error) {
	if s.store == nil {
		return nil, ErrNoStore
	}
	var a uploadsCleanupArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	ttl := s.ttl
	if a.TTLHours != nil {
		if *a.TTLHours < 0 {
			return nil, fmt.Errorf("ttl_hours must not be negative, got %v", *a.TTLHours)
		}
		ttl = time.Duration(*a.TTLHours * float64(time.Hour))
	}

	rep, err := s.store.Cleanup(ctx, ttl)
	if err != nil {
		return nil, err
	}
	s.logger.Info("uploads cleaned", "scanned", rep.Scanned, "deleted", rep.Deleted, "bytes_freed", rep.BytesFreed)
	return CleanupResult{CleanupReport: rep, Summary: rep.String()}, nil
}

type uploadsListArgs struct {
	RequestID string `json:"request_id"`
}

func (s *Server) handleUploadsList(ctx context.Context, args json.RawMessage) (any, error) {
	if s.store == nil {
		return nil, ErrNoStore
	}
	var a uploadsListArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.RequestID == "" {
		return nil, errors.New("request_id is required")
	}
	uploads, err := s.store.Uploads(ctx, a.RequestID)
	if err != nil {
		return nil, err
	}
	if uploads == nil {
		uploads = []storage.Upload{}
	}
	return map[string]any{"request_id": a.RequestID, "uploads": uploads}, nil
}

// === Diagnostics ===

// StorageInfo describes the upload store in ocr_info.
type StorageInfo struct {
	Enabled bool   `json:"enabled"`
	Dir     string `json:"dir,omitempty"`
	Indexed *int   `json:"indexed_uploads,omitempty"`
}

// InfoResult is the ocr_info result.
type InfoResult struct {
	Server  string      `json:"server"`
	Version string      `json:"version"`
	Engine  ocr.Info    `json:"engine"`
	Storage StorageInfo `json:"storage"`
}

func (s *Server) handleOCRInfo(ctx context.Context) (any, error) {
	info := InfoResult{Server: ServerName, Version: s.version}

	if d, ok := s.engine.(ocr.Describer); ok {
		info.Engine = d.Describe()
	} else {
		info.Engine = ocr.Info{Backend: "unknown"}
	}
	if c, ok := s.engine.(ocr.Checker); ok {
		if err := c.Check(ctx); err != nil {
			info.Engine.Available = false
			info.Engine.Error = err.Error()
		}
	}

	if s.store != nil {
		info.Storage = StorageInfo{Enabled: s.store.Enabled(), Dir: s.store.Dir()}
		if ix := s.store.Index(); ix != nil {
			n, err := ix.Count(ctx)
			if err != nil {
				return nil, err
			}
			info.Storage.Indexed = &n
		}
	}
	return info, nil
}
