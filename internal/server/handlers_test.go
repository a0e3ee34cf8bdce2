package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ironsheep/rudl-extract/internal/ocr/ocrtest"
	"github.com/ironsheep/rudl-extract/internal/report"
	"github.com/ironsheep/rudl-extract/internal/storage"
)

// callTool sends a tools/call request and returns the response.
func callTool(t *testing.T, s *Server, name string, args map[string]any) *MCPResponse {
	t.Helper()
	params, err := json.Marshal(map[string]any{"name": name, "arguments": args})
	if err != nil {
		t.Fatal(err)
	}
	resp := s.handleRequest(context.Background(), &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  params,
	})
	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	return resp
}

// resultText returns the text content of a successful tool response.
func resultText(t *testing.T, resp *MCPResponse) string {
	t.Helper()
	if resp.Error != nil {
		t.Fatalf("unexpected error: %+v", resp.Error)
	}
	content := resp.Result.(map[string]any)["content"].([]map[string]any)
	if len(content) != 1 || content[0]["type"] != "text" {
		t.Fatalf("unexpected content: %v", content)
	}
	return content[0]["text"].(string)
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLicenseExtract_Sources(t *testing.T) {
	front := []byte("front-bytes")
	back := []byte("back-bytes")
	frontPath := writeFile(t, "front.jpg", front)
	encodedBack := base64.StdEncoding.EncodeToString(back)

	tests := []struct {
		name      string
		args      map[string]any
		wantFront string
		wantBack  string
	}{
		{"front path only", map[string]any{"front_path": frontPath}, "front-bytes", ""},
		{"path and base64", map[string]any{"front_path": frontPath, "back_base64": encodedBack}, "front-bytes", "back-bytes"},
		{"data url", map[string]any{"back_base64": "data:image/jpeg;base64," + encodedBack}, "", "back-bytes"},
		{"nothing", map[string]any{}, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, fx := newTestServer()
			resultText(t, callTool(t, s, ToolLicenseExtract, tt.args))

			if len(fx.calls) != 1 {
				t.Fatalf("extract calls: got %d", len(fx.calls))
			}
			if got := string(fx.calls[0][0]); got != tt.wantFront {
				t.Errorf("front: got %q, want %q", got, tt.wantFront)
			}
			if got := string(fx.calls[0][1]); got != tt.wantBack {
				t.Errorf("back: got %q, want %q", got, tt.wantBack)
			}
		})
	}
}

func TestLicenseExtract_Errors(t *testing.T) {
	tests := []struct {
		name string
		args map[string]any
	}{
		{"both sources", map[string]any{"front_path": "/a.jpg", "front_base64": "AAAA"}},
		{"missing file", map[string]any{"front_path": filepath.Join(t.TempDir(), "none.jpg")}},
		{"bad base64", map[string]any{"back_base64": "!!!"}},
		{"bad format", map[string]any{"format": "xml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, fx := newTestServer()
			resp := callTool(t, s, ToolLicenseExtract, tt.args)
			if resp.Error == nil || resp.Error.Code != -32000 {
				t.Fatalf("expected a tool error, got %+v", resp.Error)
			}
			if len(fx.calls) != 0 {
				t.Error("extraction should not run")
			}
		})
	}
}

func TestLicenseExtract_JSON(t *testing.T) {
	s, _ := newTestServer()
	text := resultText(t, callTool(t, s, ToolLicenseExtract, map[string]any{}))

	var resp report.Response
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		t.Fatalf("result is not a response: %v", err)
	}
	if resp.Status != report.StatusFailed || resp.RequestID != "ocr_0000000001" {
		t.Errorf("got %s %s", resp.Status, resp.RequestID)
	}
}

func TestLicenseExtract_Markdown(t *testing.T) {
	s, _ := newTestServer()
	text := resultText(t, callTool(t, s, ToolLicenseExtract, map[string]any{"format": "markdown"}))

	if strings.HasPrefix(strings.TrimSpace(text), "{") {
		t.Errorf("markdown result should not be JSON: %s", text)
	}
	if !strings.Contains(text, "ocr_0000000001") {
		t.Errorf("markdown should name the request: %s", text)
	}
}

func TestLicenseOverlay(t *testing.T) {
	s, fx := newTestServer()
	text := resultText(t, callTool(t, s, ToolLicenseOverlay, map[string]any{
		"role":   "back",
		"base64": base64.StdEncoding.EncodeToString([]byte("photo")),
	}))

	var got OverlayResult
	if err := json.Unmarshal([]byte(text), &got); err != nil {
		t.Fatal(err)
	}
	if got.Role != "back" || got.Width != 14 || got.Height != 9 || got.MimeType != "image/png" {
		t.Errorf("overlay: got %+v", got)
	}
	if _, err := base64.StdEncoding.DecodeString(got.Image); err != nil || got.Image == "" {
		t.Errorf("image is not base64: %v", err)
	}
	if len(fx.roles) != 1 || fx.roles[0] != "back" {
		t.Errorf("roles: got %v", fx.roles)
	}
}

func newStore(t *testing.T, indexed bool) *storage.Store {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "ocr_uploads")
	opts := []storage.Option{storage.WithLogger(quietLogger())}
	if indexed {
		ix, err := storage.OpenIndex(filepath.Join(t.TempDir(), "uploads.db"))
		if err != nil {
			t.Fatalf("OpenIndex failed: %v", err)
		}
		t.Cleanup(func() { ix.Close() })
		opts = append(opts, storage.WithIndex(ix))
	}
	return storage.New(dir, "/media/", true, opts...)
}

func TestUploadsCleanup(t *testing.T) {
	store := newStore(t, false)
	if err := os.MkdirAll(store.Dir(), 0o750); err != nil {
		t.Fatal(err)
	}
	old := filepath.Join(store.Dir(), "ocr_aaaaaaaaaa_front.jpg")
	fresh := filepath.Join(store.Dir(), "ocr_bbbbbbbbbb_front.jpg")
	for _, p := range []string{old, fresh} {
		if err := os.WriteFile(p, []byte("jpeg"), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	past := time.Now().Add(-100 * time.Hour)
	if err := os.Chtimes(old, past, past); err != nil {
		t.Fatal(err)
	}

	s, _ := newTestServer(WithStore(store))
	text := resultText(t, callTool(t, s, ToolUploadsCleanup, map[string]any{"ttl_hours": 72}))

	var got CleanupResult
	if err := json.Unmarshal([]byte(text), &got); err != nil {
		t.Fatal(err)
	}
	if got.Scanned != 2 || got.Deleted != 1 || got.BytesFreed != 4 {
		t.Errorf("report: got %+v", got.CleanupReport)
	}
	if !strings.Contains(got.Summary, "deleted 1") {
		t.Errorf("summary: got %q", got.Summary)
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Error("fresh upload should be kept")
	}
}

func TestUploadsCleanup_Errors(t *testing.T) {
	s, _ := newTestServer()
	if resp := callTool(t, s, ToolUploadsCleanup, nil); resp.Error == nil {
		t.Error("cleanup without a store should fail")
	}

	s, _ = newTestServer(WithStore(newStore(t, false)))
	if resp := callTool(t, s, ToolUploadsCleanup, map[string]any{"ttl_hours": -1}); resp.Error == nil {
		t.Error("negative ttl should fail")
	}
}

func TestUploadsList(t *testing.T) {
	store := newStore(t, true)
	s, _ := newTestServer(WithStore(store))

	text := resultText(t, callTool(t, s, ToolUploadsList, map[string]any{"request_id": "ocr_0000000001"}))

	var got struct {
		RequestID string           `json:"request_id"`
		Uploads   []storage.Upload `json:"uploads"`
	}
	if err := json.Unmarshal([]byte(text), &got); err != nil {
		t.Fatal(err)
	}
	if got.RequestID != "ocr_0000000001" || got.Uploads == nil || len(got.Uploads) != 0 {
		t.Errorf("got %+v", got)
	}
	if !strings.Contains(text, `"uploads": []`) {
		t.Errorf("uploads should render as an empty list: %s", text)
	}
}

func TestUploadsList_Errors(t *testing.T) {
	tests := []struct {
		name  string
		store *storage.Store
		args  map[string]any
	}{
		{"no store", nil, map[string]any{"request_id": "ocr_1"}},
		{"no index", newStore(t, false), map[string]any{"request_id": "ocr_1"}},
		{"no request id", newStore(t, true), map[string]any{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opts []Option
			if tt.store != nil {
				opts = append(opts, WithStore(tt.store))
			}
			s, _ := newTestServer(opts...)
			if resp := callTool(t, s, ToolUploadsList, tt.args); resp.Error == nil {
				t.Error("expected a tool error")
			}
		})
	}
}

func TestOCRInfo(t *testing.T) {
	engine := ocrtest.New()
	s, _ := newTestServer(WithEngine(engine), WithStore(newStore(t, true)))

	text := resultText(t, callTool(t, s, ToolOCRInfo, nil))

	var got InfoResult
	if err := json.Unmarshal([]byte(text), &got); err != nil {
		t.Fatal(err)
	}
	if got.Server != "rudl-extract" || got.Version != "1.2.3" {
		t.Errorf("server: got %s %s", got.Server, got.Version)
	}
	if got.Engine.Backend != "unknown" {
		t.Errorf("engine: got %+v", got.Engine)
	}
	if !got.Storage.Enabled || got.Storage.Indexed == nil || *got.Storage.Indexed != 0 {
		t.Errorf("storage: got %+v", got.Storage)
	}
}

func TestOCRInfo_EngineUnavailable(t *testing.T) {
	engine := ocrtest.New()
	engine.CheckErr = os.ErrNotExist
	s, _ := newTestServer(WithEngine(engine))

	text := resultText(t, callTool(t, s, ToolOCRInfo, nil))

	var got InfoResult
	if err := json.Unmarshal([]byte(text), &got); err != nil {
		t.Fatal(err)
	}
	if got.Engine.Available || got.Engine.Error == "" {
		t.Errorf("engine: got %+v", got.Engine)
	}
}

func TestExecuteTool_UnknownTool(t *testing.T) {
	s, _ := newTestServer()
	if _, err := s.executeTool(context.Background(), "image_load", nil); err == nil {
		t.Error("expected error for unknown tool")
	}
}

func TestHandleToolsCall_InvalidParams(t *testing.T) {
	s, _ := newTestServer()
	resp := s.handleRequest(context.Background(), &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  json.RawMessage(`"not an object"`),
	})
	if resp.Error == nil || resp.Error.Code != -32602 {
		t.Errorf("expected invalid params, got %+v", resp.Error)
	}
}
