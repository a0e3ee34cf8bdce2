package server

import (
	"context"
	"slices"
	"testing"
)

func TestGetToolDefinitions(t *testing.T) {
	var names []string
	for _, tool := range GetToolDefinitions() {
		names = append(names, tool.Name)
	}
	want := []string{"license_extract", "license_overlay", "uploads_cleanup", "uploads_list", "ocr_info"}
	if !slices.Equal(names, want) {
		t.Errorf("tools: got %v, want %v", names, want)
	}
}

func TestToolDefinitions_Structure(t *testing.T) {
	for _, tool := range GetToolDefinitions() {
		t.Run(tool.Name, func(t *testing.T) {
			if tool.Description == "" {
				t.Error("Tool description is empty")
			}
			if tool.InputSchema["type"] != "object" {
				t.Errorf("InputSchema type: got %v, want 'object'", tool.InputSchema["type"])
			}
			props, ok := tool.InputSchema["properties"].(map[string]any)
			if !ok {
				t.Fatal("InputSchema missing 'properties' field")
			}
			required, _ := tool.InputSchema["required"].([]string)
			for _, name := range required {
				if _, ok := props[name]; !ok {
					t.Errorf("required parameter %s has no property", name)
				}
			}
		})
	}
}

func TestToolDefinitions_ExtractFormats(t *testing.T) {
	tool := GetToolDefinitions()[0]
	props := tool.InputSchema["properties"].(map[string]any)
	format := props["format"].(map[string]any)

	if format["default"] != FormatJSON {
		t.Errorf("format default: got %v", format["default"])
	}
	if !slices.Equal(format["enum"].([]string), []string{"json", "markdown"}) {
		t.Errorf("format enum: got %v", format["enum"])
	}
	for _, p := range []string{"front_path", "front_base64", "back_path", "back_base64"} {
		if _, ok := props[p]; !ok {
			t.Errorf("missing property %s", p)
		}
	}
}

func TestHandleToolsList(t *testing.T) {
	s, _ := newTestServer()
	resp := s.handleToolsList(&MCPRequest{JSONRPC: "2.0", ID: 1, Method: "tools/list"})
	if resp.Error != nil {
		t.Fatalf("unexpected error: %+v", resp.Error)
	}
	tools := resp.Result.(map[string]any)["tools"].([]Tool)
	if len(tools) != len(GetToolDefinitions()) {
		t.Errorf("got %d tools", len(tools))
	}

	// tools/list and the routed request agree.
	routed := s.handleRequest(context.Background(), &MCPRequest{JSONRPC: "2.0", ID: 2, Method: "tools/list"})
	if len(routed.Result.(map[string]any)["tools"].([]Tool)) != len(tools) {
		t.Error("routed tools/list differs")
	}
}
