package main

import (
	"bytes"
	"encoding/json"
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ironsheep/rudl-extract/internal/report"
)

func TestParseExtractFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{"front", []string{"--front", "f.jpg"}, false},
		{"back only", []string{"-b", "b.jpg", "--format", "markdown"}, false},
		{"no photos", []string{"--format", "json"}, true},
		{"bad format", []string{"--front", "f.jpg", "--format", "xml"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewExtractCmd()
			if err := cmd.ParseFlags(tt.args); err != nil {
				t.Fatal(err)
			}
			_, err := parseExtractFlags(cmd)
			if (err != nil) != tt.wantErr {
				t.Errorf("error: got %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestReadPhoto(t *testing.T) {
	data, err := readPhoto("")
	if err != nil || data != nil {
		t.Errorf("empty path: got %v, %v", data, err)
	}

	path := filepath.Join(t.TempDir(), "front.jpg")
	if err := os.WriteFile(path, []byte("jpeg"), 0o600); err != nil {
		t.Fatal(err)
	}
	if data, err = readPhoto(path); err != nil || string(data) != "jpeg" {
		t.Errorf("got %q, %v", data, err)
	}
	if _, err := readPhoto(filepath.Join(t.TempDir(), "none.jpg")); err == nil {
		t.Error("missing file should fail")
	}
}

func TestWriteResponse(t *testing.T) {
	resp := report.Failure("ocr_0123456789", "No images provided.", nil, nil)

	var js bytes.Buffer
	if err := writeResponse(&js, resp, formatJSON); err != nil {
		t.Fatal(err)
	}
	var decoded report.Response
	if err := json.Unmarshal(js.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if decoded.RequestID != "ocr_0123456789" || decoded.Status != report.StatusFailed {
		t.Errorf("decoded: %+v", decoded)
	}

	var md bytes.Buffer
	if err := writeResponse(&md, resp, formatMarkdown); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(md.String(), "ocr_0123456789") || !strings.HasPrefix(md.String(), "#") {
		t.Errorf("markdown: %s", md.String())
	}
}

func TestWriteOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overlays", "front_overlay.png")
	if err := writeOverlay(path, image.NewRGBA(image.Rect(0, 0, 8, 4))); err != nil {
		t.Fatalf("writeOverlay failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Error("overlay is not a PNG")
	}
}

func TestExtractCmd_MissingPhoto(t *testing.T) {
	cfgPath, _ := writeConfig(t)
	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"extract", "--config", cfgPath, "--front", filepath.Join(t.TempDir(), "none.jpg")})

	if err := cmd.Execute(); err == nil || !strings.Contains(err.Error(), "failed to read photo") {
		t.Errorf("got %v", err)
	}
}
