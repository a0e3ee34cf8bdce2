package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ironsheep/rudl-extract/internal/config"
)

func runInit(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(append([]string{"init"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestInitCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	out, err := runInit(t, "-o", path)
	if err != nil {
		t.Fatalf("init failed: %v", err)
	}
	if !strings.Contains(out, path) {
		t.Errorf("output should name the file: %s", out)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, config.Template()) {
		t.Error("written file differs from the template")
	}

	// The written template loads as a configuration.
	cfg := config.NewConfig()
	if err := cfg.LoadFile(path); err != nil {
		t.Errorf("template does not load: %v", err)
	}
}

func TestInitCmd_Exists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("debug: true\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := runInit(t, "-o", path); err == nil {
		t.Fatal("init should refuse to overwrite")
	}
	if _, err := runInit(t, "-o", path, "-f"); err != nil {
		t.Fatalf("init -f failed: %v", err)
	}
	data, _ := os.ReadFile(path)
	if !bytes.Equal(data, config.Template()) {
		t.Error("file was not overwritten")
	}
}
