package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the configuration file looked for in the working
// directory.
const DefaultConfigFile = ".rudl-extract.yaml"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "RUDL_"

//go:embed template.yaml
var template []byte

// Template returns the commented configuration file written by init.
func Template() []byte {
	return append([]byte(nil), template...)
}

// Load builds the configuration from the defaults, the configuration file,
// a .env file in the working directory, and RUDL_* environment variables,
// each overriding the last.
//
// An explicit path that does not exist is ErrConfigNotFound; when no path
// is given a missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := NewConfig()

	found := FindConfigFile(path)
	if path != "" && found == "" {
		return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
	}
	if found != "" {
		if err := cfg.LoadFile(found); err != nil {
			return nil, err
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FindConfigFile searches for the configuration file in this order:
//  1. path, if given
//  2. DefaultConfigFile in the working directory
//  3. config.yaml in the XDG config directory
//
// Returns "" when nothing exists.
func FindConfigFile(path string) string {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return path
		}
		return ""
	}

	if cwd, err := os.Getwd(); err == nil {
		p := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	p := filepath.Join(xdg.ConfigHome, AppName, "config.yaml")
	if _, err := os.Stat(p); err == nil {
		return p
	}
	return ""
}

// LoadFile overlays the YAML file at path onto c. Keys absent from the
// file keep their current values.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // user-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	c.ConfigFile = path
	return nil
}

// ApplyEnv overlays RUDL_* variables found through lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	e := envReader{lookup: lookup}

	e.setInt("MAX_IMAGE_DIMENSION", &c.MaxImageDimension)
	e.setBool("STORE_UPLOADS", &c.StoreUploads)
	e.setString("UPLOAD_DIR", &c.UploadDir)
	e.setString("MEDIA_URL", &c.MediaURL)
	e.setHours("UPLOAD_TTL_HOURS", &c.UploadTTL)
	e.setBool("INDEX_UPLOADS", &c.IndexUploads)
	e.setString("INDEX_PATH", &c.IndexPath)
	e.setBool("DEBUG", &c.Debug)
	e.setBool("USE_ANCHORS", &c.UseAnchors)
	e.setBool("USE_KEYPOINTS", &c.UseKeypoints)
	e.setString("KEYPOINT_MODEL_URL", &c.KeypointModelURL)
	e.setString("KEYPOINT_MODEL_PATH", &c.KeypointModelPath)
	e.setFloat("KEYPOINT_MIN_CONFIDENCE", &c.KeypointMinConfidence)
	e.setList("OCR_LANGUAGES", &c.OCRLanguages)
	e.setString("TESSDATA_PREFIX", &c.TessdataPrefix)
	e.setString("NAME_DICTIONARY_PATH", &c.NameDictionaryPath)
	e.setInt("WORKERS", &c.Workers)
	e.setFloat("STATUS_THRESHOLD", &c.StatusThreshold)
	e.setString("LOG_LEVEL", &c.LogLevel)
	e.setString("LOG_FORMAT", &c.LogFormat)

	return e.err
}

// envReader parses variables and keeps the first error.
type envReader struct {
	lookup func(string) (string, bool)
	err    error
}

func (e *envReader) get(key string) (string, bool) {
	if e.err != nil {
		return "", false
	}
	v, ok := e.lookup(EnvPrefix + key)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(v), true
}

func (e *envReader) fail(key, value string, err error) {
	e.err = fmt.Errorf("%w: %s%s=%q: %v", ErrInvalidEnv, EnvPrefix, key, value, err)
}

func (e *envReader) setString(key string, dst *string) {
	if v, ok := e.get(key); ok {
		*dst = v
	}
}

func (e *envReader) setBool(key string, dst *bool) {
	v, ok := e.get(key)
	if !ok {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.fail(key, v, err)
		return
	}
	*dst = b
}

func (e *envReader) setInt(key string, dst *int) {
	v, ok := e.get(key)
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.fail(key, v, err)
		return
	}
	*dst = n
}

func (e *envReader) setFloat(key string, dst *float64) {
	v, ok := e.get(key)
	if !ok {
		return
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		e.fail(key, v, err)
		return
	}
	*dst = f
}

func (e *envReader) setHours(key string, dst *time.Duration) {
	v, ok := e.get(key)
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.fail(key, v, err)
		return
	}
	*dst = time.Duration(n) * time.Hour
}

func (e *envReader) setList(key string, dst *[]string) {
	v, ok := e.get(key)
	if !ok {
		return
	}
	*dst = strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == '+' || r == ' ' })
}
