package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"github.com/ironsheep/rudl-extract/internal/extract"
	"github.com/ironsheep/rudl-extract/internal/imaging"
	"github.com/ironsheep/rudl-extract/internal/keypoint"
	"github.com/ironsheep/rudl-extract/internal/report"
	"github.com/ironsheep/rudl-extract/internal/storage"
)

// AppName names the XDG directories.
const AppName = "rudl-extract"

// Config holds every setting of the extraction service. It is built once
// by Load and passed down; nothing reads the environment afterwards.
type Config struct {
	// MaxImageDimension is the longest side an upload is processed at.
	MaxImageDimension int `yaml:"max_image_dimension"`

	// StoreUploads saves the aligned images under UploadDir.
	StoreUploads bool   `yaml:"store_uploads"`
	UploadDir    string `yaml:"upload_dir"`

	// MediaURL prefixes stored upload URLs.
	MediaURL string `yaml:"media_url"`

	// UploadTTL is how long stored uploads survive cleanup.
	UploadTTL time.Duration `yaml:"upload_ttl"`

	// IndexUploads records stored uploads in a SQLite database at IndexPath.
	IndexUploads bool   `yaml:"index_uploads"`
	IndexPath    string `yaml:"index_path"`

	// Debug includes raw region text and alignment metadata in responses
	// and turns off log redaction.
	Debug bool `yaml:"debug"`

	// UseAnchors calibrates the front template with printed field numbers.
	UseAnchors bool `yaml:"use_anchors"`

	// UseKeypoints tries corner keypoints before contour detection. It has
	// no effect without KeypointModelURL.
	UseKeypoints          bool    `yaml:"use_keypoints"`
	KeypointModelURL      string  `yaml:"keypoint_model_url"`
	KeypointModelPath     string  `yaml:"keypoint_model_path"`
	KeypointMinConfidence float64 `yaml:"keypoint_min_confidence"`

	// OCRLanguages are Tesseract language codes.
	OCRLanguages []string `yaml:"ocr_languages"`

	// TessdataPrefix overrides the Tesseract language data directory.
	TessdataPrefix string `yaml:"tessdata_prefix"`

	// NameDictionaryPath is an optional name frequency list used to correct
	// recognized names.
	NameDictionaryPath string `yaml:"name_dictionary_path"`

	// Workers is how many regions are read concurrently.
	Workers int `yaml:"workers"`

	// StatusThreshold is the confidence required fields need for "ok";
	// StatusThresholds overrides it per field.
	StatusThreshold  float64            `yaml:"status_threshold"`
	StatusThresholds map[string]float64 `yaml:"status_thresholds"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// Policy tunes region scoring and retries.
	Policy extract.Policy `yaml:"policy"`

	// ConfigFile is the file the configuration was read from, if any.
	ConfigFile string `yaml:"-"`
}

// NewConfig returns the defaults.
func NewConfig() *Config {
	return &Config{
		MaxImageDimension:     imaging.DefaultMaxDimension,
		StoreUploads:          true,
		UploadDir:             filepath.Join(DataDir(), storage.URLPrefix),
		MediaURL:              storage.DefaultMediaURL,
		UploadTTL:             storage.DefaultTTL,
		IndexUploads:          true,
		IndexPath:             filepath.Join(DataDir(), storage.DefaultIndexFile),
		UseAnchors:            true,
		UseKeypoints:          true,
		KeypointMinConfidence: keypoint.DefaultMinConfidence,
		OCRLanguages:          []string{"rus", "eng"},
		Workers:               1,
		StatusThreshold:       report.DefaultStatusThreshold,
		StatusThresholds:      map[string]float64{},
		LogLevel:              "info",
		LogFormat:             "text",
		Policy:                extract.DefaultPolicy(),
	}
}

// DataDir returns the XDG data directory of the application.
func DataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// StatusPolicy returns the status rules the configuration describes.
func (c *Config) StatusPolicy() report.StatusPolicy {
	p := report.DefaultStatusPolicy()
	p.DefaultThreshold = c.StatusThreshold
	for name, t := range c.StatusThresholds {
		p.Thresholds[name] = t
	}
	return p
}

// KeypointsEnabled reports whether the keypoint strategy should run.
func (c *Config) KeypointsEnabled() bool {
	return c.UseKeypoints && c.KeypointModelURL != ""
}

// Validate returns the first problem found, or nil.
func (c *Config) Validate() error {
	switch {
	case c.MaxImageDimension <= 0:
		return ErrInvalidMaxDimension
	case c.Workers < 1:
		return ErrInvalidWorkers
	case c.UploadTTL <= 0:
		return ErrInvalidTTL
	case c.StoreUploads && c.UploadDir == "":
		return ErrNoUploadDir
	case len(c.OCRLanguages) == 0:
		return ErrNoLanguages
	case !unit(c.KeypointMinConfidence), !unit(c.StatusThreshold):
		return ErrInvalidConfidence
	}
	for _, t := range c.StatusThresholds {
		if !unit(t) {
			return ErrInvalidConfidence
		}
	}
	return nil
}

func unit(v float64) bool {
	return v >= 0 && v <= 1
}
