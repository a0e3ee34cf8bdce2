package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ironsheep/rudl-extract/internal/config"
	"github.com/ironsheep/rudl-extract/internal/keypoint"
	"github.com/ironsheep/rudl-extract/internal/logging"
	"github.com/ironsheep/rudl-extract/internal/ocr"
	"github.com/ironsheep/rudl-extract/internal/parse"
	"github.com/ironsheep/rudl-extract/internal/pipeline"
	"github.com/ironsheep/rudl-extract/internal/storage"
)

// app is everything a command needs, built from one configuration.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	engine   *ocr.Lazy
	store    *storage.Store
	index    *storage.Index
	pipeline *pipeline.Pipeline
}

// loadConfig reads and validates the configuration named by the global
// flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		cfg.LogLevel = "debug"
	}
	if format, _ := cmd.Flags().GetString("log-format"); format != "" {
		cfg.LogFormat = format
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	return cfg, nil
}

// newLogger logs to stderr; stdout carries results and protocol traffic.
func newLogger(cfg *config.Config) (*slog.Logger, error) {
	return logging.New(os.Stderr, logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Redact: !cfg.Debug,
	})
}

// newStore opens the upload store and, when enabled, its index.
func newStore(cfg *config.Config, logger *slog.Logger) (*storage.Store, *storage.Index, error) {
	opts := []storage.Option{storage.WithLogger(logger)}

	var ix *storage.Index
	if cfg.IndexUploads {
		var err error
		if ix, err = storage.OpenIndex(cfg.IndexPath); err != nil {
			return nil, nil, err
		}
		opts = append(opts, storage.WithIndex(ix))
	}
	return storage.New(cfg.UploadDir, cfg.MediaURL, cfg.StoreUploads, opts...), ix, nil
}

// nameDictionary loads the name dictionary. An unreadable dictionary is
// logged and treated as absent.
func nameDictionary(logger *slog.Logger, path string, load func(string) (*parse.Dictionary, error)) *parse.Dictionary {
	d, err := load(path)
	if err != nil {
		logger.Warn("name dictionary unavailable, names are not corrected", "path", path, "error", err)
		return nil
	}
	return d
}

// newApp wires the extraction pipeline. mutate, if set, adjusts the
// configuration before anything is built.
func newApp(cmd *cobra.Command, mutate func(*config.Config)) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if mutate != nil {
		mutate(cfg)
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	if cfg.ConfigFile != "" {
		logger.Debug("configuration loaded", "file", cfg.ConfigFile)
	}

	store, ix, err := newStore(cfg, logger)
	if err != nil {
		return nil, err
	}

	dict := nameDictionary(logger, cfg.NameDictionaryPath, parse.SharedDictionary)

	engine := ocr.NewLazy(func() (ocr.Engine, error) {
		return ocr.NewTesseract(ocr.TesseractConfig{
			Languages:      cfg.OCRLanguages,
			TessdataPrefix: cfg.TessdataPrefix,
			Clients:        cfg.Workers,
		})
	})

	opts := []pipeline.Option{
		pipeline.WithLogger(logger),
		pipeline.WithStore(store),
		pipeline.WithDebug(cfg.Debug),
		pipeline.WithDictionary(dict),
		pipeline.WithWorkers(cfg.Workers),
		pipeline.WithPolicy(cfg.Policy),
		pipeline.WithStatusPolicy(cfg.StatusPolicy()),
		pipeline.WithAnchors(cfg.UseAnchors),
		pipeline.WithMaxDimension(cfg.MaxImageDimension),
	}
	if cfg.KeypointsEnabled() {
		detector := keypoint.NewLazy(func() (keypoint.Detector, error) {
			return keypoint.NewHTTPDetector(cfg.KeypointModelURL,
				keypoint.WithModelPath(cfg.KeypointModelPath)), nil
		})
		opts = append(opts, pipeline.WithKeypoints(detector, cfg.KeypointMinConfidence))
	}

	return &app{
		cfg:      cfg,
		logger:   logger,
		engine:   engine,
		store:    store,
		index:    ix,
		pipeline: pipeline.New(engine, opts...),
	}, nil
}

// Close releases the engine and the index.
func (a *app) Close() error {
	var errs []error
	if a.engine != nil {
		errs = append(errs, a.engine.Close())
	}
	if a.index != nil {
		errs = append(errs, a.index.Close())
	}
	return errors.Join(errs...)
}

// signalContext is canceled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
