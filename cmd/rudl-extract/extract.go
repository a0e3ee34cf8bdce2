package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ironsheep/rudl-extract/internal/config"
	"github.com/ironsheep/rudl-extract/internal/imaging"
	"github.com/ironsheep/rudl-extract/internal/pipeline"
	"github.com/ironsheep/rudl-extract/internal/report"
)

// Output formats of the extract command.
const (
	formatJSON     = "json"
	formatMarkdown = "markdown"
)

// errExtractionFailed is returned after a failed response was printed so
// the process exits non-zero.
var errExtractionFailed = errors.New("extraction failed")

// NewExtractCmd creates the extract command.
func NewExtractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract fields from license photos",
		Long: `Extract reads one license from a front photo, a back photo, or both, and
prints the result.

The exit status is 0 for "ok" and "partial" results and 1 for "failed".

Examples:
  # Front and back, JSON result
  rudl-extract extract --front front.jpg --back back.jpg

  # Human-readable report with raw region text
  rudl-extract extract --front front.jpg --format markdown --debug

  # Also write the aligned photos with the read regions outlined
  rudl-extract extract --front front.jpg --overlay ./overlays`,
		Args: cobra.NoArgs,
		RunE: runExtractCmd,
	}

	cmd.Flags().StringP("front", "f", "", "Front photo path")
	cmd.Flags().StringP("back", "b", "", "Back photo path")
	cmd.Flags().String("format", formatJSON, "Output format: json or markdown")
	cmd.Flags().BoolP("debug", "d", false, "Include raw region text and alignment metadata")
	cmd.Flags().String("overlay", "", "Directory to write region overlays to (front_overlay.png, back_overlay.png)")
	cmd.Flags().Bool("no-store", false, "Do not store the uploaded photos")

	return cmd
}

// extractOptions are the parsed flags of the extract command.
type extractOptions struct {
	front, back string
	format      string
	debug       bool
	overlay     string
	noStore     bool
}

func parseExtractFlags(cmd *cobra.Command) (extractOptions, error) {
	var o extractOptions
	var err error
	if o.front, err = cmd.Flags().GetString("front"); err != nil {
		return o, err
	}
	if o.back, err = cmd.Flags().GetString("back"); err != nil {
		return o, err
	}
	if o.format, err = cmd.Flags().GetString("format"); err != nil {
		return o, err
	}
	if o.debug, err = cmd.Flags().GetBool("debug"); err != nil {
		return o, err
	}
	if o.overlay, err = cmd.Flags().GetString("overlay"); err != nil {
		return o, err
	}
	if o.noStore, err = cmd.Flags().GetBool("no-store"); err != nil {
		return o, err
	}

	if o.front == "" && o.back == "" {
		return o, errors.New("at least one of --front and --back is required")
	}
	if o.format != formatJSON && o.format != formatMarkdown {
		return o, fmt.Errorf("unsupported format %q (use json or markdown)", o.format)
	}
	return o, nil
}

// readPhoto reads a photo path; an empty path is no photo.
func readPhoto(path string) ([]byte, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read photo: %w", err)
	}
	return data, nil
}

func runExtractCmd(cmd *cobra.Command, _ []string) error {
	o, err := parseExtractFlags(cmd)
	if err != nil {
		return err
	}
	front, err := readPhoto(o.front)
	if err != nil {
		return err
	}
	back, err := readPhoto(o.back)
	if err != nil {
		return err
	}

	a, err := newApp(cmd, func(cfg *config.Config) {
		if o.debug {
			cfg.Debug = true
		}
		if o.noStore {
			cfg.StoreUploads = false
		}
	})
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := signalContext()
	defer cancel()

	resp := a.pipeline.Extract(ctx, front, back)
	if err := writeResponse(cmd.OutOrStdout(), resp, o.format); err != nil {
		return err
	}

	if o.overlay != "" {
		sides := map[string][]byte{pipeline.RoleFront: front, pipeline.RoleBack: back}
		for _, role := range []string{pipeline.RoleFront, pipeline.RoleBack} {
			if len(sides[role]) == 0 {
				continue
			}
			img, err := a.pipeline.Overlay(ctx, role, sides[role])
			if err != nil {
				a.logger.Warn("overlay skipped", "role", role, "error", err)
				continue
			}
			path := filepath.Join(o.overlay, role+"_overlay.png")
			if err := writeOverlay(path, img); err != nil {
				return err
			}
			a.logger.Info("overlay written", "path", path)
		}
	}

	if resp.Status == report.StatusFailed {
		return errExtractionFailed
	}
	return nil
}

// writeResponse prints resp as indented JSON or as a Markdown report.
func writeResponse(w io.Writer, resp report.Response, format string) error {
	if format == formatMarkdown {
		return report.WriteMarkdown(w, resp)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(resp)
}

func writeOverlay(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create overlay directory: %w", err)
	}
	f, err := os.Create(path) //nolint:gosec // path is built from a user-chosen directory
	if err != nil {
		return fmt.Errorf("failed to create overlay: %w", err)
	}
	if err := imaging.EncodePNG(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write overlay: %w", err)
	}
	return f.Close()
}
