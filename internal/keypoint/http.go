package keypoint

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/ironsheep/rudl-extract/internal/imaging"
)

// DefaultTimeout bounds one inference request.
const DefaultTimeout = 20 * time.Second

// HTTPDetector sends images to an inference service that runs the
// keypoint model.
//
// The image is posted as the multipart file field "file" (JPEG). When a
// model path is configured it is sent as the form field "model". The
// service answers with:
//
//	{"instances": [{"points": [[x, y], ...], "confidences": [c, ...]}]}
//
// Point coordinates are in the pixels of the posted image.
type HTTPDetector struct {
	url       string
	modelPath string
	client    *http.Client
}

// Option configures an HTTPDetector.
type Option func(*HTTPDetector)

// WithModelPath sets the model the service should load.
func WithModelPath(path string) Option {
	return func(d *HTTPDetector) { d.modelPath = path }
}

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) Option {
	return func(d *HTTPDetector) { d.client = c }
}

// NewHTTPDetector returns a detector posting to url.
func NewHTTPDetector(url string, opts ...Option) *HTTPDetector {
	d := &HTTPDetector{
		url:    url,
		client: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

type wireInstance struct {
	Points      [][]float64 `json:"points"`
	Confidences []float64   `json:"confidences"`
}

type wireResponse struct {
	Instances []wireInstance `json:"instances"`
}

// Detect implements Detector.
func (d *HTTPDetector) Detect(ctx context.Context, img image.Image) ([]Instance, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", "image.jpg")
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if err := imaging.EncodeJPEG(part, img, imaging.UploadJPEGQuality); err != nil {
		return nil, err
	}
	if d.modelPath != "" {
		if err := writer.WriteField("model", d.modelPath); err != nil {
			return nil, fmt.Errorf("write model field: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("inference failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var result wireResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	instances := make([]Instance, 0, len(result.Instances))
	for _, wi := range result.Instances {
		in := Instance{Confidences: wi.Confidences}
		for _, p := range wi.Points {
			if len(p) < 2 {
				return nil, fmt.Errorf("decode response: point has %d coordinates", len(p))
			}
			in.Points = append(in.Points, imaging.Point{X: p[0], Y: p[1]})
		}
		instances = append(instances, in)
	}
	return instances, nil
}

// Check verifies the service answers on its /health endpoint.
func (d *HTTPDetector) Check(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(d.url, "/")+"/health", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("keypoint service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("keypoint service unhealthy: %d", resp.StatusCode)
	}
	return nil
}
