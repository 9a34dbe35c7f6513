package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"

	"facadescan-backend/internal/detect"
)

const defaultMaxInflight = 1

// Client implements detect.Detector against an HTTP inference sidecar.
// The sidecar typically holds one loaded segmentation model on one
// device, so concurrent calls are gated by a weighted semaphore here
// rather than queued blindly at the sidecar.
type Client struct {
	baseURL    string
	httpClient *http.Client
	inflight   *semaphore.Weighted
}

// NewClient constructs a detector client for the given base URL.
func NewClient(baseURL string, maxInflight int) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("DETECTOR_URL is required")
	}
	if maxInflight <= 0 {
		maxInflight = defaultMaxInflight
	}
	timeout := 120 * time.Second
	if raw := strings.TrimSpace(os.Getenv("DETECTOR_TIMEOUT_SECONDS")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			timeout = time.Duration(parsed) * time.Second
		}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		inflight: semaphore.NewWeighted(int64(maxInflight)),
	}, nil
}

type detectResponse struct {
	Detections   []detect.Detection `json:"detections"`
	TimingMs     float64            `json:"timingMs"`
	ModelVersion string             `json:"modelVersion"`
	Device       string             `json:"device"`
	ImageMeta    detect.ImageMeta   `json:"imageMetadata"`
	Error        *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Detect posts the image to the sidecar and parses the detection list.
func (c *Client) Detect(ctx context.Context, image []byte, opts detect.Options) (detect.Result, error) {
	if len(image) == 0 {
		return detect.Result{}, fmt.Errorf("empty image payload")
	}

	if err := c.inflight.Acquire(ctx, 1); err != nil {
		return detect.Result{}, fmt.Errorf("acquire detector slot: %w", err)
	}
	defer c.inflight.Release(1)

	endpoint := c.baseURL + "/v1/detect"
	query := url.Values{}
	if strings.TrimSpace(opts.ModelSize) != "" {
		query.Set("modelSize", opts.ModelSize)
	}
	if opts.ConfidenceThreshold > 0 {
		query.Set("confidence", strconv.FormatFloat(opts.ConfidenceThreshold, 'f', -1, 64))
	}
	if encoded := query.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(image))
	if err != nil {
		return detect.Result{}, fmt.Errorf("build detector request: %w", err)
	}
	req.Header.Set("Content-Type", http.DetectContentType(image))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return detect.Result{}, fmt.Errorf("detector request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return detect.Result{}, fmt.Errorf("read detector response: %w", err)
	}

	var parsed detectResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return detect.Result{}, fmt.Errorf("decode detector response status=%d: %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		if parsed.Error != nil {
			return detect.Result{}, fmt.Errorf("detector error status=%d type=%s: %s", resp.StatusCode, parsed.Error.Type, parsed.Error.Message)
		}
		return detect.Result{}, fmt.Errorf("detector error status=%d", resp.StatusCode)
	}

	result := detect.Result{
		Detections:   parsed.Detections,
		TimingMs:     parsed.TimingMs,
		ModelVersion: parsed.ModelVersion,
		Device:       parsed.Device,
		ImageMeta:    parsed.ImageMeta,
	}

	// Highest-confidence detections first, matching the model server contract.
	sort.SliceStable(result.Detections, func(i, j int) bool {
		return result.Detections[i].Confidence > result.Detections[j].Confidence
	})

	return result, nil
}

var _ detect.Detector = (*Client)(nil)
