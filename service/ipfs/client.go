// Package ipfs uploads content to a Pinata-backed content-addressed store.
package ipfs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/solanahub/mintkit/service/metrics"
)

// DefaultUploadURL is Pinata's pinning endpoint.
const DefaultUploadURL = "https://api.pinata.cloud/pinning/pinFileToIPFS"

// Client uploads binary content and returns a stable gateway locator.
// Uploads are the only step of the minting flow that is safe to auto-retry:
// a retried upload may mint a different content identifier, but the caller
// only ever observes the locator of the attempt that succeeded.
type Client struct {
	uploadURL   string
	gatewayURL  string
	credential  string
	httpClient  *http.Client
	logger      *slog.Logger
	metrics     *metrics.Metrics
	maxAttempts int
}

// NewClient creates an upload client. The credential is the Pinata JWT,
// resolved from configuration at process start — never compiled in.
// If httpClient is nil a 30s-timeout default is used; if logger is nil logs
// are discarded; if m is nil no metrics are recorded.
func NewClient(uploadURL, gatewayURL, credential string, maxAttempts int, httpClient *http.Client, m *metrics.Metrics, logger *slog.Logger) *Client {
	if uploadURL == "" {
		uploadURL = DefaultUploadURL
	}
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Client{
		uploadURL:   uploadURL,
		gatewayURL:  strings.TrimRight(gatewayURL, "/"),
		credential:  credential,
		httpClient:  httpClient,
		logger:      logger,
		metrics:     m,
		maxAttempts: maxAttempts,
	}
}

// pinResponse is the subset of Pinata's response we need.
type pinResponse struct {
	IpfsHash string `json:"IpfsHash"`
}

// Store uploads the payload and returns its public gateway locator.
// Transport errors and 5xx responses are retried with exponential backoff up
// to the configured attempt count; 4xx responses fail immediately since the
// payload will be rejected identically on every attempt.
func (c *Client) Store(ctx context.Context, payload []byte, contentType, name string) (string, error) {
	if len(payload) == 0 {
		return "", fmt.Errorf("empty payload")
	}

	var lastErr error
	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<uint(attempt-1)) * time.Second
			c.logger.WarnContext(ctx, "retrying upload",
				"name", name,
				"attempt", attempt+1,
				"backoff_seconds", backoff.Seconds(),
				"error", lastErr,
			)
			if c.metrics != nil {
				c.metrics.RecordUploadRetry()
			}
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		start := time.Now()
		locator, retryable, err := c.upload(ctx, payload, contentType, name)
		status := "success"
		if err != nil {
			status = "error"
		}
		if c.metrics != nil {
			c.metrics.RecordUpload(status, time.Since(start).Seconds())
		}
		if err == nil {
			c.logger.DebugContext(ctx, "content stored",
				"name", name,
				"locator", locator,
				"size_bytes", len(payload),
			)
			return locator, nil
		}
		lastErr = err
		if !retryable {
			break
		}
	}
	return "", lastErr
}

// upload performs one attempt. The second return value reports whether the
// failure class is worth retrying.
func (c *Client) upload(ctx context.Context, payload []byte, contentType, name string) (string, bool, error) {
	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", name)
	if err != nil {
		return "", false, fmt.Errorf("building multipart body: %w", err)
	}
	if _, err := part.Write(payload); err != nil {
		return "", false, fmt.Errorf("building multipart body: %w", err)
	}
	pinataMetadata, err := json.Marshal(map[string]string{"name": name})
	if err != nil {
		return "", false, fmt.Errorf("encoding pinataMetadata: %w", err)
	}
	if err := writer.WriteField("pinataMetadata", string(pinataMetadata)); err != nil {
		return "", false, fmt.Errorf("building multipart body: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", false, fmt.Errorf("building multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.uploadURL, body)
	if err != nil {
		return "", false, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.credential)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", true, fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		retryable := resp.StatusCode >= 500
		return "", retryable, fmt.Errorf("upload rejected with status %d: %s", resp.StatusCode, string(respBody))
	}

	var pin pinResponse
	if err := json.NewDecoder(resp.Body).Decode(&pin); err != nil {
		return "", false, fmt.Errorf("decoding upload response: %w", err)
	}
	if pin.IpfsHash == "" {
		return "", false, fmt.Errorf("upload response missing content identifier")
	}
	return fmt.Sprintf("%s/ipfs/%s", c.gatewayURL, pin.IpfsHash), false, nil
}
