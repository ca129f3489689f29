// Package remote provides the thin transport to the plant server: one
// fetch-all call for bootstrap and one apply-batch call for sync. Both are
// fallible I/O boundaries with normalized error codes.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/plantboard/backend/internal/errors"
	"github.com/plantboard/backend/internal/logging"
	"github.com/plantboard/backend/internal/models"
)

// Service is the remote boundary the sync engine depends on. The HTTP
// implementation is Client; tests substitute fakes.
type Service interface {
	// FetchAll retrieves the full bootstrap dataset.
	FetchAll(ctx context.Context) (*models.Dataset, error)

	// ApplyBatch sends the whole queue snapshot for server-side
	// application. Success or failure only; there is no per-item result.
	ApplyBatch(ctx context.Context, items []models.QueueItem) error
}

// Client talks to the remote REST API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	log        *logging.Logger
}

// NewClient creates a Client for the given base URL. The timeout bounds
// each individual request.
func NewClient(baseURL string, timeout time.Duration, log *logging.Logger) *Client {
	if log == nil {
		log = logging.Get()
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		log:        log,
	}
}

// FetchAll implements Service via GET /api/data.
func (c *Client) FetchAll(ctx context.Context) (*models.Dataset, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/data", nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInternal, "build fetch-all request", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(errors.ErrTransport, "fetch-all request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, errors.New(errors.ErrServerRejected,
			fmt.Sprintf("fetch-all returned %d: %s", resp.StatusCode, body))
	}

	var data models.Dataset
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, errors.Wrap(errors.ErrServerRejected, "decode bootstrap dataset", err)
	}

	return &data, nil
}

// syncResponse is the body of POST /api/sync.
type syncResponse struct {
	Success bool `json:"success"`
}

// ApplyBatch implements Service via POST /api/sync. Transport failures and
// server rejections leave the queue intact either way; the distinct codes
// exist for observability.
func (c *Client) ApplyBatch(ctx context.Context, items []models.QueueItem) error {
	body, err := json.Marshal(items)
	if err != nil {
		return errors.Wrap(errors.ErrInternal, "marshal batch", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/sync", bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(errors.ErrInternal, "build apply-batch request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return errors.Wrap(errors.ErrSyncTimeout, "apply-batch timed out", err)
		}
		return errors.Wrap(errors.ErrTransport, "apply-batch request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return errors.New(errors.ErrServerRejected,
			fmt.Sprintf("apply-batch returned %d: %s", resp.StatusCode, respBody))
	}

	var result syncResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return errors.Wrap(errors.ErrServerRejected, "malformed apply-batch response", err)
	}
	if !result.Success {
		return errors.New(errors.ErrServerRejected, "apply-batch reported failure")
	}

	return nil
}
