package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/estia-cy/estia/internal/storage"
	"github.com/estia-cy/estia/pkg/types"
)

const agentsTable = "agents"

// BackendClient talks to the hosted backend's REST API. Requests are
// authenticated with the project access key and routed through a
// circuit breaker so a dead backend fails fast instead of stalling
// every page load.
type BackendClient struct {
	baseURL    string
	key        string
	httpClient *http.Client
	breaker    *CircuitBreaker
}

// NewBackendClient creates a client for the backend at baseURL,
// authenticating with key. The timeout bounds each individual request.
func NewBackendClient(baseURL, key string, timeout time.Duration) *BackendClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &BackendClient{
		baseURL: baseURL,
		key:     key,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		breaker: NewCircuitBreaker(),
	}
}

// Name identifies the source in logs and health output.
func (c *BackendClient) Name() string { return "backend" }

// Breaker exposes the circuit breaker for health reporting.
func (c *BackendClient) Breaker() *CircuitBreaker { return c.breaker }

// Fetch retrieves every agent record from the backend, ordered by
// listing count descending. An empty table is reported as
// ErrUnavailable so callers fall through to the next source.
func (c *BackendClient) Fetch(ctx context.Context) ([]types.RawAgent, error) {
	params := url.Values{}
	params.Set("select", "*")
	params.Set("order", "listings.desc")

	agents, err := c.query(ctx, params)
	if err != nil {
		return nil, err
	}
	if len(agents) == 0 {
		return nil, fmt.Errorf("%w: backend returned no records", ErrUnavailable)
	}
	return agents, nil
}

// GetByID retrieves a single record by its row identifier.
func (c *BackendClient) GetByID(ctx context.Context, id string) (*types.RawAgent, error) {
	params := url.Values{}
	params.Set("select", "*")
	params.Set("id", "eq."+id)
	params.Set("limit", "1")

	agents, err := c.query(ctx, params)
	if err != nil {
		return nil, err
	}
	if len(agents) == 0 {
		return nil, storage.ErrNotFound
	}
	return &agents[0], nil
}

// Insert POSTs a batch of records to the backend with upsert
// semantics. The import tool uses this to push batches of 50.
func (c *BackendClient) Insert(ctx context.Context, agents []types.RawAgent) error {
	if len(agents) == 0 {
		return nil
	}

	body, err := json.Marshal(agents)
	if err != nil {
		return fmt.Errorf("backend: failed to marshal batch: %w", err)
	}

	_, err = c.breaker.Execute(ctx, func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			c.endpoint(agentsTable), bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("backend: failed to create request: %w", err)
		}
		c.setHeaders(req)
		req.Header.Set("Prefer", "resolution=merge-duplicates")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("backend: insert request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return nil, fmt.Errorf("backend: insert returned status %d: %s", resp.StatusCode, detail)
		}
		return nil, nil
	})
	return err
}

// HealthCheck verifies the backend is reachable. Intended for use with
// a short context timeout (typically 2 seconds).
func (c *BackendClient) HealthCheck(ctx context.Context) error {
	params := url.Values{}
	params.Set("select", "id")
	params.Set("limit", "1")

	_, err := c.query(ctx, params)
	return err
}

func (c *BackendClient) query(ctx context.Context, params url.Values) ([]types.RawAgent, error) {
	result, err := c.breaker.Execute(ctx, func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet,
			c.endpoint(agentsTable)+"?"+params.Encode(), nil)
		if err != nil {
			return nil, fmt.Errorf("backend: failed to create request: %w", err)
		}
		c.setHeaders(req)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("backend: request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return nil, fmt.Errorf("backend: query returned status %d: %s", resp.StatusCode, detail)
		}

		var agents []types.RawAgent
		if err := json.NewDecoder(resp.Body).Decode(&agents); err != nil {
			return nil, fmt.Errorf("backend: failed to decode response: %w", err)
		}
		return agents, nil
	})
	if err != nil {
		if err == ErrCircuitOpen {
			log.Printf("sources: backend circuit open, skipping request")
		}
		return nil, err
	}
	return result.([]types.RawAgent), nil
}

func (c *BackendClient) endpoint(table string) string {
	return fmt.Sprintf("%s/rest/v1/%s", c.baseURL, table)
}

func (c *BackendClient) setHeaders(req *http.Request) {
	req.Header.Set("apikey", c.key)
	req.Header.Set("Authorization", "Bearer "+c.key)
	req.Header.Set("Content-Type", "application/json")
}
