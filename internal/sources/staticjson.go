package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/estia-cy/estia/pkg/types"
)

// StaticJSONSource fetches a plain JSON array of agent records from a
// static URL. It backs the directory when the primary backend is
// unconfigured or down, typically pointing at a file on a CDN.
type StaticJSONSource struct {
	url        string
	httpClient *http.Client
}

// NewStaticJSONSource creates a source reading from the given URL.
func NewStaticJSONSource(url string, timeout time.Duration) *StaticJSONSource {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &StaticJSONSource{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Name identifies the source in logs and health output.
func (s *StaticJSONSource) Name() string { return "static-json" }

// Fetch downloads and decodes the JSON array. Any failure, including an
// empty array, is reported as ErrUnavailable wrapped around the cause.
func (s *StaticJSONSource) Fetch(ctx context.Context) ([]types.RawAgent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: request failed: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d from %s", ErrUnavailable, resp.StatusCode, s.url)
	}

	var agents []types.RawAgent
	if err := json.NewDecoder(resp.Body).Decode(&agents); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrUnavailable, err)
	}
	if len(agents) == 0 {
		return nil, fmt.Errorf("%w: static JSON held no records", ErrUnavailable)
	}
	return agents, nil
}
