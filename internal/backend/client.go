package backend

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/iyunix/go-kbshell/internal/logging"
)

// Status is the outcome of a backend health probe.
type Status struct {
	URL       string        `json:"url"`
	Healthy   bool          `json:"healthy"`
	Code      int           `json:"code,omitempty"`
	Error     string        `json:"error,omitempty"`
	LatencyMS int64         `json:"latencyMs"`
	Latency   time.Duration `json:"-"`
}

type Client struct {
	baseURL string
	client  *http.Client
	logger  logging.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger logging.Logger) *Client {
	if logger == nil {
		logger = &logging.NoOpLogger{}
	}
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// URL resolves endpoint against the backend base URL.
func (c *Client) URL(endpoint string) string {
	return JoinURL(c.baseURL, endpoint)
}

// Health probes GET /health. An unreachable backend is reported in the
// Status, not as an error; err is only set when the request cannot be built.
func (c *Client) Health(ctx context.Context) (Status, error) {
	st := Status{URL: c.URL("health")}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, st.URL, nil)
	if err != nil {
		return st, fmt.Errorf("building health request: %w", err)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	st.Latency = time.Since(start)
	st.LatencyMS = st.Latency.Milliseconds()
	if err != nil {
		c.logger.Warn("backend health probe failed", "url", st.URL, "error", err)
		st.Error = err.Error()
		return st, nil
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	st.Code = resp.StatusCode
	st.Healthy = resp.StatusCode >= 200 && resp.StatusCode < 300
	return st, nil
}
