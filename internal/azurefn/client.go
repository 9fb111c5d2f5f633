// Package azurefn calls the ingestion functions hosted on Azure Functions.
// Calls are never retried here; retry policy belongs to the caller.
package azurefn

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/iyunix/go-kbshell/internal/domain"
	"github.com/iyunix/go-kbshell/internal/logging"
)

const (
	FnGetIngestedData    = "GetIngestedData"
	FnGetDocumentDetails = "GetDocumentDetails"
	FnDeleteDocument     = "DeleteDocument"
)

var ErrEmptyDocumentID = errors.New("document id is required")

type Client struct {
	config *Config
	client *http.Client
	logger logging.Logger
}

func NewClient(config *Config, logger logging.Logger) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = &logging.NoOpLogger{}
	}
	return &Client{
		config: config,
		client: &http.Client{
			Timeout: config.Timeout,
		},
		logger: logger,
	}, nil
}

// Call invokes functionName with GET and decodes the response as a list of
// ingested documents. params are sent as query parameters.
func (c *Client) Call(ctx context.Context, functionName string, params url.Values) ([]domain.IngestedDataInfo, error) {
	var out []domain.IngestedDataInfo
	if err := c.do(ctx, http.MethodGet, functionName, params, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListIngestedData returns every document known to the ingestion API.
func (c *Client) ListIngestedData(ctx context.Context) ([]domain.IngestedDataInfo, error) {
	return c.Call(ctx, FnGetIngestedData, nil)
}

// GetDocumentDetails fetches a single document.
func (c *Client) GetDocumentDetails(ctx context.Context, id string) (*domain.IngestedDataInfo, error) {
	if id == "" {
		return nil, ErrEmptyDocumentID
	}
	var out domain.IngestedDataInfo
	if err := c.do(ctx, http.MethodGet, FnGetDocumentDetails+"/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteDocument removes a document. The response body is ignored.
func (c *Client) DeleteDocument(ctx context.Context, id string) error {
	if id == "" {
		return ErrEmptyDocumentID
	}
	return c.do(ctx, http.MethodDelete, FnDeleteDocument+"/"+url.PathEscape(id), nil, nil)
}

// FunctionURL builds base + "/api/" + name, adding params and the access key.
func (c *Client) FunctionURL(name string, params url.Values) string {
	u := strings.TrimRight(c.config.BaseURL, "/") + "/api/" + strings.TrimLeft(name, "/")

	q := url.Values{}
	for k, vs := range params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	if c.config.Key != "" {
		q.Set("code", c.config.Key)
	}
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

func (c *Client) do(ctx context.Context, method, name string, params url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.FunctionURL(name, params), nil)
	if err != nil {
		return &TransportError{Function: name, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("azure function call failed", "function", name, "method", method, "error", err)
		return &TransportError{Function: name, Err: err}
	}
	defer resp.Body.Close()

	c.logger.Debug("azure function call",
		"function", name,
		"method", method,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &RemoteCallError{
			Function:   name,
			StatusCode: resp.StatusCode,
			StatusText: statusText(resp),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &DecodeError{Function: name, Err: err}
	}
	return nil
}

// statusText strips the numeric prefix from resp.Status ("404 Not Found").
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}
