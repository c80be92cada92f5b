package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultPath    = "/generate-filename"
	defaultTimeout = 10 * time.Second
	errorBodyLimit = 512
)

// HTTPClient POSTs each payload as JSON to the catalog service.
type HTTPClient struct {
	endpoint string
	client   *http.Client
}

// NewHTTPClient targets baseURL joined with path. A zero timeout means 10s.
func NewHTTPClient(baseURL, path string, timeout time.Duration) (*HTTPClient, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, fmt.Errorf("delivery base URL is empty")
	}
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid delivery base URL %q", baseURL)
	}
	if path == "" {
		path = DefaultPath
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTPClient{
		endpoint: strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(path, "/"),
		client: &http.Client{
			Transport: &Transport{
				Base: &http.Transport{
					Proxy:                 http.ProxyFromEnvironment,
					TLSHandshakeTimeout:   5 * time.Second,
					ResponseHeaderTimeout: timeout,
				},
				RetryMax: defaultRetryMax,
			},
			Timeout: timeout,
		},
	}, nil
}

// Endpoint is the full URL payloads are sent to.
func (c *HTTPClient) Endpoint() string { return c.endpoint }

func (c *HTTPClient) Deliver(ctx context.Context, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return &Error{Err: fmt.Errorf("encode payload: %w", err)}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return &Error{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return &Error{Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
	msg := strings.TrimSpace(string(snippet))
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return &Error{Status: resp.StatusCode, Err: fmt.Errorf("%w: %s", ErrStatus, msg)}
}

func msDuration(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
