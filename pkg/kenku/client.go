package kenku

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	DefaultHost    = "127.0.0.1"
	DefaultPort    = 3333
	DefaultTimeout = 5 * time.Second

	userAgent = "kenkudeck/1.0"
)

// Client issues requests against the Kenku FM remote API. It holds no state
// beyond the connection settings; caching lives in View.
type Client struct {
	baseURL *url.URL
	http    *http.Client
}

// NewClient builds a Client for http://{host}:{port}/v1/. A zero timeout
// selects DefaultTimeout; an expired request surfaces as ErrTransport.
func NewClient(host string, port int, timeout time.Duration) (*Client, error) {
	host = strings.TrimSpace(host)
	if host == "" {
		host = DefaultHost
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("invalid kenku port %d", port)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	base, err := url.Parse("http://" + net.JoinHostPort(host, strconv.Itoa(port)) + "/v1/")
	if err != nil {
		return nil, fmt.Errorf("parse kenku url: %w", err)
	}

	return &Client{
		baseURL: base,
		http:    &http.Client{Timeout: timeout},
	}, nil
}

// BaseURL returns the API root, e.g. http://127.0.0.1:3333/v1/.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// URL joins path segments onto the API root with "/".
func (c *Client) URL(path ...string) string {
	return c.baseURL.String() + strings.Join(path, "/")
}

// Query performs a GET and decodes the JSON body into a State.
func (c *Client) Query(ctx context.Context, path ...string) (State, error) {
	body, err := c.do(ctx, http.MethodGet, nil, path)
	if err != nil {
		return nil, err
	}

	state := State{}
	if len(body) == 0 {
		return state, nil
	}
	if err := json.Unmarshal(body, &state); err != nil {
		return nil, fmt.Errorf("decode %s: %w", strings.Join(path, "/"), err)
	}
	return state, nil
}

// Mutate performs a PUT with payload encoded as JSON. A nil payload sends no body.
func (c *Client) Mutate(ctx context.Context, payload any, path ...string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPut, payload, path)
}

// Post performs a POST without a body.
func (c *Client) Post(ctx context.Context, path ...string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, nil, path)
}

func (c *Client) do(ctx context.Context, method string, payload any, path []string) (json.RawMessage, error) {
	target := c.URL(path...)

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode payload: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", ErrTransport, method, target, err)
	}
	defer func() { _ = resp.Body.Close() }()

	log.Debug().
		Str("method", method).
		Str("url", target).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("Kenku request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RemoteError{Method: method, Path: strings.Join(path, "/"), Status: resp.StatusCode}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrTransport, target, err)
	}
	return raw, nil
}
