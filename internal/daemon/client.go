package daemon

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/theirongolddev/subtrackr/internal/pipeline"
)

const (
	requestTimeout = 5 * time.Second
	maxBodySize    = 1 << 20 // 1 MB
)

var (
	// ErrNotFound indicates the daemon does not know the subscription.
	ErrNotFound = errors.New("daemon: subscription not found")
	// ErrConflict indicates the daemon refused a status change.
	ErrConflict = errors.New("daemon: status change not allowed")
	// ErrUnavailable indicates the daemon has no snapshot to serve yet.
	ErrUnavailable = errors.New("daemon: snapshot unavailable")
)

// Client talks to a running daemon over its HTTP API.
type Client struct {
	base string
	http *http.Client
}

// NewClient creates a client for the daemon listening on addr
// ("host:port" or a full http URL). Returns nil if addr is empty.
func NewClient(addr string) *Client {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil
	}
	if !strings.HasPrefix(addr, "http://") && !strings.HasPrefix(addr, "https://") {
		addr = "http://" + addr
	}
	return &Client{
		base: strings.TrimRight(addr, "/"),
		http: &http.Client{},
	}
}

// Health reports whether the daemon answers its health check.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/healthz", nil)
	return err
}

// Snapshot fetches the daemon's current derived snapshot.
func (c *Client) Snapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	body, err := c.do(ctx, http.MethodGet, "/v1/snapshot", nil)
	if err != nil {
		return snap, err
	}
	if err := json.Unmarshal(body, &snap); err != nil {
		return snap, fmt.Errorf("daemon: parsing snapshot: %w", err)
	}
	return snap, nil
}

// Subscriptions fetches the filtered, sorted subscription view.
func (c *Client) Subscriptions(ctx context.Context, category string, key pipeline.SortKey) ([]SubscriptionView, error) {
	q := url.Values{}
	if category != "" {
		q.Set("category", category)
	}
	q.Set("sort", key.String())

	body, err := c.do(ctx, http.MethodGet, "/v1/subscriptions?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var out []SubscriptionView
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("daemon: parsing subscriptions: %w", err)
	}
	return out, nil
}

// SetStatus asks the daemon to move a subscription to status.
func (c *Client) SetStatus(ctx context.Context, id, status string) (SubscriptionView, error) {
	var view SubscriptionView
	payload, err := json.Marshal(statusRequest{Status: status})
	if err != nil {
		return view, err
	}

	body, err := c.do(ctx, http.MethodPost, "/v1/subscriptions/"+url.PathEscape(id)+"/status", payload)
	if err != nil {
		return view, err
	}
	if err := json.Unmarshal(body, &view); err != nil {
		return view, fmt.Errorf("daemon: parsing subscription: %w", err)
	}
	return view, nil
}

// do performs a request and returns the response body, mapping error
// statuses onto the package's sentinel errors.
func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("daemon: creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("daemon: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("daemon: reading response: %w", err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return body, nil
	}

	msg := errorMessage(body)
	switch resp.StatusCode {
	case http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, msg)
	case http.StatusConflict:
		return nil, fmt.Errorf("%w: %s", ErrConflict, msg)
	case http.StatusServiceUnavailable:
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, msg)
	default:
		return nil, fmt.Errorf("daemon: unexpected status %d: %s", resp.StatusCode, msg)
	}
}

func errorMessage(body []byte) string {
	var e errorBody
	if err := json.Unmarshal(body, &e); err == nil && e.Error != "" {
		return e.Error
	}
	return strings.TrimSpace(string(body))
}
