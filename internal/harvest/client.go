package harvest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Gateway defines the remote time-entry operations the core consumes. It is
// implemented by *Client and by the in-memory gateway used for demo mode and
// tests.
type Gateway interface {
	GetToday(ctx context.Context) (DailySnapshot, error)
	Create(ctx context.Context, fields EntryFields) (TimeEntry, error)
	Update(ctx context.Context, id int64, fields EntryFields) (TimeEntry, error)
	ToggleTimer(ctx context.Context, id int64) (TimeEntry, error)
	CheckStatus(ctx context.Context) error
}

// Ensure Client implements Gateway at compile time.
var _ Gateway = (*Client)(nil)

// ErrServiceDown reports that the service status probe says the remote store
// is unavailable. Callers surface it as a banner and skip authentication.
var ErrServiceDown = errors.New("time-entry service reports down")

// Client talks to the time-entry HTTP API using basic auth.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	username  string
	password  string
	userAgent string
}

const (
	defaultUserAgent = "tracktray/0.1"
	requestTimeout   = 10 * time.Second
)

// NewClient builds a Client for the account's base URI.
func NewClient(uri, username, password string) (*Client, error) {
	base, err := parseBaseURL(uri)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		username:  username,
		password:  password,
		userAgent: defaultUserAgent,
	}, nil
}

// GetToday retrieves today's entries along with the project/task catalog.
func (c *Client) GetToday(ctx context.Context) (DailySnapshot, error) {
	if c == nil {
		return DailySnapshot{}, fmt.Errorf("client is nil")
	}
	var payload DailySnapshot
	if err := c.do(ctx, http.MethodGet, "/daily", nil, &payload); err != nil {
		return DailySnapshot{}, err
	}
	return payload, nil
}

// Create adds a new entry for today.
func (c *Client) Create(ctx context.Context, fields EntryFields) (TimeEntry, error) {
	if c == nil {
		return TimeEntry{}, fmt.Errorf("client is nil")
	}
	var payload TimeEntry
	if err := c.do(ctx, http.MethodPost, "/daily/add", fields, &payload); err != nil {
		return TimeEntry{}, err
	}
	return payload, nil
}

// Update rewrites the writable fields of an existing entry.
func (c *Client) Update(ctx context.Context, id int64, fields EntryFields) (TimeEntry, error) {
	if c == nil {
		return TimeEntry{}, fmt.Errorf("client is nil")
	}
	var payload TimeEntry
	path := fmt.Sprintf("/daily/update/%d", id)
	if err := c.do(ctx, http.MethodPost, path, fields, &payload); err != nil {
		return TimeEntry{}, err
	}
	return payload, nil
}

// ToggleTimer flips the server-side timer flag for an entry and returns the
// refreshed record.
func (c *Client) ToggleTimer(ctx context.Context, id int64) (TimeEntry, error) {
	if c == nil {
		return TimeEntry{}, fmt.Errorf("client is nil")
	}
	var payload TimeEntry
	path := fmt.Sprintf("/daily/timer/%d", id)
	if err := c.do(ctx, http.MethodGet, path, nil, &payload); err != nil {
		return TimeEntry{}, err
	}
	return payload, nil
}

// CheckStatus probes the service status endpoint. It returns nil when the
// service reports up, ErrServiceDown when it reports anything else, and a
// transport error when the probe itself fails.
func (c *Client) CheckStatus(ctx context.Context) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	var payload struct {
		Status string `json:"status"`
	}
	if err := c.do(ctx, http.MethodGet, "/status", nil, &payload); err != nil {
		return err
	}
	if !strings.EqualFold(payload.Status, "up") {
		return ErrServiceDown
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body, dest any) error {
	rel := &url.URL{Path: path}
	reqURL := c.baseURL.ResolveReference(rel)

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.SetBasicAuth(c.username, c.password)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("api %s returned status %d", rel.String(), resp.StatusCode)
	}
	if dest == nil {
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseBaseURL(uri string) (*url.URL, error) {
	trimmed := strings.TrimSpace(uri)
	if trimmed == "" {
		return nil, fmt.Errorf("service uri is empty")
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse uri %q: %w", uri, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
