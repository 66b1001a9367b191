// Package sdk provides the client-side library for the mentordesk daemon and
// the key-value contracts shared by local and remote state stores.
package sdk

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

	"github.com/techwomen-moldova/mentordesk/internal/common"
	"github.com/techwomen-moldova/mentordesk/pkg/schema"
)

// DefaultTimeout bounds every call made by a Client.
const DefaultTimeout = 15 * time.Second

// Client talks to a mentordesk daemon over HTTP. It implements KeyValueStore
// against /api/state and ProfilePublisher against /api/profiles.
// There is no retry: a failed call is reported to the caller.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a client for the daemon at addr ("host:port" or a full URL).
func NewClient(addr string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	base := strings.TrimRight(addr, "/")
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}
	return &Client{
		baseURL: base,
		http:    &http.Client{Timeout: timeout},
	}
}

// Connect returns a client after checking the daemon answers /health.
func Connect(ctx context.Context, addr string, timeout time.Duration) (*Client, error) {
	c := NewClient(addr, timeout)
	if err := c.Ping(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// Ping checks the daemon's health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/health", nil)
	return err
}

// do sends a JSON request and returns the body of a 2xx response.
func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("error creating payload: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, common.Wrap(common.ErrTransport, err, "mentordesk daemon unreachable")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, common.Wrap(common.ErrTransport, err, "error reading response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return respBody, statusError(resp.StatusCode, respBody)
	}
	return respBody, nil
}

// statusError maps a daemon error response back onto the error taxonomy.
func statusError(code int, body []byte) error {
	var e schema.ErrorResponse
	_ = json.Unmarshal(body, &e)
	msg := e.Details
	if msg == "" {
		msg = e.Error
	}
	if msg == "" {
		msg = fmt.Sprintf("daemon returned status %d", code)
	}

	switch code {
	case http.StatusNotFound:
		return common.Errorf(common.ErrNotFound, "%s", msg)
	case http.StatusBadRequest:
		return common.Errorf(common.ErrBadRequest, "%s", msg)
	default:
		return common.Errorf(common.ErrTransport, "%s", msg)
	}
}

func stateURL(key string) string {
	return "/api/state/" + url.PathEscape(key)
}

func (c *Client) Get(key string) (any, error) {
	body, err := c.do(context.Background(), http.MethodGet, stateURL(key), nil)
	if errors.Is(err, common.ErrNotFound) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	var out struct {
		Value any `json:"value"`
	}
	err = json.Unmarshal(body, &out)
	return out.Value, err
}

func (c *Client) Set(key string, val any) error {
	_, err := c.do(context.Background(), http.MethodPut, stateURL(key), val)
	return err
}

func (c *Client) Delete(key string) error {
	_, err := c.do(context.Background(), http.MethodDelete, stateURL(key), nil)
	return err
}

func (c *Client) Keys() ([]string, error) {
	body, err := c.do(context.Background(), http.MethodGet, "/api/state", nil)
	if err != nil {
		return nil, err
	}
	var list []string
	err = json.Unmarshal(body, &list)
	return list, err
}

// Apply posts a publish request to the daemon's publish endpoint.
func (c *Client) Apply(ctx context.Context, req schema.PublishRequest) (*schema.PublishResult, error) {
	body, err := c.do(ctx, http.MethodPost, "/api/profiles", req)
	if err != nil {
		return nil, err
	}
	var res schema.PublishResult
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, common.Wrap(common.ErrTransport, err, "error parsing response")
	}
	return &res, nil
}

// Profiles lists the published collection for role.
func (c *Client) Profiles(ctx context.Context, role schema.Role) ([]schema.Profile, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/profiles/"+url.PathEscape(string(role)), nil)
	if err != nil {
		return nil, err
	}
	var list []schema.Profile
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, common.Wrap(common.ErrTransport, err, "error parsing response")
	}
	return list, nil
}

// --- Generics Support ---

// Get retrieves a type-safe value using Go generics.
// Values held in memory are returned directly; values that went through JSON
// (maps, slices of any) are re-marshaled into T.
func Get[T any](s KVReader, key string) (T, error) {
	var target T
	val, err := s.Get(key)
	if err != nil {
		return target, err
	}

	if v, ok := val.(T); ok {
		return v, nil
	}

	bytes, err := json.Marshal(val)
	if err != nil {
		return target, err
	}
	err = json.Unmarshal(bytes, &target)
	return target, err
}

// GetOr is Get with a fallback for a missing key.
func GetOr[T any](s KVReader, key string, fallback T) (T, error) {
	v, err := Get[T](s, key)
	if errors.Is(err, ErrKeyNotFound) {
		return fallback, nil
	}
	return v, err
}

// Set stores a type-safe value using Go generics.
func Set[T any](s KVWriter, key string, val T) error {
	return s.Set(key, val)
}
