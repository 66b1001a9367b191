// Package forms fetches visitor submissions from the Netlify Forms API.
package forms

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/techwomen-moldova/mentordesk/internal/common"
	"github.com/techwomen-moldova/mentordesk/internal/logging"
	"github.com/techwomen-moldova/mentordesk/pkg/schema"
)

// DefaultBaseURL is the public Netlify API root.
const DefaultBaseURL = "https://api.netlify.com/api/v1"

// ErrNotConfigured is returned when the token or form id is missing.
var ErrNotConfigured = common.Errorf(common.ErrNotConfigured, "Credentials not configured. Go to Settings.")

// Credentials identify the form and authorize access to it.
type Credentials struct {
	Token  string
	FormID string
}

// Configured reports whether both parts are present.
func (c Credentials) Configured() bool {
	return strings.TrimSpace(c.Token) != "" && strings.TrimSpace(c.FormID) != ""
}

// Client is the Submission Store Adapter. It holds no credentials; they are
// passed on every call.
type Client struct {
	baseURL string
	http    *http.Client
	log     logging.Logger
}

// NewClient creates a forms API client. An empty baseURL means DefaultBaseURL.
func NewClient(baseURL string, timeout time.Duration, log logging.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

func (c *Client) formURL(formID string, suffix string) string {
	return fmt.Sprintf("%s/forms/%s%s", c.baseURL, url.PathEscape(strings.TrimSpace(formID)), suffix)
}

func (c *Client) newRequest(ctx context.Context, creds Credentials, u string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Add("Authorization", "Bearer "+strings.TrimSpace(creds.Token))
	req.Header.Add("Accept", "application/json")
	return req, nil
}

// FetchPending returns every submission of the form. Filtering out already
// moderated ones is the caller's job.
func (c *Client) FetchPending(ctx context.Context, creds Credentials) ([]schema.Submission, error) {
	if !creds.Configured() {
		return nil, ErrNotConfigured
	}

	req, err := c.newRequest(ctx, creds, c.formURL(creds.FormID, "/submissions"))
	if err != nil {
		return nil, common.Wrap(common.ErrTransport, err, "Failed to load submissions")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, common.Wrap(common.ErrTransport, err, "Failed to load submissions")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, common.Wrap(common.ErrTransport, err, "error reading response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Warn(ctx, "forms api error", "status", resp.StatusCode, "form", creds.FormID)
		return nil, common.Errorf(common.ErrTransport, "Netlify API error: %d", resp.StatusCode)
	}

	var submissions []schema.Submission
	if err := json.Unmarshal(body, &submissions); err != nil {
		return nil, common.Wrap(common.ErrTransport, err, "malformed submissions payload")
	}
	c.log.Debug(ctx, "fetched submissions", "form", creds.FormID, "count", len(submissions))
	return submissions, nil
}

// TestConnection calls the form endpoint and reports whether it answered 2xx.
// It never fails.
func (c *Client) TestConnection(ctx context.Context, creds Credentials) bool {
	if !creds.Configured() {
		return false
	}

	req, err := c.newRequest(ctx, creds, c.formURL(creds.FormID, ""))
	if err != nil {
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn(ctx, "forms api unreachable", "error", err)
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode >= 200 && resp.StatusCode <= 299
}
