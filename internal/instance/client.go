// pattern: Imperative Shell
package instance

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Client is a thin HTTP client for a running logictree server. Methods
// return the raw JSON body so callers decode only what they print.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Client targeting the given base URL.
func NewClient(baseURL string) *Client {
	return NewClientWithTimeout(baseURL, 10*time.Second)
}

// NewClientWithTimeout creates a Client with a custom timeout.
func NewClientWithTimeout(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the server address the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Start begins a new session whose root holds content.
func (c *Client) Start(content string) ([]byte, error) {
	return c.do(http.MethodPost, "/api/tree", map[string]string{"content": content})
}

// Reset discards the tree and returns the server to the not-started state.
func (c *Client) Reset() ([]byte, error) {
	return c.do(http.MethodDelete, "/api/tree", nil)
}

// Tree fetches the current tree snapshot.
func (c *Client) Tree() ([]byte, error) {
	return c.do(http.MethodGet, "/api/tree", nil)
}

// Layout fetches the layout of the current tree.
func (c *Client) Layout() ([]byte, error) {
	return c.do(http.MethodGet, "/api/layout", nil)
}

// AddChild appends a blank child under parentID. A zero base skips the
// version check.
func (c *Client) AddChild(parentID string, base uint64) ([]byte, error) {
	return c.do(http.MethodPost, "/api/nodes/"+url.PathEscape(parentID)+"/children", map[string]uint64{"base_version": base})
}

// UpdateContent replaces the content of nodeID.
func (c *Client) UpdateContent(nodeID, content string, base uint64) ([]byte, error) {
	body := map[string]any{"content": content, "base_version": base}
	return c.do(http.MethodPut, "/api/nodes/"+url.PathEscape(nodeID), body)
}

// DeleteChild removes nodeID and its subtree from parentID.
func (c *Client) DeleteChild(parentID, nodeID string, base uint64) ([]byte, error) {
	path := "/api/nodes/" + url.PathEscape(parentID) + "/children/" + url.PathEscape(nodeID)
	if base > 0 {
		path += "?base_version=" + strconv.FormatUint(base, 10)
	}
	return c.do(http.MethodDelete, path, nil)
}

// Logs fetches recent server log entries, optionally filtered by scope prefix.
func (c *Client) Logs(scope string, limit int) ([]byte, error) {
	q := url.Values{}
	if scope != "" {
		q.Set("scope", scope)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	path := "/api/logs"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	return c.do(http.MethodGet, path, nil)
}

// do performs a request with an optional JSON body and returns the
// response body. Non-2xx statuses become errors carrying the server's
// error message.
func (c *Client) do(method, path string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to logictree: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Code: resp.StatusCode, Message: extractErrorMessage(respBody)}
	}

	return respBody, nil
}

// StatusError is returned when the server answers with a non-2xx status.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("logictree returned status %d: %s", e.Code, e.Message)
}

// extractErrorMessage pulls "error" out of a JSON body, falling back to
// the raw body.
func extractErrorMessage(body []byte) string {
	var errResp struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return errResp.Error
	}
	return string(body)
}
