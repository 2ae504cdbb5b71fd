// Package api is the typed client for the appliance REST backend. It is the
// single place that knows the backend's routes, error envelope, and scope
// query parameter handling.
package api

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

	"github.com/containerd/errdefs"

	"github.com/bassista/trackctl/internal/logger"
)

// URLScoper rewrites an API path so it targets the active config group.
// The zero behavior (nil scoper) leaves paths untouched.
type URLScoper interface {
	BuildScopedURL(path string) string
}

// Client talks to the appliance backend.
type Client struct {
	baseURL string
	http    *http.Client
	scoper  URLScoper
}

// NewClient creates a backend client for the given base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// SetScoper installs the URL scoper. It is set after construction because the
// scope resolver itself needs the client to fetch the server mode.
func (c *Client) SetScoper(s URLScoper) {
	c.scoper = s
}

// Services lists the systemd units tracked by the appliance.
func (c *Client) Services(ctx context.Context) ([]ServiceStatus, error) {
	var out []ServiceStatus
	if err := c.do(ctx, http.MethodGet, "/api/systemd/services", true, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SystemConfig fetches the console system configuration.
func (c *Client) SystemConfig(ctx context.Context) (SystemConfig, error) {
	var out SystemConfig
	if err := c.do(ctx, http.MethodGet, "/api/systemd/config/system", true, nil, &out); err != nil {
		return SystemConfig{}, err
	}
	return out, nil
}

// ServerMode reports the backend's multi-tenant capability. It is never
// scoped: the answer determines whether scoping applies at all.
func (c *Client) ServerMode(ctx context.Context) (ServerMode, error) {
	var out ServerMode
	if err := c.do(ctx, http.MethodGet, "/api/server-mode", false, nil, &out); err != nil {
		return ServerMode{}, err
	}
	return out, nil
}

// GetResource fetches a configuration document by resource name.
func (c *Client) GetResource(ctx context.Context, name string) (map[string]any, error) {
	var out map[string]any
	if err := c.do(ctx, http.MethodGet, "/api/"+url.PathEscape(name), true, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// PutResource persists a configuration document under the resource name.
func (c *Client) PutResource(ctx context.Context, name string, doc any) error {
	return c.do(ctx, http.MethodPut, "/api/"+url.PathEscape(name), true, doc, nil)
}

// ServiceAction runs a systemd action (start, stop, restart, enable,
// disable) against a unit.
func (c *Client) ServiceAction(ctx context.Context, service, action string) (ActionResult, error) {
	var out ActionResult
	body := actionRequest{Service: service, Action: action}
	if err := c.do(ctx, http.MethodPost, "/api/systemd/action", true, body, &out); err != nil {
		return ActionResult{}, err
	}
	return out, nil
}

// Deploy pushes the named config group's configuration to its remote
// stations. Deploy targets a group explicitly, so the path is never scoped.
func (c *Client) Deploy(ctx context.Context, groupID string) (DeployResult, error) {
	var out DeployResult
	if err := c.do(ctx, http.MethodPost, "/api/deploy/"+url.PathEscape(groupID), false, nil, &out); err != nil {
		return DeployResult{}, err
	}
	return out, nil
}

// do performs one request. Paths with scoped=true are rewritten through the
// installed scoper so they carry the active config group.
func (c *Client) do(ctx context.Context, method, path string, scoped bool, body, out any) error {
	if scoped && c.scoper != nil {
		path = c.scoper.BuildScopedURL(path)
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	logger.WithComponent("api").Tracef("%s %s", method, path)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w (%w)", method, path, errdefs.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s: %w", method, path, parseErrorBody(resp.StatusCode, raw))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
