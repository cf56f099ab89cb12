// Package edge provides an HTTP client for the API gateway management
// platform. It owns the wire representations of developers, developer
// apps, and API products, and opportunistically populates the shared
// entity cache with developers it fetches.
package edge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DeveloperCache receives developer representations fetched by the
// client. Implementations must tolerate concurrent use.
type DeveloperCache interface {
	Put(ctx context.Context, dev *Developer)
}

// MetricsRecorder observes management API calls. Implementations must
// tolerate concurrent use.
type MetricsRecorder interface {
	RecordEdgeRequest(operation, status string, duration time.Duration)
}

// Client is an HTTP client for the gateway management API
type Client struct {
	baseURL    string
	org        string
	username   string
	password   string
	httpClient *http.Client
	cache      DeveloperCache
	metrics    MetricsRecorder
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithCache sets the entity cache populated by developer fetches
func WithCache(cache DeveloperCache) Option {
	return func(c *Client) {
		c.cache = cache
	}
}

// WithMetrics sets the recorder notified of every management API call
func WithMetrics(metrics MetricsRecorder) Option {
	return func(c *Client) {
		c.metrics = metrics
	}
}

// NewClient creates a new management API client for an organization
func NewClient(baseURL, org, username, password string, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		org:      org,
		username: username,
		password: password,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetDeveloper fetches a developer by email or developer ID
func (c *Client) GetDeveloper(ctx context.Context, email string) (*Developer, error) {
	var dev Developer
	path := fmt.Sprintf("/organizations/%s/developers/%s", c.org, url.PathEscape(email))
	if err := c.do(ctx, http.MethodGet, path, nil, &dev); err != nil {
		return nil, fmt.Errorf("failed to get developer %s: %w", email, err)
	}
	c.cacheDeveloper(ctx, &dev)
	return &dev, nil
}

// ListDevelopers lists all developers in the organization
func (c *Client) ListDevelopers(ctx context.Context) ([]*Developer, error) {
	var devs []*Developer
	path := fmt.Sprintf("/organizations/%s/developers?expand=true", c.org)
	if err := c.do(ctx, http.MethodGet, path, nil, &devs); err != nil {
		return nil, fmt.Errorf("failed to list developers: %w", err)
	}
	for _, dev := range devs {
		c.cacheDeveloper(ctx, dev)
	}
	return devs, nil
}

// CreateDeveloper creates a developer on the remote platform
func (c *Client) CreateDeveloper(ctx context.Context, dev *Developer) (*Developer, error) {
	var created Developer
	path := fmt.Sprintf("/organizations/%s/developers", c.org)
	if err := c.do(ctx, http.MethodPost, path, dev, &created); err != nil {
		return nil, fmt.Errorf("failed to create developer %s: %w", dev.Email, err)
	}
	c.cacheDeveloper(ctx, &created)
	return &created, nil
}

// UpdateDeveloper updates a developer, addressed by its current email
func (c *Client) UpdateDeveloper(ctx context.Context, email string, dev *Developer) (*Developer, error) {
	var updated Developer
	path := fmt.Sprintf("/organizations/%s/developers/%s", c.org, url.PathEscape(email))
	if err := c.do(ctx, http.MethodPut, path, dev, &updated); err != nil {
		return nil, fmt.Errorf("failed to update developer %s: %w", email, err)
	}
	c.cacheDeveloper(ctx, &updated)
	return &updated, nil
}

// DeleteDeveloper removes a developer from the remote platform
func (c *Client) DeleteDeveloper(ctx context.Context, email string) error {
	path := fmt.Sprintf("/organizations/%s/developers/%s", c.org, url.PathEscape(email))
	if err := c.do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("failed to delete developer %s: %w", email, err)
	}
	return nil
}

// ListCompanies lists the companies a developer belongs to
func (c *Client) ListCompanies(ctx context.Context, email string) ([]string, error) {
	dev, err := c.GetDeveloper(ctx, email)
	if err != nil {
		return nil, err
	}
	if dev.Companies == nil {
		return []string{}, nil
	}
	return dev.Companies, nil
}

// ListApps lists a developer's apps
func (c *Client) ListApps(ctx context.Context, email string) ([]*App, error) {
	var apps []*App
	path := fmt.Sprintf("/organizations/%s/developers/%s/apps?expand=true", c.org, url.PathEscape(email))
	if err := c.do(ctx, http.MethodGet, path, nil, &apps); err != nil {
		return nil, fmt.Errorf("failed to list apps for %s: %w", email, err)
	}
	return apps, nil
}

// GetApp fetches a single developer app by name
func (c *Client) GetApp(ctx context.Context, email, name string) (*App, error) {
	var app App
	path := fmt.Sprintf("/organizations/%s/developers/%s/apps/%s", c.org, url.PathEscape(email), url.PathEscape(name))
	if err := c.do(ctx, http.MethodGet, path, nil, &app); err != nil {
		return nil, fmt.Errorf("failed to get app %s for %s: %w", name, email, err)
	}
	return &app, nil
}

// CreateApp creates a developer app
func (c *Client) CreateApp(ctx context.Context, email string, app *App) (*App, error) {
	var created App
	path := fmt.Sprintf("/organizations/%s/developers/%s/apps", c.org, url.PathEscape(email))
	if err := c.do(ctx, http.MethodPost, path, app, &created); err != nil {
		return nil, fmt.Errorf("failed to create app %s for %s: %w", app.Name, email, err)
	}
	return &created, nil
}

// DeleteApp removes a developer app
func (c *Client) DeleteApp(ctx context.Context, email, name string) error {
	path := fmt.Sprintf("/organizations/%s/developers/%s/apps/%s", c.org, url.PathEscape(email), url.PathEscape(name))
	if err := c.do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("failed to delete app %s for %s: %w", name, email, err)
	}
	return nil
}

// ListProducts lists the organization's API products
func (c *Client) ListProducts(ctx context.Context) ([]*Product, error) {
	var products []*Product
	path := fmt.Sprintf("/organizations/%s/apiproducts?expand=true", c.org)
	if err := c.do(ctx, http.MethodGet, path, nil, &products); err != nil {
		return nil, fmt.Errorf("failed to list api products: %w", err)
	}
	return products, nil
}

// GetProduct fetches a single API product by name
func (c *Client) GetProduct(ctx context.Context, name string) (*Product, error) {
	var product Product
	path := fmt.Sprintf("/organizations/%s/apiproducts/%s", c.org, url.PathEscape(name))
	if err := c.do(ctx, http.MethodGet, path, nil, &product); err != nil {
		return nil, fmt.Errorf("failed to get api product %s: %w", name, err)
	}
	return &product, nil
}

// cacheDeveloper stores a fetched developer in the entity cache, if one
// is configured
func (c *Client) cacheDeveloper(ctx context.Context, dev *Developer) {
	if c.cache == nil || dev == nil || dev.DeveloperID == "" {
		return
	}
	c.cache.Put(ctx, dev)
}

func (c *Client) recordRequest(operation, status string, start time.Time) {
	if c.metrics == nil {
		return
	}
	c.metrics.RecordEdgeRequest(operation, status, time.Since(start))
}

// do performs a single request against the management API. Calls are
// one-shot: no retries, the caller decides whether to try again.
func (c *Client) do(ctx context.Context, method, path string, body, dest interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.recordRequest(method, "error", start)
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	c.recordRequest(method, strconv.Itoa(resp.StatusCode), start)

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode >= 400 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		if err := json.Unmarshal(data, apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(data))
		}
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
