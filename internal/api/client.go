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
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/parra-inc/parra-cli/internal/auth"
)

const (
	// DefaultBaseURL is the default Parra API endpoint
	DefaultBaseURL = "https://api.parra.io/v1"

	requestTimeout = 30 * time.Second
)

// HTTPDoer abstracts the HTTP transport for testing.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is the authenticated Parra API client. Every request goes through
// the session so a near-expiry token is silently refreshed before it is
// presented to the server.
type Client struct {
	session *auth.Session
	http    HTTPDoer
	baseURL string

	// Cached identity of the authenticated user; invalidated when a fresh
	// interactive login occurs.
	mu   sync.Mutex
	user *User
}

// NewClient creates an API client backed by the given session.
func NewClient(session *auth.Session, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		session: session,
		http:    &http.Client{Timeout: requestTimeout},
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// NewClientWithDoer creates an API client with a custom HTTP transport.
// Primarily for testing.
func NewClientWithDoer(session *auth.Session, baseURL string, doer HTTPDoer) *Client {
	c := NewClient(session, baseURL)
	c.http = doer
	return c
}

// GetTenant retrieves a tenant by ID.
func (c *Client) GetTenant(ctx context.Context, tenantID string) (*Tenant, error) {
	var tenant Tenant
	path := fmt.Sprintf("/tenants/%s", tenantID)
	if err := c.get(ctx, path, nil, &tenant); err != nil {
		return nil, errors.Wrap(err, "failed to get tenant")
	}
	return &tenant, nil
}

// ListTenants retrieves the tenants owned by the authenticated user.
func (c *Client) ListTenants(ctx context.Context) ([]Tenant, error) {
	user, err := c.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}

	var tenants []Tenant
	path := fmt.Sprintf("/users/%s/tenants", user.ID)
	if err := c.get(ctx, path, nil, &tenants); err != nil {
		return nil, errors.Wrap(err, "failed to list tenants")
	}
	return tenants, nil
}

// CreateTenant creates a new tenant for the authenticated user.
func (c *Client) CreateTenant(ctx context.Context, name string) (*Tenant, error) {
	user, err := c.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}

	var tenant Tenant
	path := fmt.Sprintf("/users/%s/tenants", user.ID)
	body := tenantRequest{Name: name, IsTest: false}
	if err := c.post(ctx, path, body, &tenant); err != nil {
		return nil, errors.Wrap(err, "failed to create tenant")
	}
	return &tenant, nil
}

// ListApplications retrieves every application under a tenant.
func (c *Client) ListApplications(ctx context.Context, tenantID string) ([]Application, error) {
	var collection applicationCollection
	path := fmt.Sprintf("/tenants/%s/applications", tenantID)
	query := url.Values{"$top": []string{"10000"}}
	if err := c.get(ctx, path, query, &collection); err != nil {
		return nil, errors.Wrap(err, "failed to list applications")
	}
	return collection.Data, nil
}

// GetApplication retrieves an application by ID.
func (c *Client) GetApplication(ctx context.Context, tenantID, applicationID string) (*Application, error) {
	var app Application
	path := fmt.Sprintf("/tenants/%s/applications/%s", tenantID, applicationID)
	if err := c.get(ctx, path, nil, &app); err != nil {
		return nil, errors.Wrap(err, "failed to get application")
	}
	return &app, nil
}

// CreateApplication creates a new iOS application under a tenant.
func (c *Client) CreateApplication(ctx context.Context, tenantID, name, bundleID string) (*Application, error) {
	var app Application
	path := fmt.Sprintf("/tenants/%s/applications", tenantID)
	body := applicationRequest{
		Name:         name,
		Type:         "ios",
		IOSBundleID:  bundleID,
		IsNewProject: true,
	}
	if err := c.post(ctx, path, body, &app); err != nil {
		return nil, errors.Wrap(err, "failed to create application")
	}
	return &app, nil
}

// CurrentUser returns the authenticated user. The identity is fetched once
// per process and reused until a fresh login invalidates it.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	c.mu.Lock()
	cached := c.user
	c.mu.Unlock()

	if cached != nil {
		return cached, nil
	}

	var info userInfoResponse
	if err := c.get(ctx, "/user-info", nil, &info); err != nil {
		return nil, errors.Wrap(err, "failed to get current user")
	}

	c.mu.Lock()
	c.user = &info.User
	c.mu.Unlock()

	return &info.User, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	cred, isNew, err := c.session.EnsureAuthenticated(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to authenticate")
	}
	if isNew {
		// Whatever identity was cached belonged to the previous login.
		c.mu.Lock()
		c.user = nil
		c.mu.Unlock()
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "failed to encode request body")
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return errors.Wrap(err, "failed to build request")
	}
	req.Header.Set("Authorization", "Bearer "+strings.TrimSpace(cred.Token))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "request to %s failed", endpoint)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		return errors.Errorf("API error (%d): %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "failed to decode response")
	}
	return nil
}
