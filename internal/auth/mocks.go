package auth

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// MockStore implements CredentialStore for testing.
type MockStore struct {
	mu    sync.Mutex
	cred  *Credential
	err   error
	Saves []*Credential
}

// NewMockStore creates a mock credential store for testing.
func NewMockStore(cred *Credential, err error) *MockStore {
	return &MockStore{cred: cred, err: err}
}

// Load returns the mock credential.
func (m *MockStore) Load() (*Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}
	if m.cred == nil {
		return nil, ErrNoCredential
	}
	return m.cred, nil
}

// Save stores the mock credential and records the call.
func (m *MockStore) Save(cred *Credential) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}
	m.cred = cred
	m.Saves = append(m.Saves, cred)
	return nil
}

// Delete clears the mock credential.
func (m *MockStore) Delete() (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return false, m.err
	}
	existed := m.cred != nil
	m.cred = nil
	return existed, nil
}

// Exists checks if a mock credential exists.
func (m *MockStore) Exists() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.cred != nil
}

// MockOAuthProvider is a mock implementation of OAuthProvider for testing.
type MockOAuthProvider struct {
	mu sync.Mutex

	StartDeviceFlowFunc  func(ctx context.Context) (*DeviceAuthResponse, error)
	StartDeviceFlowCalls int

	PollForTokenFunc  func(ctx context.Context, challenge *DeviceAuthResponse) (*TokenResponse, error)
	PollForTokenCalls int

	RefreshGrantFunc  func(ctx context.Context, refreshToken string) (*RefreshResponse, error)
	RefreshGrantCalls []string
}

// StartDeviceFlow implements OAuthProvider.
func (m *MockOAuthProvider) StartDeviceFlow(ctx context.Context) (*DeviceAuthResponse, error) {
	m.mu.Lock()
	m.StartDeviceFlowCalls++
	fn := m.StartDeviceFlowFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx)
	}

	return &DeviceAuthResponse{
		DeviceCode:              "mock-device-code",
		UserCode:                "MOCK-CODE",
		VerificationURI:         "https://mock.auth/activate",
		VerificationURIComplete: "https://mock.auth/activate?user_code=MOCK-CODE",
		ExpiresIn:               900,
		Interval:                5,
	}, nil
}

// PollForToken implements OAuthProvider.
func (m *MockOAuthProvider) PollForToken(ctx context.Context, challenge *DeviceAuthResponse) (*TokenResponse, error) {
	m.mu.Lock()
	m.PollForTokenCalls++
	fn := m.PollForTokenFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, challenge)
	}

	return &TokenResponse{
		AccessToken:  "mock-access-token",
		RefreshToken: "mock-refresh-token",
		ExpiresIn:    3600,
		TokenType:    "Bearer",
	}, nil
}

// RefreshGrant implements OAuthProvider.
func (m *MockOAuthProvider) RefreshGrant(ctx context.Context, refreshToken string) (*RefreshResponse, error) {
	m.mu.Lock()
	m.RefreshGrantCalls = append(m.RefreshGrantCalls, refreshToken)
	fn := m.RefreshGrantFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, refreshToken)
	}

	return &RefreshResponse{
		AccessToken: "mock-refreshed-token",
		ExpiresIn:   3600,
		TokenType:   "Bearer",
	}, nil
}

// Ensure MockOAuthProvider implements OAuthProvider
var _ OAuthProvider = (*MockOAuthProvider)(nil)

// MockHTTPClient is a mock implementation of HTTPClient for testing.
type MockHTTPClient struct {
	mu sync.Mutex

	DoFunc  func(req *http.Request) (*http.Response, error)
	DoCalls []*http.Request
}

// Do implements HTTPClient.
func (m *MockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	m.mu.Lock()
	m.DoCalls = append(m.DoCalls, req)
	fn := m.DoFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(req)
	}

	return nil, fmt.Errorf("mock HTTP client: no DoFunc configured")
}

var _ HTTPClient = (*MockHTTPClient)(nil)

// MockBrowserOpener is a mock implementation of BrowserOpener for testing.
type MockBrowserOpener struct {
	mu sync.Mutex

	OpenURLFunc  func(url string) error
	OpenURLCalls []string
}

// OpenURL implements BrowserOpener.
func (m *MockBrowserOpener) OpenURL(url string) error {
	m.mu.Lock()
	m.OpenURLCalls = append(m.OpenURLCalls, url)
	fn := m.OpenURLFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(url)
	}

	return nil
}

var _ BrowserOpener = (*MockBrowserOpener)(nil)

// MockConfirmer is a mock implementation of Confirmer for testing.
type MockConfirmer struct {
	mu sync.Mutex

	Answer       bool
	Err          error
	ConfirmCalls []string
}

// Confirm implements Confirmer.
func (m *MockConfirmer) Confirm(message, help string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ConfirmCalls = append(m.ConfirmCalls, message)
	return m.Answer, m.Err
}

var _ Confirmer = (*MockConfirmer)(nil)

// MockObserver records auth events for assertions.
type MockObserver struct {
	mu     sync.Mutex
	Events []string
}

// AuthEvent implements Observer.
func (m *MockObserver) AuthEvent(name string, params map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Events = append(m.Events, name)
}

var _ Observer = (*MockObserver)(nil)

// MockBuilder provides a fluent interface for building test scenarios.
type MockBuilder struct {
	provider *MockOAuthProvider
	store    *MockStore
	browser  *MockBrowserOpener
	confirm  *MockConfirmer
	observer *MockObserver
	now      func() time.Time
}

// NewMockBuilder creates a new mock builder. The confirmation prompt answers
// yes by default.
func NewMockBuilder() *MockBuilder {
	return &MockBuilder{
		provider: &MockOAuthProvider{},
		store:    NewMockStore(nil, nil),
		browser:  &MockBrowserOpener{},
		confirm:  &MockConfirmer{Answer: true},
		observer: &MockObserver{},
	}
}

// WithStoredCredential seeds the store with a credential.
func (b *MockBuilder) WithStoredCredential(cred *Credential) *MockBuilder {
	b.store = NewMockStore(cred, nil)
	return b
}

// WithStoreError makes every store operation fail.
func (b *MockBuilder) WithStoreError(err error) *MockBuilder {
	b.store = NewMockStore(nil, err)
	return b
}

// WithDeviceFlow configures the device-code challenge response.
func (b *MockBuilder) WithDeviceFlow(resp *DeviceAuthResponse, err error) *MockBuilder {
	b.provider.StartDeviceFlowFunc = func(ctx context.Context) (*DeviceAuthResponse, error) {
		return resp, err
	}
	return b
}

// WithPollResult configures the outcome of the polling loop.
func (b *MockBuilder) WithPollResult(resp *TokenResponse, err error) *MockBuilder {
	b.provider.PollForTokenFunc = func(ctx context.Context, challenge *DeviceAuthResponse) (*TokenResponse, error) {
		return resp, err
	}
	return b
}

// WithRefreshResult configures the outcome of the refresh grant.
func (b *MockBuilder) WithRefreshResult(resp *RefreshResponse, err error) *MockBuilder {
	b.provider.RefreshGrantFunc = func(ctx context.Context, refreshToken string) (*RefreshResponse, error) {
		return resp, err
	}
	return b
}

// WithConfirmAnswer sets the answer to the confirmation prompt.
func (b *MockBuilder) WithConfirmAnswer(answer bool) *MockBuilder {
	b.confirm.Answer = answer
	return b
}

// WithNow pins the manager's clock.
func (b *MockBuilder) WithNow(now func() time.Time) *MockBuilder {
	b.now = now
	return b
}

// Build creates a Manager wired to the configured mocks.
func (b *MockBuilder) Build() (*Manager, *MockOAuthProvider, *MockStore) {
	manager := NewManagerWithMocks(b.store, b.provider, b.browser, b.confirm, &Config{
		Observer: b.observer,
	})
	if b.now != nil {
		manager.now = b.now
	}
	return manager, b.provider, b.store
}

// Observer returns the recording observer wired into Build.
func (b *MockBuilder) Observer() *MockObserver {
	return b.observer
}

// Browser returns the recording browser opener wired into Build.
func (b *MockBuilder) Browser() *MockBrowserOpener {
	return b.browser
}

// Confirmer returns the recording confirmer wired into Build.
func (b *MockBuilder) Confirmer() *MockConfirmer {
	return b.confirm
}

// TestHelpers provides canned protocol values for tests.
type TestHelpers struct{}

// NewTestHelpers creates test helpers.
func NewTestHelpers() *TestHelpers {
	return &TestHelpers{}
}

// ValidCredential creates a credential that is comfortably outside the
// refresh skew window.
func (h *TestHelpers) ValidCredential(now time.Time) *Credential {
	return &Credential{
		Token:        "valid-token",
		RefreshToken: "refresh-token",
		Expiry:       now.Add(2 * time.Hour).Unix(),
	}
}

// ExpiringCredential creates a credential inside the refresh skew window.
func (h *TestHelpers) ExpiringCredential(now time.Time) *Credential {
	return &Credential{
		Token:        "stale-token",
		RefreshToken: "refresh-token",
		Expiry:       now.Add(10 * time.Second).Unix(),
	}
}

// Challenge creates a device-authorization challenge.
func (h *TestHelpers) Challenge() *DeviceAuthResponse {
	return &DeviceAuthResponse{
		DeviceCode:              "device-123",
		UserCode:                "USER-123",
		VerificationURI:         "https://auth.example.com/activate",
		VerificationURIComplete: "https://auth.example.com/activate?user_code=USER-123",
		ExpiresIn:               900,
		Interval:                5,
	}
}

// Token creates a device-grant token response.
func (h *TestHelpers) Token() *TokenResponse {
	return &TokenResponse{
		AccessToken:  "access-token",
		RefreshToken: "refresh-token",
		ExpiresIn:    3600,
		TokenType:    "Bearer",
	}
}
