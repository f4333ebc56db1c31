package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pkg/browser"
)

// Config contains configuration for the credential lifecycle.
type Config struct {
	// Override the authorization server origin (for testing)
	AuthOrigin string
	// Override the OAuth client ID (for testing)
	ClientID string
	// Don't open a browser automatically
	NoBrowser bool
	// Observer notified of auth transitions; nil means no-op
	Observer Observer
}

// Manager drives the credential lifecycle: load a stored credential, refresh
// it when it is near expiry, or run a fresh device-authorization flow when
// nothing usable is stored.
type Manager struct {
	store    CredentialStore
	provider OAuthProvider
	browser  BrowserOpener
	confirm  Confirmer
	observer Observer
	config   *Config
	out      io.Writer
	now      func() time.Time
}

// defaultBrowserOpener implements BrowserOpener using the browser package
type defaultBrowserOpener struct{}

func (defaultBrowserOpener) OpenURL(url string) error {
	return browser.OpenURL(url)
}

// NewManager creates a new credential lifecycle manager.
func NewManager(store CredentialStore, config *Config) *Manager {
	config = normalizeConfig(config)

	return &Manager{
		store:    store,
		provider: NewOAuthClient(config.AuthOrigin, config.ClientID),
		browser:  defaultBrowserOpener{},
		confirm:  surveyConfirmer{},
		observer: config.Observer,
		config:   config,
		out:      os.Stdout,
		now:      time.Now,
	}
}

// NewManagerWithProvider creates a manager with a custom OAuth provider.
// Primarily for testing, but usable for custom authorization servers.
func NewManagerWithProvider(store CredentialStore, provider OAuthProvider, config *Config) *Manager {
	m := NewManager(store, config)
	m.provider = provider
	return m
}

// NewManagerWithMocks creates a manager with every external interaction
// mocked. This is specifically for testing.
func NewManagerWithMocks(store CredentialStore, provider OAuthProvider, opener BrowserOpener, confirm Confirmer, config *Config) *Manager {
	m := NewManagerWithProvider(store, provider, config)
	m.browser = opener
	m.confirm = confirm
	m.out = io.Discard
	return m
}

func normalizeConfig(config *Config) *Config {
	if config == nil {
		config = &Config{}
	}
	if config.AuthOrigin == "" {
		config.AuthOrigin = DefaultAuthOrigin
	}
	if config.ClientID == "" {
		config.ClientID = DefaultClientID
	}
	if config.Observer == nil {
		config.Observer = nopObserver{}
	}
	return config
}

// ObtainCredential produces a currently-valid credential, minimizing
// user-visible interactive logins. The returned flag is true when a fresh
// interactive login occurred, false on silent reuse or refresh.
func (m *Manager) ObtainCredential(ctx context.Context) (*Credential, bool, error) {
	cred, err := m.store.Load()
	if err != nil {
		if !errors.Is(err, ErrNoCredential) {
			// The store exists but is inaccessible; surface the environment
			// problem instead of forcing a pointless login.
			return nil, false, err
		}

		fresh, err := m.login(ctx)
		if err != nil {
			return nil, false, err
		}
		return fresh, true, nil
	}

	if cred.NeedsRefresh(m.now()) {
		refreshed, err := m.refresh(ctx, cred)
		if err != nil {
			// The stored credential is left in place; an explicit logout is
			// the only path that evicts it.
			return nil, false, err
		}
		return refreshed, false, nil
	}

	return cred, false, nil
}

// SetObserver replaces the observer notified of auth transitions. This exists
// because the observer usually reports through the API layer, which itself is
// constructed around the session that wraps this manager.
func (m *Manager) SetObserver(observer Observer) {
	if observer == nil {
		observer = nopObserver{}
	}
	m.observer = observer
}

// Stored returns the persisted credential without triggering any flow.
func (m *Manager) Stored() (*Credential, error) {
	return m.store.Load()
}

// Logout deletes the stored credential and reports whether one existed.
func (m *Manager) Logout() (bool, error) {
	return m.store.Delete()
}

// refresh exchanges the stored refresh token for a new access token and
// persists the result. The original refresh token is reused; the provider
// does not rotate it on this grant.
func (m *Manager) refresh(ctx context.Context, cred *Credential) (*Credential, error) {
	m.notify("cli_auth_started", map[string]string{"is_reauthenticating": "true"})

	refreshed, err := m.provider.RefreshGrant(ctx, cred.RefreshToken)
	if err != nil {
		m.notify("cli_auth_failed", map[string]string{"is_reauthenticating": "true"})
		return nil, err
	}

	next := m.mint(refreshed.AccessToken, cred.RefreshToken, refreshed.ExpiresIn)
	if err := m.store.Save(next); err != nil {
		m.notify("cli_auth_failed", map[string]string{"is_reauthenticating": "true"})
		return nil, err
	}

	m.notify("cli_auth_succeeded", map[string]string{"is_reauthenticating": "true"})
	return next, nil
}

// login runs the full device-authorization flow and persists the result.
func (m *Manager) login(ctx context.Context) (*Credential, error) {
	m.notify("cli_auth_started", map[string]string{"is_reauthenticating": "false"})

	cred, err := m.runDeviceFlow(ctx)
	if err != nil {
		m.notify("cli_auth_failed", map[string]string{"is_reauthenticating": "false"})
		return nil, err
	}

	m.notify("cli_auth_succeeded", map[string]string{"is_reauthenticating": "false"})
	return cred, nil
}

func (m *Manager) runDeviceFlow(ctx context.Context) (*Credential, error) {
	challenge, err := m.provider.StartDeviceFlow(ctx)
	if err != nil {
		return nil, err
	}

	if err := m.confirmAndOpen(challenge); err != nil {
		return nil, err
	}

	token, err := m.provider.PollForToken(ctx, challenge)
	if err != nil {
		return nil, err
	}

	// offline_access was requested; a grant without a refresh token could
	// never be silently renewed and is rejected before anything is written.
	if token.RefreshToken == "" {
		return nil, flowErrorf(KindMalformedResponse, "token grant is missing a refresh token")
	}

	fmt.Fprintln(m.out, "Authentication successful!")

	cred := m.mint(token.AccessToken, token.RefreshToken, token.ExpiresIn)
	if err := m.store.Save(cred); err != nil {
		return nil, err
	}

	return cred, nil
}

// confirmAndOpen asks the user to proceed, then opens the verification URL.
// A failure to open the browser is non-fatal and degrades to printing the URL
// and code for manual entry.
func (m *Manager) confirmAndOpen(challenge *DeviceAuthResponse) error {
	message := "We need to confirm your identity in the browser. Press enter to open the browser."
	help := fmt.Sprintf(
		"Please press \"Confirm\" in your browser. If the browser doesn't open automatically, visit %s and enter the code: %s to confirm your login.",
		challenge.VerificationURI, challenge.UserCode,
	)

	confirmed, err := m.confirm.Confirm(message, help)
	if err != nil {
		return &FlowError{Kind: KindCancelled, Err: err}
	}
	if !confirmed {
		return flowErrorf(KindCancelled, "authentication cancelled")
	}

	if m.config.NoBrowser {
		fmt.Fprintf(m.out, "Visit %s and enter the code: %s to confirm your login.\n",
			challenge.VerificationURI, challenge.UserCode)
		return nil
	}

	if err := m.browser.OpenURL(challenge.VerificationURIComplete); err != nil {
		fmt.Fprintf(m.out, "Failed to open the browser. Please visit %s and enter the code: %s to confirm your login.\n",
			challenge.VerificationURI, challenge.UserCode)
	}

	// The event marks the attempt, not the outcome; a failed open still
	// hands the user the URL and code.
	m.notify("cli_auth_browser_opened", nil)
	return nil
}

func (m *Manager) mint(accessToken, refreshToken string, expiresIn int64) *Credential {
	return &Credential{
		Token:        accessToken,
		RefreshToken: refreshToken,
		Expiry:       m.now().Add(time.Duration(expiresIn) * time.Second).Unix(),
	}
}

func (m *Manager) notify(name string, params map[string]string) {
	if m.observer != nil {
		m.observer.AuthEvent(name, params)
	}
}
