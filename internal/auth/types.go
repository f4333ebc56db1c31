package auth

import (
	"time"
)

// Credential is the persisted authentication state. It is stored as a single
// JSON blob in the OS keyring and is the only durable artifact of the auth
// subsystem.
type Credential struct {
	// Bearer token presented on API calls
	Token string `json:"token"`
	// Long-lived token exchanged for new access tokens
	RefreshToken string `json:"refresh_token"`
	// Unix timestamp (seconds) after which Token must not be used
	Expiry int64 `json:"expiry"`
}

// ExpiresAt returns the expiry as a wall-clock time.
func (c *Credential) ExpiresAt() time.Time {
	return time.Unix(c.Expiry, 0)
}

// NeedsRefresh reports whether the token is expired or inside the refresh
// skew window at the given time.
func (c *Credential) NeedsRefresh(now time.Time) bool {
	return now.Unix() >= c.Expiry-int64(RefreshSkew/time.Second)
}

// DeviceAuthResponse is the challenge returned by the device-code endpoint.
// It lives for a single polling loop and is never persisted. DeviceCode must
// never be shown to the user; UserCode is the one they see.
type DeviceAuthResponse struct {
	DeviceCode              string `json:"device_code"`
	UserCode                string `json:"user_code"`
	VerificationURI         string `json:"verification_uri"`
	VerificationURIComplete string `json:"verification_uri_complete"`
	ExpiresIn               int64  `json:"expires_in"`
	Interval                int64  `json:"interval,omitempty"`
}

// TokenResponse is the successful outcome of the device-grant poll.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	Scope        string `json:"scope,omitempty"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type,omitempty"`
}

// RefreshResponse is the outcome of a refresh-token grant. The provider does
// not rotate the refresh token in this flow, so the response carries none and
// the stored one is reused.
type RefreshResponse struct {
	AccessToken string `json:"access_token"`
	Scope       string `json:"scope,omitempty"`
	ExpiresIn   int64  `json:"expires_in"`
	TokenType   string `json:"token_type,omitempty"`
}

// tokenRequest is the JSON body posted while polling for the device grant.
type tokenRequest struct {
	ClientID   string `json:"client_id"`
	DeviceCode string `json:"device_code"`
	GrantType  string `json:"grant_type"`
}

// Constants for OAuth configuration
const (
	// Keyring service name
	ServiceName = "parra_cli"
	// OAuth client ID for the Parra CLI
	DefaultClientID = "nD9GTUvvqCT0oWi34L2IdJiK0YjupSjY"
	// Origin of the authorization server
	DefaultAuthOrigin = "https://auth.parra.io"
	// Scope requested on the device grant; offline_access yields a refresh token
	DeviceScope = "offline_access"
	// Safety margin subtracted from the stated expiry so a token is never
	// presented to the API server within its last moments of validity
	RefreshSkew = 30 * time.Second

	deviceGrantType  = "urn:ietf:params:oauth:grant-type:device_code"
	refreshGrantType = "refresh_token"

	// Interval assumed when the provider omits one
	defaultPollInterval = 5
)
