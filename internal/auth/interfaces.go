package auth

import (
	"context"
	"net/http"
)

// OAuthProvider defines the device-authorization protocol operations.
type OAuthProvider interface {
	// StartDeviceFlow requests a device-authorization challenge
	StartDeviceFlow(ctx context.Context) (*DeviceAuthResponse, error)
	// PollForToken polls the token endpoint until the challenge is resolved
	PollForToken(ctx context.Context, challenge *DeviceAuthResponse) (*TokenResponse, error)
	// RefreshGrant exchanges a refresh token for a new access token
	RefreshGrant(ctx context.Context, refreshToken string) (*RefreshResponse, error)
}

// HTTPClient defines the interface for HTTP operations
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// BrowserOpener defines the interface for opening URLs in a browser
type BrowserOpener interface {
	OpenURL(url string) error
}

// Confirmer asks the user a yes/no question before the browser is opened.
type Confirmer interface {
	Confirm(message, help string) (bool, error)
}

// Observer receives best-effort notifications about auth transitions. It must
// never fail; implementations report asynchronously or not at all.
type Observer interface {
	AuthEvent(name string, params map[string]string)
}

// nopObserver is the default Observer.
type nopObserver struct{}

func (nopObserver) AuthEvent(string, map[string]string) {}
