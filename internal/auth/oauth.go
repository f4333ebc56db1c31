package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"
)

// OAuthClient implements the device-authorization grant against the Parra
// authorization server.
type OAuthClient struct {
	httpClient HTTPClient
	origin     string
	clientID   string
	out        io.Writer

	// test seams; nil means real time
	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time
}

// Ensure OAuthClient implements OAuthProvider
var _ OAuthProvider = (*OAuthClient)(nil)

// NewOAuthClient creates a new OAuth client.
func NewOAuthClient(origin, clientID string) *OAuthClient {
	if origin == "" {
		origin = DefaultAuthOrigin
	}
	if clientID == "" {
		clientID = DefaultClientID
	}

	return &OAuthClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		origin:     origin,
		clientID:   clientID,
		out:        os.Stdout,
		now:        time.Now,
	}
}

// StartDeviceFlow requests a device-authorization challenge.
func (c *OAuthClient) StartDeviceFlow(ctx context.Context) (*DeviceAuthResponse, error) {
	form := url.Values{
		"client_id": {c.clientID},
		"scope":     {DeviceScope},
	}

	status, body, err := c.postForm(ctx, c.origin+"/oauth/device/code", form)
	if err != nil {
		return nil, &FlowError{Kind: KindProviderUnavailable, Msg: "device authorization request failed", Err: err}
	}
	if status < 200 || status > 299 {
		return nil, flowErrorf(KindProviderUnavailable, "device authorization failed (status %d): %s", status, body)
	}

	var challenge DeviceAuthResponse
	if err := json.Unmarshal(body, &challenge); err != nil {
		return nil, &FlowError{Kind: KindMalformedResponse, Msg: "failed to parse device authorization response", Err: err}
	}

	if challenge.Interval == 0 {
		challenge.Interval = defaultPollInterval
	}

	return &challenge, nil
}

// PollForToken polls the token endpoint until the user completes sign-in, the
// challenge expires, or the provider reports a terminal failure. The provider
// requires waiting one interval before every attempt, including the first.
func (c *OAuthClient) PollForToken(ctx context.Context, challenge *DeviceAuthResponse) (*TokenResponse, error) {
	interval := time.Duration(challenge.Interval) * time.Second
	window := time.Duration(challenge.ExpiresIn) * time.Second
	start := c.clock()

	reqBody, err := json.Marshal(tokenRequest{
		ClientID:   c.clientID,
		DeviceCode: challenge.DeviceCode,
		GrantType:  deviceGrantType,
	})
	if err != nil {
		return nil, &FlowError{Kind: KindMalformedResponse, Msg: "failed to encode token request", Err: err}
	}

	for {
		if err := c.wait(ctx, interval); err != nil {
			return nil, err
		}

		if c.clock().Sub(start) >= window {
			return nil, flowErrorf(KindDeviceCodeExpired, "sign-in request has expired, try again")
		}

		status, body, err := c.postJSON(ctx, c.origin+"/oauth/token", reqBody)
		if err != nil {
			return nil, &FlowError{Kind: KindTokenExchangeFailed, Msg: "token request failed", Err: err}
		}

		switch {
		case status >= 200 && status <= 299:
			var token TokenResponse
			if err := json.Unmarshal(body, &token); err != nil {
				return nil, &FlowError{Kind: KindMalformedResponse, Msg: "failed to parse token response", Err: err}
			}
			return &token, nil
		case status == http.StatusForbidden:
			fmt.Fprintln(c.out, "Waiting for authorization from the browser...")
		default:
			return nil, flowErrorf(KindTokenExchangeFailed, "token poll failed unexpectedly (status %d): %s", status, body)
		}
	}
}

// RefreshGrant exchanges a refresh token for a new access token.
func (c *OAuthClient) RefreshGrant(ctx context.Context, refreshToken string) (*RefreshResponse, error) {
	form := url.Values{
		"client_id":     {c.clientID},
		"refresh_token": {refreshToken},
		"grant_type":    {refreshGrantType},
	}

	status, body, err := c.postForm(ctx, c.origin+"/oauth/token", form)
	if err != nil {
		return nil, &FlowError{Kind: KindTokenExchangeFailed, Msg: "refresh request failed", Err: err}
	}
	if status < 200 || status > 299 {
		return nil, flowErrorf(KindTokenExchangeFailed, "token refresh failed (status %d): %s", status, body)
	}

	var refreshed RefreshResponse
	if err := json.Unmarshal(body, &refreshed); err != nil {
		return nil, &FlowError{Kind: KindMalformedResponse, Msg: "failed to parse refresh response", Err: err}
	}

	return &refreshed, nil
}

func (c *OAuthClient) postForm(ctx context.Context, endpoint string, form url.Values) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBufferString(form.Encode()))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return c.do(req)
}

func (c *OAuthClient) postJSON(ctx context.Context, endpoint string, body []byte) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req)
}

func (c *OAuthClient) do(req *http.Request) (int, []byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}

	return resp.StatusCode, body, nil
}

// wait blocks for d, honoring context cancellation.
func (c *OAuthClient) wait(ctx context.Context, d time.Duration) error {
	if c.sleep != nil {
		if err := c.sleep(ctx, d); err != nil {
			return err
		}
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *OAuthClient) clock() time.Time {
	if c.now != nil {
		return c.now()
	}
	return time.Now()
}
