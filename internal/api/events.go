package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/parra-inc/parra-cli/internal/auth"
)

const eventTimeout = 5 * time.Second

// Reporter sends analytics events for CLI sessions. Events are best-effort:
// a failure to deliver one never interrupts the command that produced it.
type Reporter struct {
	session   *auth.Session
	http      HTTPDoer
	baseURL   string
	sessionID string
}

// NewReporter creates an event reporter. All events it sends share a single
// generated session ID so they can be correlated server-side.
func NewReporter(session *auth.Session, baseURL string) *Reporter {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Reporter{
		session:   session,
		http:      &http.Client{Timeout: eventTimeout},
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		sessionID: uuid.NewString(),
	}
}

// NewReporterWithDoer creates a reporter with a custom HTTP transport.
// Primarily for testing.
func NewReporterWithDoer(session *auth.Session, baseURL string, doer HTTPDoer) *Reporter {
	r := NewReporter(session, baseURL)
	r.http = doer
	return r
}

type eventRequest struct {
	Name      string            `json:"name"`
	SessionID string            `json:"session_id"`
	Params    map[string]string `json:"params,omitempty"`
}

// Report sends a single event. Only the stored credential is used; reporting
// never triggers an interactive login.
func (r *Reporter) Report(ctx context.Context, name string, params map[string]string) error {
	payload := eventRequest{
		Name:      name,
		SessionID: r.sessionID,
		Params:    params,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "failed to encode event")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/events", bytes.NewReader(data))
	if err != nil {
		return errors.Wrap(err, "failed to build event request")
	}
	req.Header.Set("Content-Type", "application/json")

	if cred, err := r.session.Stored(); err == nil {
		req.Header.Set("Authorization", "Bearer "+strings.TrimSpace(cred.Token))
	}

	resp, err := r.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "failed to send event")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.Errorf("event rejected with status %d", resp.StatusCode)
	}
	return nil
}

// Send reports an event and discards any failure.
func (r *Reporter) Send(name string, params map[string]string) {
	ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
	defer cancel()

	_ = r.Report(ctx, name, params)
}

// AuthObserver adapts a Reporter to the auth package's Observer interface.
// Events are sent on a separate goroutine because auth flows hold the session
// lock while they notify, and reporting reads the stored credential through
// that same lock.
type AuthObserver struct {
	reporter *Reporter
}

// NewAuthObserver creates an observer that forwards auth events to a reporter.
func NewAuthObserver(reporter *Reporter) *AuthObserver {
	return &AuthObserver{reporter: reporter}
}

// AuthEvent implements auth.Observer.
func (o *AuthObserver) AuthEvent(name string, params map[string]string) {
	go o.reporter.Send(name, params)
}

var _ auth.Observer = (*AuthObserver)(nil)
