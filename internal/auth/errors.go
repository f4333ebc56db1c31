package auth

import (
	"errors"
	"fmt"
)

// Kind classifies authentication failures so callers can match on the kind
// instead of sniffing message strings.
type Kind int

const (
	// KindProviderUnavailable covers transport failures and non-2xx responses
	// on initial, non-polling calls to the authorization server.
	KindProviderUnavailable Kind = iota + 1
	// KindMalformedResponse indicates a JSON body that does not match the
	// provider contract. Non-retryable.
	KindMalformedResponse
	// KindCancelled means the user declined the browser confirmation.
	KindCancelled
	// KindDeviceCodeExpired means the polling window elapsed before the user
	// completed sign-in.
	KindDeviceCodeExpired
	// KindTokenExchangeFailed covers an unexpected status during polling or a
	// failed refresh grant.
	KindTokenExchangeFailed
	// KindStoreUnavailable means the secret store exists but is inaccessible.
	// Distinct from ErrNoCredential so an environment problem is never masked
	// as "please log in again".
	KindStoreUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindProviderUnavailable:
		return "auth provider unavailable"
	case KindMalformedResponse:
		return "malformed provider response"
	case KindCancelled:
		return "authentication cancelled"
	case KindDeviceCodeExpired:
		return "device code expired"
	case KindTokenExchangeFailed:
		return "token exchange failed"
	case KindStoreUnavailable:
		return "secret store unavailable"
	default:
		return "unknown auth error"
	}
}

// FlowError is the closed error type for the auth subsystem.
type FlowError struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *FlowError) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	case e.Msg != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return e.Kind.String()
	}
}

func (e *FlowError) Unwrap() error {
	return e.Err
}

// flowErrorf builds a FlowError with a formatted message.
func flowErrorf(kind Kind, format string, args ...interface{}) *FlowError {
	return &FlowError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// IsKind reports whether err is (or wraps) a FlowError of the given kind.
func IsKind(err error, kind Kind) bool {
	var fe *FlowError
	return errors.As(err, &fe) && fe.Kind == kind
}

// ErrNoCredential is returned by a CredentialStore when nothing has ever been
// stored, or when the stored blob cannot be decoded. It triggers a fresh
// interactive login.
var ErrNoCredential = errors.New("no credential stored")
