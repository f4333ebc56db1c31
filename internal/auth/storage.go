package auth

import (
	"encoding/json"

	"github.com/zalando/go-keyring"
)

// CredentialStore provides secure storage for the credential blob.
type CredentialStore interface {
	// Load retrieves the stored credential. Returns ErrNoCredential when
	// nothing is stored or the blob cannot be decoded.
	Load() (*Credential, error)
	// Save stores the credential, replacing any previous one
	Save(cred *Credential) error
	// Delete removes the stored credential and reports whether one existed
	Delete() (bool, error)
	// Exists checks if a credential is stored
	Exists() bool
}

// KeyringStore implements CredentialStore using the OS keyring. The record is
// addressed by the fixed (service, client-id) pair.
type KeyringStore struct {
	service string
	account string
}

// NewKeyringStore creates a keyring-backed credential store.
func NewKeyringStore() *KeyringStore {
	return &KeyringStore{service: ServiceName, account: DefaultClientID}
}

// Load retrieves the stored credential from the keyring.
func (s *KeyringStore) Load() (*Credential, error) {
	data, err := keyring.Get(s.service, s.account)
	if err != nil {
		if err == keyring.ErrNotFound {
			return nil, ErrNoCredential
		}
		return nil, &FlowError{Kind: KindStoreUnavailable, Msg: "failed to read keyring", Err: err}
	}

	var cred Credential
	if err := json.Unmarshal([]byte(data), &cred); err != nil {
		// An undecodable record behaves like an absent one: the user signs
		// in again and the record is overwritten with a valid blob.
		return nil, ErrNoCredential
	}

	return &cred, nil
}

// Save stores the credential in the keyring.
func (s *KeyringStore) Save(cred *Credential) error {
	if cred == nil {
		return flowErrorf(KindStoreUnavailable, "cannot save nil credential")
	}

	data, err := json.Marshal(cred)
	if err != nil {
		return &FlowError{Kind: KindStoreUnavailable, Msg: "failed to encode credential", Err: err}
	}

	if err := keyring.Set(s.service, s.account, string(data)); err != nil {
		return &FlowError{Kind: KindStoreUnavailable, Msg: "failed to write keyring", Err: err}
	}

	return nil
}

// Delete removes the stored credential from the keyring.
func (s *KeyringStore) Delete() (bool, error) {
	err := keyring.Delete(s.service, s.account)
	if err == keyring.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, &FlowError{Kind: KindStoreUnavailable, Msg: "failed to delete from keyring", Err: err}
	}
	return true, nil
}

// Exists checks if a credential is stored.
func (s *KeyringStore) Exists() bool {
	_, err := keyring.Get(s.service, s.account)
	return err == nil
}
