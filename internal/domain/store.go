package domain

import "context"

// CredentialStore persists the opaque session authentication state so the
// same linked-device identity can be resumed after a restart.
type CredentialStore interface {
	// Load returns the persisted blob, or nil when no pairing exists yet.
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, blob []byte) error
}
