package domain

import "fmt"

// AuthError is terminal: the session was de-authorized and must not be
// re-established automatically.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("session not authorized: %s", e.Reason)
}

// ConnectionError is a transient session failure; the controller retries it.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string { return fmt.Sprintf("connection: %v", e.Err) }
func (e *ConnectionError) Unwrap() error { return e.Err }

// FetchError means metadata lookup failed; no temp file was created.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string { return fmt.Sprintf("fetch %s: %v", e.URL, e.Err) }
func (e *FetchError) Unwrap() error { return e.Err }

// DownloadError means the media stream failed while writing to disk.
type DownloadError struct {
	Path string
	Err  error
}

func (e *DownloadError) Error() string { return fmt.Sprintf("download to %s: %v", e.Path, e.Err) }
func (e *DownloadError) Unwrap() error { return e.Err }

// DeliveryError means sending the materialized file back to the user failed.
type DeliveryError struct {
	Recipient string
	Err       error
}

func (e *DeliveryError) Error() string { return fmt.Sprintf("deliver to %s: %v", e.Recipient, e.Err) }
func (e *DeliveryError) Unwrap() error { return e.Err }
