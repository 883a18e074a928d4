package domain

import "context"

// Phase is the connection phase of the messaging session.
type Phase string

const (
	PhaseConnecting Phase = "connecting"
	PhaseOpen       Phase = "open"
	PhaseClosed     Phase = "closed"
)

// CodeLoggedOut is the terminal disconnect status: the linked device was
// removed from the account. Every other cause is treated as transient.
const CodeLoggedOut = 401

// DisconnectCause describes why a session transitioned to closed.
type DisconnectCause struct {
	Code   int
	Reason string
}

// ConnectionUpdate is one connection-state transition emitted by the session.
type ConnectionUpdate struct {
	Phase        Phase
	Cause        *DisconnectCause // set on transition to closed
	PairingToken string           // scannable token for the manual pairing path
	IsNewLogin   bool             // set on the first open after a fresh pairing
}

// Sender sends outbound messages through the live session.
type Sender interface {
	Send(ctx context.Context, msg OutboundMessage) error
}

// Session is the live, authenticated connection to the messaging network.
// The wire protocol, framing and crypto live behind this interface.
type Session interface {
	Sender

	Connect(ctx context.Context) error
	Disconnect()

	// ConnectionEvents emits connection-state transitions.
	ConnectionEvents() <-chan ConnectionUpdate
	// Messages emits inbound message envelopes in arrival order.
	Messages() <-chan InboundMessage
	// CredentialUpdates emits opaque credential blobs that must be persisted
	// so the linked-device identity survives a restart.
	CredentialUpdates() <-chan []byte
}

// SessionFactory builds a session bound to previously persisted credentials.
// A nil blob means no prior pairing exists.
type SessionFactory interface {
	New(ctx context.Context, creds []byte) (Session, error)
}
