package events

const (
	// KindSessionError identifies a non-fatal session-level failure.
	KindSessionError Kind = "session.error"
)

// SessionError reports a session-level failure. It does not terminate the
// stream; the session keeps delivering events for as long as the transport
// stays open.
type SessionError struct {
	Base
	Reason string
}

// NewSessionError creates a session error event.
func NewSessionError(reason string) SessionError {
	return SessionError{Base: NewBase(KindSessionError), Reason: reason}
}
