package domain

// SessionState is the lifecycle phase of an analysis session.
type SessionState string

// Session states.
const (
	// SessionEmpty has no sources yet.
	SessionEmpty SessionState = "empty"

	// SessionPopulating has at least one source and accepts changes.
	SessionPopulating SessionState = "populating"

	// SessionValidated passed a dry-run build. Any change returns it to populating.
	SessionValidated SessionState = "validated"

	// SessionSubmitted handed a request to the backend successfully. Terminal.
	SessionSubmitted SessionState = "submitted"

	// SessionCancelled was discarded by the user. Terminal.
	SessionCancelled SessionState = "cancelled"
)

// String returns the string representation.
func (s SessionState) String() string {
	return string(s)
}

// IsClosed returns true if the session no longer accepts changes.
func (s SessionState) IsClosed() bool {
	return s == SessionSubmitted || s == SessionCancelled
}
