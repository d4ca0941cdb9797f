package session

// EventKind tags a provider-emitted session change.
type EventKind string

const (
	// EventSignedIn announces a newly established provider session.
	EventSignedIn EventKind = "signed_in"
	// EventSignedOut announces that the provider session ended.
	EventSignedOut EventKind = "signed_out"
)

// Event is a provider-emitted session-change notification. Events are
// delivered in emission order and are never dropped.
type Event struct {
	Kind EventKind
	// Identity is set for EventSignedIn, nil otherwise.
	Identity Identity
}

// Unsubscribe releases a provider subscription. After it returns the
// provider will not invoke the callback again. Safe to call more than once.
type Unsubscribe func()
