package session

import (
	"context"
	"fmt"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Identity is the provider-issued record for an authenticated principal.
// The manager holds a read-only copy for the lifetime of the session.
type Identity interface {
	ID() string
	Email() string
}

// IdentityProvider is the external source of truth for credentials and
// session lifetime. Implementations must not invoke a subscriber callback
// after its Unsubscribe handle has returned.
type IdentityProvider interface {
	VerifyCredentials(ctx context.Context, email, password string) (Identity, error)
	// CurrentSession returns the pre-existing session identity, or (nil, nil)
	// when there is none. Errors are reserved for transport failures.
	CurrentSession(ctx context.Context) (Identity, error)
	RevokeSession(ctx context.Context) error
	SubscribeToChanges(fn func(Event)) Unsubscribe
}

// ProfileRepository is the keyed store for application profiles.
type ProfileRepository interface {
	Fetch(ctx context.Context, identityID string) (*Profile, error)
	Patch(ctx context.Context, identityID string, patch ProfileUpdate) error
}

// Notifier surfaces operation outcomes to the user.
type Notifier interface {
	Success(message string)
	Failure(message string)
}

// Navigator receives the navigation intent emitted after a successful
// sign-in or sign-out.
type Navigator interface {
	Go(destination Route)
}

// NavigatorFunc adapts a function into a Navigator.
type NavigatorFunc func(Route)

func (f NavigatorFunc) Go(destination Route) {
	if f != nil {
		f(destination)
	}
}

type noopNotifier struct{}

func (noopNotifier) Success(string) {}
func (noopNotifier) Failure(string) {}

type noopNavigator struct{}

func (noopNavigator) Go(Route) {}

// DefaultLogger returns the stdout logger used when no Logger is provided.
func DefaultLogger() Logger {
	return defLogger{}
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] SESSION "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] SESSION "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] SESSION "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] SESSION "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
