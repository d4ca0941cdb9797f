package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	goerrors "github.com/goliatone/go-errors"
)

// eventBuffer absorbs provider emissions while bootstrap is still running;
// the loop preserves emission order regardless.
const eventBuffer = 16

// Manager orchestrates bootstrap, provider-event subscription, sign-in with
// role verification, sign-out, and profile updates. It is the only writer
// of its Store.
type Manager struct {
	provider  IdentityProvider
	profiles  ProfileRepository
	store     *Store
	notifier  Notifier
	navigator Navigator
	logger    Logger

	signingIn atomic.Bool
	commitMu  sync.Mutex

	started     atomic.Bool
	events      chan Event
	unsubscribe Unsubscribe
	loopDone    chan struct{}
	closeOnce   sync.Once
}

// NewManager returns a manager bound to the given collaborators. A nil
// store gets a fresh one; retrieve it with Store().
func NewManager(provider IdentityProvider, profiles ProfileRepository, store *Store) *Manager {
	if provider == nil {
		panic("session: Manager requires an IdentityProvider")
	}
	if profiles == nil {
		panic("session: Manager requires a ProfileRepository")
	}
	if store == nil {
		store = NewStore()
	}
	return &Manager{
		provider:  provider,
		profiles:  profiles,
		store:     store,
		notifier:  noopNotifier{},
		navigator: noopNavigator{},
		logger:    defLogger{},
	}
}

func (m *Manager) WithLogger(logger Logger) *Manager {
	if logger != nil {
		m.logger = logger
	}
	return m
}

// WithNotifier configures where operation outcomes are surfaced.
func (m *Manager) WithNotifier(notifier Notifier) *Manager {
	if notifier != nil {
		m.notifier = notifier
	}
	return m
}

// WithNavigator configures where navigation intents are emitted.
func (m *Manager) WithNavigator(navigator Navigator) *Manager {
	if navigator != nil {
		m.navigator = navigator
	}
	return m
}

// Store exposes the session store for readers.
func (m *Manager) Store() *Store {
	return m.store
}

// Session returns the latest committed snapshot.
func (m *Manager) Session() Snapshot {
	return m.store.Snapshot()
}

// Start subscribes to provider changes, runs bootstrap, and launches the
// event loop. Bootstrap completes before any event delivered after it is
// applied: emissions queue in order while bootstrap runs and the loop only
// starts draining once the bootstrap commit has landed. Call once.
func (m *Manager) Start(ctx context.Context) error {
	if !m.started.CompareAndSwap(false, true) {
		return goerrors.New("session manager already started", goerrors.CategoryOperation).
			WithCode(goerrors.CodeConflict)
	}

	m.store.write(Snapshot{Status: StatusLoading})

	m.events = make(chan Event, eventBuffer)
	m.loopDone = make(chan struct{})
	m.unsubscribe = m.provider.SubscribeToChanges(func(evt Event) {
		m.events <- evt
	})

	m.bootstrap(ctx)

	go m.loop(ctx)

	return nil
}

// Close releases the provider subscription and drains the event loop. The
// provider guarantees no callbacks after Unsubscribe returns, so no commit
// can land on a torn-down manager. Safe to call more than once.
func (m *Manager) Close() {
	if !m.started.Load() {
		return
	}
	m.closeOnce.Do(func() {
		if m.unsubscribe != nil {
			m.unsubscribe()
		}
		close(m.events)
		<-m.loopDone
	})
}

// SignIn verifies credentials, checks the profile role against the
// requested role, and commits the session. On a role mismatch the
// just-established provider session is revoked and the store goes
// anonymous. Only one sign-in may be in flight at a time.
//
// Providers that emit events for their own VerifyCredentials and
// RevokeSession calls deliver those through the event loop too, so on a
// role mismatch readers may briefly observe the rejected session before
// the queued sign-out settles the store on anonymous.
func (m *Manager) SignIn(ctx context.Context, email, password string, requested Role) (Route, error) {
	if !requested.IsValid() {
		err := goerrors.New(fmt.Sprintf("unknown role %q", requested), goerrors.CategoryValidation).
			WithCode(goerrors.CodeBadRequest)
		m.notifier.Failure(err.Message)
		return RouteHome, err
	}

	if !m.signingIn.CompareAndSwap(false, true) {
		m.notifier.Failure(ErrSignInInFlight.Message)
		return RouteHome, ErrSignInInFlight
	}
	defer m.signingIn.Store(false)

	identity, err := m.provider.VerifyCredentials(ctx, email, password)
	if err != nil {
		m.logger.Error("sign-in credential check failed", "email", email, "error", err)
		richErr := classifyCredentialError(err)
		m.notifier.Failure(richErr.Message)
		return RouteHome, richErr
	}

	profile, err := m.fetchProfile(ctx, identity)
	if err != nil {
		m.logger.Error("sign-in profile fetch failed", "identity", identity.ID(), "error", err)
		richErr := goerrors.Wrap(err, ErrProfileFetchFailure.Category, ErrProfileFetchFailure.Message).
			WithTextCode(TextCodeProfileFetchFailure)
		m.notifier.Failure(richErr.Message)
		return RouteHome, richErr
	}

	if profile.Role != requested {
		if err := m.provider.RevokeSession(ctx); err != nil {
			m.logger.Error("revoking session after role mismatch failed", "identity", identity.ID(), "error", err)
		}
		m.commit(Snapshot{Status: StatusAnonymous})
		m.notifier.Failure(fmt.Sprintf("Invalid login. Please use the correct %s login form.", requested))
		return RouteHome, ErrRoleMismatch
	}

	m.commit(Snapshot{Status: StatusAuthenticated, Identity: identity, Profile: profile})

	destination := requested.Dashboard()
	m.notifier.Success(fmt.Sprintf("Logged in as %s", requested))
	m.navigator.Go(destination)

	return destination, nil
}

// SignOut revokes the provider session and commits anonymous. Calling it
// while already anonymous is a no-op success.
func (m *Manager) SignOut(ctx context.Context) error {
	if m.store.Status() != StatusAuthenticated {
		return nil
	}

	if err := m.provider.RevokeSession(ctx); err != nil {
		m.logger.Error("sign-out revoke failed", "error", err)
		richErr := goerrors.Wrap(err, goerrors.CategoryInternal, "could not sign out")
		m.notifier.Failure(richErr.Message)
		return richErr
	}

	m.commit(Snapshot{Status: StatusAnonymous})
	m.notifier.Success("Logged out successfully")
	m.navigator.Go(RouteHome)

	return nil
}

// UpdateProfile writes the partial update to the repository and merges it
// into the cached profile. The store is untouched on any failure.
func (m *Manager) UpdateProfile(ctx context.Context, patch ProfileUpdate) error {
	snap := m.store.Snapshot()
	if !snap.Authenticated() {
		m.notifier.Failure(ErrNotAuthenticated.Message)
		return ErrNotAuthenticated
	}

	if err := patch.Validate(); err != nil {
		richErr := goerrors.Wrap(err, goerrors.CategoryValidation, "invalid profile update").
			WithCode(goerrors.CodeBadRequest)
		m.notifier.Failure(richErr.Message)
		return richErr
	}

	if patch.IsZero() {
		return nil
	}

	if err := m.profiles.Patch(ctx, snap.Identity.ID(), patch); err != nil {
		m.logger.Error("profile update failed", "identity", snap.Identity.ID(), "error", err)
		richErr := goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update profile")
		m.notifier.Failure(richErr.Message)
		return richErr
	}

	m.commit(Snapshot{
		Status:   StatusAuthenticated,
		Identity: snap.Identity,
		Profile:  patch.ApplyTo(snap.Profile),
	})
	m.notifier.Success("Profile updated successfully")

	return nil
}

// bootstrap recovers a pre-existing provider session. Failures are logged,
// never surfaced: no user action triggered this path.
func (m *Manager) bootstrap(ctx context.Context) {
	identity, err := m.provider.CurrentSession(ctx)
	if err != nil {
		m.logger.Error("bootstrap session lookup failed", "error", err)
		m.commit(Snapshot{Status: StatusAnonymous})
		return
	}

	if identity == nil {
		m.commit(Snapshot{Status: StatusAnonymous})
		return
	}

	profile, err := m.fetchProfile(ctx, identity)
	if err != nil {
		m.logger.Error("bootstrap profile fetch failed", "identity", identity.ID(), "error", err)
		m.commit(Snapshot{Status: StatusAnonymous})
		return
	}

	m.commit(Snapshot{Status: StatusAuthenticated, Identity: identity, Profile: profile})
}

// loop applies provider events strictly in emission order. Processing of
// event n+1 cannot begin before the commit for event n completes because a
// single goroutine does both.
func (m *Manager) loop(ctx context.Context) {
	defer close(m.loopDone)
	for evt := range m.events {
		m.apply(ctx, evt)
	}
}

func (m *Manager) apply(ctx context.Context, evt Event) {
	switch evt.Kind {
	case EventSignedIn:
		if evt.Identity == nil {
			m.logger.Warn("signed-in event without identity, ignoring")
			return
		}
		profile, err := m.fetchProfile(ctx, evt.Identity)
		if err != nil {
			m.logger.Error("event profile fetch failed", "identity", evt.Identity.ID(), "error", err)
			return
		}
		m.commit(Snapshot{Status: StatusAuthenticated, Identity: evt.Identity, Profile: profile})
	case EventSignedOut:
		m.commit(Snapshot{Status: StatusAnonymous})
	default:
		m.logger.Warn("ignoring unknown auth event", "kind", evt.Kind)
	}
}

// fetchProfile loads and sanity-checks the profile for an identity. A
// profile that does not belong to the identity is treated as a fetch
// failure so a half-matching session can never be committed.
func (m *Manager) fetchProfile(ctx context.Context, identity Identity) (*Profile, error) {
	profile, err := m.profiles.Fetch(ctx, identity.ID())
	if err != nil {
		return nil, err
	}
	if profile == nil || profile.ID.String() != identity.ID() {
		return nil, goerrors.New("profile does not belong to the session identity", goerrors.CategoryInternal)
	}
	return profile, nil
}

// commit serializes store writes across operations and the event loop so a
// write is always all-or-nothing.
func (m *Manager) commit(snap Snapshot) {
	m.commitMu.Lock()
	m.store.write(snap)
	m.commitMu.Unlock()
}

func classifyCredentialError(err error) *goerrors.Error {
	if IsInvalidCredentials(err) {
		var richErr *goerrors.Error
		goerrors.As(err, &richErr)
		return richErr
	}
	if goerrors.IsNotFound(err) || errors.Is(err, ErrMismatchedHashAndPassword) {
		return ErrInvalidCredentials
	}
	return goerrors.Wrap(err, goerrors.CategoryInternal, "sign-in failed unexpectedly")
}
