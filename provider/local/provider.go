// Package local implements an identity provider backed by the accounts
// repository. Credentials are checked against bcrypt hashes and the active
// session is carried as a signed token in a TokenStore so it can be restored
// on startup.
package local

import (
	"context"
	"errors"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"

	session "github.com/edustack/go-session"
)

var defaultTokenTTL = 24 * time.Hour

type subscriber struct {
	id int
	fn func(session.Event)
}

// Provider verifies credentials against persisted accounts and tracks the
// current session. Change callbacks run synchronously, in registration
// order, under the provider mutex: once Unsubscribe returns the callback is
// never invoked again.
type Provider struct {
	accounts session.Accounts
	codec    *tokenCodec
	tokens   TokenStore
	logger   session.Logger

	mu      sync.Mutex
	current session.Identity
	subs    []subscriber
	nextSub int
}

type Option func(*Provider)

func WithLogger(logger session.Logger) Option {
	return func(p *Provider) {
		if logger != nil {
			p.logger = logger
		}
	}
}

func WithTokenStore(store TokenStore) Option {
	return func(p *Provider) {
		if store != nil {
			p.tokens = store
		}
	}
}

func WithTokenTTL(ttl time.Duration) Option {
	return func(p *Provider) {
		if ttl > 0 {
			p.codec.ttl = ttl
		}
	}
}

func WithIssuer(issuer string) Option {
	return func(p *Provider) {
		p.codec.issuer = issuer
	}
}

func New(accounts session.Accounts, signingKey []byte, opts ...Option) *Provider {
	if accounts == nil {
		panic("local provider requires an accounts repository")
	}

	if len(signingKey) == 0 {
		panic("local provider requires a signing key")
	}

	logger := session.DefaultLogger()

	p := &Provider{
		accounts: accounts,
		codec:    newTokenCodec(signingKey, "go-session", defaultTokenTTL, logger),
		tokens:   NewMemoryTokenStore(),
		logger:   logger,
	}

	for _, opt := range opts {
		opt(p)
	}

	p.codec.logger = p.logger

	return p
}

var _ session.IdentityProvider = (*Provider)(nil)

// VerifyCredentials checks email and password against the accounts table.
// On success it persists a session token, records the login, and notifies
// subscribers with a SignedIn event.
func (p *Provider) VerifyCredentials(ctx context.Context, email, password string) (session.Identity, error) {
	account, err := p.accounts.GetByEmail(ctx, email)
	if err != nil {
		if repository.IsRecordNotFound(err) || goerrors.IsNotFound(err) {
			return nil, session.ErrInvalidCredentials
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up account")
	}

	if err := session.ComparePasswordAndHash(password, account.PasswordHash); err != nil {
		if errors.Is(err, session.ErrMismatchedHashAndPassword) {
			return nil, session.ErrInvalidCredentials
		}
		return nil, err
	}

	identity := session.NewIdentityFromAccount(account)

	token, err := p.codec.sign(identity)
	if err != nil {
		return nil, err
	}

	if err := p.tokens.Save(token); err != nil {
		p.logger.Warn("failed to persist session token", "error", err)
	}

	if err := p.accounts.TrackSuccessfulLogin(ctx, account); err != nil {
		p.logger.Warn("failed to record login", "account", account.ID, "error", err)
	}

	p.mu.Lock()
	p.current = identity
	p.emitLocked(session.Event{Kind: session.EventSignedIn, Identity: identity})
	p.mu.Unlock()

	return identity, nil
}

// CurrentSession restores the session from the token store. A missing,
// expired, or orphaned token yields (nil, nil); errors are reserved for
// storage failures.
func (p *Provider) CurrentSession(ctx context.Context) (session.Identity, error) {
	p.mu.Lock()
	if p.current != nil {
		identity := p.current
		p.mu.Unlock()
		return identity, nil
	}
	p.mu.Unlock()

	raw, err := p.tokens.Load()
	if err != nil {
		return nil, err
	}

	if raw == "" {
		return nil, nil
	}

	claims, err := p.codec.parse(raw)
	if err != nil {
		p.logger.Info("discarding stale session token")
		p.discardToken()
		return nil, nil
	}

	account, err := p.accounts.GetByEmail(ctx, claims.Email)
	if err != nil {
		if repository.IsRecordNotFound(err) || goerrors.IsNotFound(err) {
			p.logger.Info("session token references missing account", "email", claims.Email)
			p.discardToken()
			return nil, nil
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up account")
	}

	if account.ID.String() != claims.Subject {
		p.logger.Warn("session token subject mismatch", "subject", claims.Subject)
		p.discardToken()
		return nil, nil
	}

	identity := session.NewIdentityFromAccount(account)

	p.mu.Lock()
	p.current = identity
	p.mu.Unlock()

	return identity, nil
}

// RevokeSession clears the persisted token and notifies subscribers with a
// SignedOut event. Revoking an absent session is a no-op.
func (p *Provider) RevokeSession(ctx context.Context) error {
	if err := p.tokens.Clear(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current == nil {
		return nil
	}

	p.current = nil
	p.emitLocked(session.Event{Kind: session.EventSignedOut})

	return nil
}

// IssueToken signs a fresh session token for the given identity, for
// transports that carry the session out of process, such as a cookie.
func (p *Provider) IssueToken(identity session.Identity) (string, error) {
	return p.codec.sign(identity)
}

func (p *Provider) SubscribeToChanges(fn func(session.Event)) session.Unsubscribe {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := p.nextSub
	p.nextSub++
	p.subs = append(p.subs, subscriber{id: id, fn: fn})

	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()

		for i, sub := range p.subs {
			if sub.id == id {
				p.subs = append(p.subs[:i], p.subs[i+1:]...)
				return
			}
		}
	}
}

func (p *Provider) emitLocked(evt session.Event) {
	for _, sub := range p.subs {
		sub.fn(evt)
	}
}

func (p *Provider) discardToken() {
	if err := p.tokens.Clear(); err != nil {
		p.logger.Warn("failed to clear session token", "error", err)
	}
}
