package session_test

import (
	"context"
	"sync"

	"github.com/goliatone/go-router"
	"github.com/stretchr/testify/mock"

	session "github.com/edustack/go-session"
)

// TestIdentity is a simple implementation of the Identity interface for testing
type TestIdentity struct {
	id    string
	email string
}

func (t TestIdentity) ID() string    { return t.id }
func (t TestIdentity) Email() string { return t.email }

// MockIdentityProvider implements session.IdentityProvider. Subscription is
// handled directly so tests can emit events with Emit.
type MockIdentityProvider struct {
	mock.Mock

	mu   sync.Mutex
	subs []func(session.Event)
}

func (m *MockIdentityProvider) VerifyCredentials(ctx context.Context, email, password string) (session.Identity, error) {
	args := m.Called(ctx, email, password)
	if identity, ok := args.Get(0).(session.Identity); ok {
		return identity, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockIdentityProvider) CurrentSession(ctx context.Context) (session.Identity, error) {
	args := m.Called(ctx)
	if identity, ok := args.Get(0).(session.Identity); ok {
		return identity, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockIdentityProvider) RevokeSession(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockIdentityProvider) SubscribeToChanges(fn func(session.Event)) session.Unsubscribe {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.subs = append(m.subs, fn)
	idx := len(m.subs) - 1

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.subs[idx] = nil
	}
}

// Emit delivers an event to every live subscriber, in subscription order.
func (m *MockIdentityProvider) Emit(evt session.Event) {
	m.mu.Lock()
	subs := make([]func(session.Event), len(m.subs))
	copy(subs, m.subs)
	m.mu.Unlock()

	for _, fn := range subs {
		if fn != nil {
			fn(evt)
		}
	}
}

// SubscriberCount reports how many live subscribers remain.
func (m *MockIdentityProvider) SubscriberCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, fn := range m.subs {
		if fn != nil {
			n++
		}
	}
	return n
}

// MockProfileRepository implements session.ProfileRepository
type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) Fetch(ctx context.Context, identityID string) (*session.Profile, error) {
	args := m.Called(ctx, identityID)
	if profile, ok := args.Get(0).(*session.Profile); ok {
		return profile, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProfileRepository) Patch(ctx context.Context, identityID string, patch session.ProfileUpdate) error {
	args := m.Called(ctx, identityID, patch)
	return args.Error(0)
}

// RecordingNotifier captures messages surfaced to the user.
type RecordingNotifier struct {
	mu        sync.Mutex
	Successes []string
	Failures  []string
}

func (n *RecordingNotifier) Success(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Successes = append(n.Successes, msg)
}

func (n *RecordingNotifier) Failure(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Failures = append(n.Failures, msg)
}

func (n *RecordingNotifier) LastSuccess() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.Successes) == 0 {
		return ""
	}
	return n.Successes[len(n.Successes)-1]
}

func (n *RecordingNotifier) LastFailure() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.Failures) == 0 {
		return ""
	}
	return n.Failures[len(n.Failures)-1]
}

// RecordingNavigator captures navigation intents.
type RecordingNavigator struct {
	mu     sync.Mutex
	Visits []session.Route
}

func (n *RecordingNavigator) Go(destination session.Route) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Visits = append(n.Visits, destination)
}

func (n *RecordingNavigator) Destinations() []session.Route {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]session.Route, len(n.Visits))
	copy(out, n.Visits)
	return out
}

// StubTokenIssuer implements session.TokenIssuer
type StubTokenIssuer struct {
	Token string
	Err   error
}

func (s StubTokenIssuer) IssueToken(identity session.Identity) (string, error) {
	return s.Token, s.Err
}

// MockSignInPayload implements session.SignInPayload
type MockSignInPayload struct {
	Email           string
	Password        string
	Role            session.Role
	ExtendedSession bool
}

func (m MockSignInPayload) GetEmail() string { return m.Email }

func (m MockSignInPayload) GetPassword() string { return m.Password }

func (m MockSignInPayload) GetRole() session.Role { return m.Role }

func (m MockSignInPayload) GetExtendedSession() bool { return m.ExtendedSession }

// MockContext mocks the router.Context
type MockContext struct {
	mock.Mock
	NextCalled bool
}

func (m *MockContext) Next() error {
	m.NextCalled = true
	return nil
}

func (m *MockContext) Context() context.Context {
	args := m.Called()
	c, ok := args.Get(0).(context.Context)
	if !ok {
		panic("arg needs to be context.Context")
	}
	return c
}

func (m *MockContext) SetContext(ctx context.Context) {
	m.Called(ctx)
}

func (m *MockContext) Path() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockContext) Method() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockContext) Body() []byte {
	args := m.Called()
	return args.Get(0).([]byte)
}

func (m *MockContext) Status(code int) router.Context {
	m.Called(code)
	return m
}

func (m *MockContext) SendString(s string) error {
	args := m.Called(s)
	return args.Error(0)
}

func (m *MockContext) Send(b []byte) error {
	args := m.Called(b)
	return args.Error(0)
}

func (m *MockContext) JSON(code int, val any) error {
	args := m.Called(code, val)
	return args.Error(0)
}

func (m *MockContext) NoContent(code int) error {
	args := m.Called(code)
	return args.Error(0)
}

func (m *MockContext) Render(name string, bind any, layout ...string) error {
	if len(layout) > 0 {
		args := m.Called(name, bind, layout[0])
		return args.Error(0)
	}
	args := m.Called(name, bind)
	return args.Error(0)
}

func (m *MockContext) Redirect(path string, status ...int) error {
	if len(status) > 0 {
		args := m.Called(path, status)
		return args.Error(0)
	}
	args := m.Called(path)
	return args.Error(0)
}

func (m *MockContext) RedirectToRoute(name string, data router.ViewContext, status ...int) error {
	if len(status) > 0 {
		args := m.Called(name, data, status[0])
		return args.Error(0)
	}
	args := m.Called(name, data)
	return args.Error(0)
}

func (m *MockContext) RedirectBack(fallback string, status ...int) error {
	if len(status) > 0 {
		args := m.Called(fallback, status)
		return args.Error(0)
	}
	args := m.Called(fallback)
	return args.Error(0)
}

func (m *MockContext) SetHeader(key, val string) router.Context {
	m.Called(key, val)
	return m
}

func (m *MockContext) Header(key string) string {
	args := m.Called(key)
	return args.String(0)
}

func (m *MockContext) Get(key string, defaultValue any) any {
	args := m.Called(key, defaultValue)
	return args.Get(0)
}

func (m *MockContext) GetBool(key string, defaultValue bool) bool {
	args := m.Called(key, defaultValue)
	return args.Bool(0)
}

func (m *MockContext) GetInt(key string, def int) int {
	args := m.Called(key, def)
	return args.Int(0)
}

func (m *MockContext) Set(key string, val any) {
	m.Called(key, val)
}

func (m *MockContext) Bind(i any) error {
	args := m.Called(i)
	return args.Error(0)
}

func (m *MockContext) BindJSON(i any) error {
	args := m.Called(i)
	return args.Error(0)
}

func (m *MockContext) BindXML(i any) error {
	args := m.Called(i)
	return args.Error(0)
}

func (m *MockContext) BindQuery(i any) error {
	args := m.Called(i)
	return args.Error(0)
}

func (m *MockContext) CookieParser(i any) error {
	args := m.Called(i)
	return args.Error(0)
}

func (m *MockContext) Cookie(cookie *router.Cookie) {
	m.Called(cookie)
}

func (m *MockContext) Cookies(key string, defaultValue ...string) string {
	if len(defaultValue) > 0 {
		args := m.Called(key, defaultValue[0])
		return args.String(0)
	}
	args := m.Called(key)
	return args.String(0)
}

func (m *MockContext) Param(key string, defaultValue ...string) string {
	if len(defaultValue) > 0 {
		args := m.Called(key, defaultValue[0])
		return args.String(0)
	}
	args := m.Called(key)
	return args.String(0)
}

func (m *MockContext) ParamsInt(key string, defaultValue int) int {
	args := m.Called(key, defaultValue)
	return args.Int(0)
}

func (m *MockContext) Query(key string, defaultValue string) string {
	args := m.Called(key, defaultValue)
	return args.String(0)
}

func (m *MockContext) QueryInt(key string, defaultValue int) int {
	args := m.Called(key, defaultValue)
	return args.Int(0)
}

func (m *MockContext) Queries() map[string]string {
	args := m.Called()
	return args.Get(0).(map[string]string)
}

func (m *MockContext) GetString(key string, defaultValue string) string {
	args := m.Called(key, defaultValue)
	return args.String(0)
}

func (m *MockContext) Locals(key any, value ...any) any {
	if len(value) > 0 {
		m.Called(key, value[0])
		return nil
	}
	args := m.Called(key)
	return args.Get(0)
}

func (m *MockContext) OriginalURL() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockContext) OnNext(callback func() error) {
	m.Called(callback)
}

func (m *MockContext) Referer() string {
	args := m.Called()
	return args.String(0)
}
