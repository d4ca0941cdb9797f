package session

import (
	"net/http"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"

	"github.com/edustack/go-session/middleware/sessionguard"
)

const defaultRejectedRouteKey = "rejected_route"

// SignInPayload carries the values of a submitted login form.
type SignInPayload interface {
	GetEmail() string
	GetPassword() string
	GetRole() Role
	GetExtendedSession() bool
}

// TokenIssuer signs session tokens for transports that carry the session
// out of process, such as a cookie. The local provider satisfies it.
type TokenIssuer interface {
	IssueToken(identity Identity) (string, error)
}

type RouteSession struct {
	manager                *Manager
	issuer                 TokenIssuer
	signingKey             []byte
	cookieName             string
	rejectedRouteKey       string
	cookieDuration         time.Duration
	extendedCookieDuration time.Duration
	Logger                 Logger
	AuthErrorHandler       func(c router.Context, err error) error
	ErrorHandler           func(c router.Context, err error) error
}

func NewHTTPSessionRoutes(manager *Manager, issuer TokenIssuer, signingKey []byte) (*RouteSession, error) {
	if manager == nil {
		return nil, errors.New("http session routes require a manager", errors.CategoryOperation)
	}

	if issuer == nil {
		return nil, errors.New("http session routes require a token issuer", errors.CategoryOperation)
	}

	a := &RouteSession{
		manager:                manager,
		issuer:                 issuer,
		signingKey:             signingKey,
		cookieName:             sessionguard.DefaultSessionCookie,
		rejectedRouteKey:       defaultRejectedRouteKey,
		cookieDuration:         24 * time.Hour,
		extendedCookieDuration: 30 * 24 * time.Hour,
		Logger:                 defLogger{},
	}

	a.ErrorHandler = a.defaultErrHandler
	a.AuthErrorHandler = a.defaultAuthErrHandler

	return a, nil
}

func (a *RouteSession) WithCookieDuration(d, extended time.Duration) *RouteSession {
	if d > 0 {
		a.cookieDuration = d
	}
	if extended > 0 {
		a.extendedCookieDuration = extended
	}
	return a
}

func (a RouteSession) GetCookieDuration() time.Duration {
	return a.cookieDuration
}

func (a RouteSession) GetExtendedCookieDuration() time.Duration {
	return a.extendedCookieDuration
}

// ProtectedRoute guards a route behind the session token and, when role is
// not empty, behind that role. The token subject is cross-checked against
// the live session store.
func (a *RouteSession) ProtectedRoute(role Role, errorHandler func(router.Context, error) error) router.MiddlewareFunc {
	return sessionguard.New(sessionguard.Config{
		ErrorHandler: errorHandler,
		SigningKey: sessionguard.SigningKey{
			Key:    a.signingKey,
			JWTAlg: "HS256",
		},
		TokenLookup:  "cookie:" + a.cookieName + ",header:" + router.HeaderAuthorization,
		Sessions:     a.manager.Store(),
		RequiredRole: role.String(),
	})
}

// SignIn runs the sign in flow and, on success, sets the session cookie.
// The returned route is where the client should land next.
func (a *RouteSession) SignIn(ctx router.Context, payload SignInPayload) (Route, error) {
	destination, err := a.manager.SignIn(ctx.Context(), payload.GetEmail(), payload.GetPassword(), payload.GetRole())
	if err != nil {
		a.Logger.Error("Sign in error", "error", err)
		return destination, err
	}

	snap := a.manager.Session()
	if snap.Identity == nil {
		return destination, errors.New("sign in produced no identity", errors.CategoryInternal)
	}

	token, err := a.issuer.IssueToken(snap.Identity)
	if err != nil {
		a.Logger.Error("Session token issue error", "error", err)
		return destination, err
	}

	duration := a.cookieDuration
	if payload.GetExtendedSession() {
		duration = a.extendedCookieDuration
	}

	a.setCookieToken(ctx, token, duration)
	return destination, nil
}

// SignOut ends the session and deletes the cookie. Safe to call when
// nobody is signed in.
func (a *RouteSession) SignOut(ctx router.Context) error {
	if err := a.manager.SignOut(ctx.Context()); err != nil {
		return err
	}

	a.cookieDel(ctx, a.cookieName)
	return nil
}

func (a *RouteSession) MakeClientRouteAuthErrorHandler(optional bool) func(router.Context, error) error {
	return func(ctx router.Context, err error) error {
		richErr := errors.Wrap(err, errors.CategoryAuth, "Invalid session").
			WithCode(errors.CodeUnauthorized)

		if optional {
			a.Logger.Info("Optional session check failed, proceeding", "error", richErr.Message)
			return ctx.Next()
		}

		return a.ErrorHandler(ctx, richErr)
	}
}

func (a *RouteSession) GetRedirect(ctx router.Context, def ...string) string {
	r := ctx.Cookies(a.rejectedRouteKey)
	if r == "" {
		if len(def) == 0 {
			return string(RouteHome)
		}
		return def[0]
	}
	a.cookieDel(ctx, a.rejectedRouteKey)
	return r
}

func (a *RouteSession) SetRedirect(ctx router.Context) {
	a.Logger.Info("Setting redirect cookie", "key", a.rejectedRouteKey, "path", ctx.OriginalURL())

	ctx.Cookie(&router.Cookie{
		Name:     a.rejectedRouteKey,
		Value:    ctx.OriginalURL(),
		Expires:  time.Now().Add(time.Minute * 5),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

func (a *RouteSession) setCookieToken(c router.Context, val string, duration time.Duration) {
	c.Cookie(&router.Cookie{
		Name:     a.cookieName,
		Value:    val,
		Expires:  time.Now().Add(duration),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

func (a *RouteSession) cookieDel(c router.Context, name string) {
	c.Cookie(&router.Cookie{
		Name:     name,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour * (24 * 365)),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

func (a *RouteSession) defaultAuthErrHandler(c router.Context, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryAuth, "An unexpected session error").
			WithCode(errors.CodeUnauthorized)
	}

	a.Logger.Info(
		"Session error, redirecting to login",
		"error", richErr.Message,
		"text_code", richErr.TextCode,
		"path", c.OriginalURL(),
	)

	a.SetRedirect(c)

	statusCode := http.StatusSeeOther
	if c.Method() == string(router.GET) {
		statusCode = http.StatusFound
	}
	return c.Redirect("/login", statusCode)
}

func (a *RouteSession) defaultErrHandler(c router.Context, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
			WithCode(errors.CodeInternal)
	}

	a.Logger.Info(
		"Middleware error handler",
		"error", richErr.Message,
		"category", richErr.Category,
		"details", print.MaybePrettyJSON(richErr.Metadata),
	)

	switch richErr.Category {
	case errors.CategoryAuth, errors.CategoryAuthz:
		return a.AuthErrorHandler(c, richErr)
	default:
		return c.Status(richErr.Code).Render("errors/500", router.ViewContext{
			"error": richErr,
		})
	}
}
