package session

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	"github.com/goliatone/go-router/flash"
)

// RegisterSessionRoutes wires the session controller into a router.
func RegisterSessionRoutes[T any](app router.Router[T], opts ...SessionControllerOption) {

	controller := NewSessionController(opts...)

	app.Get(controller.Routes.Home, controller.HomeShow).
		SetName("home.get")

	app.
		Get(controller.Routes.Login,
			controller.LoginShow,
		).
		SetName("sign-in.get")

	app.
		Post(
			controller.Routes.Login,
			controller.LoginPost,
		).
		SetName("sign-in.post")

	app.Get(controller.Routes.Logout, controller.LogOut).SetName("sign-out.get")

	app.Get(controller.Routes.Register, controller.RegistrationShow).
		SetName("register.get")
	app.Post(controller.Routes.Register, controller.RegistrationCreate).
		SetName("register.post")

	authErr := controller.Auther.MakeClientRouteAuthErrorHandler(false)

	app.Get(controller.Routes.StudentDashboard, controller.StudentDashboardShow,
		controller.Auther.ProtectedRoute(RoleStudent, authErr)).
		SetName("dashboard.student.get")

	app.Get(controller.Routes.TeacherDashboard, controller.TeacherDashboardShow,
		controller.Auther.ProtectedRoute(RoleTeacher, authErr)).
		SetName("dashboard.teacher.get")

	app.Get(controller.Routes.Profile, controller.ProfileShow,
		controller.Auther.ProtectedRoute("", authErr)).
		SetName("profile.get")
	app.Post(controller.Routes.Profile, controller.ProfileUpdate,
		controller.Auther.ProtectedRoute("", authErr)).
		SetName("profile.post")
}

type SessionControllerRoutes struct {
	Home             string
	Login            string
	Logout           string
	Register         string
	Profile          string
	StudentDashboard string
	TeacherDashboard string
}

type SessionControllerViews struct {
	Home             string
	Login            string
	Register         string
	Profile          string
	StudentDashboard string
	TeacherDashboard string
}

type SessionController struct {
	Debug        bool
	Logger       Logger
	Repo         RepositoryManager
	Manager      *Manager
	Routes       *SessionControllerRoutes
	Views        *SessionControllerViews
	Auther       *RouteSession
	ErrorHandler router.ErrorHandler
}

type SessionControllerOption func(*SessionController) *SessionController

func NewSessionController(opts ...SessionControllerOption) *SessionController {
	c := &SessionController{
		Logger:       defLogger{},
		ErrorHandler: defaultErrHandler,
		Routes: &SessionControllerRoutes{
			Home:             string(RouteHome),
			Login:            "/login",
			Logout:           "/logout",
			Register:         "/register",
			Profile:          "/profile",
			StudentDashboard: string(RouteStudentDashboard),
			TeacherDashboard: string(RouteTeacherDashboard),
		},
		Views: &SessionControllerViews{
			Home:             "home",
			Login:            "login",
			Register:         "register",
			Profile:          "profile",
			StudentDashboard: "dashboard_student",
			TeacherDashboard: "dashboard_teacher",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in session controller...")
	}

	if c.Manager == nil {
		panic("Missing Manager in session controller...")
	}

	if c.Auther == nil {
		panic("Missing RouteSession in session controller...")
	}

	return c
}

func (a *SessionController) HomeShow(ctx router.Context) error {
	return ctx.Render(a.Views.Home, router.ViewContext{
		"session": a.Manager.Session(),
	})
}

func (a *SessionController) LoginShow(ctx router.Context) error {
	return ctx.Render(a.Views.Login, router.ViewContext{
		"errors": nil,
		"record": nil,
	})
}

// LoginRequest payload
type LoginRequest struct {
	Email      string `form:"email" json:"email"`
	Password   string `form:"password" json:"password"`
	Role       string `form:"role" json:"role"`
	RememberMe bool   `form:"remember_me" json:"remember_me"`
}

// GetEmail returns the email
func (r LoginRequest) GetEmail() string {
	return r.Email
}

// GetPassword will return the password
func (r LoginRequest) GetPassword() string {
	return r.Password
}

// GetRole returns the role the form was submitted for
func (r LoginRequest) GetRole() Role {
	return Role(r.Role)
}

// GetExtendedSession reports whether remember me was checked
func (r LoginRequest) GetExtendedSession() bool {
	return r.RememberMe
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Email,
			validation.Required,
			is.Email,
		),
		validation.Field(
			&r.Password,
			validation.Required,
		),
		validation.Field(
			&r.Role,
			validation.Required,
			validation.In(string(RoleStudent), string(RoleTeacher)),
		),
	)
}

func (a *SessionController) LoginPost(ctx router.Context) error {
	payload := new(LoginRequest)
	errs := map[string]string{}

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("sign in parse payload: ", "error", err)
		return a.ErrorHandler(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return ctx.Render(a.Views.Login, router.ViewContext{
			"record":     payload,
			"validation": formatValidationErrors(err),
		})
	}

	if a.Debug {
		fmt.Println("======= SESSION LOGIN ======")
		fmt.Println(print.MaybePrettyJSON(payload))
		fmt.Println("============================")
	}

	destination, err := a.Auther.SignIn(ctx, payload)
	if err != nil {
		errs["authentication"] = signInErrorMessage(err, payload.GetRole())
		return ctx.Render(a.Views.Login, router.ViewContext{
			"errors": errs,
			"record": payload,
		})
	}

	redirect := a.Auther.GetRedirect(ctx, string(destination))

	return ctx.Redirect(redirect, router.StatusSeeOther)
}

func signInErrorMessage(err error, requested Role) string {
	switch {
	case IsRoleMismatch(err):
		return fmt.Sprintf("Invalid login. Please use the correct %s login form.", requested)
	case IsInvalidCredentials(err):
		return "Invalid email or password"
	case IsSignInInFlight(err):
		return "A sign in is already in progress"
	default:
		return "Authentication Error"
	}
}

func (a *SessionController) LogOut(ctx router.Context) error {
	if err := a.Auther.SignOut(ctx); err != nil {
		a.Logger.Error("sign out error: ", "error", err)
	}
	return ctx.Redirect(string(RouteHome), router.StatusTemporaryRedirect)
}

func (a *SessionController) RegistrationShow(ctx router.Context) error {
	return ctx.Render(a.Views.Register, router.ViewContext{
		"errors": map[string]string{},
		"record": RegisterAccountMessage{},
	})
}

// RegistrationCreatePayload is the form payload
type RegistrationCreatePayload struct {
	Name            string `form:"name" json:"name"`
	Email           string `form:"email" json:"email"`
	Phone           string `form:"phone_number" json:"phone_number"`
	Role            string `form:"role" json:"role"`
	Password        string `form:"password" json:"password"`
	ConfirmPassword string `form:"confirm_password" json:"confirm_password"`
}

// Validate will validate the payload
func (r RegistrationCreatePayload) Validate() error {

	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Length(1, 200)),
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Phone, validation.Length(10, 11), is.Digit),
		validation.Field(&r.Role, validation.Required, validation.In(string(RoleStudent), string(RoleTeacher))),
		validation.Field(&r.Password, validation.Required, validation.Length(10, 100)),
		validation.Field(
			&r.ConfirmPassword,
			validation.Required,
			validation.Length(10, 100),
			validation.By(ValidateStringEquals(r.Password)),
		),
	)
}

func (a *SessionController) RegistrationCreate(ctx router.Context) error {
	payload := new(RegistrationCreatePayload)

	if err := ctx.Bind(payload); err != nil {
		errs := map[string]string{}
		errs["form"] = "Failed to parse form"
		a.Logger.Error("register account parse payload: ", "error", err)
		return flash.WithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Error parsing body",
		}).Status(fiber.StatusBadRequest).Render(a.Views.Register, router.ViewContext{
			"errors": errs,
			"record": payload,
		})
	}

	if err := payload.Validate(); err != nil {
		errs := formatValidationErrors(err)
		a.Logger.Error("register account validate payload: ", "error", err)

		return flash.WithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Error validating payload",
		}).Render(a.Views.Register, router.ViewContext{
			"record":     payload,
			"validation": errs,
		})
	}

	req := RegisterAccountMessage{
		Name:     payload.Name,
		Email:    payload.Email,
		Phone:    payload.Phone,
		Role:     Role(payload.Role),
		Password: payload.Password,
	}

	registerAccount := RegisterAccountHandler{Repo: a.Repo}
	if err := registerAccount.Execute(ctx.Context(), req); err != nil {
		a.Logger.Error("register account error: ", "error", err)

		return flash.WithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Error registering account",
		}).Render(a.Views.Register, router.ViewContext{
			"record": payload,
			"errors": []string{err.Error()},
		})
	}

	return flash.WithSuccess(ctx, router.ViewContext{
		"system_message": "Successful account registration",
	}).Redirect(a.Routes.Login, fiber.StatusSeeOther)
}

func (a *SessionController) StudentDashboardShow(ctx router.Context) error {
	return ctx.Render(a.Views.StudentDashboard, router.ViewContext{
		"session": a.Manager.Session(),
	})
}

func (a *SessionController) TeacherDashboardShow(ctx router.Context) error {
	return ctx.Render(a.Views.TeacherDashboard, router.ViewContext{
		"session": a.Manager.Session(),
	})
}

func (a *SessionController) ProfileShow(ctx router.Context) error {
	snap := a.Manager.Session()

	return ctx.Render(a.Views.Profile, router.ViewContext{
		"errors":  map[string]string{},
		"session": snap,
		"record":  snap.Profile,
	})
}

// ProfileUpdatePayload is the profile editor form payload. Empty fields are
// treated as untouched and left out of the patch.
type ProfileUpdatePayload struct {
	Name      string `form:"name" json:"name"`
	AvatarURL string `form:"avatar_url" json:"avatar_url"`
	Bio       string `form:"bio" json:"bio"`
}

func (r ProfileUpdatePayload) toPatch() ProfileUpdate {
	patch := ProfileUpdate{}
	if r.Name != "" {
		patch.Name = &r.Name
	}
	if r.AvatarURL != "" {
		patch.AvatarURL = &r.AvatarURL
	}
	if r.Bio != "" {
		patch.Bio = &r.Bio
	}
	return patch
}

func (a *SessionController) ProfileUpdate(ctx router.Context) error {
	payload := new(ProfileUpdatePayload)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("profile update parse payload: ", "error", err)
		return flash.WithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Error parsing body",
		}).Status(fiber.StatusBadRequest).Render(a.Views.Profile, router.ViewContext{
			"errors": map[string]string{"form": "Failed to parse form"},
			"record": payload,
		})
	}

	if err := a.Manager.UpdateProfile(ctx.Context(), payload.toPatch()); err != nil {
		a.Logger.Error("profile update error: ", "error", err)

		if IsNotAuthenticated(err) {
			return a.Auther.AuthErrorHandler(ctx, err)
		}

		return flash.WithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Error updating profile",
		}).Render(a.Views.Profile, router.ViewContext{
			"record": payload,
			"errors": []string{err.Error()},
		})
	}

	return flash.WithSuccess(ctx, router.ViewContext{
		"system_message": "Profile updated successfully",
	}).Redirect(a.Routes.Profile, fiber.StatusSeeOther)
}

// ValidateStringEquals will check that both values match
func ValidateStringEquals(str string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if s != str {
			return ErrValuesMustMatch
		}
		return nil
	}
}

// formatValidationErrors flattens ozzo validation errors into a field to
// message map for templates.
func formatValidationErrors(err error) map[string]string {
	out := map[string]string{}

	if errs, ok := err.(validation.Errors); ok {
		for field, ferr := range errs {
			out[field] = ferr.Error()
		}
		return out
	}

	if err != nil {
		out["form"] = err.Error()
	}

	return out
}

func defaultErrHandler(c router.Context, err error) error {
	return c.Render("errors/500", router.ViewContext{
		"message": err.Error(),
	})
}
