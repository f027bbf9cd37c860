package handlers

import (
	"errors"
	"fmt"

	"labchem/internal/forms"
	"labchem/internal/middleware"
	"labchem/internal/services"
	"labchem/internal/sessions"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AuthHandler handles HTTP requests for login, logout and registration.
type AuthHandler struct {
	authService *services.AuthService
	sessions    *sessions.Manager
	l           *zap.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, manager *sessions.Manager, l *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		sessions:    manager,
		l:           l,
	}
}

// RegisterRoutes registers the authentication routes. guard protects the
// routes that need a logged-in user.
func (h *AuthHandler) RegisterRoutes(router fiber.Router, guard fiber.Handler) {
	router.Get("/login", h.HandleLoginPage)
	router.Post("/login", h.HandleLogin)
	router.Get("/new_user", guard, h.HandleNewUserPage)
	router.Post("/new_user", guard, h.HandleNewUser)
	router.Get("/logout", guard, h.HandleLogout)
}

// HandleLoginPage shows the login form.
func (h *AuthHandler) HandleLoginPage(c *fiber.Ctx) error {
	return render(c, fiber.StatusOK, "login", fiber.Map{"Form": forms.LoginForm{}})
}

// HandleLogin checks the credentials and binds the session to the user.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var form forms.LoginForm
	if err := c.BodyParser(&form); err != nil {
		h.l.Debug("failed to parse login form", zap.Error(err))
		return fiber.ErrBadRequest
	}

	if errs := forms.Validate(&form); errs != nil {
		form.Password = ""
		return render(c, fiber.StatusUnprocessableEntity, "login", fiber.Map{"Form": form, "Errors": errs})
	}

	s := middleware.Session(c)
	user, err := h.authService.Login(c.UserContext(), form.Email, form.Password)
	switch {
	case errors.Is(err, services.ErrEmailNotFound):
		s.AddFlash("danger", "That email does not exist, please try again.")
		return redirect(c, "/login")
	case errors.Is(err, services.ErrInvalidCredentials):
		s.AddFlash("danger", "Password incorrect, please try again.")
		return redirect(c, "/login")
	case err != nil:
		return err
	}

	if err := h.sessions.Regenerate(s); err != nil {
		return err
	}
	s.Authenticate(user.ID)
	h.l.Info("user logged in", zap.Uint("id", user.ID))
	return redirect(c, "/database")
}

// HandleNewUserPage shows the registration form.
func (h *AuthHandler) HandleNewUserPage(c *fiber.Ctx) error {
	return render(c, fiber.StatusOK, "new_user", fiber.Map{"Form": forms.NewUserForm{}})
}

// HandleNewUser registers a new user.
func (h *AuthHandler) HandleNewUser(c *fiber.Ctx) error {
	var form forms.NewUserForm
	if err := c.BodyParser(&form); err != nil {
		h.l.Debug("failed to parse registration form", zap.Error(err))
		return fiber.ErrBadRequest
	}

	user, err := h.authService.Register(c.UserContext(), &form)
	if err != nil {
		form.Password, form.PasswordConfirm = "", ""

		var verr *services.ValidationError
		switch {
		case errors.As(err, &verr):
			return render(c, fiber.StatusUnprocessableEntity, "new_user", fiber.Map{"Form": form, "Errors": verr.Fields})
		case errors.Is(err, services.ErrDuplicateEmail):
			return render(c, fiber.StatusUnprocessableEntity, "new_user", fiber.Map{
				"Form":   form,
				"Errors": forms.FieldErrors{"email": "This email is already registered."},
			})
		}
		return err
	}

	middleware.Session(c).AddFlash("success", fmt.Sprintf("User %s created.", user.Email))
	return redirect(c, "/")
}

// HandleLogout clears the session.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	middleware.Session(c).Destroy()
	return redirect(c, "/")
}
