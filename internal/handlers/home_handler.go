package handlers

import (
	"errors"

	"labchem/internal/middleware"
	"labchem/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// HomeHandler serves the landing page.
type HomeHandler struct {
	authService *services.AuthService
	l           *zap.Logger
}

// NewHomeHandler creates a new HomeHandler.
func NewHomeHandler(authService *services.AuthService, l *zap.Logger) *HomeHandler {
	return &HomeHandler{authService: authService, l: l}
}

// RegisterRoutes registers the landing page.
func (h *HomeHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/", h.HandleHome)
}

// HandleHome renders the landing page with the current auth state.
func (h *HomeHandler) HandleHome(c *fiber.Ctx) error {
	data := fiber.Map{}
	if identity := middleware.CurrentIdentity(c); identity.IsAuthenticated() {
		user, err := h.authService.GetUser(c.UserContext(), identity.ID())
		if errors.Is(err, services.ErrNotFound) {
			// The account behind the session is gone.
			h.l.Warn("session user not found", zap.Uint("id", identity.ID()), zap.Error(err))
			middleware.Session(c).Destroy()
			return redirect(c, "/login")
		}
		if err != nil {
			return err
		}
		data["User"] = user
	}
	return render(c, fiber.StatusOK, "index", data)
}
