package middleware

import (
	"github.com/gofiber/fiber/v2"
)

// LoginPath is where guarded routes send anonymous requests.
const LoginPath = "/login"

// AuthRequired redirects requests without a logged-in session to the login
// page instead of running the handler.
func AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		s := Session(c)
		if !s.Identity().IsAuthenticated() {
			s.AddFlash("info", "Please log in to access this page.")
			return c.Redirect(LoginPath, fiber.StatusSeeOther)
		}

		// Continue to the next handler
		return c.Next()
	}
}
