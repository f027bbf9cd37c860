package handlers

import (
	"errors"
	"net/http"

	"labchem/internal/forms"
	"labchem/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

var pageTitles = map[string]string{
	"login":        "Log in",
	"new_user":     "New user",
	"database":     "Database",
	"reagent_form": "New reagent",
}

// render executes a page with the values every page needs: the auth flag,
// pending flashes, the title and a (possibly empty) error map.
func render(c *fiber.Ctx, status int, name string, data fiber.Map) error {
	s := middleware.Session(c)
	bind := fiber.Map{
		"Title":    pageTitles[name],
		"LoggedIn": s.Identity().IsAuthenticated(),
		"Flashes":  s.PopFlashes(),
		"Errors":   forms.FieldErrors(nil),
	}
	for k, v := range data {
		bind[k] = v
	}
	return c.Status(status).Render(name, bind)
}

// redirect answers with 303 so that browsers follow a POST with a GET.
func redirect(c *fiber.Ctx, location string) error {
	return c.Redirect(location, fiber.StatusSeeOther)
}

// ErrorHandler renders failed requests as an error page. Only 5xx errors are logged.
func ErrorHandler(l *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Something went wrong, please try again."

		var e *fiber.Error
		if errors.As(err, &e) {
			code = e.Code
			message = e.Message
		}
		if code >= fiber.StatusInternalServerError {
			l.Error("request failed",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Error(err),
			)
			message = "Something went wrong, please try again."
		}

		// The session was already committed, so flashes stay queued.
		renderErr := c.Status(code).Render("error", fiber.Map{
			"Title":    http.StatusText(code),
			"LoggedIn": middleware.CurrentIdentity(c).IsAuthenticated(),
			"Errors":   forms.FieldErrors(nil),
			"Code":     code,
			"Status":   http.StatusText(code),
			"Message":  message,
		})
		if renderErr != nil {
			l.Error("failed to render error page", zap.Error(renderErr))
			return c.Status(code).SendString(http.StatusText(code))
		}
		return nil
	}
}
