package middleware

import (
	"labchem/internal/sessions"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const sessionKey = "session"

// Sessions loads the request's session into the context and commits it after
// the handler ran, whether or not the handler failed.
func Sessions(manager *sessions.Manager, l *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := manager.Load(c)
		if err != nil {
			l.Error("failed to load session", zap.Error(err))
			return err
		}
		c.Locals(sessionKey, s)

		err = c.Next()

		if commitErr := manager.Commit(s); commitErr != nil {
			l.Error("failed to commit session", zap.Error(commitErr))
			if err == nil {
				err = commitErr
			}
		}
		return err
	}
}

// Session returns the session loaded by Sessions. Outside that middleware it
// returns a throwaway anonymous session.
func Session(c *fiber.Ctx) *sessions.Session {
	if s, ok := c.Locals(sessionKey).(*sessions.Session); ok {
		return s
	}
	return &sessions.Session{}
}

// CurrentIdentity returns the requester's identity.
func CurrentIdentity(c *fiber.Ctx) sessions.Identity {
	return Session(c).Identity()
}
