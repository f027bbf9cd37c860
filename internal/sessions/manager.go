package sessions

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

const (
	keyUserID  = "uid"
	keyFlashes = "flashes"
)

// Manager loads and commits sessions for fiber requests.
type Manager struct {
	store  *session.Store
	signer *Signer
	cookie string
}

// Options configure a Manager.
type Options struct {
	CookieName string
	TTL        time.Duration
	Secure     bool // send the cookie over HTTPS only
}

// NewManager creates a Manager over storage. A nil storage selects fiber's
// in-memory storage, which sweeps expired sessions in the background.
func NewManager(storage fiber.Storage, signer *Signer, opts Options) *Manager {
	if opts.CookieName == "" {
		opts.CookieName = "labchem_session"
	}
	if opts.TTL <= 0 {
		opts.TTL = 24 * time.Hour
	}

	store := session.New(session.Config{
		Storage:        storage,
		Expiration:     opts.TTL,
		KeyLookup:      "cookie:" + opts.CookieName,
		CookiePath:     "/",
		CookieSecure:   opts.Secure,
		CookieHTTPOnly: true,
		CookieSameSite: fiber.CookieSameSiteLaxMode,
		KeyGenerator:   signer.NewID,
	})
	store.RegisterType([]Flash{})

	return &Manager{
		store:  store,
		signer: signer,
		cookie: opts.CookieName,
	}
}

// Load returns the session named by the request cookie, or a fresh anonymous
// one when the cookie is missing, forged or expired.
func (m *Manager) Load(c *fiber.Ctx) (*Session, error) {
	if value := c.Cookies(m.cookie); value != "" {
		if _, err := m.signer.Parse(value); err != nil {
			c.Request().Header.DelCookie(m.cookie)
		}
	}

	raw, err := m.store.Get(c)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	s := &Session{raw: raw}
	if uid, ok := raw.Get(keyUserID).(uint); ok {
		s.UserID = uid
	}
	if flashes, ok := raw.Get(keyFlashes).([]Flash); ok {
		s.Flashes = flashes
	}
	return s, nil
}

// Regenerate moves the session to a new id and drops the old one from storage.
func (m *Manager) Regenerate(s *Session) error {
	if s.raw == nil {
		return nil
	}
	if err := s.raw.Regenerate(); err != nil {
		return fmt.Errorf("failed to regenerate session: %w", err)
	}
	s.dirty = true
	return nil
}

// Commit persists a changed session and writes its cookie. Unchanged sessions
// are not stored, so anonymous browsing leaves nothing behind. The session
// must not be committed twice.
func (m *Manager) Commit(s *Session) error {
	raw := s.raw
	if raw == nil {
		return nil
	}
	s.raw = nil

	if s.destroyed {
		if err := raw.Destroy(); err != nil {
			return fmt.Errorf("failed to destroy session: %w", err)
		}
		return nil
	}
	if !s.dirty {
		return nil
	}

	if s.UserID != 0 {
		raw.Set(keyUserID, s.UserID)
	} else {
		raw.Delete(keyUserID)
	}
	if len(s.Flashes) > 0 {
		raw.Set(keyFlashes, s.Flashes)
	} else {
		raw.Delete(keyFlashes)
	}

	if err := raw.Save(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	s.dirty = false
	return nil
}
