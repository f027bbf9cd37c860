// Package sessions keeps logged-in state on the server on top of fiber's
// session middleware. The client only holds a signed session id.
package sessions

import (
	"github.com/gofiber/fiber/v2/middleware/session"
)

// Identity is what handlers need to know about the requester.
type Identity interface {
	ID() uint
	IsAuthenticated() bool
}

type identity uint

func (i identity) ID() uint              { return uint(i) }
func (i identity) IsAuthenticated() bool { return i != 0 }

// Anonymous is the identity of a request without a logged-in user.
var Anonymous Identity = identity(0)

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Category string
	Message  string
}

// Session is the state of one request's session. Values are copied out of the
// stored session on load and written back on commit, so they stay readable
// after the stored session was released.
type Session struct {
	UserID  uint
	Flashes []Flash

	raw       *session.Session
	dirty     bool
	destroyed bool
}

// Identity returns the bound user or Anonymous.
func (s *Session) Identity() Identity {
	return identity(s.UserID)
}

// Authenticate binds the session to a user.
func (s *Session) Authenticate(userID uint) {
	s.UserID = userID
	s.dirty = true
}

// AddFlash queues a message for the next page.
func (s *Session) AddFlash(category, message string) {
	s.Flashes = append(s.Flashes, Flash{Category: category, Message: message})
	s.dirty = true
}

// PopFlashes returns and clears the queued messages.
func (s *Session) PopFlashes() []Flash {
	if len(s.Flashes) == 0 {
		return nil
	}
	flashes := s.Flashes
	s.Flashes = nil
	s.dirty = true
	return flashes
}

// Destroy drops the session entirely; the cookie is cleared on commit.
func (s *Session) Destroy() {
	s.UserID = 0
	s.Flashes = nil
	s.destroyed = true
}
