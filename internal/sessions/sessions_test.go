package sessions_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"labchem/internal/sessions"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingStorage is a fiber.Storage that remembers the expiry of every write.
type recordingStorage struct {
	mu   sync.Mutex
	data map[string][]byte
	exps map[string]time.Duration
}

func newRecordingStorage() *recordingStorage {
	return &recordingStorage{data: map[string][]byte{}, exps: map[string]time.Duration{}}
}

func (r *recordingStorage) Get(key string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.data[key], nil
}

func (r *recordingStorage) Set(key string, val []byte, exp time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[key] = val
	r.exps[key] = exp
	return nil
}

func (r *recordingStorage) Delete(key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.data, key)
	delete(r.exps, key)
	return nil
}

func (r *recordingStorage) Reset() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data = map[string][]byte{}
	r.exps = map[string]time.Duration{}
	return nil
}

func (r *recordingStorage) Close() error { return nil }

func (r *recordingStorage) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.data)
}

func (r *recordingStorage) expiry(key string) (time.Duration, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	exp, ok := r.exps[key]
	return exp, ok
}

func newTestApp(t *testing.T, storage fiber.Storage, ttl time.Duration) *fiber.App {
	t.Helper()
	signer, err := sessions.NewSigner("test_secret")
	require.NoError(t, err)
	manager := sessions.NewManager(storage, signer, sessions.Options{CookieName: "sid", TTL: ttl})

	// with runs fn on the loaded session and commits it.
	with := func(fn func(c *fiber.Ctx, s *sessions.Session) error) fiber.Handler {
		return func(c *fiber.Ctx) error {
			s, err := manager.Load(c)
			if err != nil {
				return err
			}
			if err := fn(c, s); err != nil {
				return err
			}
			return manager.Commit(s)
		}
	}

	app := fiber.New()
	app.Get("/login", with(func(c *fiber.Ctx, s *sessions.Session) error {
		if err := manager.Regenerate(s); err != nil {
			return err
		}
		s.Authenticate(5)
		return c.SendStatus(fiber.StatusOK)
	}))
	app.Get("/whoami", with(func(c *fiber.Ctx, s *sessions.Session) error {
		if !s.Identity().IsAuthenticated() {
			return c.SendStatus(fiber.StatusUnauthorized)
		}
		return c.SendStatus(fiber.StatusOK)
	}))
	app.Get("/flash", with(func(c *fiber.Ctx, s *sessions.Session) error {
		s.AddFlash("info", "Please log in to access this page.")
		return c.SendStatus(fiber.StatusOK)
	}))
	app.Get("/pop", with(func(c *fiber.Ctx, s *sessions.Session) error {
		var messages []string
		for _, f := range s.PopFlashes() {
			messages = append(messages, f.Message)
		}
		return c.SendString(strings.Join(messages, "|"))
	}))
	app.Get("/logout", with(func(c *fiber.Ctx, s *sessions.Session) error {
		s.Destroy()
		return c.SendStatus(fiber.StatusOK)
	}))
	return app
}

func get(t *testing.T, app *fiber.App, path string, cookie *http.Cookie) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(data)
}

func sessionCookie(t *testing.T, resp *http.Response) *http.Cookie {
	t.Helper()
	for _, c := range resp.Cookies() {
		if c.Name == "sid" {
			return c
		}
	}
	t.Fatal("no session cookie in response")
	return nil
}

func TestSession_IdentityAndFlashes(t *testing.T) {
	s := &sessions.Session{}
	assert.False(t, s.Identity().IsAuthenticated())
	assert.Equal(t, sessions.Anonymous, s.Identity())

	s.Authenticate(7)
	assert.True(t, s.Identity().IsAuthenticated())
	assert.Equal(t, uint(7), s.Identity().ID())

	s.AddFlash("success", "one")
	s.AddFlash("danger", "two")
	flashes := s.PopFlashes()
	assert.Equal(t, []sessions.Flash{{Category: "success", Message: "one"}, {Category: "danger", Message: "two"}}, flashes)
	assert.Nil(t, s.PopFlashes(), "flashes are one-shot")

	s.Destroy()
	assert.False(t, s.Identity().IsAuthenticated())
}

func TestSigner(t *testing.T) {
	_, err := sessions.NewSigner("")
	assert.Error(t, err)

	signer, err := sessions.NewSigner("test_secret")
	require.NoError(t, err)

	value, err := signer.Sign("token-1")
	require.NoError(t, err)
	sid, err := signer.Parse(value)
	require.NoError(t, err)
	assert.Equal(t, "token-1", sid)

	other, _ := sessions.NewSigner("other_secret")
	_, err = other.Parse(value)
	assert.Error(t, err, "cookie signed with another key must be rejected")

	_, err = signer.Parse("invalid.token.string")
	assert.Error(t, err)

	id1, id2 := signer.NewID(), signer.NewID()
	assert.NotEqual(t, id1, id2)
	_, err = signer.Parse(id1)
	assert.NoError(t, err)
}

func TestManager_RoundTrip(t *testing.T) {
	storage := newRecordingStorage()
	app := newTestApp(t, storage, time.Hour)

	resp := get(t, app, "/whoami", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Empty(t, resp.Cookies())
	assert.Equal(t, 0, storage.Len(), "untouched anonymous sessions are not stored")

	resp = get(t, app, "/login", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cookie := sessionCookie(t, resp)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, 1, storage.Len())

	resp = get(t, app, "/whoami", cookie)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	get(t, app, "/logout", cookie)
	assert.Equal(t, 0, storage.Len())

	resp = get(t, app, "/whoami", cookie)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "destroyed session must not authenticate")
}

func TestManager_RejectsForgedCookies(t *testing.T) {
	storage := newRecordingStorage()
	app := newTestApp(t, storage, time.Hour)

	resp := get(t, app, "/login", nil)
	cookie := sessionCookie(t, resp)

	signer, err := sessions.NewSigner("attacker_secret")
	require.NoError(t, err)
	forged, err := signer.Sign("whatever")
	require.NoError(t, err)

	for _, value := range []string{"forged", forged, cookie.Value + "x"} {
		resp = get(t, app, "/whoami", &http.Cookie{Name: "sid", Value: value})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, value)
	}
}

func TestManager_StoresSessionsWithTTL(t *testing.T) {
	storage := newRecordingStorage()
	ttl := 50 * time.Millisecond
	app := newTestApp(t, storage, ttl)

	// Every anonymous visitor that gets a flash is written with the session
	// lifetime, so the storage can expire it even if the visitor never returns.
	for i := 0; i < 20; i++ {
		resp := get(t, app, "/flash", nil)
		cookie := sessionCookie(t, resp)

		exp, ok := storage.expiry(cookie.Value)
		require.True(t, ok)
		assert.Equal(t, ttl, exp)
	}
}

func TestManager_DefaultStorageExpiresSessions(t *testing.T) {
	app := newTestApp(t, nil, time.Second)

	resp := get(t, app, "/login", nil)
	cookie := sessionCookie(t, resp)
	resp = get(t, app, "/whoami", cookie)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// The in-memory storage compares expiry against a clock with second resolution.
	time.Sleep(2500 * time.Millisecond)
	resp = get(t, app, "/whoami", cookie)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestManager_FlashesAreOneShot(t *testing.T) {
	app := newTestApp(t, newRecordingStorage(), time.Hour)

	resp := get(t, app, "/flash", nil)
	cookie := sessionCookie(t, resp)

	assert.Equal(t, "Please log in to access this page.", readBody(t, get(t, app, "/pop", cookie)))
	assert.Empty(t, readBody(t, get(t, app, "/pop", cookie)))
}

func TestManager_RegenerateDropsOldSession(t *testing.T) {
	storage := newRecordingStorage()
	app := newTestApp(t, storage, time.Hour)

	resp := get(t, app, "/flash", nil)
	before := sessionCookie(t, resp)

	resp = get(t, app, "/login", before)
	after := sessionCookie(t, resp)
	assert.NotEqual(t, before.Value, after.Value)

	_, oldStored := storage.expiry(before.Value)
	assert.False(t, oldStored, "the pre-login session is removed")

	resp = get(t, app, "/whoami", after)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// The flash queued before login is carried over.
	assert.Equal(t, "Please log in to access this page.", readBody(t, get(t, app, "/pop", after)))
}
