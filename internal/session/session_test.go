package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medflow-backend/internal/logger"
	"medflow-backend/internal/models"
)

const secret = "0123456789abcdef0123456789abcdef"

func login(t *testing.T, m *Manager, u models.User) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	require.NoError(t, m.Login(rec, httptest.NewRequest(http.MethodPost, "/api/login", nil), u))
	for _, c := range rec.Result().Cookies() {
		if c.Name == CookieName {
			return c
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func requestWith(c *http.Cookie) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/api/auth/user", nil)
	if c != nil {
		r.AddCookie(c)
	}
	return r
}

func managers(t *testing.T) map[string]*Manager {
	t.Helper()
	cookie, err := NewManager(Options{Secret: secret, MaxAge: time.Hour}, logger.Discard())
	require.NoError(t, err)
	fs, err := NewManager(Options{Secret: secret, Dir: t.TempDir(), MaxAge: time.Hour}, logger.Discard())
	require.NoError(t, err)
	return map[string]*Manager{"cookie": cookie, "filesystem": fs}
}

func TestLoginRoundTrip(t *testing.T) {
	for name, m := range managers(t) {
		t.Run(name, func(t *testing.T) {
			c := login(t, m, models.User{ID: 3, Username: "admin", Role: models.RoleAdmin})
			assert.True(t, c.HttpOnly)
			assert.Equal(t, 3600, c.MaxAge)

			actor, ok := m.Actor(requestWith(c))
			require.True(t, ok)
			assert.Equal(t, uint(3), actor.ID)
			assert.Equal(t, "admin", actor.Username)
			assert.True(t, actor.IsAdmin())
		})
	}
}

func TestNoSession(t *testing.T) {
	for name, m := range managers(t) {
		t.Run(name, func(t *testing.T) {
			_, ok := m.Actor(requestWith(nil))
			assert.False(t, ok)

			_, ok = m.Actor(requestWith(&http.Cookie{Name: CookieName, Value: "garbage"}))
			assert.False(t, ok)
		})
	}
}

func TestForeignSecretIsRejected(t *testing.T) {
	m, err := NewManager(Options{Secret: secret}, logger.Discard())
	require.NoError(t, err)
	other, err := NewManager(Options{Secret: "fedcba9876543210fedcba9876543210"}, logger.Discard())
	require.NoError(t, err)

	c := login(t, other, models.User{ID: 1, Username: "x", Role: models.RoleAdmin})
	_, ok := m.Actor(requestWith(c))
	assert.False(t, ok)
}

func TestLogoutExpiresCookie(t *testing.T) {
	for name, m := range managers(t) {
		t.Run(name, func(t *testing.T) {
			c := login(t, m, models.User{ID: 5, Username: "sara", Role: models.RoleEmployee})

			rec := httptest.NewRecorder()
			require.NoError(t, m.Logout(rec, requestWith(c)))
			var cleared *http.Cookie
			for _, rc := range rec.Result().Cookies() {
				if rc.Name == CookieName {
					cleared = rc
				}
			}
			require.NotNil(t, cleared)
			assert.True(t, cleared.MaxAge < 0)
		})
	}
}

func TestEmptySecret(t *testing.T) {
	_, err := NewManager(Options{}, logger.Discard())
	assert.Error(t, err)
}
