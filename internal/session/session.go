// Package session keeps the signed-in user in an httpOnly cookie session.
package session

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"

	"medflow-backend/internal/access"
	"medflow-backend/internal/logger"
	"medflow-backend/internal/models"
)

// CookieName is the name of the session cookie.
const CookieName = "medflow-session"

const (
	isAuthKey   = "is_authenticated"
	userIDKey   = "user_id"
	usernameKey = "username"
	roleKey     = "role"
)

// Options configures the session store.
type Options struct {
	Secret string
	// Dir selects a filesystem store; empty keeps everything in the cookie.
	Dir    string
	Secure bool
	MaxAge time.Duration
}

// Manager reads and writes the session of a request.
type Manager struct {
	store sessions.Store
	log   *logger.Logger
}

func NewManager(opts Options, log *logger.Logger) (*Manager, error) {
	if opts.Secret == "" {
		return nil, errors.New("session secret is empty")
	}
	if len(opts.Secret) < 32 {
		log.WithField("length", len(opts.Secret)).Warn("session secret is short; 32+ chars recommended")
	}

	cookie := &sessions.Options{
		Path:     "/",
		MaxAge:   int(opts.MaxAge / time.Second),
		Secure:   opts.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if opts.Secure {
		cookie.SameSite = http.SameSiteNoneMode
	}

	var store sessions.Store
	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0o700); err != nil {
			return nil, fmt.Errorf("create session directory: %w", err)
		}
		fs := sessions.NewFilesystemStore(opts.Dir, []byte(opts.Secret))
		fs.Options = cookie
		fs.MaxAge(cookie.MaxAge)
		store = fs
	} else {
		cs := sessions.NewCookieStore([]byte(opts.Secret))
		cs.Options = cookie
		cs.MaxAge(cookie.MaxAge)
		store = cs
	}

	log.WithField("secure", opts.Secure).
		WithField("filesystem", opts.Dir != "").
		Info("session store initialized")
	return &Manager{store: store, log: log}, nil
}

// get returns the request's session, never nil. A cookie that cannot be
// decoded (for example after a secret rotation) or whose server-side file is
// gone yields a fresh session.
func (m *Manager) get(r *http.Request) (*sessions.Session, error) {
	sess, err := m.store.Get(r, CookieName)
	if sess == nil {
		sess, _ = m.store.New(r, CookieName)
	}
	if err == nil {
		return sess, nil
	}
	var scErr securecookie.Error
	if (errors.As(err, &scErr) && scErr.IsDecode()) || errors.Is(err, os.ErrNotExist) {
		m.log.WithError(err).Debug("session cookie invalid, using fresh session")
		return sess, nil
	}
	return sess, fmt.Errorf("load session: %w", err)
}

// Login stores u in the session.
func (m *Manager) Login(w http.ResponseWriter, r *http.Request, u models.User) error {
	sess, err := m.get(r)
	if err != nil {
		m.log.WithError(err).Error("session store error during login, using fresh session")
	}
	sess.Values[isAuthKey] = true
	sess.Values[userIDKey] = u.ID
	sess.Values[usernameKey] = u.Username
	sess.Values[roleKey] = string(u.Role)
	if err := sess.Save(r, w); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Logout expires the session cookie.
func (m *Manager) Logout(w http.ResponseWriter, r *http.Request) error {
	sess, err := m.get(r)
	if err != nil {
		m.log.WithError(err).Warn("session store error during logout")
	}
	sess.Values = map[interface{}]interface{}{}
	sess.Options.MaxAge = -1
	if err := sess.Save(r, w); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Actor returns the signed-in user of r. ok is false when there is none.
func (m *Manager) Actor(r *http.Request) (access.Actor, bool) {
	sess, err := m.get(r)
	if err != nil {
		m.log.WithError(err).Warn("session lookup failed")
		return access.Actor{}, false
	}
	if isAuth, _ := sess.Values[isAuthKey].(bool); !isAuth {
		return access.Actor{}, false
	}
	id, _ := sess.Values[userIDKey].(uint)
	if id == 0 {
		return access.Actor{}, false
	}
	username, _ := sess.Values[usernameKey].(string)
	role, _ := sess.Values[roleKey].(string)
	return access.Actor{ID: id, Username: username, Role: models.ParseRole(role)}, true
}
