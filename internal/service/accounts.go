package service

import (
	"context"
	"errors"
	"strings"

	"medflow-backend/internal/apperrors"
	"medflow-backend/internal/logger"
	"medflow-backend/internal/metrics"
	"medflow-backend/internal/models"
	"medflow-backend/internal/store"
	"medflow-backend/internal/utils"
)

// DefaultAdminUsername is the account created on first start.
const DefaultAdminUsername = "admin"

// Accounts handles staff sign-in and account creation.
type Accounts struct {
	store   store.Store
	log     *logger.Logger
	metrics *metrics.Metrics
}

func NewAccounts(st store.Store, log *logger.Logger, m *metrics.Metrics) *Accounts {
	return &Accounts{store: st, log: log, metrics: m}
}

// Authenticate verifies a username and password. Unknown users and wrong
// passwords produce the same error.
func (a *Accounts) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, apperrors.Validation("username", "Username and password required")
	}

	u, err := a.store.GetUserByUsername(ctx, username)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		a.metrics.Login("error")
		return nil, apperrors.Internal("get user", err)
	}
	if err != nil || !utils.CheckPassword(password, u.PasswordHash) {
		a.metrics.Login("failure")
		a.log.WithField("username", username).Info("login failed")
		return nil, apperrors.Unauthorized("Invalid credentials")
	}

	a.metrics.Login("success")
	return u, nil
}

// CreateUser adds a staff account. Unknown roles become employee.
func (a *Accounts) CreateUser(ctx context.Context, username, password, role string, email *string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apperrors.Validation("username", "Username is required")
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		if errors.Is(err, utils.ErrPasswordTooShort) {
			return nil, apperrors.Validation("password", "Password is too short")
		}
		return nil, apperrors.Internal("hash password", err)
	}

	u := &models.User{
		Username:     username,
		PasswordHash: hash,
		Email:        utils.TrimOptional(email),
		Role:         models.ParseRole(role),
	}
	if err := a.store.CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperrors.Validation("username", "Username is already taken")
		}
		return nil, apperrors.Internal("create user", err)
	}
	return u, nil
}

// EnsureAdmin creates the default admin account when it is missing. It reports
// whether an account was created.
func (a *Accounts) EnsureAdmin(ctx context.Context, password string) (bool, error) {
	_, err := a.store.GetUserByUsername(ctx, DefaultAdminUsername)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return false, apperrors.Internal("get admin", err)
	}

	if _, err := a.CreateUser(ctx, DefaultAdminUsername, password, string(models.RoleAdmin), nil); err != nil {
		return false, err
	}
	a.log.WithField("username", DefaultAdminUsername).
		Warn("created default admin user with the configured default password, change it immediately")
	return true, nil
}
