package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medflow-backend/internal/apperrors"
	"medflow-backend/internal/logger"
	"medflow-backend/internal/metrics"
	"medflow-backend/internal/models"
	"medflow-backend/internal/store"
)

func newAccounts() (*Accounts, *store.MemoryStore) {
	st := store.NewMemoryStore()
	return NewAccounts(st, logger.Discard(), metrics.New()), st
}

func TestEnsureAdmin(t *testing.T) {
	a, st := newAccounts()
	ctx := context.Background()

	created, err := a.EnsureAdmin(ctx, "1234")
	require.NoError(t, err)
	assert.True(t, created)

	u, err := st.GetUserByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, u.Role)

	created, err = a.EnsureAdmin(ctx, "other")
	require.NoError(t, err)
	assert.False(t, created)
}

func TestAuthenticate(t *testing.T) {
	a, _ := newAccounts()
	ctx := context.Background()
	_, err := a.CreateUser(ctx, "sara", "password1", "employee", nil)
	require.NoError(t, err)

	u, err := a.Authenticate(ctx, "sara", "password1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleEmployee, u.Role)

	_, err = a.Authenticate(ctx, "sara", "wrong")
	assert.Equal(t, 401, apperrors.HTTPStatus(err))
	_, err = a.Authenticate(ctx, "nobody", "password1")
	assert.Equal(t, 401, apperrors.HTTPStatus(err))
	_, err = a.Authenticate(ctx, "", "")
	assert.Equal(t, 400, apperrors.HTTPStatus(err))
}

func TestCreateUser(t *testing.T) {
	a, _ := newAccounts()
	ctx := context.Background()

	u, err := a.CreateUser(ctx, "boss", "password1", "superuser", nil)
	require.NoError(t, err)
	assert.Equal(t, models.RoleEmployee, u.Role, "unknown roles fall back to employee")

	_, err = a.CreateUser(ctx, "boss", "password2", "admin", nil)
	assert.Equal(t, 400, apperrors.HTTPStatus(err))

	_, err = a.CreateUser(ctx, "short", "abc", "admin", nil)
	assert.Equal(t, 400, apperrors.HTTPStatus(err))
}
