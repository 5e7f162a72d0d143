package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockProviderLogin(t *testing.T) {
	p := NewMockProvider()
	assert.Nil(t, p.State().User)

	require.NoError(t, p.Login(context.Background(), "admin@example.com", "password"))
	s := p.State()
	require.NotNil(t, s.User)
	assert.Equal(t, RoleAdmin, s.User.Role)
	assert.Equal(t, "Admin User", s.User.Name)
	assert.Empty(t, s.Err)

	p.Logout()
	assert.Nil(t, p.State().User)
}

func TestMockProviderBadCredentials(t *testing.T) {
	p := NewMockProvider()

	err := p.Login(context.Background(), "user@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	s := p.State()
	assert.Nil(t, s.User)
	assert.Equal(t, "Invalid credentials", s.Err)
}

func TestMockProviderSignup(t *testing.T) {
	p := NewMockProvider()
	require.NoError(t, p.Signup(context.Background(), "New User", "new@example.com", "pw"))

	s := p.State()
	require.NotNil(t, s.User)
	assert.Equal(t, RoleUser, s.User.Role)
	assert.NotEmpty(t, s.User.ID)

	p.Logout()
	require.NoError(t, p.Login(context.Background(), "new@example.com", "pw"))
}

func TestStateIsACopy(t *testing.T) {
	p := NewMockProvider()
	require.NoError(t, p.Login(context.Background(), "user@example.com", "password"))

	s := p.State()
	s.User.Name = "mutated"
	assert.Equal(t, "Regular User", p.State().User.Name)
}
