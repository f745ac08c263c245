package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xavierca1/dreamstudio-crm/internal/entity"
)

func TestIssueAndParseRoundTrip(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	token, err := m.Issue(&entity.User{ID: "u1", Role: entity.RoleStaff, AccountStatus: entity.AccountActive})
	require.NoError(t, err)

	claims, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.ID)
	assert.Equal(t, entity.RoleStaff, claims.Role)
	assert.Equal(t, entity.AccountActive, claims.AccountStatus)
}

func TestParseRejectsOtherSecret(t *testing.T) {
	token, err := NewTokenManager("one", time.Hour).Issue(&entity.User{ID: "u1", Role: entity.RoleAdmin})
	require.NoError(t, err)

	_, err = NewTokenManager("two", time.Hour).Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsExpired(t *testing.T) {
	m := NewTokenManager("secret", time.Minute)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := m.Issue(&entity.User{ID: "u1", Role: entity.RoleAdmin})
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
