package usecase

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xavierca1/dreamstudio-crm/internal/entity"
	"golang.org/x/crypto/bcrypt"
)

func hashed(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestLoginSuccess(t *testing.T) {
	users := new(MockUserRepository)
	user := &entity.User{ID: "u1", PasswordHash: hashed(t, "pw"), IsActive: true, AccountStatus: entity.AccountActive}
	users.On("FindByEmail", mock.Anything, "omar@dream.studio").Return(user, nil)
	tokens := new(MockTokenIssuer)
	tokens.On("Issue", user).Return("jwt", nil)

	out, err := NewLoginUseCase(users, tokens).Execute(context.Background(), LoginInput{Email: "Omar@Dream.Studio", Password: "pw"})

	require.NoError(t, err)
	assert.Equal(t, "jwt", out.Token)
}

func TestLoginUnknownEmail(t *testing.T) {
	users := new(MockUserRepository)
	users.On("FindByEmail", mock.Anything, "ghost@x.com").Return(nil, entity.ErrUserNotFound)

	_, err := NewLoginUseCase(users, new(MockTokenIssuer)).Execute(context.Background(), LoginInput{Email: "ghost@x.com", Password: "pw"})

	assert.Equal(t, CodeInvalidCredentials, domainCode(err))
	assert.Equal(t, http.StatusUnauthorized, domainStatus(err))
}

func TestLoginBlockedAccount(t *testing.T) {
	users := new(MockUserRepository)
	users.On("FindByEmail", mock.Anything, "omar@dream.studio").Return(&entity.User{
		ID: "u1", PasswordHash: hashed(t, "pw"), IsActive: true, AccountStatus: entity.AccountBlocked,
	}, nil)
	tokens := new(MockTokenIssuer)

	_, err := NewLoginUseCase(users, tokens).Execute(context.Background(), LoginInput{Email: "omar@dream.studio", Password: "pw"})

	assert.Equal(t, CodeAccountBlocked, domainCode(err))
	tokens.AssertNotCalled(t, "Issue", mock.Anything)
}
