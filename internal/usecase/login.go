package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/xavierca1/dreamstudio-crm/internal/entity"
	"golang.org/x/crypto/bcrypt"
)

type LoginUseCase struct {
	Users  UserRepositoryInterface
	Tokens TokenIssuer
}

func NewLoginUseCase(users UserRepositoryInterface, tokens TokenIssuer) *LoginUseCase {
	return &LoginUseCase{Users: users, Tokens: tokens}
}

func (uc *LoginUseCase) Execute(ctx context.Context, input LoginInput) (*LoginOutput, error) {
	lng := NormalizeLang(input.Lng)
	invalid := newDomainError(CodeInvalidCredentials, lng, http.StatusUnauthorized)

	user, err := uc.Users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(input.Email)))
	if errors.Is(err, entity.ErrUserNotFound) {
		return nil, invalid
	}
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, invalid
	}
	if !user.IsActive || user.AccountStatus == entity.AccountBlocked {
		return nil, forbidden(CodeAccountBlocked, lng)
	}

	token, err := uc.Tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &LoginOutput{Token: token, User: user}, nil
}
