package handlers

import (
	"net/http"
	"time"

	"github.com/xavierca1/dreamstudio-crm/internal/infra/auth"
	"github.com/xavierca1/dreamstudio-crm/internal/usecase"
)

type AuthHandler struct {
	UC *usecase.LoginUseCase
	// TTL is the cookie lifetime and should match the token expiry.
	TTL    time.Duration
	Secure bool
}

func NewAuthHandler(uc *usecase.LoginUseCase, ttl time.Duration, secure bool) *AuthHandler {
	return &AuthHandler{UC: uc, TTL: ttl, Secure: secure}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input usecase.LoginInput
	if !decode(w, r, &input) {
		return
	}

	out, err := h.UC.Execute(r.Context(), input)
	if err != nil {
		respondError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    out.Token,
		Path:     "/",
		MaxAge:   int(h.TTL.Seconds()),
		HttpOnly: true,
		Secure:   h.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	respond(w, http.StatusOK, out, usecase.Message(input.Lng, usecase.MsgOK))
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}
