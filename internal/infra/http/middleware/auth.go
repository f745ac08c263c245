package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/xavierca1/dreamstudio-crm/internal/entity"
	"github.com/xavierca1/dreamstudio-crm/internal/infra/auth"
)

type ctxKey int

const (
	actorKey ctxKey = iota
	capabilitiesKey
)

// TokenParser is satisfied by *auth.TokenManager.
type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

// Auth verifies the token cookie (or a Bearer header), rejects blocked
// accounts and stores the actor and its capabilities in the request context.
func Auth(tokens TokenParser, policy Policy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := tokenFrom(r)
			if raw == "" {
				deny(w, http.StatusUnauthorized, "يرجى تسجيل الدخول")
				return
			}

			claims, err := tokens.Parse(raw)
			if err != nil {
				deny(w, http.StatusUnauthorized, "انتهت صلاحية الجلسة، يرجى تسجيل الدخول مجدداً")
				return
			}
			if claims.AccountStatus == entity.AccountBlocked {
				deny(w, http.StatusForbidden, "تم حظر هذا الحساب")
				return
			}

			actor := entity.Actor{ID: claims.ID, Role: claims.Role}
			ctx := context.WithValue(r.Context(), actorKey, actor)
			ctx = context.WithValue(ctx, capabilitiesKey, policy.For(actor.Role))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func tokenFrom(r *http.Request) string {
	if c, err := r.Cookie(auth.CookieName); err == nil && c.Value != "" {
		return c.Value
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return ""
}

// ActorFrom returns the authenticated caller.
func ActorFrom(ctx context.Context) (entity.Actor, bool) {
	a, ok := ctx.Value(actorKey).(entity.Actor)
	return a, ok
}

// WithActor is used by tests and by code that runs on behalf of a user.
func WithActor(ctx context.Context, actor entity.Actor, policy Policy) context.Context {
	ctx = context.WithValue(ctx, actorKey, actor)
	return context.WithValue(ctx, capabilitiesKey, policy.For(actor.Role))
}

func deny(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}
