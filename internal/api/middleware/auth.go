package middleware

import (
	"context"
	"errors"
	"net/http"

	"codequest/internal/common"
	"codequest/internal/common/security"
	"codequest/internal/domain/model"

	"github.com/go-chi/jwtauth/v5"
	"github.com/rs/zerolog"
)

type contextKey string

const (
	UserIDCtxKey   contextKey = "userID"
	UserRoleCtxKey contextKey = "userRole"
)

// identity reads the verified token placed in the context by jwtauth.Verify.
func identity(r *http.Request) (userID, role string, err error) {
	token, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return "", "", err
	}
	if token == nil {
		return "", "", jwtauth.ErrNoTokenFound
	}
	if userID, err = security.GetUserIDFromClaims(claims); err != nil {
		return "", "", err
	}
	if role, err = security.GetUserRoleFromClaims(claims); err != nil {
		return "", "", err
	}
	return userID, role, nil
}

func withIdentity(r *http.Request, userID, role string) *http.Request {
	ctx := context.WithValue(r.Context(), UserIDCtxKey, userID)
	ctx = context.WithValue(ctx, UserRoleCtxKey, role)
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		child := l.With().Str("user_id", userID).Logger()
		ctx = child.WithContext(ctx)
	}
	return r.WithContext(ctx)
}

func Authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, role, err := identity(r)
		if err != nil {
			if errors.Is(err, jwtauth.ErrNoTokenFound) {
				common.RespondWithError(w, http.StatusUnauthorized, "Authorization token required")
			} else {
				common.RespondWithError(w, http.StatusUnauthorized, "Invalid or expired token")
			}
			return
		}
		next.ServeHTTP(w, withIdentity(r, userID, role))
	})
}

// OptionalAuth attaches the caller's identity when a valid token is present and
// lets anonymous requests through otherwise.
func OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if userID, role, err := identity(r); err == nil {
			r = withIdentity(r, userID, role)
		}
		next.ServeHTTP(w, r)
	})
}

func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role, ok := r.Context().Value(UserRoleCtxKey).(string)
		if !ok || role != model.RoleAdmin {
			common.RespondWithError(w, http.StatusForbidden, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Helper to get user ID from context
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDCtxKey).(string)
	return userID, ok && userID != ""
}

func GetUserRoleFromContext(ctx context.Context) (string, bool) {
	userRole, ok := ctx.Value(UserRoleCtxKey).(string)
	return userRole, ok
}
