package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/dalemusser/leadcentral/internal/app/system/jsonutil"
	"github.com/dalemusser/leadcentral/internal/app/system/normalize"
	"go.uber.org/zap"
)

// TokenResolver maps a bearer token to the user ID of its live session.
// The sessions store implements this: a token resolves only while its
// session row is open and unexpired.
type TokenResolver interface {
	// ResolveToken returns the hex user ID for the token, or "" if the
	// token is unknown, closed, or expired.
	ResolveToken(ctx context.Context, token string) (string, error)
}

// BearerAuth returns middleware for the JSON API. It reads
// "Authorization: Bearer <token>", resolves the token to a live session,
// fetches the user fresh, and injects the SessionUser into context.
//
// API clients get the same token from POST /api/auth/login that the
// browser carries in its cookie, so a login works for either surface.
// Failures are JSON: {"message": ...} with 401.
func (sm *SessionManager) BearerAuth(resolver TokenResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				jsonutil.Unauthorized(w, "Authentication required.")
				return
			}

			userID, err := resolver.ResolveToken(r.Context(), token)
			if err != nil {
				sm.logger.Error("token resolution failed",
					zap.String("path", r.URL.Path),
					zap.Error(err))
				jsonutil.InternalError(w, "Service temporarily unavailable. Please try again.")
				return
			}
			if userID == "" {
				jsonutil.Unauthorized(w, "Invalid or expired token.")
				return
			}

			if sm.userFetcher == nil {
				sm.logger.Error("bearer auth used without a user fetcher")
				jsonutil.InternalError(w, "Service temporarily unavailable. Please try again.")
				return
			}
			u := sm.userFetcher.FetchUser(r.Context(), userID)
			if u == nil {
				// Account deleted or disabled since the token was issued.
				jsonutil.Unauthorized(w, "Invalid or expired token.")
				return
			}
			u.Token = token

			next.ServeHTTP(w, withUser(r, u))
		})
	}
}

// RequireRoleJSON is the API counterpart of RequireRole: same role check,
// but failures are JSON {"message": ...} instead of redirects.
func RequireRoleJSON(allowed ...string) func(http.Handler) http.Handler {
	set := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		set[normalize.Role(role)] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := CurrentUser(r)
			if !ok {
				jsonutil.Unauthorized(w, "Authentication required.")
				return
			}
			if _, has := set[normalize.Role(u.Role)]; !has {
				jsonutil.Forbidden(w, "You do not have permission to do that.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header, or returns "" if the header is missing or malformed.
func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
