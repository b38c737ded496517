package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/organizai/organizai/internal/auth"
	"github.com/organizai/organizai/internal/model"
)

// TokenValidator verifies session tokens.
type TokenValidator interface {
	Validate(token string) (*auth.Claims, error)
}

// BanChecker reports a user's active ban, if any.
type BanChecker interface {
	ActiveBan(ctx context.Context, userID string) (*model.Ban, error)
}

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Logger *slog.Logger
	Tokens TokenValidator
	Bans   BanChecker
}

// Auth returns a middleware that authenticates API requests.
// It validates the bearer token, rejects banned users and injects the
// auth context into the request.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			claims, err := cfg.Tokens.Validate(token)
			if err != nil {
				reason := "invalid_token"
				if token == "" {
					reason = "missing_token"
				}
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", reason),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid or missing token")
				return
			}

			ban, err := cfg.Bans.ActiveBan(r.Context(), claims.UserID)
			if err != nil {
				cfg.Logger.Error("ban lookup failed",
					slog.String("error", err.Error()),
					slog.String("user_id", claims.UserID),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
				return
			}
			if ban != nil {
				cfg.Logger.Warn("banned user rejected",
					slog.String("user_id", claims.UserID),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeError(w, http.StatusForbidden, "BANNED", "account is banned: "+ban.Reason)
				return
			}

			ctx := auth.ContextWithAuth(r.Context(), &model.AuthContext{
				UserID: claims.UserID,
				Email:  claims.Email,
				Role:   claims.Role,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractBearerToken returns the token from "Authorization: Bearer <token>".
func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

// RequireAdmin rejects requests from non-admin users.
// Must be applied after Auth middleware.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authCtx := auth.AuthFromContext(r.Context())
		if authCtx == nil {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
			return
		}
		if !authCtx.IsAdmin() {
			writeError(w, http.StatusForbidden, "FORBIDDEN", "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
