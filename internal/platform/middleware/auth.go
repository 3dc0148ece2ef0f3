package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"panchayat/pkg/requestcontext"
)

// TokenValidator verifies a bearer token and returns its claims.
type TokenValidator interface {
	ValidateToken(tokenString string) (*TokenClaims, error)
}

// DeactivationChecker reports whether a user has been soft-deleted since
// their token was issued. Tokens have a fixed 7-day validity, so deactivation
// is enforced here rather than by revoking individual tokens.
type DeactivationChecker interface {
	IsDeactivated(ctx context.Context, userID string) (bool, error)
}

// TokenClaims is the subset of JWT claims the middleware threads into context.
type TokenClaims struct {
	UserID string
	Email  string
	Role   string
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = fmt.Fprintf(w, `{"detail":%q}`, detail)
}

// RequireAuth validates the Authorization bearer token and threads user
// identity into the request context. deactivation may be nil.
func RequireAuth(validator TokenValidator, deactivation DeactivationChecker, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			authHeader := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || token == "" {
				writeDetail(w, http.StatusUnauthorized, "Access token required")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized - invalid token",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				writeDetail(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			if deactivation != nil {
				deactivated, err := deactivation.IsDeactivated(ctx, claims.UserID)
				if err != nil {
					logger.ErrorContext(ctx, "deactivation check failed",
						"error", err,
						"request_id", requestcontext.RequestID(ctx),
					)
					writeDetail(w, http.StatusInternalServerError, "Internal server error")
					return
				}
				if deactivated {
					writeDetail(w, http.StatusUnauthorized, "Account is inactive")
					return
				}
			}

			ctx = requestcontext.WithUserID(ctx, claims.UserID)
			ctx = requestcontext.WithUserEmail(ctx, claims.Email)
			ctx = requestcontext.WithUserRole(ctx, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole gates a route to a declared set of roles. Each route states its
// capability set once; ownership checks compose separately in handlers.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	required := strings.Join(roles, " or ")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := requestcontext.UserRole(r.Context())
			if role == "" {
				writeDetail(w, http.StatusUnauthorized, "Not authenticated")
				return
			}
			if _, ok := allowed[role]; !ok {
				writeDetail(w, http.StatusForbidden, "Access denied. Required role: "+required)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
