package middleware

import (
	"context"
	"hackboard/internal/common"
	"hackboard/internal/common/security"
	"hackboard/internal/domain/model"
	"net/http"
	"strings"

	"github.com/go-chi/jwtauth/v5"
)

type contextKey string

const CallerCtxKey contextKey = "caller"

// Authenticator requires a verified bearer token and stores the resolved
// model.Caller in the request context.
func Authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context()) // Set by jwtauth.Verifier

		if err != nil {
			if strings.Contains(err.Error(), "token not found") || token == nil {
				common.RespondWithError(w, http.StatusUnauthorized, "Authorization token required")
			} else {
				common.RespondWithError(w, http.StatusUnauthorized, "Invalid token: "+err.Error())
			}
			return
		}

		if token == nil {
			common.RespondWithError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		caller, err := security.CallerFromClaims(claims)
		if err != nil {
			common.RespondWithError(w, http.StatusUnauthorized, "Invalid token claims: "+err.Error())
			return
		}
		next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), caller)))
	})
}

// RequireRole rejects callers without the given role. Use after Authenticator.
func RequireRole(role model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, ok := CallerFromContext(r.Context())
			if !ok || caller.Role != role {
				common.RespondWithJSON(w, http.StatusForbidden, common.ErrorResponse{
					Error: strings.ToLower(string(role)) + " access required",
					Code:  common.CodeForbidden,
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func WithCaller(ctx context.Context, caller model.Caller) context.Context {
	return context.WithValue(ctx, CallerCtxKey, caller)
}

// Helper to get the caller from context
func CallerFromContext(ctx context.Context) (model.Caller, bool) {
	caller, ok := ctx.Value(CallerCtxKey).(model.Caller)
	return caller, ok
}
