package middleware

import (
	"net/http"
	"strings"

	"github.com/andrelucena/celebra-backend/api/responses"
	"github.com/andrelucena/celebra-backend/pkg/auth"
	"github.com/andrelucena/celebra-backend/pkg/auth/session"
	"github.com/andrelucena/celebra-backend/pkg/config"
	pkgerrors "github.com/andrelucena/celebra-backend/pkg/errors"
	"github.com/andrelucena/celebra-backend/pkg/logger"
)

// Auth rejects requests that do not carry a valid, still-registered access
// token, and injects the caller's identity into the request context.
func Auth(logg *logger.Logger, jwtCfg config.JWTConfig, sessions session.AccessSessionChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := claimsFromRequest(r, jwtCfg, sessions)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			ctx := WithUserID(r.Context(), claims.UserID)
			ctx = WithAccessID(ctx, claims.ID)
			ctx = logg.WithUserID(ctx, claims.UserID.String())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth injects identity when a valid token is present but lets
// anonymous requests through untouched. Invalid tokens are still rejected so
// a stale session fails loudly instead of silently downgrading.
func OptionalAuth(logg *logger.Logger, jwtCfg config.JWTConfig, sessions session.AccessSessionChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.TrimSpace(r.Header.Get("Authorization")) == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := claimsFromRequest(r, jwtCfg, sessions)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			ctx := WithUserID(r.Context(), claims.UserID)
			ctx = WithAccessID(ctx, claims.ID)
			ctx = logg.WithUserID(ctx, claims.UserID.String())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func claimsFromRequest(r *http.Request, jwtCfg config.JWTConfig, sessions session.AccessSessionChecker) (*auth.AccessTokenClaims, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing authorization header")
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "malformed authorization header")
	}

	claims, err := auth.ParseAccessToken(jwtCfg, strings.TrimSpace(parts[1]))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid access token")
	}

	if sessions != nil {
		active, err := sessions.HasSession(r.Context(), claims.ID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check session")
		}
		if !active {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "session expired or revoked")
		}
	}

	return claims, nil
}
