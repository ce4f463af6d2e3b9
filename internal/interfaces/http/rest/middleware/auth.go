package middleware

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"forum-api/internal/access"
	"forum-api/pkg/auth"
	apperrors "forum-api/pkg/errors"
)

// Authenticate resolves the caller's scope. A request without a bearer
// token continues anonymously; a token that fails validation is answered
// with 401 and never reaches the handler. A nil validator rejects every
// token.
func Authenticate(validator *auth.JWTValidator, resolver *access.Resolver, errs *apperrors.ErrorHandler, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				ctx := access.WithScope(r.Context(), access.Anonymous())
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			if validator == nil {
				errs.Handle(w, r, apperrors.NewUnauthenticatedError("token authentication is not configured"))
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.Warn("Invalid token",
					zap.Error(err),
					zap.String("path", r.URL.Path),
				)
				errs.Handle(w, r, apperrors.NewUnauthenticatedError(tokenMessage(err)).WithCause(err))
				return
			}

			user := auth.FromClaims(claims)
			ctx := access.WithScope(r.Context(), resolver.Resolve(user))

			logger.Debug("Request authenticated",
				zap.String("user_id", user.UserID),
				zap.String("tenant_id", user.TenantID),
			)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extractToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return strings.TrimSpace(parts[1])
	}
	return strings.TrimSpace(header)
}

func tokenMessage(err error) string {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return "token has expired"
	case errors.Is(err, auth.ErrInvalidSignature):
		return "invalid token signature"
	default:
		return "invalid token"
	}
}
