package middleware

import (
	"net/http"

	"go.uber.org/zap"

	apperrors "forum-api/pkg/errors"
)

// Recovery turns a panic into a 500 written by errs.
func Recovery(errs *apperrors.ErrorHandler, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger.Error("panic recovered",
					zap.Any("panic", rec),
					zap.String("path", r.URL.Path),
					zap.Stack("stack"),
				)
				errs.Handle(w, r, apperrors.NewInternalError("internal server error"))
			}()
			next.ServeHTTP(w, r)
		})
	}
}
