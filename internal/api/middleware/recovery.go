package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/tallybook/backend/internal/api/response"
	"github.com/tallybook/backend/internal/domain/errors"
)

// Recovery recovers from handler panics and returns the standard error
// envelope instead of tearing down the connection.
func Recovery(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rec),
						zap.String("path", r.URL.Path),
						zap.String("stack", string(debug.Stack())))
					response.WriteError(w,
						errors.NewInternalError("An unexpected error occurred", fmt.Errorf("panic: %v", rec)),
						chimiddleware.GetReqID(r.Context()))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
