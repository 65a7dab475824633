package errlog

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/platform/httpx"
	"github.com/aswathirqubicle/Aquanav-dev-sub003/internal/shared"
)

// Recoverer catches panics, persists them to the error log and answers 500.
// It replaces chi's stock recoverer so panics leave an inspectable trail.
func Recoverer(logger *slog.Logger, service *Service) func(http.Handler) http.Handler {
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

				stack := string(debug.Stack())
				entry := Entry{
					Source:  "http",
					Message: fmt.Sprintf("panic serving %s %s: %v", r.Method, r.URL.Path, rec),
					Stack:   &stack,
				}
				if reqID := middleware.GetReqID(r.Context()); reqID != "" {
					entry.RequestID = &reqID
				}
				if actor := shared.ActorFromContext(r.Context()); actor.UserID > 0 {
					id := actor.UserID
					entry.ActorID = &id
				}
				service.Record(r.Context(), entry)

				logger.Error("panic recovered", "method", r.Method, "path", r.URL.Path,
					slog.Any("panic", rec))
				httpx.Problem(w, http.StatusInternalServerError, "Internal Server Error",
					"an unexpected error occurred")
			}()
			next.ServeHTTP(w, r)
		})
	}
}
