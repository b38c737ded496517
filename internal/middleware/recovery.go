package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"os"
	"runtime/debug"
)

// Recoverer turns a handler panic into a logged 500 response. With
// printStack the stack also goes to stderr, which reads better than a JSON
// log line during local development.
func Recoverer(logger *slog.Logger, printStack bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rvr := recover()
				if rvr == nil {
					return
				}
				// net/http uses this sentinel to abort a response silently.
				if err, ok := rvr.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rvr)
				}

				stack := debug.Stack()
				logger.Error("panic recovered",
					slog.String("request_id", GetRequestID(r.Context())),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.Any("panic", rvr),
					slog.String("stack", string(stack)),
				)
				if printStack {
					_, _ = os.Stderr.Write(stack)
				}

				writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
			}()

			next.ServeHTTP(w, r)
		})
	}
}
