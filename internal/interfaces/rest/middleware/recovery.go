package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/DanielPopoola/tourvista-payments/internal/interfaces/rest"
)

type PanicObserver interface {
	PanicRecovered(route string)
}

// Recovery turns a handler panic into a 500 envelope. Aborted handlers are
// re-panicked so net/http can drop the connection. observer may be nil.
func Recovery(logger *slog.Logger, observer PanicObserver) func(http.Handler) http.Handler {
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

				route := r.Pattern
				if route == "" {
					route = "unmatched"
				}
				logger.Error("panic recovered",
					"panic", rec,
					"method", r.Method,
					"route", route,
					"stack", string(debug.Stack()),
				)
				if observer != nil {
					observer.PanicRecovered(route)
				}

				rest.WriteError(w, fmt.Errorf("panic: %v", rec), nil)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
