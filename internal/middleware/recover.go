package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog"
)

// Recover turns a handler panic into a logged error and hands the response
// to onPanic. It must sit inside Logger and Metrics so both see the 500.
func Recover(l zerolog.Logger, onPanic http.HandlerFunc) func(http.Handler) http.Handler {
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
				l.Error().
					Str("panic", fmt.Sprint(rec)).
					Str("request_id", RequestIDFromContext(r.Context())).
					Bytes("stack", debug.Stack()).
					Msg("handler panic")
				if rw, ok := w.(*responseWriter); ok && rw.wroteHeader {
					return
				}
				onPanic(w, r)
			}()
			next.ServeHTTP(w, r)
		})
	}
}
