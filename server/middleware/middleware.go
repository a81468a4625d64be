package middleware

import (
	"net/http"
	"slices"
)

// Middleware wraps an http.Handler. The server applies it ahead of gin
// routing, so it also covers static files and NoRoute responses.
type Middleware func(http.Handler) http.Handler

// Chain composes middleware with the first one outermost.
func Chain(middlewares ...Middleware) Middleware {
	return func(final http.Handler) http.Handler {
		for _, mw := range slices.Backward(middlewares) {
			final = mw(final)
		}
		return final
	}
}
