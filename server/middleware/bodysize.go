package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/kbukum/gonogo/errors"
	"github.com/kbukum/gonogo/util"
)

const defaultMaxBodySize = 10 * 1024 * 1024 // 10MB

// BodySizeLimit restricts request bodies to maxSize ("10MB", "512KB").
// A declared oversize body gets a 413 envelope before the handler runs; an
// undeclared one fails on read with *http.MaxBytesError, which the
// submission handler maps to the same 413.
func BodySizeLimit(maxSize string) Middleware {
	size := util.ParseSize(maxSize, defaultMaxBodySize)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > size {
				appErr := errors.PayloadTooLarge(size)
				w.Header().Set("Content-Type", "application/json; charset=utf-8")
				w.Header().Set("Connection", "close")
				w.WriteHeader(appErr.HTTPStatus)
				_ = json.NewEncoder(w).Encode(appErr.ToResponseFor(RequestIDFromContext(r.Context())))
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, size)
			next.ServeHTTP(w, r)
		})
	}
}
