package middleware

import (
	"net/http"
)

// BodySizeLimit creates middleware that limits the size of incoming request bodies.
// Requests whose Content-Length exceeds maxBytes are rejected with 413 before
// the body is read; otherwise the body is wrapped in http.MaxBytesReader so a
// handler reading past the limit gets an *http.MaxBytesError.
// maxBytes <= 0 disables the limit.
func BodySizeLimit(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if maxBytes <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
				return
			}

			// Content-Length may be absent (chunked) or wrong.
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

			next.ServeHTTP(w, r)
		})
	}
}
