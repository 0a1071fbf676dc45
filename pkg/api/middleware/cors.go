package middleware

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
)

// Wildcard matches any origin, method or header in a CORSConfig.
const Wildcard = "*"

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins   []string // Allowed origins, or ["*"] for all
	AllowedMethods   []string // HTTP methods allowed, or ["*"] to echo the requested method
	AllowedHeaders   []string // Headers allowed in requests, or ["*"] to echo the requested headers
	AllowCredentials bool     // Whether credentials (cookies, auth headers) are allowed
	MaxAge           int      // Preflight cache duration in seconds
}

// DefaultCORSConfig allows every origin, method and header with
// credentials. A wildcard origin is answered with the request's own origin,
// since browsers reject "*" together with credentials.
func DefaultCORSConfig() *CORSConfig {
	return &CORSConfig{
		AllowedOrigins:   []string{Wildcard},
		AllowedMethods:   []string{Wildcard},
		AllowedHeaders:   []string{Wildcard},
		AllowCredentials: true,
		MaxAge:           600,
	}
}

func (c *CORSConfig) allowsOrigin(origin string) bool {
	if c == nil || origin == "" {
		return false
	}
	return slices.Contains(c.AllowedOrigins, Wildcard) || slices.Contains(c.AllowedOrigins, origin)
}

func (c *CORSConfig) methods(r *http.Request) string {
	if len(c.AllowedMethods) == 0 {
		return "GET, POST, OPTIONS"
	}
	if slices.Contains(c.AllowedMethods, Wildcard) {
		if m := r.Header.Get("Access-Control-Request-Method"); m != "" {
			return m
		}
		return "GET, POST, PUT, PATCH, DELETE, OPTIONS"
	}
	return strings.Join(c.AllowedMethods, ", ")
}

func (c *CORSConfig) headers(r *http.Request) string {
	if len(c.AllowedHeaders) == 0 {
		return "Content-Type, X-Request-ID"
	}
	if slices.Contains(c.AllowedHeaders, Wildcard) {
		if h := r.Header.Get("Access-Control-Request-Headers"); h != "" {
			return h
		}
		return "Content-Type, X-Request-ID"
	}
	return strings.Join(c.AllowedHeaders, ", ")
}

// CORS creates middleware that handles Cross-Origin Resource Sharing.
// Preflight requests (OPTIONS with Access-Control-Request-Method) are
// answered directly: 200 for allowed origins, 403 otherwise.
func CORS(config *CORSConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			allowed := config.allowsOrigin(origin)

			if allowed {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Add("Vary", "Origin")
				if config.AllowCredentials {
					w.Header().Set("Access-Control-Allow-Credentials", "true")
				}
				w.Header().Set("Access-Control-Expose-Headers", RequestIDHeader)
			}

			preflight := r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != ""
			if !preflight {
				next.ServeHTTP(w, r)
				return
			}

			if !allowed {
				writeError(w, http.StatusForbidden, "origin not allowed")
				return
			}

			w.Header().Set("Access-Control-Allow-Methods", config.methods(r))
			w.Header().Set("Access-Control-Allow-Headers", config.headers(r))
			if config.MaxAge > 0 {
				w.Header().Set("Access-Control-Max-Age", strconv.Itoa(config.MaxAge))
			}
			w.WriteHeader(http.StatusOK)
		})
	}
}
