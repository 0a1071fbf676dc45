// Package middleware provides HTTP middleware components for the analysis
// service.
//
// The middleware package is organized into separate files by concern:
//
//   - recovery.go: Panic recovery middleware
//   - request_id.go: Request ID generation and tracking middleware
//   - logging.go: Structured access logging middleware
//   - metrics.go: HTTP metrics collection middleware
//   - cors.go: Cross-Origin Resource Sharing (CORS) middleware
//   - security_headers.go: Security response headers
//   - ratelimit.go: Per-client token bucket rate limiting
//   - trusted_proxy.go: Client IP resolution behind trusted proxies
//   - body_limit.go: Request body size limiting middleware
//
// All middleware follows the standard pattern: func(http.Handler) http.Handler
// This allows easy chaining: handler = middleware1(middleware2(handler))
//
// Example usage:
//
//	mux := http.NewServeMux()
//	// ... register handlers ...
//
//	handler := middleware.BodySizeLimit(32 << 20)(mux)
//	handler = middleware.CORS(middleware.DefaultCORSConfig())(handler)
//	handler = middleware.Logging(logger)(handler)
//	handler = middleware.RequestID()(handler)
//	handler = middleware.PanicRecovery(logger)(handler)
//
//	http.ListenAndServe(":8080", handler)
package middleware
