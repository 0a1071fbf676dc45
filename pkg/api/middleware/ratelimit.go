package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/dd0wney/cluso-dyncomm/pkg/logging"
)

// RateLimitConfig configures rate limiting
type RateLimitConfig struct {
	RequestsPerSecond float64       // Rate of token replenishment
	BurstSize         int           // Maximum burst size (bucket capacity)
	CleanupInterval   time.Duration // How often to clean up expired buckets
	ClientExpiration  time.Duration // How long to keep inactive client buckets
	MaxClients        int           // Maximum number of tracked clients
}

// DefaultRateLimitConfig returns defaults sized for an endpoint that runs a
// full detection per request.
func DefaultRateLimitConfig() *RateLimitConfig {
	return &RateLimitConfig{
		RequestsPerSecond: 2,
		BurstSize:         10,
		CleanupInterval:   5 * time.Minute,
		ClientExpiration:  10 * time.Minute,
		MaxClients:        10000,
	}
}

// tokenBucket implements the token bucket rate limiting algorithm
type tokenBucket struct {
	tokens     float64
	lastRefill time.Time
	mu         sync.Mutex
}

// RateLimiter manages rate limiting for multiple clients
type RateLimiter struct {
	config   *RateLimitConfig
	logger   logging.Logger
	clients  map[string]*tokenBucket
	mu       sync.RWMutex
	stopOnce sync.Once
	stopChan chan struct{}
	now      func() time.Time
}

// NewRateLimiter creates a rate limiter and starts its cleanup goroutine.
// Call Stop to release it.
func NewRateLimiter(config *RateLimitConfig, logger logging.Logger) *RateLimiter {
	if config == nil {
		config = DefaultRateLimitConfig()
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	rl := &RateLimiter{
		config:   config,
		logger:   logger,
		clients:  make(map[string]*tokenBucket),
		stopChan: make(chan struct{}),
		now:      time.Now,
	}

	if config.CleanupInterval > 0 {
		go rl.cleanupLoop()
	}

	return rl
}

// Allow reports whether a request from clientID may proceed. It returns
// false when the client is out of tokens or when MaxClients buckets are
// already tracked and clientID is new.
func (rl *RateLimiter) Allow(clientID string) bool {
	bucket := rl.getBucket(clientID)
	if bucket == nil {
		return false
	}

	bucket.mu.Lock()
	defer bucket.mu.Unlock()

	now := rl.now()
	elapsed := now.Sub(bucket.lastRefill).Seconds()

	bucket.tokens += elapsed * rl.config.RequestsPerSecond
	if bucket.tokens > float64(rl.config.BurstSize) {
		bucket.tokens = float64(rl.config.BurstSize)
	}
	bucket.lastRefill = now

	if bucket.tokens >= 1 {
		bucket.tokens--
		return true
	}
	return false
}

func (rl *RateLimiter) getBucket(clientID string) *tokenBucket {
	rl.mu.RLock()
	bucket, exists := rl.clients[clientID]
	rl.mu.RUnlock()

	if exists {
		return bucket
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	if bucket, exists = rl.clients[clientID]; exists {
		return bucket
	}

	if rl.config.MaxClients > 0 && len(rl.clients) >= rl.config.MaxClients {
		rl.logger.Warn("rate limiter full, rejecting new client",
			logging.Int("max_clients", rl.config.MaxClients),
			logging.String("client", clientID))
		return nil
	}

	bucket = &tokenBucket{
		tokens:     float64(rl.config.BurstSize),
		lastRefill: rl.now(),
	}
	rl.clients[clientID] = bucket
	return bucket
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopChan:
			return
		}
	}
}

// cleanup removes buckets idle for longer than ClientExpiration.
func (rl *RateLimiter) cleanup() {
	now := rl.now()
	removed := 0

	rl.mu.Lock()
	for clientID, bucket := range rl.clients {
		bucket.mu.Lock()
		expired := now.Sub(bucket.lastRefill) > rl.config.ClientExpiration
		bucket.mu.Unlock()
		if expired {
			delete(rl.clients, clientID)
			removed++
		}
	}
	rl.mu.Unlock()

	if removed > 0 {
		rl.logger.Debug("rate limiter cleanup", logging.Count(removed))
	}
}

// Stop stops the cleanup goroutine. It is safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopChan) })
}

// Clients returns the number of tracked clients.
func (rl *RateLimiter) Clients() int {
	rl.mu.RLock()
	defer rl.mu.RUnlock()
	return len(rl.clients)
}

// ClientIDFunc is a function that extracts a client identifier from a request
type ClientIDFunc func(*http.Request) string

// RateLimit creates middleware that applies rate limiting per client.
// A nil limiter disables limiting. Limited requests get 429 with a
// Retry-After header.
func RateLimit(limiter *RateLimiter, getClientID ClientIDFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientID := getClientID(r)

			if !limiter.Allow(clientID) {
				limiter.logger.Warn("rate limit exceeded",
					logging.String("client", clientID),
					logging.String("path", r.URL.Path),
					logging.RequestID(GetRequestID(r)))

				w.Header().Set("Retry-After", "1")
				w.Header().Set("X-RateLimit-Limit", strconv.FormatFloat(limiter.config.RequestsPerSecond, 'f', -1, 64))
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
