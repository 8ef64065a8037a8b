package server

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// RateLimiter allows each client a fixed number of requests per one-minute
// window. Clients are tracked in a bounded LRU table, so a flood of
// distinct addresses evicts the least recently seen ones.
type RateLimiter struct {
	mu       sync.Mutex
	clients  *lru.Cache[string, *clientWindow]
	rate     int
	window   time.Duration
	cleanup  time.Duration
	stopOnce sync.Once
	stopChan chan struct{}
}

type clientWindow struct {
	tokens int
	start  time.Time
}

// RateLimiterConfig holds configuration for the rate limiter.
type RateLimiterConfig struct {
	// RequestsPerMinute is the per-client budget. Default: 60.
	RequestsPerMinute int
	// CleanupInterval is how often expired windows are dropped. Default: 5m.
	CleanupInterval time.Duration
	// MaxClients bounds the client table. Default: 10000.
	MaxClients int
}

// DefaultRateLimiterConfig returns the default rate limiter configuration.
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		RequestsPerMinute: 60,
		CleanupInterval:   5 * time.Minute,
		MaxClients:        10000,
	}
}

// NewRateLimiter creates a rate limiter and starts its cleanup loop. Zero
// fields of config take their defaults.
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	def := DefaultRateLimiterConfig()
	if config.RequestsPerMinute <= 0 {
		config.RequestsPerMinute = def.RequestsPerMinute
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = def.CleanupInterval
	}
	if config.MaxClients <= 0 {
		config.MaxClients = def.MaxClients
	}
	// lru.New only fails for a non-positive size.
	clients, _ := lru.New[string, *clientWindow](config.MaxClients)

	rl := &RateLimiter{
		clients:  clients,
		rate:     config.RequestsPerMinute,
		window:   time.Minute,
		cleanup:  config.CleanupInterval,
		stopChan: make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

// Allow reports whether clientIP may make another request now.
func (rl *RateLimiter) Allow(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	c, ok := rl.clients.Get(clientIP)
	if !ok || now.Sub(c.start) >= rl.window {
		rl.clients.Add(clientIP, &clientWindow{tokens: rl.rate - 1, start: now})
		return true
	}
	if c.tokens > 0 {
		c.tokens--
		return true
	}
	return false
}

// Clients returns the number of tracked clients.
func (rl *RateLimiter) Clients() int {
	return rl.clients.Len()
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.cleanup)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.evictExpired(time.Now())
		case <-rl.stopChan:
			return
		}
	}
}

// evictExpired drops clients whose window ended more than a window ago.
func (rl *RateLimiter) evictExpired(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for _, ip := range rl.clients.Keys() {
		if c, ok := rl.clients.Peek(ip); ok && now.Sub(c.start) > rl.window*2 {
			rl.clients.Remove(ip)
		}
	}
}

// Stop ends the cleanup loop. It is safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopChan) })
}

// RateLimitMiddleware answers 429 to clients over their budget.
func RateLimitMiddleware(rl *RateLimiter, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow(getClientIP(r)) {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", "60")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"Too Many Requests","message":"Rate limit exceeded. Please try again later."}`))
			return
		}
		next(w, r)
	}
}

// getClientIP identifies the client by the first X-Forwarded-For entry,
// then X-Real-IP, then the remote address without its port.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return strings.Trim(r.RemoteAddr, "[]")
	}
	return host
}
