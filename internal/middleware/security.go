package middleware

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/mindmate/mindmate-backend/pkg/clientip"
)

const (
	headerXContentTypeOptions     = "X-Content-Type-Options"
	headerXFrameOptions           = "X-Frame-Options"
	headerXXSSProtection          = "X-XSS-Protection"
	headerStrictTransportSecurity = "Strict-Transport-Security"
	headerReferrerPolicy          = "Referrer-Policy"
)

// SecurityHeaders sets security-related response headers.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(headerXContentTypeOptions, "nosniff")
		w.Header().Set(headerXFrameOptions, "DENY")
		w.Header().Set(headerXXSSProtection, "1; mode=block")
		w.Header().Set(headerStrictTransportSecurity, "max-age=31536000; includeSubDomains")
		w.Header().Set(headerReferrerPolicy, "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

const (
	limiterCleanupInterval = 5 * time.Minute
	limiterTTL             = 30 * time.Minute
)

type limiterEntry struct {
	limiter *rate.Limiter
	lastUse time.Time
}

// ipLimiter hands out one token bucket per key and forgets keys that have
// been idle for limiterTTL.
type ipLimiter struct {
	limit rate.Limit
	burst int

	mu      sync.Mutex
	entries map[string]*limiterEntry
	once    sync.Once
}

func newIPLimiter(limit rate.Limit, burst int) *ipLimiter {
	return &ipLimiter{limit: limit, burst: burst, entries: make(map[string]*limiterEntry)}
}

func (l *ipLimiter) allow(key string) bool {
	l.once.Do(l.startCleanup)

	l.mu.Lock()
	e, ok := l.entries[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.entries[key] = e
	}
	e.lastUse = time.Now()
	l.mu.Unlock()

	return e.limiter.Allow()
}

func (l *ipLimiter) startCleanup() {
	go func() {
		ticker := time.NewTicker(limiterCleanupInterval)
		defer ticker.Stop()
		for range ticker.C {
			l.mu.Lock()
			now := time.Now()
			for key, e := range l.entries {
				if now.Sub(e.lastUse) > limiterTTL {
					delete(l.entries, key)
				}
			}
			l.mu.Unlock()
		}
	}()
}

func tooManyRequests(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	w.Write([]byte(`{"success":false,"message":"` + message + `","error":"` + message + `"}`))
}

// --- Global rate limiting (per-IP, 1/s, burst 10) ---

const (
	globalRateLimitRPS   = 1
	globalRateLimitBurst = 10
)

var globalLimiter = newIPLimiter(rate.Limit(globalRateLimitRPS), globalRateLimitBurst)

// GlobalRateLimit limits each IP to 1 req/s, burst 10. Returns 429 when exceeded.
func GlobalRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !globalLimiter.allow(clientip.RealClientIP(r)) {
			tooManyRequests(w, "Too many requests. Please slow down.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// --- Login route rate limiting (1 req/5s, burst 2) ---

const (
	loginRateLimitEvery = 5 * time.Second
	loginRateLimitBurst = 2
)

var loginLimiter = newIPLimiter(rate.Every(loginRateLimitEvery), loginRateLimitBurst)

var loginPaths = map[string]bool{
	"/auth/login":        true,
	"/auth/login.php":    true,
	"/auth/register":     true,
	"/auth/register.php": true,
}

// LoginRateLimit applies a stricter limit to credential routes only.
func LoginRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || !loginPaths[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}
		if !loginLimiter.allow(clientip.RealClientIP(r)) {
			tooManyRequests(w, "Too many login attempts. Please try again later.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ProductionSecurity returns middlewares for production: SecurityHeaders → GlobalRateLimit.
func ProductionSecurity() []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		SecurityHeaders,
		GlobalRateLimit,
	}
}
