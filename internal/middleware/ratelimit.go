package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"rowguard/internal/domain"
)

// RateLimitConfig holds configuration for the rate limiter middleware.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate limit (tokens added per second).
	RequestsPerSecond float64
	// Burst is the maximum number of requests allowed in a burst.
	Burst int
}

// RateLimiter enforces a per-client token bucket. Authenticated requests are
// keyed by subject so one subject cannot starve others behind the same NAT;
// anonymous requests fall back to the remote IP. Place it after the
// authenticator so the identity is available.
type RateLimiter struct {
	cfg     RateLimitConfig
	clients sync.Map // key -> *clientBucket
}

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a RateLimiter and starts its stale-entry sweeper.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	l := &RateLimiter{cfg: cfg}
	go l.sweep()
	return l
}

func (l *RateLimiter) sweep() {
	for {
		time.Sleep(5 * time.Minute)
		l.clients.Range(func(key, value any) bool {
			b := value.(*clientBucket)
			if time.Since(b.lastSeen) > 10*time.Minute {
				l.clients.Delete(key)
			}
			return true
		})
	}
}

func (l *RateLimiter) bucket(key string) *rate.Limiter {
	if v, ok := l.clients.Load(key); ok {
		b := v.(*clientBucket)
		b.lastSeen = time.Now()
		return b.limiter
	}
	limiter := rate.NewLimiter(rate.Limit(l.cfg.RequestsPerSecond), l.cfg.Burst)
	l.clients.Store(key, &clientBucket{limiter: limiter, lastSeen: time.Now()})
	return limiter
}

// clientKey picks the bucket key: subject for authenticated requests, remote
// IP otherwise.
func clientKey(r *http.Request) string {
	if id := domain.CurrentIdentity(r.Context()); !id.IsAnonymous() {
		return "sub:" + id.SubjectID
	}
	return "ip:" + clientIP(r)
}

// Middleware rejects requests over the limit with 429 and standard
// rate-limit headers.
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limiter := l.bucket(clientKey(r))

		reservation := limiter.Reserve()
		if !reservation.OK() {
			// The limiter cannot grant the request even with infinite wait.
			writeTooManyRequests(w, 0)
			return
		}

		if delay := reservation.Delay(); delay > 0 {
			reservation.Cancel()
			writeTooManyRequests(w, int(delay.Seconds())+1)
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.cfg.Burst))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(int(limiter.Tokens())))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(time.Second).Unix(), 10))

		next.ServeHTTP(w, r)
	})
}

// clientIP strips the port from RemoteAddr. X-Forwarded-For is untrusted and
// ignored; honoring it would let clients pick their own bucket.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeTooManyRequests(w http.ResponseWriter, retryAfterSecs int) {
	if retryAfterSecs > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(retryAfterSecs))
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"code":    http.StatusTooManyRequests,
		"message": "rate limit exceeded",
	})
}
