package web

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Credential posts go to a remote identity provider that locks accounts
// after repeated failures, so throttle them per client before they leave
// this process.
const (
	credentialRate  = rate.Limit(10.0 / 60.0)
	credentialBurst = 5
	limiterIdleTTL  = 10 * time.Minute
)

type clientLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// credentialLimiter throttles credential submissions per remote address.
type credentialLimiter struct {
	mu       sync.Mutex
	limiters map[string]*clientLimiter
}

func newCredentialLimiter() *credentialLimiter {
	return &credentialLimiter{limiters: make(map[string]*clientLimiter)}
}

func (cl *credentialLimiter) allow(key string) bool {
	now := time.Now()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	for k, l := range cl.limiters {
		if now.Sub(l.lastAccess) > limiterIdleTTL {
			delete(cl.limiters, k)
		}
	}

	l, ok := cl.limiters[key]
	if !ok {
		l = &clientLimiter{limiter: rate.NewLimiter(credentialRate, credentialBurst)}
		cl.limiters[key] = l
	}
	l.lastAccess = now
	return l.limiter.Allow()
}

// Middleware rejects over-limit credential posts with 429.
func (cl *credentialLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !cl.allow(clientKey(r)) {
			w.Header().Set("Retry-After", "6")
			http.Error(w, "Too many attempts. Please wait and try again.", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientKey(r *http.Request) string {
	host := r.RemoteAddr
	if i := strings.LastIndex(host, ":"); i >= 0 {
		host = host[:i]
	}
	return host
}
