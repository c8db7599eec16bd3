package server

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// DefaultLimiterIdle is how long an unused client limiter is kept.
const DefaultLimiterIdle = 10 * time.Minute

// Limiter implements per-client rate limiting. Limiters unused for the idle
// period are evicted.
type Limiter struct {
	limiters     *gocache.Cache
	mu           sync.Mutex
	defaultRate  rate.Limit
	defaultBurst int
}

// NewLimiter creates a limiter granting each client requestsPerSecond with the
// given burst. A non-positive rate disables limiting; a non-positive idle
// means DefaultLimiterIdle.
func NewLimiter(requestsPerSecond float64, burst int, idle time.Duration) *Limiter {
	if burst <= 0 {
		burst = 5
	}
	if idle <= 0 {
		idle = DefaultLimiterIdle
	}
	r := rate.Limit(requestsPerSecond)
	if requestsPerSecond <= 0 {
		r = rate.Inf
	}
	return &Limiter{
		limiters:     gocache.New(idle, idle),
		defaultRate:  r,
		defaultBurst: burst,
	}
}

// Allow reports whether client may make a request now.
func (l *Limiter) Allow(client string) bool {
	return l.getLimiter(client).Allow()
}

// Len returns the number of tracked clients.
func (l *Limiter) Len() int { return l.limiters.ItemCount() }

// getLimiter returns the client's limiter and refreshes its idle deadline.
func (l *Limiter) getLimiter(client string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	if v, ok := l.limiters.Get(client); ok {
		limiter := v.(*rate.Limiter)
		l.limiters.SetDefault(client, limiter)
		return limiter
	}
	limiter := rate.NewLimiter(l.defaultRate, l.defaultBurst)
	l.limiters.SetDefault(client, limiter)
	return limiter
}

// clientKey identifies the caller by its remote host. The first
// X-Forwarded-For hop is used only when trustProxy is set.
func clientKey(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
			first, _, _ := strings.Cut(fwd, ",")
			if first = strings.TrimSpace(first); first != "" {
				return first
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
