package rate

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// LimiterMap hands out one token bucket per client IP and forgets clients that
// have been idle for longer than ttl.
type LimiterMap struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	every    rate.Limit
	burst    int
	ttl      time.Duration
	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewLimiterMap allows rpm requests per minute per IP with the given burst and
// starts the idle reaper. Call Stop to release it. rpm <= 0 disables limiting.
func NewLimiterMap(rpm, burst int, ttl time.Duration) *LimiterMap {
	every := rate.Inf
	if rpm > 0 {
		every = rate.Every(time.Minute / time.Duration(rpm))
	}
	if burst < 1 {
		burst = 1
	}
	lm := &LimiterMap{
		visitors: make(map[string]*visitor),
		every:    every,
		burst:    burst,
		ttl:      ttl,
		stopCh:   make(chan struct{}),
	}
	go lm.reap()
	return lm
}

func (l *LimiterMap) reap() {
	t := time.NewTicker(l.ttl)
	defer t.Stop()
	for {
		select {
		case <-l.stopCh:
			return
		case now := <-t.C:
			l.mu.Lock()
			for ip, v := range l.visitors {
				if now.Sub(v.lastSeen) > l.ttl {
					delete(l.visitors, ip)
				}
			}
			l.mu.Unlock()
		}
	}
}

// Stop stops the reaper goroutine. It is safe to call more than once.
func (l *LimiterMap) Stop() { l.stopOnce.Do(func() { close(l.stopCh) }) }

// Allow reports whether a request from ip may proceed now.
func (l *LimiterMap) Allow(ip string) bool {
	l.mu.Lock()
	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.every, l.burst)}
		l.visitors[ip] = v
	}
	v.lastSeen = time.Now()
	l.mu.Unlock()
	return v.limiter.Allow()
}

// Len returns the number of tracked clients.
func (l *LimiterMap) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.visitors)
}

// IPFromRequest extracts the client IP, preferring the first X-Forwarded-For hop.
func IPFromRequest(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
