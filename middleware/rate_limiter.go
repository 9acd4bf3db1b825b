package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/shiyao1122/activity-system/utils"
)

// IPRateLimiter is a per-IP fixed-window counter. Completion reports arrive
// from partner backends, so limits are generous; the limiter exists to stop a
// runaway integration from hammering the ledger.
type IPRateLimiter struct {
	max         int
	window      time.Duration
	trustedCIDR []string

	mu    sync.Mutex
	state map[string][]int64 // unix nanos of requests inside the window
}

func NewIPRateLimiter(maxReq int, window time.Duration, trustedProxies []string) *IPRateLimiter {
	l := &IPRateLimiter{
		max:         maxReq,
		window:      window,
		trustedCIDR: trustedProxies,
		state:       make(map[string][]int64),
	}
	go l.cleanupLoop()
	return l
}

func (l *IPRateLimiter) cleanupLoop() {
	ticker := time.NewTicker(l.window)
	defer ticker.Stop()
	for range ticker.C {
		cutoff := time.Now().Add(-l.window).UnixNano()
		l.mu.Lock()
		for ip, ts := range l.state {
			kept := ts[:0]
			for _, t := range ts {
				if t >= cutoff {
					kept = append(kept, t)
				}
			}
			if len(kept) == 0 {
				delete(l.state, ip)
			} else {
				l.state[ip] = kept
			}
		}
		l.mu.Unlock()
	}
}

func (l *IPRateLimiter) allow(ip string) bool {
	now := time.Now().UnixNano()
	cutoff := now - l.window.Nanoseconds()
	l.mu.Lock()
	defer l.mu.Unlock()
	ts := l.state[ip]
	kept := ts[:0]
	for _, t := range ts {
		if t >= cutoff {
			kept = append(kept, t)
		}
	}
	if len(kept) >= l.max {
		l.state[ip] = kept
		return false
	}
	l.state[ip] = append(kept, now)
	return true
}

func (l *IPRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIPGeneric(r, l.trustedCIDR)
		if !l.allow(ip) {
			utils.WriteRaw(w, http.StatusTooManyRequests, map[string]interface{}{
				"success": false, "message": "Too many requests",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIPGeneric resolves the caller's IP, honoring X-Forwarded-For only
// when the direct peer is a trusted proxy.
func clientIPGeneric(r *http.Request, trusted []string) string {
	remote := r.RemoteAddr
	if host, _, err := net.SplitHostPort(remote); err == nil {
		remote = host
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" && isTrustedProxy(remote, trusted) {
		parts := strings.Split(xff, ",")
		if ip := strings.TrimSpace(parts[0]); ip != "" {
			return ip
		}
	}
	return remote
}

func isTrustedProxy(ip string, trusted []string) bool {
	parsed := net.ParseIP(ip)
	for _, t := range trusted {
		if t == ip {
			return true
		}
		if _, cidr, err := net.ParseCIDR(t); err == nil && parsed != nil && cidr.Contains(parsed) {
			return true
		}
	}
	return false
}
