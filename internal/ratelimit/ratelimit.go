// File: internal/ratelimit/ratelimit.go
package ratelimit

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Config holds rate limiting configuration
type Config struct {
	Rate          rate.Limit    // Sustained requests per second per client
	Burst         int           // Requests allowed in a burst
	IdleTTL       time.Duration // Forget clients idle for this long
	CleanupPeriod time.Duration // How often to sweep idle clients

	// TrustedProxies lists peer IPs or CIDRs whose X-Forwarded-For and
	// X-Real-IP headers are believed. Headers from any other peer are ignored.
	TrustedProxies []string
}

// DefaultMutationConfig limits destructive API calls per client.
func DefaultMutationConfig() *Config {
	return &Config{
		Rate:          rate.Every(2 * time.Second),
		Burst:         5,
		IdleTTL:       15 * time.Minute,
		CleanupPeriod: 5 * time.Minute,
	}
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter keeps one token bucket per client identifier.
type Limiter struct {
	config  *Config
	trusted []netip.Prefix
	clients map[string]*client
	mu      sync.Mutex
	stopCh  chan struct{}
	once    sync.Once
}

func NewLimiter(config *Config) *Limiter {
	l := &Limiter{
		config:  config,
		trusted: parsePrefixes(config.TrustedProxies),
		clients: make(map[string]*client),
		stopCh:  make(chan struct{}),
	}
	if config.CleanupPeriod > 0 {
		go l.cleanupLoop()
	}
	return l
}

// Info describes the decision for one request.
type Info struct {
	Allowed    bool
	Limit      int
	RetryAfter time.Duration
}

// Allow consumes a token for identifier.
func (l *Limiter) Allow(identifier string) Info {
	l.mu.Lock()
	c, ok := l.clients[identifier]
	if !ok {
		c = &client{limiter: rate.NewLimiter(l.config.Rate, l.config.Burst)}
		l.clients[identifier] = c
	}
	now := time.Now()
	c.lastSeen = now
	l.mu.Unlock()

	r := c.limiter.ReserveN(now, 1)
	if !r.OK() {
		return Info{Allowed: false, Limit: l.config.Burst}
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return Info{Allowed: false, Limit: l.config.Burst, RetryAfter: delay}
	}
	return Info{Allowed: true, Limit: l.config.Burst}
}

func (l *Limiter) cleanupLoop() {
	ticker := time.NewTicker(l.config.CleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.cleanup(time.Now())
		case <-l.stopCh:
			return
		}
	}
}

func (l *Limiter) cleanup(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for id, c := range l.clients {
		if now.Sub(c.lastSeen) > l.config.IdleTTL {
			delete(l.clients, id)
		}
	}
}

// Close stops the cleanup goroutine
func (l *Limiter) Close() {
	l.once.Do(func() { close(l.stopCh) })
}

// ClientIP returns the address a request should be limited by. Forwarding
// headers are only honoured when the direct peer is a trusted proxy.
func (l *Limiter) ClientIP(r *http.Request) string {
	peer := remoteHost(r.RemoteAddr)
	if !l.isTrusted(peer) {
		return peer
	}

	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if ip := parseFirstIP(forwarded); ip != "" {
			return ip
		}
	}
	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}
	return peer
}

func (l *Limiter) isTrusted(host string) bool {
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range l.trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

func remoteHost(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}

// parsePrefixes accepts bare addresses and CIDRs; invalid entries are skipped.
func parsePrefixes(entries []string) []netip.Prefix {
	var out []netip.Prefix
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if p, err := netip.ParsePrefix(e); err == nil {
			out = append(out, p.Masked())
			continue
		}
		if a, err := netip.ParseAddr(e); err == nil {
			a = a.Unmap()
			out = append(out, netip.PrefixFrom(a, a.BitLen()))
		}
	}
	return out
}

// parseFirstIP extracts the first entry of a comma-separated list
func parseFirstIP(forwarded string) string {
	first, _, _ := strings.Cut(forwarded, ",")
	return strings.TrimSpace(first)
}
