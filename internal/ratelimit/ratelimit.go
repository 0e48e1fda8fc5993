// File: internal/ratelimit/ratelimit.go
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Config holds rate limiting configuration
type Config struct {
	RatePerSecond float64       // Sustained requests per second per key
	Burst         int           // Requests allowed at once
	IdleTTL       time.Duration // Keys unused this long are forgotten
	CleanupPeriod time.Duration // How often to clean up old entries
}

// DefaultChatConfig returns the defaults for the chat endpoints
func DefaultChatConfig() *Config {
	return &Config{
		RatePerSecond: 2,
		Burst:         10,
		IdleTTL:       10 * time.Minute,
		CleanupPeriod: 5 * time.Minute,
	}
}

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// KeyedLimiter keeps one token bucket per key. It is throttling state only
// and can be lost at any time.
type KeyedLimiter struct {
	config  *Config
	entries map[string]*entry
	mu      sync.Mutex
	stopCh  chan struct{}
	once    sync.Once
	now     func() time.Time
}

// NewKeyedLimiter creates a limiter and starts its cleanup goroutine.
func NewKeyedLimiter(config *Config) *KeyedLimiter {
	if config == nil {
		config = DefaultChatConfig()
	}
	kl := &KeyedLimiter{
		config:  config,
		entries: make(map[string]*entry),
		stopCh:  make(chan struct{}),
		now:     time.Now,
	}
	if config.CleanupPeriod > 0 {
		go kl.cleanupLoop()
	}
	return kl
}

// Info describes the outcome of one Allow call.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// Allow spends one token for key.
func (kl *KeyedLimiter) Allow(key string) Info {
	kl.mu.Lock()
	now := kl.now()
	e, ok := kl.entries[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(rate.Limit(kl.config.RatePerSecond), kl.config.Burst)}
		kl.entries[key] = e
	}
	e.lastSeen = now
	kl.mu.Unlock()

	info := Info{Limit: kl.config.Burst}
	r := e.limiter.ReserveN(now, 1)
	if !r.OK() {
		return info
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		info.RetryAfter = delay
		return info
	}
	info.Allowed = true
	if remaining := int(e.limiter.TokensAt(now)); remaining > 0 {
		info.Remaining = remaining
	}
	return info
}

// Len reports how many keys are tracked.
func (kl *KeyedLimiter) Len() int {
	kl.mu.Lock()
	defer kl.mu.Unlock()
	return len(kl.entries)
}

func (kl *KeyedLimiter) cleanupLoop() {
	ticker := time.NewTicker(kl.config.CleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			kl.cleanup()
		case <-kl.stopCh:
			return
		}
	}
}

// cleanup removes keys idle for longer than IdleTTL
func (kl *KeyedLimiter) cleanup() {
	kl.mu.Lock()
	defer kl.mu.Unlock()

	now := kl.now()
	for key, e := range kl.entries {
		if now.Sub(e.lastSeen) > kl.config.IdleTTL {
			delete(kl.entries, key)
		}
	}
}

// Close stops the cleanup goroutine
func (kl *KeyedLimiter) Close() {
	kl.once.Do(func() { close(kl.stopCh) })
}

// GetClientIP extracts the real client IP from request
func GetClientIP(r *http.Request) string {
	// Check for forwarded IP (behind proxy/load balancer)
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if ip := parseFirstIP(forwarded); ip != "" {
			return ip
		}
	}

	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// parseFirstIP extracts the first IP from a comma-separated list
func parseFirstIP(forwarded string) string {
	first, _, _ := strings.Cut(forwarded, ",")
	return strings.TrimSpace(first)
}
