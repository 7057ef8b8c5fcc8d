package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	// cleanupThreshold is the minimum map size before a cleanup pass runs.
	cleanupThreshold = 500
	// maxIdleAge is the duration after which an idle guild entry is eligible for cleanup.
	maxIdleAge = 10 * time.Minute
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// GuildRateLimiter keeps one token bucket per guild and prunes idle ones
type GuildRateLimiter struct {
	guilds map[string]*limiterEntry
	mu     sync.Mutex
	r      rate.Limit
	b      int
}

// NewGuildRateLimiter allows burst requests per guild, refilled evenly over a minute
func NewGuildRateLimiter(burst int) *GuildRateLimiter {
	if burst <= 0 {
		burst = 5
	}
	return &GuildRateLimiter{
		guilds: make(map[string]*limiterEntry),
		r:      rate.Every(time.Minute / time.Duration(burst)),
		b:      burst,
	}
}

// Limiter returns the bucket for guildID
func (l *GuildRateLimiter) Limiter(guildID string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if len(l.guilds) > cleanupThreshold {
		cutoff := now.Add(-maxIdleAge)
		for k, e := range l.guilds {
			if e.lastSeen.Before(cutoff) {
				delete(l.guilds, k)
			}
		}
	}

	e, exists := l.guilds[guildID]
	if !exists {
		e = &limiterEntry{limiter: rate.NewLimiter(l.r, l.b)}
		l.guilds[guildID] = e
	}
	e.lastSeen = now
	return e.limiter
}

// RateLimitGuild rejects requests for a guild once its bucket is empty.
// Requests the handler answers with 400 get their token back.
func RateLimitGuild(l *GuildRateLimiter, param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// CancelAt only restores tokens whose act time is not yet past,
		// so the reservation is pinned to now.
		now := time.Now()
		r := l.Limiter(c.Param(param)).ReserveN(now, 1)
		if !r.OK() || r.DelayFrom(now) > 0 {
			r.CancelAt(now)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error":   "Demasiados mensajes de prueba. Espera un momento antes de volver a intentarlo.",
			})
			return
		}
		c.Next()
		if c.Writer.Status() == http.StatusBadRequest {
			r.CancelAt(now)
		}
	}
}
