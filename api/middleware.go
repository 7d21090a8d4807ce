package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/killallgit/digest-api/api/types"
)

const (
	maxRequestBodyBytes = 1024 * 1024
	limiterSweepEvery   = 5 * time.Minute
	limiterMaxIdle      = 10 * time.Minute
)

// clientLimiter tracks one client's rate limiter and when it was last used
type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// CORS allows cross-origin requests from any origin. The API carries no
// cookies or credentials, so a wildcard policy is safe here.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// RequestSizeLimit caps request bodies at 1 MiB. Subscribe and category
// payloads are tiny; anything larger is a client error.
func RequestSizeLimit() gin.HandlerFunc {
	return RequestSizeLimitWithSize(maxRequestBodyBytes)
}

func RequestSizeLimitWithSize(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}

// PerClientRateLimit enforces a token-bucket limit per client IP. The
// first call starts a background sweep that drops limiters idle longer
// than limiterMaxIdle.
func PerClientRateLimit(rateLimiters *sync.Map, cleanupStop chan struct{}, cleanupInitialized *sync.Once, rps int, burst int) gin.HandlerFunc {
	cleanupInitialized.Do(func() {
		go sweepLoop(rateLimiters, cleanupStop)
	})

	return func(c *gin.Context) {
		clientIP := c.ClientIP()

		entry, _ := rateLimiters.LoadOrStore(clientIP, &clientLimiter{
			limiter:  rate.NewLimiter(rate.Every(time.Second/time.Duration(rps)), burst),
			lastSeen: time.Now(),
		})

		cl := entry.(*clientLimiter)
		cl.lastSeen = time.Now()

		if !cl.limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				types.ErrorResponse("Rate limit exceeded. Please slow down your requests."))
			return
		}
		c.Next()
	}
}

func sweepLoop(rateLimiters *sync.Map, cleanupStop chan struct{}) {
	ticker := time.NewTicker(limiterSweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			sweepStaleLimiters(rateLimiters, limiterMaxIdle)
		case <-cleanupStop:
			return
		}
	}
}

// sweepStaleLimiters drops limiters that have not been used within maxIdle
func sweepStaleLimiters(rateLimiters *sync.Map, maxIdle time.Duration) {
	cutoff := time.Now().Add(-maxIdle)
	rateLimiters.Range(func(key, value interface{}) bool {
		if cl, ok := value.(*clientLimiter); ok && cl.lastSeen.Before(cutoff) {
			rateLimiters.Delete(key)
		}
		return true
	})
}
