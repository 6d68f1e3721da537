package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// TODO: store in Redis

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type ClientLimiter struct {
	clients map[string]*clientBucket
	mu      sync.Mutex
	rate    rate.Limit
	burst   int
}

// NewClientLimiter allows perMinute sustained requests per client IP with
// the given burst on top.
func NewClientLimiter(perMinute int, burst int) *ClientLimiter {
	return &ClientLimiter{
		clients: make(map[string]*clientBucket),
		rate:    rate.Limit(float64(perMinute) / 60.0),
		burst:   burst,
	}
}

func (cl *ClientLimiter) bucket(ip string) *rate.Limiter {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	b, ok := cl.clients[ip]
	if !ok {
		b = &clientBucket{limiter: rate.NewLimiter(cl.rate, cl.burst)}
		cl.clients[ip] = b
	}
	b.lastSeen = time.Now()
	return b.limiter
}

func (cl *ClientLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cl.bucket(c.ClientIP()).Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests, please try later."})
			c.Abort()
			return
		}
		c.Next()
	}
}

// StartCleanup drops buckets for clients idle longer than maxIdle.
func (cl *ClientLimiter) StartCleanup(interval, maxIdle time.Duration) {
	go func() {
		for {
			time.Sleep(interval)
			cl.mu.Lock()
			now := time.Now()
			for ip, b := range cl.clients {
				if now.Sub(b.lastSeen) > maxIdle {
					delete(cl.clients, ip)
				}
			}
			cl.mu.Unlock()
		}
	}()
}
