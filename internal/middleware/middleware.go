package middleware

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/Domenick1991/flightbooking/internal/logger"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const HeaderRequestID = "X-Request-ID"

// RequestID keeps an incoming X-Request-ID or generates one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
			c.Request.Header.Set(HeaderRequestID, id)
		}
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return gin.LoggerWithFormatter(func(p gin.LogFormatterParams) string {
		line := fmt.Sprintf("%s %s - %d (%s) id=%s", p.Method, p.Path, p.StatusCode, p.Latency, p.Request.Header.Get(HeaderRequestID))
		switch {
		case p.StatusCode >= http.StatusInternalServerError:
			log.Errorf("HTTP", "%s %s", line, p.ErrorMessage)
		case p.StatusCode >= http.StatusBadRequest:
			log.Warn("HTTP", line)
		default:
			log.Info("HTTP", line)
		}
		return ""
	})
}

func Recovery(log *logger.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Errorf("PANIC", "recovered from panic: %v", recovered)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
	})
}

// CORS allows the configured browser origins to call the API with cookies.
func CORS(origins []string) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", HeaderRequestID},
		ExposeHeaders:    []string{HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}

// limiterIdleTTL bounds how long a client's bucket survives without requests.
const limiterIdleTTL = 10 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type ipLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	rps       rate.Limit
	burst     int
	idle      time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func newIPLimiter(rps rate.Limit, burst int) *ipLimiter {
	return &ipLimiter{
		visitors: make(map[string]*visitor),
		rps:      rps,
		burst:    burst,
		idle:     limiterIdleTTL,
		now:      time.Now,
	}
}

func (l *ipLimiter) get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= l.idle {
		l.sweep(now)
	}
	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter
}

// sweep drops buckets idle for longer than l.idle. Caller holds l.mu.
func (l *ipLimiter) sweep(now time.Time) {
	for ip, v := range l.visitors {
		if now.Sub(v.lastSeen) > l.idle {
			delete(l.visitors, ip)
		}
	}
	l.lastSweep = now
}

// RateLimit applies a token bucket per client IP. A non-positive rate disables it.
func RateLimit(rps float64, burst int, log *logger.Logger) gin.HandlerFunc {
	if rps <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	if burst <= 0 {
		burst = int(rps)
		if burst < 1 {
			burst = 1
		}
	}
	limiter := newIPLimiter(rate.Limit(rps), burst)

	return func(c *gin.Context) {
		if !limiter.get(c.ClientIP()).Allow() {
			log.Warnf("RATE_LIMIT", "rate limit exceeded for ip %s", c.ClientIP())
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"message": "Rate limit exceeded"})
			return
		}
		c.Next()
	}
}
