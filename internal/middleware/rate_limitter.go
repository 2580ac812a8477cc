package middleware

import (
	"MediVoice/pkg/response"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

var (
	ErrTooManyRequests = response.NewError(http.StatusTooManyRequests, "too many requests")
)

// bucketIdleTTL is how long an IP may stay silent before its bucket is dropped.
const bucketIdleTTL = 10 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type rateLimiter struct {
	bucket    map[string]*visitor
	rate      rate.Limit
	burstSize int
	clock     clock.Clock
	lastSweep time.Time
	mutex     sync.Mutex
}

func newRateLimiter(reqRate rate.Limit, burstSize int) *rateLimiter {
	c := clock.New()
	return &rateLimiter{
		bucket:    make(map[string]*visitor),
		rate:      reqRate,
		burstSize: burstSize,
		clock:     c,
		lastSweep: c.Now(),
	}
}

// allow spends one token from ip's bucket. Idle buckets are swept at most
// once per bucketIdleTTL.
func (r *rateLimiter) allow(ip string) bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	now := r.clock.Now()
	if now.Sub(r.lastSweep) >= bucketIdleTTL {
		for key, v := range r.bucket {
			if now.Sub(v.lastSeen) >= bucketIdleTTL {
				delete(r.bucket, key)
			}
		}
		r.lastSweep = now
	}

	v, exist := r.bucket[ip]
	if !exist {
		v = &visitor{limiter: rate.NewLimiter(r.rate, r.burstSize)}
		r.bucket[ip] = v
	}
	v.lastSeen = now

	return v.limiter.AllowN(now, 1)
}

func (r *rateLimiter) retryAfter() string {
	seconds := 1.0
	if r.rate > 0 {
		seconds = math.Max(1, math.Ceil(1/float64(r.rate)))
	}
	return strconv.Itoa(int(seconds))
}

func (r *rateLimiter) size() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return len(r.bucket)
}

func (m *middleware) NewRateLimiter(ctx *fiber.Ctx) error {
	clientIP := ctx.IP()
	if m.rateLimitter.allow(clientIP) {
		return ctx.Next()
	}

	m.log.WithFields(logrus.Fields{
		"request_id": m.GetRequestID(ctx),
		"client_ip":  clientIP,
		"path":       ctx.Path(),
		"error":      ErrTooManyRequests.Error(),
	}).Warn("Rate limit exceeded")

	ctx.Set(fiber.HeaderRetryAfter, m.rateLimitter.retryAfter())
	return ctx.Status(response.StatusCode(ErrTooManyRequests)).JSON(fiber.Map{
		"error": "Too many requests",
		"code":  "RATE_LIMITED",
	})
}
