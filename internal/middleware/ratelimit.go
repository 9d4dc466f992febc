package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/httprate"
)

// ErrRateLimited is recorded on the context of rejected requests.
var ErrRateLimited = errors.New("rate limit exceeded")

// RateLimit limits each client IP to maxRequests per window using a
// sliding window counter shared by every route the middleware guards.
// Rejected requests are aborted with a 429 status and ErrRateLimited for
// the error translator to render.
func RateLimit(maxRequests int, window time.Duration) gin.HandlerFunc {
	limiter := httprate.Limit(
		maxRequests,
		window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		// Leave the body to the gin side so the error envelope stays uniform
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {}),
	)

	return func(c *gin.Context) {
		allowed := false
		limiter(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed = true
		})).ServeHTTP(c.Writer, c.Request)

		if !allowed {
			c.Status(http.StatusTooManyRequests)
			_ = c.Error(ErrRateLimited)
			c.Abort()
			return
		}

		c.Next()
	}
}
