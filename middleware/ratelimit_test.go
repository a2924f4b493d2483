package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func newRateLimitRouter(r rate.Limit, b int) *gin.Engine {
	eng := gin.New()
	eng.Use(RateLimit(r, b))
	eng.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	return eng
}

func limitedGet(r *gin.Engine, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Real-IP", ip)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimit_AllowsFirst(t *testing.T) {
	r := newRateLimitRouter(100, 5)
	assert.Equal(t, http.StatusOK, limitedGet(r, "10.0.0.1").Code)
}

func TestRateLimit_Burst(t *testing.T) {
	// Burst of 3 with a near-zero refill, then reject.
	r := newRateLimitRouter(0.001, 3)
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, limitedGet(r, "10.0.1.1").Code,
			"request %d should be allowed", i+1)
	}
	assert.Equal(t, http.StatusTooManyRequests, limitedGet(r, "10.0.1.1").Code)
}

func TestRateLimit_PerIP(t *testing.T) {
	// Two IPs with burst=1 each get one allowed request.
	r := newRateLimitRouter(0.001, 1)

	for _, ip := range []string{"10.1.1.1", "10.1.1.2"} {
		assert.Equal(t, http.StatusOK, limitedGet(r, ip).Code,
			"first request from %s should be OK", ip)
	}
	assert.Equal(t, http.StatusTooManyRequests, limitedGet(r, "10.1.1.1").Code)
}

func TestRateLimit_DisabledWhenZero(t *testing.T) {
	r := newRateLimitRouter(0, 0)
	for i := 0; i < 20; i++ {
		assert.Equal(t, http.StatusOK, limitedGet(r, "10.2.0.1").Code)
	}
}
