package middleware_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-payroll/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func setupIdempotencyRouter(rdb *redis.Client, handled *bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/periods/:id/calculate",
		func(c *gin.Context) { c.Set("user_id", "user-1") },
		middleware.Idempotency(rdb),
		func(c *gin.Context) {
			*handled = true
			c.JSON(http.StatusOK, gin.H{"ok": true})
		},
	)
	return r
}

func TestIdempotency_PassesThroughWithoutKey(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	var handled bool
	r := setupIdempotencyRouter(rdb, &handled)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/periods/p1/calculate", nil)
	r.ServeHTTP(w, req)

	assert.True(t, handled)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotency_ReplaysCachedResponse(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	var handled bool
	r := setupIdempotencyRouter(rdb, &handled)

	cacheKey := fmt.Sprintf("idemp:%s:%s:%s", "/periods/:id/calculate", "user-1", "key-1")
	mock.ExpectGet(cacheKey).SetVal(`{"succeeded":[]}`)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/periods/p1/calculate", nil)
	req.Header.Set("Idempotency-Key", "key-1")
	r.ServeHTTP(w, req)

	assert.False(t, handled)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"succeeded"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotency_AcquiresLockOnFirstRequest(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	var handled bool

	gin.SetMode(gin.TestMode)
	r := gin.New()
	var cacheKeyInCtx, lockKeyInCtx string
	r.POST("/periods/:id/calculate",
		func(c *gin.Context) { c.Set("user_id", "user-1") },
		middleware.Idempotency(rdb),
		func(c *gin.Context) {
			handled = true
			cacheKeyInCtx = c.GetString("idempotency_cache_key")
			lockKeyInCtx = c.GetString("idempotency_lock_key")
			c.JSON(http.StatusOK, gin.H{"ok": true})
		},
	)

	cacheKey := fmt.Sprintf("idemp:%s:%s:%s", "/periods/:id/calculate", "user-1", "key-2")
	mock.ExpectGet(cacheKey).RedisNil()
	mock.ExpectSetNX(cacheKey+":lock", "locked", 30*time.Second).SetVal(true)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/periods/p1/calculate", nil)
	req.Header.Set("Idempotency-Key", "key-2")
	r.ServeHTTP(w, req)

	assert.True(t, handled)
	assert.Equal(t, cacheKey, cacheKeyInCtx)
	assert.Equal(t, cacheKey+":lock", lockKeyInCtx)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotency_RejectsConcurrentDuplicate(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	var handled bool
	r := setupIdempotencyRouter(rdb, &handled)

	cacheKey := fmt.Sprintf("idemp:%s:%s:%s", "/periods/:id/calculate", "user-1", "key-3")
	mock.ExpectGet(cacheKey).RedisNil()
	mock.ExpectSetNX(cacheKey+":lock", "locked", 30*time.Second).SetVal(false)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/periods/p1/calculate", nil)
	req.Header.Set("Idempotency-Key", "key-3")
	r.ServeHTTP(w, req)

	assert.False(t, handled)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "PROCESSING")
	assert.NoError(t, mock.ExpectationsWereMet())
}
