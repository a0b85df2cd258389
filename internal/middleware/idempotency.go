package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const (
	idempotencyLockTTL  = 30 * time.Second
	idempotencyCacheTTL = 24 * time.Hour
)

// captureWriter buffers the response body so a successful result can be
// replayed for retries carrying the same Idempotency-Key.
type captureWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// storedResponse is the cached outcome of the first request, so a replay
// answers with the original status code, not a generic 200.
type storedResponse struct {
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body"`
}

// Idempotency dedupes POST requests by Idempotency-Key, scoped to route and
// actor. A replayed key returns the stored response; a key whose first
// request is still in flight answers 409 PROCESSING.
func Idempotency(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		idempKey := c.GetHeader("Idempotency-Key")
		if idempKey == "" || c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		actorID := c.GetString("employee_id")
		if actorID == "" {
			actorID = c.GetString("user_id")
		}

		cacheKey := fmt.Sprintf("idemp:%s:%s:%s", c.FullPath(), actorID, idempKey)
		lockKey := cacheKey + ":lock"
		ctx := c.Request.Context()

		if cached, err := rdb.Get(ctx, cacheKey).Result(); err == nil {
			var stored storedResponse
			if err := json.Unmarshal([]byte(cached), &stored); err == nil {
				c.Header("X-Idempotent-Replay", "true")
				c.Data(stored.Status, "application/json", stored.Body)
				c.Abort()
				return
			}
		}

		acquired, _ := rdb.SetNX(ctx, lockKey, "locked", idempotencyLockTTL).Result()
		if !acquired {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{
				"code":    "PROCESSING",
				"message": "A request with this idempotency key is still in progress",
			})
			return
		}

		writer := &captureWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = writer

		c.Next()

		// Only successful outcomes are replayable. Failures release the
		// lock so the client may retry with the same key.
		if writer.Status() >= 200 && writer.Status() < 300 {
			if payload, err := json.Marshal(storedResponse{
				Status: writer.Status(),
				Body:   writer.body.Bytes(),
			}); err == nil {
				_ = rdb.Set(ctx, cacheKey, payload, idempotencyCacheTTL).Err()
			}
		}
		_ = rdb.Del(ctx, lockKey).Err()
	}
}
