package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"nutritrack/internal/auth"
	"nutritrack/pkg/logger"
)

const (
	requestIDHeader = "X-Request-ID"
	ctxRequestID    = "requestID"
	ctxUserID       = "userID"
	ctxClaims       = "claims"
)

// requestID reuses the caller's X-Request-ID or assigns a new one.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		c.Set(ctxRequestID, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func accessLog(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []interface{}{
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", status,
			"latency", time.Since(start),
			"request_id", c.GetString(ctxRequestID),
		}
		if uid, ok := c.Get(ctxUserID); ok {
			fields = append(fields, "user_id", uid)
		}
		switch {
		case status >= http.StatusInternalServerError:
			log.Errorw("Request failed", fields...)
		case status >= http.StatusBadRequest:
			log.Warnw("Request rejected", fields...)
		default:
			log.Infow("Request handled", fields...)
		}
	}
}

// authRequired validates the bearer token and stores the user id and claims
// on the context.
func (h *Handler) authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		claims, err := h.svc.Authenticate(c.Request.Context(), strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxClaims, claims)
		c.Next()
	}
}

func userID(c *gin.Context) int64 {
	return c.GetInt64(ctxUserID)
}

func claimsFrom(c *gin.Context) *auth.Claims {
	v, _ := c.Get(ctxClaims)
	claims, _ := v.(*auth.Claims)
	return claims
}
