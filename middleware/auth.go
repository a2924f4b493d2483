package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/karumeo/gameledger/cache"
	"github.com/karumeo/gameledger/config"
)

const ClientKey = "auth_client"

// PassKeyHeader carries the shared secret. The pass_key query parameter
// is accepted too, for callers that cannot set headers.
const PassKeyHeader = "X-Pass-Key"

// Auth authenticates a request either by the shared passkey or by a
// Bearer service token previously issued in exchange for it. Token
// sessions are revocable: the token must still exist in the cache.
func Auth(sec config.SecurityConfig, c cache.Cache) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if key := passKeyFrom(ctx); key != "" {
			if sec.PassKey == "" ||
				subtle.ConstantTimeCompare([]byte(key), []byte(sec.PassKey)) != 1 {
				ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid pass key"})
				return
			}
			ctx.Set(ClientKey, "passkey")
			ctx.Next()
			return
		}

		header := ctx.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing credentials"})
			return
		}
		tokenStr := strings.TrimPrefix(header, "Bearer ")

		claims, err := ParseToken(tokenStr, sec.JWTSecret)
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		sessionKey := "session:" + tokenStr
		cacheCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
		defer cancel()
		exists, err := c.Exists(cacheCtx, sessionKey)
		if err != nil || !exists {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session expired"})
			return
		}

		ctx.Set(ClientKey, claims.Client)
		ctx.Next()
	}
}

// GetClient retrieves the authenticated client label from the Gin context.
func GetClient(c *gin.Context) string {
	if v, exists := c.Get(ClientKey); exists {
		return v.(string)
	}
	return ""
}

func passKeyFrom(c *gin.Context) string {
	if key := c.GetHeader(PassKeyHeader); key != "" {
		return key
	}
	return c.Query("pass_key")
}
