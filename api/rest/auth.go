package rest

import (
	"context"
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/karumeo/gameledger/cache"
	"github.com/karumeo/gameledger/config"
	mw "github.com/karumeo/gameledger/middleware"
)

// AuthHandler exchanges the shared passkey for a short-lived service
// token, so clients do not have to send the passkey on every call.
type AuthHandler struct {
	cache cache.Cache
	sec   config.SecurityConfig
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(c cache.Cache, sec config.SecurityConfig) *AuthHandler {
	return &AuthHandler{cache: c, sec: sec}
}

type tokenRequest struct {
	PassKey string `json:"pass_key" binding:"required"`
	Client  string `json:"client"   binding:"max=64"`
}

// Token handles POST /api/auth/token.
func (h *AuthHandler) Token(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if h.sec.PassKey == "" ||
		subtle.ConstantTimeCompare([]byte(req.PassKey), []byte(h.sec.PassKey)) != 1 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid passkey"})
		return
	}

	client := req.Client
	if client == "" {
		client = "api"
	}
	token, err := mw.GenerateToken(client, h.sec.JWTSecret, h.sec.TokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token error"})
		return
	}

	// Store the session as a simple KV entry so Exists() works uniformly.
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	_ = h.cache.Set(ctx, "session:"+token, client, h.sec.TokenTTL)

	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"expires_in": int(h.sec.TokenTTL.Seconds()),
	})
}
