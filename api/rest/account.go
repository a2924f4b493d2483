package rest

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/karumeo/gameledger/game/account"
	"github.com/karumeo/gameledger/game/item"
)

// AccountHandler handles account REST endpoints.
type AccountHandler struct {
	accounts *account.Service
	items    *item.Service
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accounts *account.Service, items *item.Service) *AccountHandler {
	return &AccountHandler{accounts: accounts, items: items}
}

func accountID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

// Create handles POST /api/accounts/:id.
func (h *AccountHandler) Create(c *gin.Context) {
	id, ok := accountID(c)
	if !ok {
		return
	}

	acc, err := h.accounts.Create(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, account.ErrExists) {
			c.JSON(http.StatusForbidden, gin.H{"error": "account already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusCreated, acc)
}

// Get handles GET /api/accounts/:id. The response includes the stacked
// inventory so one call paints the whole profile.
func (h *AccountHandler) Get(c *gin.Context) {
	id, ok := accountID(c)
	if !ok {
		return
	}

	acc, err := h.accounts.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	inv, err := h.items.Inventory(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"account": acc, "inventory": inv})
}

// adjustRequest carries a signed delta. binding:"required" also rejects
// an explicit zero, which is deliberate: a no-op adjustment is a caller
// bug.
type adjustRequest struct {
	Delta int `json:"delta" binding:"required"`
}

// AdjustHP handles POST /api/accounts/:id/hp.
func (h *AccountHandler) AdjustHP(c *gin.Context) {
	id, ok := accountID(c)
	if !ok {
		return
	}
	var req adjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing delta"})
		return
	}

	hp, err := h.accounts.AdjustHP(c.Request.Context(), id, req.Delta)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id, "hp": hp})
}

// AdjustDollars handles POST /api/accounts/:id/dollars.
func (h *AccountHandler) AdjustDollars(c *gin.Context) {
	id, ok := accountID(c)
	if !ok {
		return
	}
	var req adjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing delta"})
		return
	}

	dollars, err := h.accounts.AdjustDollars(c.Request.Context(), id, req.Delta)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id, "dollars": dollars})
}

// Leaderboard handles GET /api/accounts/leaderboard.
func (h *AccountHandler) Leaderboard(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	entries, err := h.accounts.Leaderboard(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"leaderboard": entries})
}
