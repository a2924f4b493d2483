package rest

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/karumeo/gameledger/game/faction"
)

// FactionHandler handles faction REST endpoints.
type FactionHandler struct {
	factions *faction.Service
}

// NewFactionHandler creates a new FactionHandler.
func NewFactionHandler(factions *faction.Service) *FactionHandler {
	return &FactionHandler{factions: factions}
}

type createFactionRequest struct {
	Name      string `json:"name"       binding:"required,min=1,max=64"`
	EmojiName string `json:"emoji_name" binding:"required,min=1,max=64"`
}

// Create handles POST /api/factions.
func (h *FactionHandler) Create(c *gin.Context) {
	var req createFactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	f, err := h.factions.Create(c.Request.Context(), req.Name, req.EmojiName)
	if err != nil {
		if errors.Is(err, faction.ErrNameTaken) {
			c.JSON(http.StatusForbidden, gin.H{"error": "faction name already taken"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusCreated, f)
}

// Get handles GET /api/factions/:id.
func (h *FactionHandler) Get(c *gin.Context) {
	d, err := h.factions.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, faction.ErrFactionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "faction not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, d)
}

// GetByName handles GET /api/factions/name/:name.
func (h *FactionHandler) GetByName(c *gin.Context) {
	d, err := h.factions.GetByName(c.Request.Context(), c.Param("name"))
	if err != nil {
		if errors.Is(err, faction.ErrFactionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "faction not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, d)
}

func membershipIDs(c *gin.Context) (string, int64, bool) {
	accID, err := strconv.ParseInt(c.Param("account_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid account id"})
		return "", 0, false
	}
	return c.Param("id"), accID, true
}

// Join handles POST /api/factions/:id/join/:account_id.
func (h *FactionHandler) Join(c *gin.Context) {
	factionID, accID, ok := membershipIDs(c)
	if !ok {
		return
	}

	if err := h.factions.Join(c.Request.Context(), factionID, accID); err != nil {
		switch {
		case errors.Is(err, faction.ErrFactionNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "faction not found"})
		case errors.Is(err, faction.ErrAccountNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
		case errors.Is(err, faction.ErrAlreadyInFaction):
			c.JSON(http.StatusForbidden, gin.H{"error": "account already in a faction"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"faction_id": factionID, "account_id": accID})
}

// Leave handles POST /api/factions/:id/leave/:account_id. A leave that
// dissolves the faction answers 201, a plain leave 200.
func (h *FactionHandler) Leave(c *gin.Context) {
	factionID, accID, ok := membershipIDs(c)
	if !ok {
		return
	}

	dissolved, err := h.factions.Leave(c.Request.Context(), factionID, accID)
	if err != nil {
		switch {
		case errors.Is(err, faction.ErrFactionNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "faction not found"})
		case errors.Is(err, faction.ErrAccountNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return
	}

	status := http.StatusOK
	if dissolved {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"faction_id": factionID, "account_id": accID, "dissolved": dissolved})
}
