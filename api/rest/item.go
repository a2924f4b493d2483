package rest

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/karumeo/gameledger/game/item"
	"gorm.io/datatypes"
)

// ItemHandler handles item REST endpoints.
type ItemHandler struct {
	items *item.Service
}

// NewItemHandler creates a new ItemHandler.
func NewItemHandler(items *item.Service) *ItemHandler {
	return &ItemHandler{items: items}
}

// stackParam reads the ?stack= query flag. Anything but an explicit
// "false"/"0" counts as stacked; callers opt out, not in.
func stackParam(c *gin.Context) bool {
	v := c.DefaultQuery("stack", "true")
	return v != "false" && v != "0"
}

// Get handles GET /api/items/:id.
func (h *ItemHandler) Get(c *gin.Context) {
	stacks, err := h.items.Get(c.Request.Context(), c.Param("id"), stackParam(c))
	if err != nil {
		if errors.Is(err, item.ErrItemNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if len(stacks) == 1 {
		c.JSON(http.StatusOK, stacks[0])
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": stacks})
}

type createItemRequest struct {
	Name        string         `json:"name"        binding:"required,min=1,max=64"`
	Description string         `json:"description" binding:"max=256"`
	TypeID      int            `json:"type_id"     binding:"required"`
	RarityID    int            `json:"rarity_id"   binding:"required"`
	Amount      int            `json:"amount"      binding:"required,min=1"`
	OwnerID     int64          `json:"owner_id"    binding:"required"`
	Attributes  datatypes.JSON `json:"attributes"`
}

// Create handles POST /api/items.
func (h *ItemHandler) Create(c *gin.Context) {
	var req createItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ids, err := h.items.Create(c.Request.Context(), item.CreateInput{
		Name:        req.Name,
		Description: req.Description,
		TypeID:      req.TypeID,
		RarityID:    req.RarityID,
		Amount:      req.Amount,
		OwnerID:     req.OwnerID,
		Attributes:  req.Attributes,
	})
	if err != nil {
		switch {
		case errors.Is(err, item.ErrInvalidType):
			c.JSON(http.StatusBadRequest, gin.H{"error": "type does not exist"})
		case errors.Is(err, item.ErrInvalidRarity):
			c.JSON(http.StatusBadRequest, gin.H{"error": "rarity does not exist"})
		case errors.Is(err, item.ErrStackLimit):
			c.JSON(http.StatusBadRequest, gin.H{"error": "amount exceeds stack limit"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"ids": ids, "amount": len(ids)})
}

// Transfer handles POST /api/items/:id/transfer/:account_id.
func (h *ItemHandler) Transfer(c *gin.Context) {
	newOwnerID, err := strconv.ParseInt(c.Param("account_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid account id"})
		return
	}

	moved, err := h.items.Transfer(c.Request.Context(), c.Param("id"), newOwnerID, stackParam(c))
	if err != nil {
		switch {
		case errors.Is(err, item.ErrItemNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
		case errors.Is(err, item.ErrAccountNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"moved": moved, "owner_id": newOwnerID})
}

type equipRequest struct {
	Equipped *bool `json:"equipped" binding:"required"`
}

// Equip handles POST /api/items/:id/equip.
func (h *ItemHandler) Equip(c *gin.Context) {
	var req equipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	it, err := h.items.SetEquipped(c.Request.Context(), c.Param("id"), *req.Equipped)
	if err != nil {
		switch {
		case errors.Is(err, item.ErrItemNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
		case errors.Is(err, item.ErrNotEquippable), errors.Is(err, item.ErrInvalidType):
			c.JSON(http.StatusBadRequest, gin.H{"error": "item is not equippable"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": it.ID, "is_equipped": it.IsEquipped})
}

type dropRequest struct {
	Dropped *bool `json:"dropped" binding:"required"`
}

// Drop handles POST /api/items/:id/drop.
func (h *ItemHandler) Drop(c *gin.Context) {
	var req dropRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	affected, err := h.items.SetDropped(c.Request.Context(), c.Param("id"), *req.Dropped, stackParam(c))
	if err != nil {
		if errors.Is(err, item.ErrItemNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"affected": affected, "is_dropped": *req.Dropped})
}
