package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/karumeo/gameledger/reference"
)

// ReferenceHandler serves the static rarity and type lookup tables.
type ReferenceHandler struct {
	ref *reference.Loader
}

// NewReferenceHandler creates a new ReferenceHandler.
func NewReferenceHandler(ref *reference.Loader) *ReferenceHandler {
	return &ReferenceHandler{ref: ref}
}

// RarityByID handles GET /api/reference/rarities/:id.
func (h *ReferenceHandler) RarityByID(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	r := h.ref.RarityByID(id)
	if r == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "rarity not found"})
		return
	}
	c.JSON(http.StatusOK, r)
}

// RarityByName handles GET /api/reference/rarities/name/:name.
func (h *ReferenceHandler) RarityByName(c *gin.Context) {
	r := h.ref.RarityByName(c.Param("name"))
	if r == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "rarity not found"})
		return
	}
	c.JSON(http.StatusOK, r)
}

// TypeByID handles GET /api/reference/types/:id.
func (h *ReferenceHandler) TypeByID(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	t := h.ref.TypeByID(id)
	if t == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "type not found"})
		return
	}
	c.JSON(http.StatusOK, t)
}

// TypeByName handles GET /api/reference/types/name/:name.
func (h *ReferenceHandler) TypeByName(c *gin.Context) {
	t := h.ref.TypeByName(c.Param("name"))
	if t == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "type not found"})
		return
	}
	c.JSON(http.StatusOK, t)
}
