package handlers

import (
	"github.com/gin-gonic/gin"

	"gudang/internal/core/apperror"
	"gudang/internal/domain/inventory"
)

// ItemHandler handles item store read requests. All stock mutations go
// through the ledger endpoints.
type ItemHandler struct {
	*BaseHandler
	service *inventory.Service
}

// NewItemHandler creates a new item handler.
func NewItemHandler(base *BaseHandler, service *inventory.Service) *ItemHandler {
	return &ItemHandler{BaseHandler: base, service: service}
}

// List returns all items ordered by name.
func (h *ItemHandler) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, items)
}

// LowStock returns items at or below their reorder threshold.
func (h *ItemHandler) LowStock(c *gin.Context) {
	items, err := h.service.ListLowStock(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, items)
}

// Lookup returns one item by name (unit auto-fill in entry forms).
func (h *ItemHandler) Lookup(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		h.Error(c, apperror.NewValidation("name query parameter is required"))
		return
	}

	item, err := h.service.GetByName(c.Request.Context(), name)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, item)
}
