package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rfandrade/creditledger/internal/httperr"
	"github.com/rfandrade/creditledger/internal/inventory"
	"github.com/rfandrade/creditledger/internal/inventory/dto"
	"github.com/rfandrade/creditledger/internal/model"
	"github.com/rfandrade/creditledger/pkg/logger"
)

type InventoryHandler struct {
	uc     inventory.UseCase
	logger logger.ZapLogger
}

func NewInventoryHandler(uc inventory.UseCase, log logger.ZapLogger) *InventoryHandler {
	return &InventoryHandler{uc: uc, logger: log}
}

func (h *InventoryHandler) List(c *gin.Context) {
	items, total, err := h.uc.List(c.Request.Context(), &dto.InventoryFilters{
		ProductID: c.Query("product_id"),
	})
	if err != nil {
		httperr.Abort(c, err)
		return
	}

	type row struct {
		model.Inventory
		AvailableGrams float64 `json:"available_grams"`
		AvailableUnits int64   `json:"available_units"`
	}
	out := make([]row, 0, len(items))
	for _, inv := range items {
		out = append(out, row{
			Inventory:      inv,
			AvailableGrams: inv.AvailableGrams(),
			AvailableUnits: inv.AvailableUnits(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"items": out, "total": total})
}

func (h *InventoryHandler) GetByProduct(c *gin.Context) {
	inv, err := h.uc.GetProductInventory(c.Request.Context(), c.Param("productID"))
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"inventory":       inv,
		"available_grams": inv.AvailableGrams(),
		"available_units": inv.AvailableUnits(),
	})
}

type adjustRequest struct {
	Type       model.AdjustmentType `json:"type" binding:"required"`
	GramsDelta float64              `json:"grams_delta"`
	UnitsDelta int64                `json:"units_delta"`
	Note       string               `json:"note"`
}

func (h *InventoryHandler) Adjust(c *gin.Context) {
	var req adjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	inv, err := h.uc.Adjust(c.Request.Context(), &dto.AdjustInput{
		ProductID:  c.Param("productID"),
		Type:       req.Type,
		GramsDelta: req.GramsDelta,
		UnitsDelta: req.UnitsDelta,
		Note:       req.Note,
	})
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, inv)
}

func (h *InventoryHandler) ListAdjustments(c *gin.Context) {
	items, total, err := h.uc.ListAdjustments(c.Request.Context(), &dto.AdjustmentFilters{
		ProductID: c.Param("productID"),
		Type:      c.Query("type"),
	})
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": total})
}
