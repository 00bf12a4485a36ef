package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rfandrade/creditledger/internal/httperr"
	"github.com/rfandrade/creditledger/internal/model"
	"github.com/rfandrade/creditledger/internal/product"
	"github.com/rfandrade/creditledger/internal/product/dto"
	"github.com/rfandrade/creditledger/pkg/logger"
)

type ProductHandler struct {
	uc     product.UseCase
	logger logger.ZapLogger
}

func NewProductHandler(uc product.UseCase, log logger.ZapLogger) *ProductHandler {
	return &ProductHandler{uc: uc, logger: log}
}

type createProductRequest struct {
	Name              string            `json:"name" binding:"required"`
	Quality           model.QualityTier `json:"quality" binding:"required"`
	SellMode          model.SellMode    `json:"sell_mode" binding:"required"`
	PricePerGramCents *int64            `json:"price_per_gram_cents"`
	PricePerUnitCents *int64            `json:"price_per_unit_cents"`
}

func (h *ProductHandler) Create(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p, err := h.uc.CreateProduct(c.Request.Context(), &dto.CreateProductInput{
		Name:              req.Name,
		Quality:           req.Quality,
		SellMode:          req.SellMode,
		PricePerGramCents: req.PricePerGramCents,
		PricePerUnitCents: req.PricePerUnitCents,
	})
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

type updateProductRequest struct {
	Name              *string            `json:"name"`
	Quality           *model.QualityTier `json:"quality"`
	SellMode          *model.SellMode    `json:"sell_mode"`
	PricePerGramCents *int64             `json:"price_per_gram_cents"`
	PricePerUnitCents *int64             `json:"price_per_unit_cents"`
	IsActive          *bool              `json:"is_active"`
}

func (h *ProductHandler) Update(c *gin.Context) {
	var req updateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p, err := h.uc.UpdateProduct(c.Request.Context(), &dto.UpdateProductInput{
		ID:                c.Param("id"),
		Name:              req.Name,
		Quality:           req.Quality,
		SellMode:          req.SellMode,
		PricePerGramCents: req.PricePerGramCents,
		PricePerUnitCents: req.PricePerUnitCents,
		IsActive:          req.IsActive,
	})
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) Get(c *gin.Context) {
	p, err := h.uc.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "50"))

	items, total, err := h.uc.ListProducts(c.Request.Context(), &dto.ProductFilters{
		Quality:    c.Query("quality"),
		ActiveOnly: c.Query("active") == "true",
		Page:       page,
		PageSize:   pageSize,
	})
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": total})
}

func (h *ProductHandler) Deactivate(c *gin.Context) {
	if err := h.uc.DeactivateProduct(c.Request.Context(), c.Param("id")); err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "product deactivated"})
}
