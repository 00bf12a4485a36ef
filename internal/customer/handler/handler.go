package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rfandrade/creditledger/internal/customer"
	"github.com/rfandrade/creditledger/internal/customer/dto"
	"github.com/rfandrade/creditledger/internal/httperr"
	"github.com/rfandrade/creditledger/pkg/logger"
)

type CustomerHandler struct {
	uc     customer.UseCase
	logger logger.ZapLogger
}

func NewCustomerHandler(uc customer.UseCase, log logger.ZapLogger) *CustomerHandler {
	return &CustomerHandler{uc: uc, logger: log}
}

type createCustomerRequest struct {
	Name              string  `json:"name" binding:"required"`
	Phone             *string `json:"phone"`
	DefaultAddress    *string `json:"default_address"`
	DefaultFulfillway *string `json:"default_fulfillway"`
	Notes             string  `json:"notes"`
}

func (h *CustomerHandler) Create(c *gin.Context) {
	var req createCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cust, err := h.uc.CreateCustomer(c.Request.Context(), &dto.CreateCustomerInput{
		Name:              req.Name,
		Phone:             req.Phone,
		DefaultAddress:    req.DefaultAddress,
		DefaultFulfillway: req.DefaultFulfillway,
		Notes:             req.Notes,
	})
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, cust)
}

type updateCustomerRequest struct {
	Name              *string `json:"name"`
	Phone             *string `json:"phone"`
	DefaultAddress    *string `json:"default_address"`
	DefaultFulfillway *string `json:"default_fulfillway"`
	Notes             *string `json:"notes"`
	IsActive          *bool   `json:"is_active"`
}

func (h *CustomerHandler) Update(c *gin.Context) {
	var req updateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cust, err := h.uc.UpdateCustomer(c.Request.Context(), &dto.UpdateCustomerInput{
		ID:                c.Param("id"),
		Name:              req.Name,
		Phone:             req.Phone,
		DefaultAddress:    req.DefaultAddress,
		DefaultFulfillway: req.DefaultFulfillway,
		Notes:             req.Notes,
		IsActive:          req.IsActive,
	})
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, cust)
}

func (h *CustomerHandler) Get(c *gin.Context) {
	cust, err := h.uc.GetCustomer(c.Request.Context(), c.Param("id"))
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, cust)
}

func (h *CustomerHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "50"))

	items, total, err := h.uc.ListCustomers(c.Request.Context(), &dto.CustomerFilters{
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

func (h *CustomerHandler) Deactivate(c *gin.Context) {
	if err := h.uc.DeactivateCustomer(c.Request.Context(), c.Param("id")); err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "customer deactivated"})
}

func (h *CustomerHandler) Balance(c *gin.Context) {
	due, err := h.uc.BalanceDue(c.Request.Context(), c.Param("id"))
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"customer_id": c.Param("id"), "balance_due_cents": due})
}

type assignTagRequest struct {
	Tag       string     `json:"tag" binding:"required"`
	Reason    *string    `json:"reason"`
	ExpiresAt *time.Time `json:"expires_at"`
}

func (h *CustomerHandler) AssignTag(c *gin.Context) {
	var req assignTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tag, err := h.uc.AssignTag(c.Request.Context(), &dto.AssignTagInput{
		CustomerID: c.Param("id"),
		Tag:        req.Tag,
		Reason:     req.Reason,
		ExpiresAt:  req.ExpiresAt,
	})
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, tag)
}

func (h *CustomerHandler) RemoveTag(c *gin.Context) {
	if err := h.uc.RemoveTag(c.Request.Context(), c.Param("id"), c.Param("tag")); err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "tag removed"})
}

func (h *CustomerHandler) ListTags(c *gin.Context) {
	tags, err := h.uc.ListTags(c.Request.Context(), c.Param("id"))
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": tags})
}
