package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rfandrade/creditledger/internal/httperr"
	"github.com/rfandrade/creditledger/internal/model"
	"github.com/rfandrade/creditledger/internal/order"
	"github.com/rfandrade/creditledger/internal/order/dto"
	"github.com/rfandrade/creditledger/pkg/logger"
)

type OrderHandler struct {
	uc     order.UseCase
	logger logger.ZapLogger
}

func NewOrderHandler(uc order.UseCase, log logger.ZapLogger) *OrderHandler {
	return &OrderHandler{uc: uc, logger: log}
}

type orderItemRequest struct {
	ProductID string  `json:"product_id" binding:"required"`
	Grams     float64 `json:"grams"`
	Units     int64   `json:"units"`
}

type createOrderRequest struct {
	CustomerID           string                  `json:"customer_id" binding:"required"`
	Method               model.FulfillmentMethod `json:"method" binding:"required"`
	DeliveryFeeCents     int64                   `json:"delivery_fee_cents"`
	DueDate              *time.Time              `json:"due_date"`
	Items                []orderItemRequest      `json:"items" binding:"required,min=1"`
	InitialPaymentCents  int64                   `json:"initial_payment_cents"`
	InitialPaymentMethod string                  `json:"initial_payment_method"`
	AllowBackorder       bool                    `json:"allow_backorder"`
}

func (h *OrderHandler) Create(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	in := &dto.CreateOrderInput{
		CustomerID:           req.CustomerID,
		Method:               req.Method,
		DeliveryFeeCents:     req.DeliveryFeeCents,
		DueDate:              req.DueDate,
		InitialPaymentCents:  req.InitialPaymentCents,
		InitialPaymentMethod: req.InitialPaymentMethod,
		AllowBackorder:       req.AllowBackorder,
	}
	for _, it := range req.Items {
		in.Items = append(in.Items, dto.OrderItemInput{
			ProductID: it.ProductID,
			Grams:     it.Grams,
			Units:     it.Units,
		})
	}

	detail, err := h.uc.CreateOrder(c.Request.Context(), in)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, detail)
}

func (h *OrderHandler) Get(c *gin.Context) {
	detail, err := h.uc.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *OrderHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "50"))

	items, total, err := h.uc.ListOrders(c.Request.Context(), &dto.OrderFilters{
		CustomerID: c.Query("customer_id"),
		Status:     c.Query("status"),
		Page:       page,
		PageSize:   pageSize,
	})
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": total})
}

type addPaymentRequest struct {
	AmountCents int64   `json:"amount_cents" binding:"required,gt=0"`
	Method      string  `json:"method"`
	Note        *string `json:"note"`
}

func (h *OrderHandler) AddPayment(c *gin.Context) {
	var req addPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	detail, err := h.uc.AddPayment(c.Request.Context(), &dto.AddPaymentInput{
		OrderID:     c.Param("id"),
		AmountCents: req.AmountCents,
		Method:      req.Method,
		Note:        req.Note,
	})
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

type addFulfillmentRequest struct {
	Event model.FulfillmentEvent `json:"event" binding:"required"`
	Grams float64                `json:"grams"`
	Units int64                  `json:"units"`
	Note  *string                `json:"note"`
}

func (h *OrderHandler) AddFulfillment(c *gin.Context) {
	var req addFulfillmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	detail, err := h.uc.AddFulfillment(c.Request.Context(), &dto.AddFulfillmentInput{
		OrderID: c.Param("id"),
		Event:   req.Event,
		Grams:   req.Grams,
		Units:   req.Units,
		Note:    req.Note,
	})
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *OrderHandler) Cancel(c *gin.Context) {
	detail, err := h.uc.CancelOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *OrderHandler) Close(c *gin.Context) {
	detail, err := h.uc.CloseOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

type quoteRequest struct {
	CustomerID   string             `json:"customer_id" binding:"required"`
	Items        []orderItemRequest `json:"items" binding:"required,min=1"`
	PaidNowCents int64              `json:"paid_now_cents"`
}

func (h *OrderHandler) Quote(c *gin.Context) {
	var req quoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	in := &dto.QuoteInput{
		CustomerID:   req.CustomerID,
		PaidNowCents: req.PaidNowCents,
	}
	for _, it := range req.Items {
		in.Items = append(in.Items, dto.OrderItemInput{
			ProductID: it.ProductID,
			Grams:     it.Grams,
			Units:     it.Units,
		})
	}

	quote, err := h.uc.Quote(c.Request.Context(), in)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, quote)
}
