package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rfandrade/creditledger/internal/httperr"
	"github.com/rfandrade/creditledger/internal/model"
	"github.com/rfandrade/creditledger/internal/settings"
	"github.com/rfandrade/creditledger/pkg/logger"
)

type SettingsHandler struct {
	svc    *settings.Service
	logger logger.ZapLogger
}

func NewSettingsHandler(svc *settings.Service, log logger.ZapLogger) *SettingsHandler {
	return &SettingsHandler{svc: svc, logger: log}
}

func (h *SettingsHandler) Get(c *gin.Context) {
	s, err := h.svc.Get(c.Request.Context())
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *SettingsHandler) Update(c *gin.Context) {
	var req model.Settings
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s, err := h.svc.Update(c.Request.Context(), &req)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}
