package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rfandrade/creditledger/internal/backup"
	"github.com/rfandrade/creditledger/internal/backup/dto"
	"github.com/rfandrade/creditledger/internal/httperr"
	"github.com/rfandrade/creditledger/pkg/logger"
)

type BackupHandler struct {
	uc     backup.UseCase
	logger logger.ZapLogger
}

func NewBackupHandler(uc backup.UseCase, log logger.ZapLogger) *BackupHandler {
	return &BackupHandler{uc: uc, logger: log}
}

func (h *BackupHandler) Export(c *gin.Context) {
	f, err := h.uc.Export(c.Request.Context())
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=ledger-backup.json")
	c.JSON(http.StatusOK, f)
}

func (h *BackupHandler) Import(c *gin.Context) {
	var f dto.File
	if err := c.ShouldBindJSON(&f); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	mode := dto.ImportMode(c.DefaultQuery("mode", string(dto.ModeReplace)))
	if err := h.uc.Import(c.Request.Context(), &f, mode); err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "backup imported", "mode": mode})
}
