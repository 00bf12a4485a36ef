// Package httperr maps the error taxonomy onto HTTP responses so handlers
// never inspect error strings.
package httperr

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rfandrade/creditledger/pkg/apperr"
)

func Abort(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindValidation:
		status = http.StatusBadRequest
	case apperr.KindInvariant:
		status = http.StatusConflict
	case apperr.KindConflict:
		status = http.StatusConflict
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
