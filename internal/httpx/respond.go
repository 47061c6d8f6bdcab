package httpx

import (
	"errors"
	"net/http"

	"github.com/fruverhq/fruver-pos/internal/apperr"
	"github.com/gin-gonic/gin"
)

// Error maps workflow errors onto HTTP responses. Caller mistakes and expected
// races come back as 400 with the workflow message; anything unexpected is a
// bare 500.
func Error(c *gin.Context, err error) {
	switch {
	case apperr.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperr.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case apperr.IsProductUnavailable(err),
		errors.Is(err, apperr.ErrTillClosed),
		errors.Is(err, apperr.ErrTillNoLongerOpen),
		errors.Is(err, apperr.ErrAlreadyVoided):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
