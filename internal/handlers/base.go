package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/EmilianoRojas/brigade-awards/internal/services"

	"github.com/gin-gonic/gin"
)

// replyError maps a service error to an HTTP status. Validation and
// permission errors carry their reason through to the client; storage
// failures are logged and surfaced as a generic 500.
func replyError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case services.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
