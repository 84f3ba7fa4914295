package handlers

import (
	"errors"
	"net/http"

	"neoforum/internal/services"

	"github.com/gin-gonic/gin"
)

// OK writes the success envelope. Extra payload fields ride alongside.
func OK(c *gin.Context, obj gin.H) {
	if obj == nil {
		obj = gin.H{}
	}
	obj["success"] = true
	c.JSON(http.StatusOK, obj)
}

// Fail converts a service failure into the structured result. Every
// failure is caught here; the client decides retry vs display. Only
// authentication failures point away from the current view.
func Fail(c *gin.Context, err error) {
	var vErr *services.ValidationError

	switch {
	case errors.Is(err, services.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": err.Error(), "redirect": "/login"})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": err.Error()})
	case errors.Is(err, services.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"success": false, "error": err.Error()})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"success": false, "error": err.Error()})
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": vErr.Error()})
	default:
		// Transient storage failures land here; safe for the caller to retry
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "something went wrong, try again"})
	}
}
