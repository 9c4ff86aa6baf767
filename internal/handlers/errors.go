package handlers

import (
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/inkwell-blog/inkwell/backend/internal/blog"
	"github.com/inkwell-blog/inkwell/backend/internal/middleware"
	"github.com/inkwell-blog/inkwell/backend/internal/store"
)

// respondError writes the JSON error matching err. notFound is the message
// used when err is store.ErrNotFound.
func respondError(c *gin.Context, err error, notFound string) {
	var verr *blog.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "fields": verr.Fields})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFound})
	case errors.Is(err, store.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "A post with this slug already exists for that publish date"})
	case errors.Is(err, blog.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not have permission to do that"})
	default:
		log.Printf("❌ %s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// paramID parses a positive integer path parameter. Anything else cannot
// name a row, so it is answered with 404.
func paramID(c *gin.Context, name, notFound string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id < 1 {
		c.JSON(http.StatusNotFound, gin.H{"error": notFound})
		return 0, false
	}
	return id, true
}

func currentUser(c *gin.Context) (int, bool) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
	}
	return userID, ok
}

// bindForm decodes a JSON or form body. An empty body is not an error; the
// service reports the missing fields.
func bindForm(c *gin.Context, obj any) bool {
	if err := c.ShouldBind(obj); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}
