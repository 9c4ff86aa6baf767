package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/inkwell-blog/inkwell/backend/internal/blog"
	"github.com/inkwell-blog/inkwell/backend/internal/models"
)

type ShareHandler struct {
	svc *blog.Service
}

func NewShareHandler(svc *blog.Service) *ShareHandler {
	return &ShareHandler{svc: svc}
}

// SharePost emails a recommendation for a published post. Delivery problems
// are reported in the body with sent=false, not as an error status.
func (h *ShareHandler) SharePost(c *gin.Context) {
	postID, ok := paramID(c, "id", postNotFound)
	if !ok {
		return
	}

	var input models.SharePostRequest
	if !bindForm(c, &input) {
		return
	}

	result, err := h.svc.SharePost(c.Request.Context(), postID, input)
	var verr *blog.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "Invalid input",
			"fields": verr.Fields,
			"form":   blog.ShareFormFields,
		})
		return
	}
	if err != nil {
		respondError(c, err, postNotFound)
		return
	}
	c.JSON(http.StatusOK, result)
}
