package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/inkwell-blog/inkwell/backend/internal/blog"
	"github.com/inkwell-blog/inkwell/backend/internal/models"
)

type CommentHandler struct {
	svc *blog.Service
}

func NewCommentHandler(svc *blog.Service) *CommentHandler {
	return &CommentHandler{svc: svc}
}

// CreateComment accepts a reader comment on a published post. Only POST is
// routed here; other methods get 405 from the router.
func (h *CommentHandler) CreateComment(c *gin.Context) {
	postID, ok := paramID(c, "id", postNotFound)
	if !ok {
		return
	}

	var input models.CreateCommentRequest
	if !bindForm(c, &input) {
		return
	}

	comment, err := h.svc.AddComment(c.Request.Context(), postID, input)
	if err != nil {
		respondError(c, err, postNotFound)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// ModerateComment shows or hides a comment (PROTECTED - post author only)
func (h *CommentHandler) ModerateComment(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	commentID, ok := paramID(c, "commentId", "Comment not found")
	if !ok {
		return
	}

	var input models.ModerateCommentRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "active is required"})
		return
	}

	comment, err := h.svc.ModerateComment(c.Request.Context(), userID, commentID, *input.Active)
	if err != nil {
		respondError(c, err, "Comment not found")
		return
	}
	c.JSON(http.StatusOK, comment)
}
