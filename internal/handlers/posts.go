package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/inkwell-blog/inkwell/backend/internal/blog"
	"github.com/inkwell-blog/inkwell/backend/internal/middleware"
	"github.com/inkwell-blog/inkwell/backend/internal/models"
)

const postNotFound = "Post not found"

type PostHandler struct {
	svc *blog.Service
}

func NewPostHandler(svc *blog.Service) *PostHandler {
	return &PostHandler{svc: svc}
}

// GetPosts lists published posts, newest first. ?tag= narrows to a tag slug
// and ?page= selects the page.
func (h *PostHandler) GetPosts(c *gin.Context) {
	list, err := h.svc.ListPosts(c.Request.Context(), c.Query("tag"), c.Query("page"))
	if err != nil {
		respondError(c, err, "Tag not found")
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *PostHandler) GetTagPosts(c *gin.Context) {
	list, err := h.svc.ListPosts(c.Request.Context(), c.Param("tag"), c.Query("page"))
	if err != nil {
		respondError(c, err, "Tag not found")
		return
	}
	c.JSON(http.StatusOK, list)
}

// GetPost serves the date based permalink of a published post.
func (h *PostHandler) GetPost(c *gin.Context) {
	var date [3]int
	for i, name := range []string{"year", "month", "day"} {
		n, err := strconv.Atoi(c.Param(name))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": postNotFound})
			return
		}
		date[i] = n
	}

	detail, err := h.svc.PostDetail(c.Request.Context(), date[0], date[1], date[2], c.Param("slug"))
	if err != nil {
		respondError(c, err, postNotFound)
		return
	}

	if userID, ok := middleware.UserID(c); ok {
		favorited, err := h.svc.IsFavorite(c.Request.Context(), userID, detail.Post.ID)
		if err != nil {
			respondError(c, err, postNotFound)
			return
		}
		detail.Favorited = &favorited
	}
	c.JSON(http.StatusOK, detail)
}

// CreatePost creates a new post (PROTECTED - requires authentication)
func (h *PostHandler) CreatePost(c *gin.Context) {
	authorID, ok := currentUser(c)
	if !ok {
		return
	}

	var input models.CreatePostRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, err := h.svc.CreatePost(c.Request.Context(), authorID, input)
	if err != nil {
		respondError(c, err, postNotFound)
		return
	}
	c.JSON(http.StatusCreated, post)
}

// UpdatePost applies a partial update; only the author may edit a post.
func (h *PostHandler) UpdatePost(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	postID, ok := paramID(c, "id", postNotFound)
	if !ok {
		return
	}

	var input models.UpdatePostRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, err := h.svc.UpdatePost(c.Request.Context(), userID, postID, input)
	if err != nil {
		respondError(c, err, postNotFound)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *PostHandler) FavoritePost(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	postID, ok := paramID(c, "id", postNotFound)
	if !ok {
		return
	}

	created, err := h.svc.Favorite(c.Request.Context(), userID, postID)
	if err != nil {
		respondError(c, err, postNotFound)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"post_id": postID, "favorited": true})
}

func (h *PostHandler) UnfavoritePost(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	postID, ok := paramID(c, "id", postNotFound)
	if !ok {
		return
	}

	if err := h.svc.Unfavorite(c.Request.Context(), userID, postID); err != nil {
		respondError(c, err, "Favorite not found")
		return
	}
	c.Status(http.StatusNoContent)
}
