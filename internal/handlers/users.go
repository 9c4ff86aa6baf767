package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/inkwell-blog/inkwell/backend/internal/blog"
	"github.com/inkwell-blog/inkwell/backend/internal/models"
)

type UserHandler struct {
	db  *gorm.DB
	svc *blog.Service
}

func NewUserHandler(db *gorm.DB, svc *blog.Service) *UserHandler {
	return &UserHandler{db: db, svc: svc}
}

// GetMe returns the current authenticated user
func (h *UserHandler) GetMe(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var user models.User
	if err := h.db.WithContext(c.Request.Context()).First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	c.JSON(http.StatusOK, user)
}

// GetFavorites lists the caller's favorite posts that are still published,
// most recently favorited first.
func (h *UserHandler) GetFavorites(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	favorites, err := h.svc.Favorites(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "User not found")
		return
	}
	// If no favorites, return empty array not null
	if favorites == nil {
		favorites = []models.FavoritePost{}
	}
	c.JSON(http.StatusOK, favorites)
}
