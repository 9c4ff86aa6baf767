package handlers

import (
	"gorm.io/gorm"

	"github.com/inkwell-blog/inkwell/backend/internal/auth"
	"github.com/inkwell-blog/inkwell/backend/internal/blog"
)

// Handler combines all handler types
type Handler struct {
	Auth    *AuthHandler
	Post    *PostHandler
	Comment *CommentHandler
	Share   *ShareHandler
	User    *UserHandler
}

// NewHandler creates a unified handler with all sub-handlers
func NewHandler(db *gorm.DB, svc *blog.Service, tokens *auth.Tokens) *Handler {
	return &Handler{
		Auth:    NewAuthHandler(db, tokens),
		Post:    NewPostHandler(svc),
		Comment: NewCommentHandler(svc),
		Share:   NewShareHandler(svc),
		User:    NewUserHandler(db, svc),
	}
}
