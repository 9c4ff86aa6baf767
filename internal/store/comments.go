package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/inkwell-blog/inkwell/backend/internal/models"
)

type CommentStore struct {
	db *gorm.DB
}

func NewCommentStore(db *gorm.DB) *CommentStore {
	return &CommentStore{db: db}
}

// ActiveForPost returns the visible comments of a post, oldest first.
func (s *CommentStore) ActiveForPost(ctx context.Context, postID int) ([]models.Comment, error) {
	comments := []models.Comment{}
	err := s.db.WithContext(ctx).
		Where("post_id = ? AND active = ?", postID, true).
		Order("created_at ASC").
		Order("id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("comments for post %d: %w", postID, err)
	}
	return comments, nil
}

// Create inserts a single comment row.
func (s *CommentStore) Create(ctx context.Context, comment *models.Comment) error {
	if err := s.db.WithContext(ctx).Create(comment).Error; err != nil {
		return fmt.Errorf("create comment on post %d: %w", comment.PostID, translate(err))
	}
	return nil
}

// Get loads a comment with its post.
func (s *CommentStore) Get(ctx context.Context, id int) (*models.Comment, error) {
	var comment models.Comment
	if err := s.db.WithContext(ctx).Preload("Post").First(&comment, id).Error; err != nil {
		return nil, fmt.Errorf("comment %d: %w", id, translate(err))
	}
	return &comment, nil
}

// SetActive hides or shows a comment without deleting it.
func (s *CommentStore) SetActive(ctx context.Context, id int, active bool) error {
	res := s.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("id = ?", id).
		Update("active", active)
	if res.Error != nil {
		return fmt.Errorf("moderate comment %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("comment %d: %w", id, ErrNotFound)
	}
	return nil
}
