package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/inkwell-blog/inkwell/backend/internal/models"
)

type FavoriteStore struct {
	db *gorm.DB
}

func NewFavoriteStore(db *gorm.DB) *FavoriteStore {
	return &FavoriteStore{db: db}
}

// Add records that userID favorited postID. It reports false when the pair
// already existed; the unique index makes concurrent adds collapse into one
// row.
func (s *FavoriteStore) Add(ctx context.Context, userID, postID int) (bool, error) {
	fav := models.FavoritePost{UserID: userID, PostID: postID}
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&fav)
	if res.Error != nil {
		return false, fmt.Errorf("favorite post %d for user %d: %w", postID, userID, translate(res.Error))
	}
	return res.RowsAffected == 1, nil
}

// Remove deletes the favorite, or returns ErrNotFound if there was none.
func (s *FavoriteStore) Remove(ctx context.Context, userID, postID int) error {
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&models.FavoritePost{})
	if res.Error != nil {
		return fmt.Errorf("unfavorite post %d for user %d: %w", postID, userID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("favorite %d/%d: %w", userID, postID, ErrNotFound)
	}
	return nil
}

// Exists reports whether userID has favorited postID.
func (s *FavoriteStore) Exists(ctx context.Context, userID, postID int) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.FavoritePost{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("favorite %d/%d: %w", userID, postID, err)
	}
	return count > 0, nil
}

// ListForUser returns the user's favorites on published posts, most
// recently favorited first.
func (s *FavoriteStore) ListForUser(ctx context.Context, userID int) ([]models.FavoritePost, error) {
	favorites := []models.FavoritePost{}
	err := s.db.WithContext(ctx).
		Joins("JOIN posts ON posts.id = favorite_posts.post_id").
		Scopes(Published).
		Where("favorite_posts.user_id = ?", userID).
		Order("favorite_posts.created_at DESC").
		Order("favorite_posts.id DESC").
		Preload("Post.Author").
		Preload("Post.Tags").
		Find(&favorites).Error
	if err != nil {
		return nil, fmt.Errorf("favorites of user %d: %w", userID, err)
	}
	return favorites, nil
}
