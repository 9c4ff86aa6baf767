package models

import "time"

// FavoritePost links a user to a post they marked. A user may favorite a
// given post at most once.
type FavoritePost struct {
	ID        int       `gorm:"primaryKey" json:"id"`
	UserID    int       `gorm:"not null;uniqueIndex:idx_favorite_user_post" json:"user_id"`
	PostID    int       `gorm:"not null;uniqueIndex:idx_favorite_user_post;index" json:"post_id"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Post      *Post     `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"post,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
