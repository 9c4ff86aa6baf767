package models

import "time"

type Comment struct {
	ID        int       `gorm:"primaryKey" json:"id"`
	PostID    int       `gorm:"not null;index" json:"post_id"`
	Post      *Post     `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	Name      string    `gorm:"size:80;not null" json:"name"`
	Email     string    `gorm:"size:254;not null" json:"email"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	Active    bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateCommentRequest struct {
	Name  string `json:"name" form:"name"`
	Email string `json:"email" form:"email"`
	Body  string `json:"body" form:"body"`
}

type ModerateCommentRequest struct {
	Active *bool `json:"active" binding:"required"`
}
