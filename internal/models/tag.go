package models

type Tag struct {
	ID   int    `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:100;not null" json:"name"`
	Slug string `gorm:"size:100;not null;uniqueIndex" json:"slug"`
}
