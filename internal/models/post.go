package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// PostStatus is stored as a two letter code to keep the status index slim.
type PostStatus string

const (
	StatusDraft     PostStatus = "DF"
	StatusPublished PostStatus = "PB"
)

// PublishDayLayout is the layout of Post.PublishDay.
const PublishDayLayout = "2006-01-02"

// ParseStatus accepts either the stored code or the lowercase label.
func ParseStatus(s string) (PostStatus, error) {
	switch s {
	case "draft", string(StatusDraft):
		return StatusDraft, nil
	case "published", string(StatusPublished):
		return StatusPublished, nil
	}
	return "", fmt.Errorf("unknown post status %q", s)
}

func (s PostStatus) Label() string {
	if s == StatusPublished {
		return "published"
	}
	return "draft"
}

func (s PostStatus) MarshalText() ([]byte, error) {
	return []byte(s.Label()), nil
}

func (s *PostStatus) UnmarshalText(b []byte) error {
	parsed, err := ParseStatus(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

type Post struct {
	ID         int        `gorm:"primaryKey" json:"id"`
	Title      string     `gorm:"size:250;not null" json:"title"`
	Slug       string     `gorm:"size:250;not null;uniqueIndex:idx_posts_slug_publish_day" json:"slug"`
	AuthorID   int        `gorm:"not null;index" json:"author_id"`
	Author     User       `gorm:"foreignKey:AuthorID" json:"author"`
	Body       string     `gorm:"type:text;not null" json:"body"`
	Publish    time.Time  `gorm:"not null;index:idx_posts_publish,sort:desc" json:"publish"`
	PublishDay string     `gorm:"size:10;not null;uniqueIndex:idx_posts_slug_publish_day" json:"-"`
	Status     PostStatus `gorm:"size:2;not null;default:DF;index" json:"status"`
	Tags       []Tag      `gorm:"many2many:post_tags;" json:"tags"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`

	// SharedTags is only populated by the similar posts query.
	SharedTags int `gorm:"column:shared_tags;->;-:migration" json:"shared_tags,omitempty"`
}

// BeforeSave keeps Publish in UTC and PublishDay in step with it, so the
// (slug, publish_day) index always reflects the stored timestamp.
func (p *Post) BeforeSave(tx *gorm.DB) error {
	if p.Publish.IsZero() {
		p.Publish = tx.NowFunc()
	}
	p.Publish = p.Publish.UTC()
	p.PublishDay = p.Publish.Format(PublishDayLayout)
	if p.Status == "" {
		p.Status = StatusDraft
	}
	return nil
}

func (p *Post) IsPublished() bool {
	return p.Status == StatusPublished
}

// URLPath is the date based permalink served by the detail endpoint.
func (p *Post) URLPath() string {
	return fmt.Sprintf("/api/posts/%d/%02d/%02d/%s",
		p.Publish.Year(), int(p.Publish.Month()), p.Publish.Day(), p.Slug)
}

// TagIDs returns the IDs of the loaded tags.
func (p *Post) TagIDs() []int {
	ids := make([]int, 0, len(p.Tags))
	for _, t := range p.Tags {
		ids = append(ids, t.ID)
	}
	return ids
}

type CreatePostRequest struct {
	Title   string     `json:"title"`
	Slug    string     `json:"slug"`
	Body    string     `json:"body"`
	Status  PostStatus `json:"status"`
	Publish *time.Time `json:"publish,omitempty"`
	Tags    []string   `json:"tags"`
}

type UpdatePostRequest struct {
	Title   *string     `json:"title"`
	Slug    *string     `json:"slug"`
	Body    *string     `json:"body"`
	Status  *PostStatus `json:"status"`
	Publish *time.Time  `json:"publish"`
	Tags    *[]string   `json:"tags"`
}
