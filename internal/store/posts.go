package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/inkwell-blog/inkwell/backend/internal/models"
	"github.com/inkwell-blog/inkwell/backend/internal/pagination"
)

// Published restricts a posts query to rows readers may see.
func Published(db *gorm.DB) *gorm.DB {
	return db.Where("posts.status = ?", models.StatusPublished)
}

// newestFirst is the default read ordering of posts.
func newestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("posts.publish DESC").Order("posts.id DESC")
}

func withTag(tagID int) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if tagID == 0 {
			return db
		}
		tagged := db.Session(&gorm.Session{NewDB: true}).
			Table("post_tags").
			Select("post_id").
			Where("tag_id = ?", tagID)
		return db.Where("posts.id IN (?)", tagged)
	}
}

func withRelations(db *gorm.DB) *gorm.DB {
	return db.Preload("Author").Preload("Tags", func(db *gorm.DB) *gorm.DB {
		return db.Order("tags.name")
	})
}

// PostFilter narrows ListPublished. The zero value lists everything.
type PostFilter struct {
	TagID int
}

type PostPage struct {
	Posts []models.Post   `json:"posts"`
	Page  pagination.Page `json:"pagination"`
}

type PostStore struct {
	db *gorm.DB
}

func NewPostStore(db *gorm.DB) *PostStore {
	return &PostStore{db: db}
}

// ListPublished returns one page of published posts, newest first. The page
// token is resolved with pagination.Resolve, so it never fails on a bad or
// out of range token.
func (s *PostStore) ListPublished(ctx context.Context, filter PostFilter, pageToken string, perPage int) (*PostPage, error) {
	var total int64
	err := s.db.WithContext(ctx).
		Model(&models.Post{}).
		Scopes(Published, withTag(filter.TagID)).
		Count(&total).Error
	if err != nil {
		return nil, fmt.Errorf("count published posts: %w", err)
	}

	page := pagination.Resolve(pageToken, total, perPage)

	posts := []models.Post{}
	err = s.db.WithContext(ctx).
		Scopes(Published, withTag(filter.TagID), newestFirst, withRelations).
		Offset(page.Offset()).
		Limit(page.Limit()).
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("list published posts: %w", err)
	}

	return &PostPage{Posts: posts, Page: page}, nil
}

// GetPublishedByDate finds the published post with the given slug whose
// publish timestamp falls on year-month-day (UTC). Exactly one match is
// required.
func (s *PostStore) GetPublishedByDate(ctx context.Context, year, month, day int, postSlug string) (*models.Post, error) {
	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if date.Year() != year || int(date.Month()) != month || date.Day() != day {
		return nil, fmt.Errorf("post %d-%d-%d/%s: %w", year, month, day, postSlug, ErrNotFound)
	}

	var posts []models.Post
	err := s.db.WithContext(ctx).
		Scopes(Published, withRelations).
		Where("posts.slug = ? AND posts.publish_day = ?", postSlug, date.Format(models.PublishDayLayout)).
		Limit(2).
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("get post %s/%s: %w", date.Format(models.PublishDayLayout), postSlug, err)
	}
	if len(posts) != 1 {
		return nil, fmt.Errorf("post %s/%s: %w", date.Format(models.PublishDayLayout), postSlug, ErrNotFound)
	}
	return &posts[0], nil
}

// GetPublished finds a published post by ID.
func (s *PostStore) GetPublished(ctx context.Context, id int) (*models.Post, error) {
	var post models.Post
	err := s.db.WithContext(ctx).Scopes(Published, withRelations).First(&post, id).Error
	if err != nil {
		return nil, fmt.Errorf("published post %d: %w", id, translate(err))
	}
	return &post, nil
}

// Get finds a post by ID regardless of its status.
func (s *PostStore) Get(ctx context.Context, id int) (*models.Post, error) {
	var post models.Post
	err := s.db.WithContext(ctx).Scopes(withRelations).First(&post, id).Error
	if err != nil {
		return nil, fmt.Errorf("post %d: %w", id, translate(err))
	}
	return &post, nil
}

// Similar ranks other published posts by how many tags they share with post,
// then by publish date, newest first. post.Tags must be loaded.
func (s *PostStore) Similar(ctx context.Context, post *models.Post, limit int) ([]models.Post, error) {
	similar := []models.Post{}

	tagIDs := post.TagIDs()
	if len(tagIDs) == 0 || limit <= 0 {
		return similar, nil
	}

	err := s.db.WithContext(ctx).
		Model(&models.Post{}).
		Scopes(Published).
		Select("posts.*, COUNT(post_tags.tag_id) AS shared_tags").
		Joins("JOIN post_tags ON post_tags.post_id = posts.id").
		Where("post_tags.tag_id IN ?", tagIDs).
		Where("posts.id <> ?", post.ID).
		Group("posts.id").
		Order("shared_tags DESC").
		Order("posts.publish DESC").
		Order("posts.id DESC").
		Limit(limit).
		Scopes(withRelations).
		Find(&similar).Error
	if err != nil {
		return nil, fmt.Errorf("similar posts for %d: %w", post.ID, err)
	}
	return similar, nil
}

// Create inserts post together with its tag links. A second post with the
// same slug on the same publish day yields ErrConflict.
func (s *PostStore) Create(ctx context.Context, post *models.Post) error {
	if err := s.db.WithContext(ctx).Create(post).Error; err != nil {
		return fmt.Errorf("create post %q: %w", post.Slug, translate(err))
	}
	return nil
}

// Update writes every column of post and, when tags is non-nil, replaces its
// tag set. Both happen in one transaction.
func (s *PostStore) Update(ctx context.Context, post *models.Post, tags []models.Tag) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(post).Error; err != nil {
			return err
		}
		if tags == nil {
			return nil
		}
		assoc := tx.Model(post).Association("Tags")
		if len(tags) == 0 {
			if err := assoc.Clear(); err != nil {
				return err
			}
		} else if err := assoc.Replace(tags); err != nil {
			return err
		}
		post.Tags = tags
		return nil
	})
	if err != nil {
		return fmt.Errorf("update post %d: %w", post.ID, translate(err))
	}
	return nil
}
