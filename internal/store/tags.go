package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/inkwell-blog/inkwell/backend/internal/models"
	"github.com/inkwell-blog/inkwell/backend/internal/slug"
)

type TagStore struct {
	db *gorm.DB
}

func NewTagStore(db *gorm.DB) *TagStore {
	return &TagStore{db: db}
}

// BySlug resolves a tag slug.
func (s *TagStore) BySlug(ctx context.Context, tagSlug string) (*models.Tag, error) {
	var tag models.Tag
	if err := s.db.WithContext(ctx).Where("slug = ?", tagSlug).First(&tag).Error; err != nil {
		return nil, fmt.Errorf("tag %q: %w", tagSlug, translate(err))
	}
	return &tag, nil
}

// Ensure returns one tag per distinct slug among names, creating the
// missing ones. Names that slugify to nothing are skipped.
func (s *TagStore) Ensure(ctx context.Context, names []string) ([]models.Tag, error) {
	tags := make([]models.Tag, 0, len(names))
	seen := make(map[string]bool, len(names))

	for _, name := range names {
		tagSlug := slug.Make(name)
		if tagSlug == "" || seen[tagSlug] {
			continue
		}
		seen[tagSlug] = true

		tag, err := s.firstOrCreate(ctx, name, tagSlug)
		if err != nil {
			return nil, err
		}
		tags = append(tags, *tag)
	}
	return tags, nil
}

func (s *TagStore) firstOrCreate(ctx context.Context, name, tagSlug string) (*models.Tag, error) {
	var tag models.Tag
	err := s.db.WithContext(ctx).
		Where(models.Tag{Slug: tagSlug}).
		Attrs(models.Tag{Name: name}).
		FirstOrCreate(&tag).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// Lost a race with a concurrent writer; the row exists now.
		err = s.db.WithContext(ctx).Where("slug = ?", tagSlug).First(&tag).Error
	}
	if err != nil {
		return nil, fmt.Errorf("ensure tag %q: %w", tagSlug, err)
	}
	return &tag, nil
}
