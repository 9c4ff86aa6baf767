package store_test

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/inkwell-blog/inkwell/backend/internal/database/dbtest"
	"github.com/inkwell-blog/inkwell/backend/internal/models"
	"github.com/inkwell-blog/inkwell/backend/internal/store"
)

type fixture struct {
	t        *testing.T
	db       *gorm.DB
	ctx      context.Context
	author   models.User
	posts    *store.PostStore
	tags     *store.TagStore
	comments *store.CommentStore
	favs     *store.FavoriteStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return fixtureFor(t, dbtest.New(t))
}

func fixtureFor(t *testing.T, db *gorm.DB) *fixture {
	t.Helper()

	author := models.User{Username: "ana", Email: "ana@example.com", Password: "x"}
	if err := db.Create(&author).Error; err != nil {
		t.Fatalf("create author: %v", err)
	}

	return &fixture{
		t:        t,
		db:       db,
		ctx:      context.Background(),
		author:   author,
		posts:    store.NewPostStore(db),
		tags:     store.NewTagStore(db),
		comments: store.NewCommentStore(db),
		favs:     store.NewFavoriteStore(db),
	}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 10, 30, 0, 0, time.UTC)
}

func (f *fixture) post(title, postSlug string, status models.PostStatus, publish time.Time, tags ...string) models.Post {
	f.t.Helper()

	tagRows, err := f.tags.Ensure(f.ctx, tags)
	if err != nil {
		f.t.Fatalf("ensure tags: %v", err)
	}

	post := models.Post{
		Title:    title,
		Slug:     postSlug,
		AuthorID: f.author.ID,
		Body:     "body of " + title,
		Publish:  publish,
		Status:   status,
		Tags:     tagRows,
	}
	if err := f.posts.Create(f.ctx, &post); err != nil {
		f.t.Fatalf("create post %s: %v", postSlug, err)
	}
	return post
}

func slugs(posts []models.Post) []string {
	out := make([]string, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.Slug)
	}
	return out
}
