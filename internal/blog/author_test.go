package blog_test

import (
	"errors"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"github.com/inkwell-blog/inkwell/backend/internal/blog"
	"github.com/inkwell-blog/inkwell/backend/internal/models"
	"github.com/inkwell-blog/inkwell/backend/internal/store"
)

func ptr[T any](v T) *T { return &v }

func TestCreatePostDefaults(t *testing.T) {
	c := qt.New(t)
	e := newEnv(t)

	post, err := e.svc.CreatePost(e.ctx, e.author.ID, models.CreatePostRequest{
		Title: "Crème Brûlée, Explained!",
		Body:  "body",
		Tags:  []string{"Food", "food ", "Desserts"},
	})
	c.Assert(err, qt.IsNil)
	c.Assert(post.Slug, qt.Equals, "creme-brulee-explained")
	c.Assert(post.Status, qt.Equals, models.StatusDraft)
	c.Assert(post.Publish.IsZero(), qt.IsFalse)
	c.Assert(post.Tags, qt.HasLen, 2)
	c.Assert(post.Author.Username, qt.Equals, "ana")
}

func TestCreatePostValidation(t *testing.T) {
	c := qt.New(t)
	e := newEnv(t)

	_, err := e.svc.CreatePost(e.ctx, e.author.ID, models.CreatePostRequest{Title: "!!!", Slug: "", Body: " "})
	var verr *blog.ValidationError
	c.Assert(errors.As(err, &verr), qt.IsTrue)
	c.Assert(verr.Fields["slug"], qt.Equals, "This field is required.")
	c.Assert(verr.Fields["body"], qt.Equals, "This field is required.")

	_, err = e.svc.CreatePost(e.ctx, e.author.ID, models.CreatePostRequest{Title: "ok", Slug: "Not A Slug", Body: "b"})
	c.Assert(errors.As(err, &verr), qt.IsTrue)
	c.Assert(verr.Fields, qt.HasLen, 1)
	c.Assert(verr.Fields["slug"], qt.Matches, "Enter a valid slug.*")
}

func TestCreatePostSlugConflictSameDay(t *testing.T) {
	c := qt.New(t)
	e := newEnv(t)

	at := time.Date(2024, 3, 3, 9, 0, 0, 0, time.UTC)
	e.publish(t, "Hello", models.StatusPublished, at)

	later := at.Add(5 * time.Hour)
	_, err := e.svc.CreatePost(e.ctx, e.author.ID, models.CreatePostRequest{Title: "Hello", Body: "again", Publish: &later})
	c.Assert(err, qt.ErrorIs, store.ErrConflict)

	nextDay := at.Add(24 * time.Hour)
	_, err = e.svc.CreatePost(e.ctx, e.author.ID, models.CreatePostRequest{Title: "Hello", Body: "again", Publish: &nextDay})
	c.Assert(err, qt.IsNil)
}

func TestUpdatePost(t *testing.T) {
	c := qt.New(t)
	e := newEnv(t)

	post := e.publish(t, "Draft title", models.StatusDraft, time.Date(2024, 3, 3, 9, 0, 0, 0, time.UTC), "one")

	updated, err := e.svc.UpdatePost(e.ctx, e.author.ID, post.ID, models.UpdatePostRequest{
		Title:  ptr("Final title"),
		Status: ptr(models.StatusPublished),
		Tags:   ptr([]string{"two", "three"}),
	})
	c.Assert(err, qt.IsNil)
	c.Assert(updated.Title, qt.Equals, "Final title")
	c.Assert(updated.Slug, qt.Equals, "draft-title")
	c.Assert(updated.Status, qt.Equals, models.StatusPublished)
	c.Assert(updated.Tags, qt.HasLen, 2)

	detail, err := e.svc.PostDetail(e.ctx, 2024, 3, 3, "draft-title")
	c.Assert(err, qt.IsNil)
	c.Assert(detail.Post.Title, qt.Equals, "Final title")
}

func TestUpdatePostKeepsTagsWhenOmitted(t *testing.T) {
	c := qt.New(t)
	e := newEnv(t)

	post := e.publish(t, "Tagged", models.StatusPublished, time.Date(2024, 3, 3, 9, 0, 0, 0, time.UTC), "keep")

	updated, err := e.svc.UpdatePost(e.ctx, e.author.ID, post.ID, models.UpdatePostRequest{Body: ptr("new body")})
	c.Assert(err, qt.IsNil)
	c.Assert(updated.Body, qt.Equals, "new body")
	c.Assert(updated.Tags, qt.HasLen, 1)
	c.Assert(updated.Tags[0].Slug, qt.Equals, "keep")
}

func TestUpdatePostForbiddenForOthers(t *testing.T) {
	c := qt.New(t)
	e := newEnv(t)

	post := e.publish(t, "Mine", models.StatusDraft, time.Date(2024, 3, 3, 9, 0, 0, 0, time.UTC))

	_, err := e.svc.UpdatePost(e.ctx, e.author.ID+1, post.ID, models.UpdatePostRequest{Title: ptr("Theirs")})
	c.Assert(err, qt.ErrorIs, blog.ErrForbidden)

	_, err = e.svc.UpdatePost(e.ctx, e.author.ID, 9999, models.UpdatePostRequest{})
	c.Assert(err, qt.ErrorIs, store.ErrNotFound)
}

func TestModerateComment(t *testing.T) {
	c := qt.New(t)
	e := newEnv(t)

	post := e.publish(t, "Post", models.StatusPublished, time.Date(2024, 3, 3, 9, 0, 0, 0, time.UTC))
	cm, err := e.svc.AddComment(e.ctx, post.ID, models.CreateCommentRequest{Name: "Spam", Email: "s@example.com", Body: "buy now"})
	c.Assert(err, qt.IsNil)
	<-e.notifier.posted

	_, err = e.svc.ModerateComment(e.ctx, e.author.ID+1, cm.ID, false)
	c.Assert(err, qt.ErrorIs, blog.ErrForbidden)

	hidden, err := e.svc.ModerateComment(e.ctx, e.author.ID, cm.ID, false)
	c.Assert(err, qt.IsNil)
	c.Assert(hidden.Active, qt.IsFalse)

	detail, err := e.svc.PostDetail(e.ctx, 2024, 3, 3, "post")
	c.Assert(err, qt.IsNil)
	c.Assert(detail.Comments, qt.HasLen, 0)
}

func TestFavorites(t *testing.T) {
	c := qt.New(t)
	e := newEnv(t)

	post := e.publish(t, "Fav", models.StatusPublished, time.Date(2024, 3, 3, 9, 0, 0, 0, time.UTC))
	draft := e.publish(t, "Hidden", models.StatusDraft, time.Date(2024, 3, 3, 9, 0, 0, 0, time.UTC))

	created, err := e.svc.Favorite(e.ctx, e.author.ID, post.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(created, qt.IsTrue)

	created, err = e.svc.Favorite(e.ctx, e.author.ID, post.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(created, qt.IsFalse)

	fav, err := e.svc.IsFavorite(e.ctx, e.author.ID, post.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(fav, qt.IsTrue)
	fav, err = e.svc.IsFavorite(e.ctx, e.author.ID+1, post.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(fav, qt.IsFalse)

	_, err = e.svc.Favorite(e.ctx, e.author.ID, draft.ID)
	c.Assert(err, qt.ErrorIs, store.ErrNotFound)

	favs, err := e.svc.Favorites(e.ctx, e.author.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(favs, qt.HasLen, 1)

	c.Assert(e.svc.Unfavorite(e.ctx, e.author.ID, post.ID), qt.IsNil)
	c.Assert(e.svc.Unfavorite(e.ctx, e.author.ID, post.ID), qt.ErrorIs, store.ErrNotFound)
}
