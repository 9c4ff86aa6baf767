package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"gorm.io/gorm"

	"github.com/inkwell-blog/inkwell/backend/internal/auth"
	"github.com/inkwell-blog/inkwell/backend/internal/blog"
	"github.com/inkwell-blog/inkwell/backend/internal/cache"
	"github.com/inkwell-blog/inkwell/backend/internal/config"
	"github.com/inkwell-blog/inkwell/backend/internal/database/dbtest"
	"github.com/inkwell-blog/inkwell/backend/internal/handlers"
	"github.com/inkwell-blog/inkwell/backend/internal/mail"
	"github.com/inkwell-blog/inkwell/backend/internal/models"
	"github.com/inkwell-blog/inkwell/backend/internal/notify"
)

type testDB struct{ db *gorm.DB }

func (d testDB) Health() map[string]string { return map[string]string{"status": "up"} }
func (d testDB) Close() error              { return nil }
func (d testDB) GetDB() *gorm.DB           { return d.db }

type testServer struct {
	http.Handler
	db     *gorm.DB
	svc    *blog.Service
	tokens *auth.Tokens
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := &config.Config{
		Site:  config.SiteConfig{URL: "https://blog.example.com"},
		Share: config.ShareConfig{RatePerMinute: 60, Burst: 100},
	}
	db := dbtest.New(t)
	svc := blog.New(db, cache.NewMemory(), mail.LogMailer{}, notify.Nop{}, blog.Options{
		PageSize:     2,
		SimilarLimit: 4,
		SiteURL:      cfg.Site.URL,
	})
	tokens := auth.NewTokens("test-secret", time.Hour)

	s := New(cfg, testDB{db: db}, handlers.NewHandler(db, svc, tokens), tokens)
	t.Cleanup(s.Stop)

	return &testServer{Handler: s.RegisterRoutes(), db: db, svc: svc, tokens: tokens}
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.ServeHTTP(w, req)
	return w
}

func (ts *testServer) user(t *testing.T, name string) (models.User, string) {
	t.Helper()

	u := models.User{Username: name, Email: name + "@example.com", Password: "x"}
	if err := ts.db.Create(&u).Error; err != nil {
		t.Fatal(err)
	}
	token, err := ts.tokens.Issue(&u)
	if err != nil {
		t.Fatal(err)
	}
	return u, token
}

func (ts *testServer) post(t *testing.T, authorID int, title string, status models.PostStatus, at time.Time, tags ...string) *models.Post {
	t.Helper()

	p, err := ts.svc.CreatePost(t.Context(), authorID, models.CreatePostRequest{
		Title: title, Body: "body", Status: status, Publish: &at, Tags: tags,
	})
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func decode[T any](c *qt.C, w *httptest.ResponseRecorder) T {
	var v T
	c.Assert(json.Unmarshal(w.Body.Bytes(), &v), qt.IsNil, qt.Commentf("body: %s", w.Body.String()))
	return v
}

type listResponse struct {
	Posts []struct {
		Slug   string `json:"slug"`
		Status string `json:"status"`
	} `json:"posts"`
	Pagination struct {
		Page     int `json:"page"`
		NumPages int `json:"num_pages"`
	} `json:"pagination"`
}

func TestHealth(t *testing.T) {
	c := qt.New(t)
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/health", "", nil)
	c.Assert(w.Code, qt.Equals, http.StatusOK)
	c.Assert(w.Body.String(), qt.JSONEquals, map[string]string{"status": "up"})
}

func TestListPostsPagination(t *testing.T) {
	ts := newTestServer(t)
	author, _ := ts.user(t, "ana")

	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	for i := range 5 {
		ts.post(t, author.ID, fmt.Sprintf("Post %d", i), models.StatusPublished, base.AddDate(0, 0, i))
	}
	ts.post(t, author.ID, "Draft", models.StatusDraft, base.AddDate(0, 0, 10))

	tests := []struct {
		query     string
		wantPage  int
		wantSlugs []string
	}{
		{query: "", wantPage: 1, wantSlugs: []string{"post-4", "post-3"}},
		{query: "?page=2", wantPage: 2, wantSlugs: []string{"post-2", "post-1"}},
		{query: "?page=abc", wantPage: 1, wantSlugs: []string{"post-4", "post-3"}},
		{query: "?page=0", wantPage: 1, wantSlugs: []string{"post-4", "post-3"}},
		{query: "?page=99", wantPage: 3, wantSlugs: []string{"post-0"}},
	}

	for _, tt := range tests {
		t.Run("page"+tt.query, func(t *testing.T) {
			c := qt.New(t)

			w := ts.do(t, http.MethodGet, "/api/posts"+tt.query, "", nil)
			c.Assert(w.Code, qt.Equals, http.StatusOK)

			resp := decode[listResponse](c, w)
			c.Assert(resp.Pagination.Page, qt.Equals, tt.wantPage)
			c.Assert(resp.Pagination.NumPages, qt.Equals, 3)
			var slugs []string
			for _, p := range resp.Posts {
				slugs = append(slugs, p.Slug)
				c.Assert(p.Status, qt.Equals, "published")
			}
			c.Assert(slugs, qt.DeepEquals, tt.wantSlugs)
		})
	}
}

func TestListPostsByTag(t *testing.T) {
	c := qt.New(t)
	ts := newTestServer(t)
	author, _ := ts.user(t, "ana")

	at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	ts.post(t, author.ID, "Go one", models.StatusPublished, at, "go")
	ts.post(t, author.ID, "Other", models.StatusPublished, at, "misc")

	w := ts.do(t, http.MethodGet, "/api/tags/go/posts", "", nil)
	c.Assert(w.Code, qt.Equals, http.StatusOK)
	resp := decode[listResponse](c, w)
	c.Assert(resp.Posts, qt.HasLen, 1)
	c.Assert(resp.Posts[0].Slug, qt.Equals, "go-one")

	w = ts.do(t, http.MethodGet, "/api/posts?tag=go", "", nil)
	c.Assert(w.Code, qt.Equals, http.StatusOK)
	c.Assert(decode[listResponse](c, w).Posts, qt.HasLen, 1)

	w = ts.do(t, http.MethodGet, "/api/tags/missing/posts", "", nil)
	c.Assert(w.Code, qt.Equals, http.StatusNotFound)
}

func TestPostDetail(t *testing.T) {
	ts := newTestServer(t)
	author, _ := ts.user(t, "ana")

	ts.post(t, author.ID, "P", models.StatusPublished, time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC), "a", "b")
	ts.post(t, author.ID, "Q", models.StatusDraft, time.Date(2024, 1, 6, 12, 0, 0, 0, time.UTC), "a")
	ts.post(t, author.ID, "R", models.StatusPublished, time.Date(2024, 1, 4, 12, 0, 0, 0, time.UTC), "a", "c")

	t.Run("found", func(t *testing.T) {
		c := qt.New(t)

		w := ts.do(t, http.MethodGet, "/api/posts/2024/01/05/p", "", nil)
		c.Assert(w.Code, qt.Equals, http.StatusOK)

		resp := decode[struct {
			Post struct {
				Slug string `json:"slug"`
			} `json:"post"`
			BodyHTML string `json:"body_html"`
			Comments []any  `json:"comments"`
			Similar  []struct {
				Slug string `json:"slug"`
			} `json:"similar_posts"`
			CommentForm []blog.FormField `json:"comment_form"`
		}](c, w)
		c.Assert(resp.Post.Slug, qt.Equals, "p")
		c.Assert(resp.BodyHTML, qt.Equals, "<p>body</p>\n")
		c.Assert(resp.Comments, qt.HasLen, 0)
		c.Assert(resp.Similar, qt.HasLen, 1)
		c.Assert(resp.Similar[0].Slug, qt.Equals, "r")
		c.Assert(resp.CommentForm, qt.DeepEquals, blog.CommentFormFields)
	})

	for _, path := range []string{
		"/api/posts/2024/01/06/q",
		"/api/posts/2024/01/04/p",
		"/api/posts/2024/02/30/p",
		"/api/posts/year/01/05/p",
	} {
		t.Run(path, func(t *testing.T) {
			c := qt.New(t)
			w := ts.do(t, http.MethodGet, path, "", nil)
			c.Assert(w.Code, qt.Equals, http.StatusNotFound)
		})
	}
}

func TestCommentEndpoint(t *testing.T) {
	ts := newTestServer(t)
	author, _ := ts.user(t, "ana")
	p := ts.post(t, author.ID, "P", models.StatusPublished, time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC))
	draft := ts.post(t, author.ID, "D", models.StatusDraft, time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC))
	path := fmt.Sprintf("/api/posts/%d/comments", p.ID)

	t.Run("get is not allowed", func(t *testing.T) {
		c := qt.New(t)
		w := ts.do(t, http.MethodGet, path, "", nil)
		c.Assert(w.Code, qt.Equals, http.StatusMethodNotAllowed)
	})

	t.Run("missing body", func(t *testing.T) {
		c := qt.New(t)
		w := ts.do(t, http.MethodPost, path, "", map[string]string{"name": "Bob", "email": "bob@example.com"})
		c.Assert(w.Code, qt.Equals, http.StatusBadRequest)
		resp := decode[struct {
			Fields map[string]string `json:"fields"`
		}](c, w)
		c.Assert(resp.Fields, qt.DeepEquals, map[string]string{"body": "This field is required."})
	})

	t.Run("empty request", func(t *testing.T) {
		c := qt.New(t)
		w := ts.do(t, http.MethodPost, path, "", nil)
		c.Assert(w.Code, qt.Equals, http.StatusBadRequest)
		resp := decode[struct {
			Fields map[string]string `json:"fields"`
		}](c, w)
		c.Assert(resp.Fields, qt.HasLen, 3)
	})

	t.Run("draft post", func(t *testing.T) {
		c := qt.New(t)
		w := ts.do(t, http.MethodPost, fmt.Sprintf("/api/posts/%d/comments", draft.ID), "",
			map[string]string{"name": "Bob", "email": "bob@example.com", "body": "hi"})
		c.Assert(w.Code, qt.Equals, http.StatusNotFound)
	})

	t.Run("created", func(t *testing.T) {
		c := qt.New(t)
		w := ts.do(t, http.MethodPost, path, "", map[string]string{"name": "Bob", "email": "bob@example.com", "body": "hi"})
		c.Assert(w.Code, qt.Equals, http.StatusCreated)
		resp := decode[models.Comment](c, w)
		c.Assert(resp.Active, qt.IsTrue)
		c.Assert(resp.PostID, qt.Equals, p.ID)
	})
}

func TestShareEndpoint(t *testing.T) {
	c := qt.New(t)
	ts := newTestServer(t)
	author, _ := ts.user(t, "ana")
	p := ts.post(t, author.ID, "P", models.StatusPublished, time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC))
	path := fmt.Sprintf("/api/posts/%d/share", p.ID)

	w := ts.do(t, http.MethodPost, path, "", map[string]string{"name": "Ana", "email": "ana@example.com", "to": "bob@example.com"})
	c.Assert(w.Code, qt.Equals, http.StatusOK)
	c.Assert(w.Body.String(), qt.JSONEquals, map[string]any{"sent": true, "to": "bob@example.com"})

	w = ts.do(t, http.MethodPost, path, "", map[string]string{"name": "Ana", "email": "ana@example.com"})
	c.Assert(w.Code, qt.Equals, http.StatusBadRequest)
	resp := decode[struct {
		Fields map[string]string `json:"fields"`
		Form   []blog.FormField  `json:"form"`
	}](c, w)
	c.Assert(resp.Fields, qt.DeepEquals, map[string]string{"to": "This field is required."})
	c.Assert(resp.Form, qt.DeepEquals, blog.ShareFormFields)
}

func TestAuthorFlow(t *testing.T) {
	c := qt.New(t)
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/posts", "", map[string]string{"title": "x", "body": "y"})
	c.Assert(w.Code, qt.Equals, http.StatusUnauthorized)

	w = ts.do(t, http.MethodPost, "/api/register", "", map[string]string{
		"username": "ana", "email": "Ana@Example.com", "password": "secret1",
	})
	c.Assert(w.Code, qt.Equals, http.StatusCreated)

	w = ts.do(t, http.MethodPost, "/api/register", "", map[string]string{
		"username": "ana", "email": "ana@example.com", "password": "secret1",
	})
	c.Assert(w.Code, qt.Equals, http.StatusConflict)

	w = ts.do(t, http.MethodPost, "/api/login", "", map[string]string{"email": "ana@example.com", "password": "wrong"})
	c.Assert(w.Code, qt.Equals, http.StatusUnauthorized)

	w = ts.do(t, http.MethodPost, "/api/login", "", map[string]string{"email": "ana@example.com", "password": "secret1"})
	c.Assert(w.Code, qt.Equals, http.StatusOK)
	token := decode[models.AuthResponse](c, w).Token

	w = ts.do(t, http.MethodGet, "/api/me", token, nil)
	c.Assert(w.Code, qt.Equals, http.StatusOK)
	c.Assert(decode[models.User](c, w).Username, qt.Equals, "ana")

	w = ts.do(t, http.MethodPost, "/api/posts", token, map[string]any{
		"title": "Hello World", "body": "Hi", "status": "published",
		"publish": "2024-05-01T10:00:00Z", "tags": []string{"Go"},
	})
	c.Assert(w.Code, qt.Equals, http.StatusCreated)
	post := decode[models.Post](c, w)
	c.Assert(post.Slug, qt.Equals, "hello-world")

	w = ts.do(t, http.MethodPost, "/api/posts", token, map[string]any{
		"title": "Hello World", "body": "again", "publish": "2024-05-01T18:00:00Z",
	})
	c.Assert(w.Code, qt.Equals, http.StatusConflict)

	_, otherToken := ts.user(t, "mallory")
	w = ts.do(t, http.MethodPut, fmt.Sprintf("/api/posts/%d", post.ID), otherToken, map[string]string{"title": "Mine"})
	c.Assert(w.Code, qt.Equals, http.StatusForbidden)

	w = ts.do(t, http.MethodPut, fmt.Sprintf("/api/posts/%d", post.ID), token, map[string]string{"title": "Hello Again"})
	c.Assert(w.Code, qt.Equals, http.StatusOK)
	c.Assert(decode[models.Post](c, w).Title, qt.Equals, "Hello Again")

	comment, err := ts.svc.AddComment(t.Context(), post.ID, models.CreateCommentRequest{Name: "B", Email: "b@example.com", Body: "spam"})
	c.Assert(err, qt.IsNil)

	w = ts.do(t, http.MethodPatch, fmt.Sprintf("/api/comments/%d", comment.ID), otherToken, map[string]bool{"active": false})
	c.Assert(w.Code, qt.Equals, http.StatusForbidden)

	w = ts.do(t, http.MethodPatch, fmt.Sprintf("/api/comments/%d", comment.ID), token, map[string]any{})
	c.Assert(w.Code, qt.Equals, http.StatusBadRequest)

	w = ts.do(t, http.MethodPatch, fmt.Sprintf("/api/comments/%d", comment.ID), token, map[string]bool{"active": false})
	c.Assert(w.Code, qt.Equals, http.StatusOK)
	c.Assert(decode[models.Comment](c, w).Active, qt.IsFalse)
}

func TestFavoriteEndpoints(t *testing.T) {
	c := qt.New(t)
	ts := newTestServer(t)
	author, token := ts.user(t, "ana")
	p := ts.post(t, author.ID, "P", models.StatusPublished, time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC))
	path := fmt.Sprintf("/api/posts/%d/favorite", p.ID)

	c.Assert(ts.do(t, http.MethodPost, path, "", nil).Code, qt.Equals, http.StatusUnauthorized)
	c.Assert(ts.do(t, http.MethodPost, path, token, nil).Code, qt.Equals, http.StatusCreated)
	c.Assert(ts.do(t, http.MethodPost, path, token, nil).Code, qt.Equals, http.StatusOK)

	w := ts.do(t, http.MethodGet, "/api/me/favorites", token, nil)
	c.Assert(w.Code, qt.Equals, http.StatusOK)
	favs := decode[[]models.FavoritePost](c, w)
	c.Assert(favs, qt.HasLen, 1)
	c.Assert(favs[0].Post.Slug, qt.Equals, "p")

	c.Assert(ts.do(t, http.MethodDelete, path, token, nil).Code, qt.Equals, http.StatusNoContent)
	c.Assert(ts.do(t, http.MethodDelete, path, token, nil).Code, qt.Equals, http.StatusNotFound)

	w = ts.do(t, http.MethodGet, "/api/me/favorites", token, nil)
	c.Assert(w.Body.String(), qt.JSONEquals, []any{})
}

func TestPostDetailFavoritedFlag(t *testing.T) {
	c := qt.New(t)
	ts := newTestServer(t)
	author, token := ts.user(t, "ana")
	p := ts.post(t, author.ID, "P", models.StatusPublished, time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC))
	const detail = "/api/posts/2024/01/05/p"

	type flag struct {
		Favorited *bool `json:"favorited"`
	}

	w := ts.do(t, http.MethodGet, detail, "", nil)
	c.Assert(w.Code, qt.Equals, http.StatusOK)
	c.Assert(decode[flag](c, w).Favorited, qt.IsNil)

	w = ts.do(t, http.MethodGet, detail, "not-a-token", nil)
	c.Assert(w.Code, qt.Equals, http.StatusOK)
	c.Assert(decode[flag](c, w).Favorited, qt.IsNil)

	w = ts.do(t, http.MethodGet, detail, token, nil)
	c.Assert(w.Code, qt.Equals, http.StatusOK)
	got := decode[flag](c, w).Favorited
	c.Assert(got, qt.IsNotNil)
	c.Assert(*got, qt.IsFalse)

	c.Assert(ts.do(t, http.MethodPost, fmt.Sprintf("/api/posts/%d/favorite", p.ID), token, nil).Code, qt.Equals, http.StatusCreated)

	w = ts.do(t, http.MethodGet, detail, token, nil)
	got = decode[flag](c, w).Favorited
	c.Assert(got, qt.IsNotNil)
	c.Assert(*got, qt.IsTrue)
}
