// Package blog implements reader facing post selection (visibility,
// pagination, similar posts), comment and share intake, and the author
// operations on top of the stores.
package blog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/inkwell-blog/inkwell/backend/internal/cache"
	"github.com/inkwell-blog/inkwell/backend/internal/mail"
	"github.com/inkwell-blog/inkwell/backend/internal/markdown"
	"github.com/inkwell-blog/inkwell/backend/internal/models"
	"github.com/inkwell-blog/inkwell/backend/internal/notify"
	"github.com/inkwell-blog/inkwell/backend/internal/store"
)

// ErrForbidden is returned when a user acts on content they do not own.
var ErrForbidden = errors.New("forbidden")

type Options struct {
	PageSize     int
	SimilarLimit int
	SimilarTTL   time.Duration
	MailTimeout  time.Duration
	// SiteURL is the public origin prefixed to permalinks in emails.
	SiteURL string
}

type Service struct {
	posts     *store.PostStore
	tags      *store.TagStore
	comments  *store.CommentStore
	favorites *store.FavoriteStore

	cache    cache.Cache
	mailer   mail.Mailer
	notifier notify.Notifier
	opts     Options
}

func New(db *gorm.DB, c cache.Cache, mailer mail.Mailer, notifier notify.Notifier, opts Options) *Service {
	if c == nil {
		c = cache.NewMemory()
	}
	if mailer == nil {
		mailer = mail.LogMailer{}
	}
	if notifier == nil {
		notifier = notify.Nop{}
	}
	if opts.PageSize < 1 {
		opts.PageSize = 3
	}
	if opts.MailTimeout <= 0 {
		opts.MailTimeout = 10 * time.Second
	}
	return &Service{
		posts:     store.NewPostStore(db),
		tags:      store.NewTagStore(db),
		comments:  store.NewCommentStore(db),
		favorites: store.NewFavoriteStore(db),
		cache:     c,
		mailer:    mailer,
		notifier:  notifier,
		opts:      opts,
	}
}

type PostList struct {
	Tag *models.Tag `json:"tag,omitempty"`
	store.PostPage
}

// ListPosts returns a page of published posts, optionally restricted to the
// tag with the given slug. An unknown tag is store.ErrNotFound.
func (s *Service) ListPosts(ctx context.Context, tagSlug, pageToken string) (*PostList, error) {
	var (
		filter store.PostFilter
		tag    *models.Tag
	)
	if tagSlug != "" {
		t, err := s.tags.BySlug(ctx, tagSlug)
		if err != nil {
			return nil, err
		}
		tag = t
		filter.TagID = t.ID
	}

	page, err := s.posts.ListPublished(ctx, filter, pageToken, s.opts.PageSize)
	if err != nil {
		return nil, err
	}
	return &PostList{Tag: tag, PostPage: *page}, nil
}

type PostDetail struct {
	Post        *models.Post     `json:"post"`
	BodyHTML    string           `json:"body_html"`
	Comments    []models.Comment `json:"comments"`
	Similar     []models.Post    `json:"similar_posts"`
	CommentForm []FormField      `json:"comment_form"`
	// Favorited is set only for signed-in readers.
	Favorited *bool `json:"favorited,omitempty"`
}

// PostDetail resolves a permalink and gathers everything the detail page
// shows.
func (s *Service) PostDetail(ctx context.Context, year, month, day int, postSlug string) (*PostDetail, error) {
	post, err := s.posts.GetPublishedByDate(ctx, year, month, day, postSlug)
	if err != nil {
		return nil, err
	}

	comments, err := s.comments.ActiveForPost(ctx, post.ID)
	if err != nil {
		return nil, err
	}

	similar, err := s.SimilarPosts(ctx, post)
	if err != nil {
		return nil, err
	}

	html, err := markdown.ToHTML(post.Body)
	if err != nil {
		return nil, fmt.Errorf("render post %d: %w", post.ID, err)
	}

	return &PostDetail{
		Post:        post,
		BodyHTML:    html,
		Comments:    comments,
		Similar:     similar,
		CommentForm: CommentFormFields,
	}, nil
}

// similarGenKey holds the current generation of cached similar post lists.
// Any post write moves it forward, which orphans every list computed before.
const similarGenKey = "similar:gen"

func similarKey(gen string, post *models.Post) string {
	return fmt.Sprintf("similar:%s:%d:%d", gen, post.ID, post.UpdatedAt.UnixNano())
}

func newGeneration() []byte {
	return []byte(strconv.FormatInt(time.Now().UnixNano(), 36))
}

// similarGeneration returns the current generation, starting a new one when
// none is stored. ok is false when the cache cannot be trusted.
func (s *Service) similarGeneration(ctx context.Context) (gen string, ok bool) {
	raw, err := s.cache.Get(ctx, similarGenKey)
	if err == nil {
		return string(raw), true
	}
	if !errors.Is(err, cache.ErrMiss) {
		log.Printf("⚠️  Similar posts cache read failed: %v", err)
		return "", false
	}

	raw = newGeneration()
	if err := s.cache.Set(ctx, similarGenKey, raw, 0); err != nil {
		log.Printf("⚠️  Similar posts cache write failed: %v", err)
		return "", false
	}
	return string(raw), true
}

// invalidateSimilar drops every cached similar post list. It must run after
// each successful post write.
func (s *Service) invalidateSimilar(ctx context.Context) {
	if s.opts.SimilarTTL <= 0 {
		return
	}
	if err := s.cache.Set(ctx, similarGenKey, newGeneration(), 0); err != nil {
		log.Printf("⚠️  Similar posts cache invalidation failed: %v", err)
		// A stale generation must not keep serving lists.
		if err := s.cache.Delete(ctx, similarGenKey); err != nil {
			log.Printf("⚠️  Similar posts cache invalidation failed: %v", err)
		}
	}
}

// SimilarPosts returns up to SimilarLimit published posts ranked by shared
// tags, then recency. Results are cached for SimilarTTL until the next post
// write; cache errors only cost a database round trip.
func (s *Service) SimilarPosts(ctx context.Context, post *models.Post) ([]models.Post, error) {
	var key string
	if s.opts.SimilarTTL > 0 {
		if gen, ok := s.similarGeneration(ctx); ok {
			key = similarKey(gen, post)
		}
	}

	if key != "" {
		if raw, err := s.cache.Get(ctx, key); err == nil {
			var cached []models.Post
			if err := json.Unmarshal(raw, &cached); err == nil {
				return cached, nil
			}
		} else if !errors.Is(err, cache.ErrMiss) {
			log.Printf("⚠️  Similar posts cache read failed: %v", err)
		}
	}

	similar, err := s.posts.Similar(ctx, post, s.opts.SimilarLimit)
	if err != nil {
		return nil, err
	}

	if key != "" {
		if raw, err := json.Marshal(similar); err == nil {
			if err := s.cache.Set(ctx, key, raw, s.opts.SimilarTTL); err != nil {
				log.Printf("⚠️  Similar posts cache write failed: %v", err)
			}
		}
	}
	return similar, nil
}

// AddComment validates req and stores it as an active comment on the
// published post postID. Nothing is written when validation fails.
func (s *Service) AddComment(ctx context.Context, postID int, req models.CreateCommentRequest) (*models.Comment, error) {
	post, err := s.posts.GetPublished(ctx, postID)
	if err != nil {
		return nil, err
	}

	form := newCommentForm(req)
	if err := check(form); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		PostID: post.ID,
		Name:   form.Name,
		Email:  form.Email,
		Body:   form.Body,
		Active: true,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}

	go s.notifier.CommentPosted(context.WithoutCancel(ctx), post, comment)

	return comment, nil
}

type ShareResult struct {
	Sent  bool   `json:"sent"`
	To    string `json:"to"`
	Error string `json:"error,omitempty"`
}

// SharePost emails a link to the published post postID. A delivery failure
// is reported in the result, not as an error.
func (s *Service) SharePost(ctx context.Context, postID int, req models.SharePostRequest) (*ShareResult, error) {
	post, err := s.posts.GetPublished(ctx, postID)
	if err != nil {
		return nil, err
	}

	form := newShareForm(req)
	if err := check(form); err != nil {
		return nil, err
	}

	msg := ComposeShare(form.Name, form.Email, form.To, form.Comments, post, s.opts.SiteURL)

	sendCtx, cancel := context.WithTimeout(ctx, s.opts.MailTimeout)
	defer cancel()

	result := &ShareResult{To: form.To}
	if err := s.mailer.Send(sendCtx, msg); err != nil {
		log.Printf("⚠️  Share of post %d to %s failed: %v", post.ID, form.To, err)
		result.Error = "The email could not be sent. Please try again later."
		return result, nil
	}
	result.Sent = true
	return result, nil
}

// ComposeShare builds the recommendation email for post.
func ComposeShare(name, email, to, comments string, post *models.Post, siteURL string) mail.Message {
	postURL := siteURL + post.URLPath()
	return mail.Message{
		To:      to,
		ReplyTo: email,
		Subject: fmt.Sprintf("%s (%s) recommends you read %s", name, email, post.Title),
		Body:    fmt.Sprintf("Read %s at %s\n\n%s's comments: %s", post.Title, postURL, name, comments),
	}
}
