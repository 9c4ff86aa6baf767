package blog

import (
	"context"
	"fmt"
	"strings"

	"github.com/inkwell-blog/inkwell/backend/internal/models"
	"github.com/inkwell-blog/inkwell/backend/internal/slug"
)

func (f *postForm) normalize() {
	f.Title = strings.TrimSpace(f.Title)
	f.Slug = strings.TrimSpace(f.Slug)
	if f.Slug == "" {
		f.Slug = slug.Make(f.Title)
	}
	if strings.TrimSpace(f.Body) == "" {
		f.Body = ""
	}
	for i, t := range f.Tags {
		f.Tags[i] = strings.TrimSpace(t)
	}
}

// CreatePost stores a new post written by authorID. The slug defaults to
// one derived from the title; status defaults to draft and publish to now.
func (s *Service) CreatePost(ctx context.Context, authorID int, req models.CreatePostRequest) (*models.Post, error) {
	status := req.Status
	if status == "" {
		status = models.StatusDraft
	}

	form := postForm{
		Title:  req.Title,
		Slug:   req.Slug,
		Body:   req.Body,
		Status: string(status),
		Tags:   append([]string(nil), req.Tags...),
	}
	form.normalize()
	if err := check(form); err != nil {
		return nil, err
	}

	tags, err := s.tags.Ensure(ctx, form.Tags)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		Title:    form.Title,
		Slug:     form.Slug,
		AuthorID: authorID,
		Body:     req.Body,
		Status:   status,
		Tags:     tags,
	}
	if req.Publish != nil {
		post.Publish = *req.Publish
	}

	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	s.invalidateSimilar(ctx)
	return s.posts.Get(ctx, post.ID)
}

// UpdatePost applies the non-nil fields of req to a post owned by userID.
func (s *Service) UpdatePost(ctx context.Context, userID, postID int, req models.UpdatePostRequest) (*models.Post, error) {
	post, err := s.posts.Get(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != userID {
		return nil, fmt.Errorf("post %d: %w", postID, ErrForbidden)
	}

	form := postForm{
		Title:  post.Title,
		Slug:   post.Slug,
		Body:   post.Body,
		Status: string(post.Status),
	}
	if req.Title != nil {
		form.Title = *req.Title
	}
	if req.Slug != nil {
		form.Slug = *req.Slug
	}
	if req.Body != nil {
		form.Body = *req.Body
	}
	if req.Status != nil {
		form.Status = string(*req.Status)
	}
	if req.Tags != nil {
		form.Tags = append([]string{}, (*req.Tags)...)
	}
	form.normalize()
	if err := check(form); err != nil {
		return nil, err
	}

	var tags []models.Tag
	if req.Tags != nil {
		if tags, err = s.tags.Ensure(ctx, form.Tags); err != nil {
			return nil, err
		}
	}

	post.Title = form.Title
	post.Slug = form.Slug
	if form.Body != "" {
		post.Body = form.Body
	}
	post.Status = models.PostStatus(form.Status)
	if req.Publish != nil {
		post.Publish = *req.Publish
	}

	if err := s.posts.Update(ctx, post, tags); err != nil {
		return nil, err
	}
	s.invalidateSimilar(ctx)
	return s.posts.Get(ctx, post.ID)
}

// ModerateComment shows or hides a comment. Only the author of the post the
// comment belongs to may do so.
func (s *Service) ModerateComment(ctx context.Context, userID, commentID int, active bool) (*models.Comment, error) {
	comment, err := s.comments.Get(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.Post == nil || comment.Post.AuthorID != userID {
		return nil, fmt.Errorf("comment %d: %w", commentID, ErrForbidden)
	}

	if err := s.comments.SetActive(ctx, commentID, active); err != nil {
		return nil, err
	}
	comment.Active = active
	return comment, nil
}

// Favorite marks a published post as a favorite of userID. It reports
// whether a new favorite was recorded.
func (s *Service) Favorite(ctx context.Context, userID, postID int) (bool, error) {
	if _, err := s.posts.GetPublished(ctx, postID); err != nil {
		return false, err
	}
	return s.favorites.Add(ctx, userID, postID)
}

// IsFavorite reports whether userID has favorited postID.
func (s *Service) IsFavorite(ctx context.Context, userID, postID int) (bool, error) {
	return s.favorites.Exists(ctx, userID, postID)
}

func (s *Service) Unfavorite(ctx context.Context, userID, postID int) error {
	return s.favorites.Remove(ctx, userID, postID)
}

func (s *Service) Favorites(ctx context.Context, userID int) ([]models.FavoritePost, error) {
	return s.favorites.ListForUser(ctx, userID)
}
