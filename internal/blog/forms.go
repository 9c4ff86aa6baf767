package blog

import (
	"strings"

	"github.com/inkwell-blog/inkwell/backend/internal/models"
)

type commentForm struct {
	Name  string `json:"name" validate:"required,max=80"`
	Email string `json:"email" validate:"required,max=254,email"`
	Body  string `json:"body" validate:"required"`
}

func newCommentForm(req models.CreateCommentRequest) commentForm {
	return commentForm{
		Name:  strings.TrimSpace(req.Name),
		Email: strings.TrimSpace(req.Email),
		Body:  strings.TrimSpace(req.Body),
	}
}

type shareForm struct {
	Name     string `json:"name" validate:"required,max=25"`
	Email    string `json:"email" validate:"required,max=254,email"`
	To       string `json:"to" validate:"required,max=254,email"`
	Comments string `json:"comments"`
}

func newShareForm(req models.SharePostRequest) shareForm {
	return shareForm{
		Name:     strings.TrimSpace(req.Name),
		Email:    strings.TrimSpace(req.Email),
		To:       strings.TrimSpace(req.To),
		Comments: strings.TrimSpace(req.Comments),
	}
}

type postForm struct {
	Title  string   `json:"title" validate:"required,max=250"`
	Slug   string   `json:"slug" validate:"required,max=250,slug"`
	Body   string   `json:"body" validate:"required"`
	Status string   `json:"status" validate:"oneof=DF PB"`
	Tags   []string `json:"tags" validate:"dive,max=100"`
}

// FormField describes one input of a blank form for clients that render it.
type FormField struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	Required  bool   `json:"required"`
	MaxLength int    `json:"max_length,omitempty"`
}

// CommentFormFields is the blank comment form shown under a post.
var CommentFormFields = []FormField{
	{Name: "name", Type: "text", Required: true, MaxLength: 80},
	{Name: "email", Type: "email", Required: true, MaxLength: 254},
	{Name: "body", Type: "textarea", Required: true},
}

// ShareFormFields is the blank share-by-email form.
var ShareFormFields = []FormField{
	{Name: "name", Type: "text", Required: true, MaxLength: 25},
	{Name: "email", Type: "email", Required: true, MaxLength: 254},
	{Name: "to", Type: "email", Required: true, MaxLength: 254},
	{Name: "comments", Type: "textarea"},
}
