// Package notify tells post authors about new comments by SMS.
package notify

import (
	"context"
	"fmt"
	"log"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/inkwell-blog/inkwell/backend/internal/config"
	"github.com/inkwell-blog/inkwell/backend/internal/models"
)

// Notifier is told about every accepted comment. Implementations must not
// block the caller for long and must never fail the comment itself.
type Notifier interface {
	CommentPosted(ctx context.Context, post *models.Post, comment *models.Comment)
}

// Nop discards notifications.
type Nop struct{}

func (Nop) CommentPosted(context.Context, *models.Post, *models.Comment) {}

// SMSSender sends one text message.
type SMSSender interface {
	SendSMS(to, body string) error
}

type twilioSender struct {
	client *twilio.RestClient
	from   string
}

func (s *twilioSender) SendSMS(to, body string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.from)
	params.SetBody(body)

	resp, err := s.client.Api.CreateMessage(params)
	if err != nil {
		return err
	}
	if resp.Sid != nil {
		log.Printf("📨 SMS queued: %s", *resp.Sid)
	}
	return nil
}

// SMSNotifier texts the post author when they have a phone number on file.
type SMSNotifier struct {
	sender SMSSender
}

func NewSMSNotifier(sender SMSSender) *SMSNotifier {
	return &SMSNotifier{sender: sender}
}

// New returns a Twilio backed notifier when credentials are configured and
// Nop otherwise.
func New(cfg config.TwilioConfig) Notifier {
	if cfg.AccountSID == "" || cfg.AuthToken == "" || cfg.From == "" {
		return Nop{}
	}
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	return NewSMSNotifier(&twilioSender{client: client, from: cfg.From})
}

func (n *SMSNotifier) CommentPosted(ctx context.Context, post *models.Post, comment *models.Comment) {
	to := post.Author.Phone
	if to == "" {
		return
	}
	if ctx.Err() != nil {
		return
	}

	body := fmt.Sprintf("New comment by %s on %q: %s", comment.Name, post.Title, truncate(comment.Body, 100))
	if err := n.sender.SendSMS(to, body); err != nil {
		log.Printf("⚠️  Comment SMS for post %d failed: %v", post.ID, err)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
