// Package mail sends plain text notification emails.
package mail

import (
	"context"
	"log"
)

type Message struct {
	To      string
	Subject string
	Body    string
	ReplyTo string
}

// Mailer delivers a message. Implementations must honour ctx cancellation.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// LogMailer writes messages to the log instead of sending them. It is used
// when no SMTP host is configured.
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, msg Message) error {
	log.Printf("📧 [mail:log] to=%s subject=%q\n%s", msg.To, msg.Subject, msg.Body)
	return nil
}
