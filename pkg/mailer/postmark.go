package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/mrz1836/postmark"
)

// Postmark sends through Postmark's transactional API.
type Postmark struct {
	client *postmark.Client
	Sender string
}

func NewPostmark(serverToken, accountToken, sender string) *Postmark {
	return &Postmark{client: postmark.NewClient(serverToken, accountToken), Sender: sender}
}

func (p *Postmark) Send(ctx context.Context, to, subject, text, html string) error {
	c, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	resp, err := p.client.SendEmail(c, postmark.Email{
		From:     p.Sender,
		To:       to,
		Subject:  subject,
		TextBody: text,
		HTMLBody: html,
		Tag:      "account",
	})
	if err != nil {
		return err
	}
	if resp.ErrorCode > 0 {
		return fmt.Errorf("postmark error: %d - %s", resp.ErrorCode, resp.Message)
	}
	return nil
}
