package mailer

import (
	"context"
	"fmt"
	"time"

	mg "github.com/mailgun/mailgun-go/v4"
)

// Mailgun sends through the Mailgun HTTP API. Messages are tagged so account mail
// can be filtered in the Mailgun dashboard.
type Mailgun struct {
	client mg.Mailgun
	Sender string
	Tag    string
}

func NewMailgun(domain, apiKey, sender string) *Mailgun {
	return &Mailgun{client: mg.NewMailgun(domain, apiKey), Sender: sender, Tag: "account"}
}

func (m *Mailgun) Send(ctx context.Context, to, subject, text, html string) error {
	msg := m.client.NewMessage(m.Sender, subject, text, to)
	if html != "" {
		msg.SetHtml(html)
	}
	if m.Tag != "" {
		if err := msg.AddTag(m.Tag); err != nil {
			return fmt.Errorf("mailgun tag: %w", err)
		}
	}
	c, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if _, _, err := m.client.Send(c, msg); err != nil {
		return fmt.Errorf("mailgun send to %s: %w", to, err)
	}
	return nil
}
