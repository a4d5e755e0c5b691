package mailer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tpl "github.com/oksasatya/storefront-account/pkg/mailer/templates"
)

var ErrNotConfigured = errors.New("mail provider not configured")

// Sender delivers a rendered message.
type Sender interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

type ProviderConfig struct {
	Provider             string // mailgun or postmark
	Sender               string
	MailgunDomain        string
	MailgunAPIKey        string
	PostmarkServerToken  string
	PostmarkAccountToken string
}

// NewSender picks the provider implementation and checks its credentials.
func NewSender(cfg ProviderConfig) (Sender, error) {
	if cfg.Sender == "" {
		return nil, fmt.Errorf("%w: sender address is required", ErrNotConfigured)
	}
	switch strings.ToLower(cfg.Provider) {
	case "", "mailgun":
		if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" {
			return nil, fmt.Errorf("%w: mailgun domain and api key are required", ErrNotConfigured)
		}
		return NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.Sender), nil
	case "postmark":
		if cfg.PostmarkServerToken == "" || cfg.PostmarkAccountToken == "" {
			return nil, fmt.Errorf("%w: postmark tokens are required", ErrNotConfigured)
		}
		return NewPostmark(cfg.PostmarkServerToken, cfg.PostmarkAccountToken, cfg.Sender), nil
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", ErrNotConfigured, cfg.Provider)
	}
}

// Deliver renders job's template when set and hands the result to s.
func Deliver(ctx context.Context, s Sender, job EmailJob) error {
	job.Normalize()
	if job.To == "" {
		return errors.New("email job has no recipient")
	}
	subject, text, html := job.Subject, job.Text, job.HTML
	if job.Template != "" {
		if !tpl.Known(job.Template) {
			return fmt.Errorf("unknown template %q", job.Template)
		}
		var err error
		subject, text, html, err = tpl.Render(job.Template, job.Data)
		if err != nil {
			return err
		}
	}
	if subject == "" || (text == "" && html == "") {
		return errors.New("email job has no content")
	}
	return s.Send(ctx, job.To, subject, text, html)
}
