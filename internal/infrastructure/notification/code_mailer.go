package notification

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/storefront-account/config"
	"github.com/oksasatya/storefront-account/internal/application"
	"github.com/oksasatya/storefront-account/internal/domain/entity"
	"github.com/oksasatya/storefront-account/pkg/mailer"
	"github.com/oksasatya/storefront-account/pkg/mailer/templates"
)

// Publisher is satisfied by helpers.RabbitPublisher.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

func templateFor(p entity.CodePurpose) string {
	if p == entity.PurposePasswordReset {
		return templates.ResetPassword
	}
	return templates.VerifyEmail
}

// BuildJob turns a code message into the templated job the worker renders.
func BuildJob(cfg *config.Config, msg application.CodeMessage) mailer.EmailJob {
	typ := templateFor(msg.Purpose)
	data := templates.NewCodeEmailData(cfg, typ, msg.Name, msg.To, msg.Code,
		templates.WithIP(msg.IP),
		templates.WithUserAgent(msg.UserAgent),
		templates.WithTime(msg.IssuedAt),
		templates.WithExpiresAt(msg.ExpiresAt),
		templates.WithExpiresIn(msg.ExpiresAt.Sub(msg.IssuedAt)),
	)
	job := mailer.EmailJob{To: msg.To, Template: typ, Data: data}
	job.Normalize()
	return job
}

// QueueMailer publishes code emails to RabbitMQ for cmd/email_worker.
type QueueMailer struct {
	Cfg *config.Config
	Pub Publisher
}

func NewQueueMailer(cfg *config.Config, pub Publisher) *QueueMailer {
	return &QueueMailer{Cfg: cfg, Pub: pub}
}

func (m *QueueMailer) SendCode(ctx context.Context, msg application.CodeMessage) error {
	c, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return m.Pub.PublishJSON(c, BuildJob(m.Cfg, msg))
}

// DirectMailer renders and sends within the request.
type DirectMailer struct {
	Cfg    *config.Config
	Sender mailer.Sender
	Geo    templates.GeoResolver
}

func NewDirectMailer(cfg *config.Config, sender mailer.Sender, geo templates.GeoResolver) *DirectMailer {
	return &DirectMailer{Cfg: cfg, Sender: sender, Geo: geo}
}

func (m *DirectMailer) SendCode(ctx context.Context, msg application.CodeMessage) error {
	job := BuildJob(m.Cfg, msg)
	templates.LocalizeTimes(ctx, m.Geo, job.Data)
	return mailer.Deliver(ctx, m.Sender, job)
}

// LogMailer stands in when MAIL_SEND_ENABLED is false. The code itself is never logged.
type LogMailer struct {
	Logger *logrus.Logger
}

func (m LogMailer) SendCode(ctx context.Context, msg application.CodeMessage) error {
	if m.Logger != nil {
		m.Logger.WithFields(logrus.Fields{
			"to":      msg.To,
			"purpose": string(msg.Purpose),
			"expires": msg.ExpiresAt.UTC().Format(time.RFC3339),
		}).Info("mail sending disabled, code email dropped")
	}
	return nil
}
