package notification

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/storefront-account/config"
	"github.com/oksasatya/storefront-account/internal/application"
	"github.com/oksasatya/storefront-account/internal/domain/entity"
	"github.com/oksasatya/storefront-account/pkg/mailer"
	"github.com/oksasatya/storefront-account/pkg/mailer/templates"
)

type recordingPublisher struct {
	bodies []any
	err    error
}

func (p *recordingPublisher) PublishJSON(ctx context.Context, body any) error {
	p.bodies = append(p.bodies, body)
	return p.err
}

type recordingSender struct {
	to, subject, text string
	err               error
}

func (s *recordingSender) Send(ctx context.Context, to, subject, text, html string) error {
	s.to, s.subject, s.text = to, subject, text
	return s.err
}

func testCfg() *config.Config {
	return &config.Config{
		AppName:        "Storefront",
		VerifyEmailURL: "https://shop.test/verify-email",
		ResetPassURL:   "https://shop.test/reset-password",
	}
}

func message(p entity.CodePurpose) application.CodeMessage {
	issued := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	return application.CodeMessage{
		To:        "alice@example.com",
		Name:      "Alice",
		Code:      "482913",
		Purpose:   p,
		IssuedAt:  issued,
		ExpiresAt: issued.Add(10 * time.Minute),
		IP:        "10.0.0.1",
	}
}

func TestBuildJob(t *testing.T) {
	job := BuildJob(testCfg(), message(entity.PurposePasswordReset))
	assert.Equal(t, templates.ResetPassword, job.Template)
	assert.Equal(t, "alice@example.com", job.To)
	assert.Equal(t, "482913", job.Data["Code"])
	assert.Equal(t, "https://shop.test/reset-password", job.Data["ActionURL"])
	assert.EqualValues(t, 10, job.Data["ExpiresInMinutes"])
	assert.Equal(t, "alice@example.com", job.Data["RecipientEmail"])

	job = BuildJob(testCfg(), message(entity.PurposeEmailVerification))
	assert.Equal(t, templates.VerifyEmail, job.Template)
}

func TestQueueMailerPublishes(t *testing.T) {
	pub := &recordingPublisher{}
	m := NewQueueMailer(testCfg(), pub)
	require.NoError(t, m.SendCode(context.Background(), message(entity.PurposeEmailVerification)))
	require.Len(t, pub.bodies, 1)
	job, ok := pub.bodies[0].(mailer.EmailJob)
	require.True(t, ok)
	assert.Equal(t, templates.VerifyEmail, job.Template)

	pub.err = errors.New("channel closed")
	assert.Error(t, m.SendCode(context.Background(), message(entity.PurposeEmailVerification)))
}

func TestDirectMailerRendersAndSends(t *testing.T) {
	s := &recordingSender{}
	m := NewDirectMailer(testCfg(), s, nil)
	require.NoError(t, m.SendCode(context.Background(), message(entity.PurposeEmailVerification)))
	assert.Equal(t, "alice@example.com", s.to)
	assert.Equal(t, "Storefront: your email verification code", s.subject)
	assert.Contains(t, s.text, "482913")

	s.err = errors.New("provider down")
	assert.Error(t, m.SendCode(context.Background(), message(entity.PurposeEmailVerification)))
}

func TestLogMailerNeverLogsCode(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)
	log.SetFormatter(&logrus.JSONFormatter{})

	require.NoError(t, LogMailer{Logger: log}.SendCode(context.Background(), message(entity.PurposePasswordReset)))
	assert.Contains(t, buf.String(), "alice@example.com")
	assert.NotContains(t, buf.String(), "482913")
}
