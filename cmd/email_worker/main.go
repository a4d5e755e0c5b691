package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/storefront-account/config"
	"github.com/oksasatya/storefront-account/pkg/helpers"
	"github.com/oksasatya/storefront-account/pkg/mailer"
	mailtpl "github.com/oksasatya/storefront-account/pkg/mailer/templates"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-email-worker", cfg.Env)

	if !cfg.MailSendEnabled {
		logger.Warn("MAIL_SEND_ENABLED=false; email worker disabled")
		return
	}
	if cfg.RabbitMQURL == "" || cfg.RabbitMQEmailQueue == "" {
		log.Fatal("RabbitMQ not configured")
	}
	sender, err := mailer.NewSender(mailer.ProviderConfig{
		Provider:             cfg.MailProvider,
		Sender:               cfg.MailSender,
		MailgunDomain:        cfg.MailgunDomain,
		MailgunAPIKey:        cfg.MailgunAPIKey,
		PostmarkServerToken:  cfg.PostmarkServerToken,
		PostmarkAccountToken: cfg.PostmarkAccountToken,
	})
	if err != nil {
		log.Fatalf("mail provider: %v", err)
	}

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		log.Fatalf("amqp dial: %v", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatalf("amqp channel: %v", err)
	}
	defer func() { _ = ch.Close() }()

	// fair dispatch across workers
	if err := ch.Qos(16, 0, false); err != nil {
		log.Fatalf("qos: %v", err)
	}
	if err := helpers.DeclareDurableQueue(ch, cfg.RabbitMQEmailQueue); err != nil {
		log.Fatalf("queue declare: %v", err)
	}

	msgs, err := ch.Consume(cfg.RabbitMQEmailQueue, "", false, false, false, false, nil)
	if err != nil {
		log.Fatalf("consume: %v", err)
	}

	w := worker{sender: sender, geo: mailtpl.IPAPIResolver{}, log: logger}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		for msg := range msgs {
			w.handle(context.Background(), msg)
		}
		close(done)
	}()

	logger.Infof("email worker listening on queue=%s", cfg.RabbitMQEmailQueue)
	<-stop
	logger.Info("shutting down")
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
}

type acker interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

type worker struct {
	sender mailer.Sender
	geo    mailtpl.GeoResolver
	log    *logrus.Logger
}

var errPoison = errors.New("undeliverable job")

func (w worker) handle(ctx context.Context, msg amqp.Delivery) {
	w.settle(msg, w.process(ctx, msg.Body))
}

// settle acks on success, drops malformed jobs and requeues everything else.
func (w worker) settle(a acker, err error) {
	switch {
	case err == nil:
		_ = a.Ack(false)
	case errors.Is(err, errPoison):
		w.log.WithError(err).Error("dropping email job")
		_ = a.Nack(false, false)
	default:
		w.log.WithError(err).Warn("email send failed, requeueing")
		_ = a.Nack(false, true)
	}
}

func (w worker) process(ctx context.Context, body []byte) error {
	var job mailer.EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		return errors.Join(errPoison, err)
	}
	job.Normalize()
	if job.To == "" || (job.Template != "" && !mailtpl.Known(job.Template)) {
		return errPoison
	}
	mailtpl.LocalizeTimes(ctx, w.geo, job.Data)

	c, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := mailer.Deliver(c, w.sender, job); err != nil {
		return err
	}
	w.log.WithFields(logrus.Fields{"to": job.To, "template": job.Template}).Info("email sent")
	return nil
}
