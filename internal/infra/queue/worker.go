package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/xavierca1/dreamstudio-crm/internal/entity"
)

const MaxEmailAttempts = 3

type EmailSender interface {
	SendTemplate(to, subject, template string, data map[string]string) error
}

type LeadAnnouncer interface {
	AnnounceLead(ctx context.Context, job TelegramChannelJob) (chatID int64, messageID int, err error)
}

type TelegramChannelStore interface {
	ExistsForLead(ctx context.Context, leadID string) (bool, error)
	Create(ctx context.Context, ch *entity.TelegramChannel) error
}

type Consumer interface {
	Publisher
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

type Worker struct {
	Channel          Consumer
	Mailer           EmailSender
	Announcer        LeadAnnouncer
	Channels         TelegramChannelStore
	TelegramInterval time.Duration

	// OnFailure, when set, receives the integration name of every failed job.
	OnFailure func(service string)
}

func NewWorker(ch Consumer, mailer EmailSender, announcer LeadAnnouncer, channels TelegramChannelStore, telegramInterval time.Duration) *Worker {
	if telegramInterval <= 0 {
		telegramInterval = 30 * time.Second
	}
	return &Worker{
		Channel:          ch,
		Mailer:           mailer,
		Announcer:        announcer,
		Channels:         channels,
		TelegramInterval: telegramInterval,
	}
}

// StartEmails consumes q.emails until ctx is done. Failed sends are
// republished with an incremented retry header; after MaxEmailAttempts the
// message is rejected into the DLQ.
func (w *Worker) StartEmails(ctx context.Context) error {
	msgs, err := w.Channel.Consume(EmailQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", EmailQueue, err)
	}
	log.Printf("[WORKER] waiting on '%s'", EmailQueue)

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return nil
			}
			w.handleEmail(ctx, d)
		}
	}
}

func (w *Worker) handleEmail(ctx context.Context, d amqp.Delivery) {
	var job EmailJob
	if err := json.Unmarshal(d.Body, &job); err != nil {
		log.Printf("[WORKER] invalid email job: %v", err)
		d.Nack(false, false)
		return
	}

	err := w.Mailer.SendTemplate(job.To, job.Subject, job.Template, job.Data)
	if err == nil {
		log.Printf("[WORKER] email '%s' sent to %s", job.Template, job.To)
		d.Ack(false)
		return
	}

	w.failed("mail")
	attempt := RetryCount(d.Headers) + 1
	log.Printf("[WORKER] email to %s failed (attempt %d/%d): %v", job.To, attempt, MaxEmailAttempts, err)

	if attempt >= MaxEmailAttempts {
		d.Nack(false, false)
		return
	}

	retry := amqp.Publishing{
		ContentType:  d.ContentType,
		Body:         d.Body,
		Headers:      amqp.Table{RetryHeader: int32(attempt)},
		DeliveryMode: amqp.Persistent,
	}
	if err := w.Channel.PublishWithContext(ctx, ExchangeName, EmailRoutingKey, false, false, retry); err != nil {
		log.Printf("[WORKER] republish email to %s: %v", job.To, err)
		d.Nack(false, false)
		return
	}
	d.Ack(false)
}

// StartTelegram consumes q.telegram handling at most one job per
// TelegramInterval.
func (w *Worker) StartTelegram(ctx context.Context) error {
	msgs, err := w.Channel.Consume(TelegramQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", TelegramQueue, err)
	}
	log.Printf("[WORKER] waiting on '%s' (1 job / %s)", TelegramQueue, w.TelegramInterval)

	var last time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return nil
			}
			if wait := w.TelegramInterval - time.Since(last); !last.IsZero() && wait > 0 {
				select {
				case <-ctx.Done():
					d.Nack(false, true)
					return nil
				case <-time.After(wait):
				}
			}
			last = time.Now()

			var job TelegramChannelJob
			if err := json.Unmarshal(d.Body, &job); err != nil {
				log.Printf("[WORKER] invalid telegram job: %v", err)
				d.Nack(false, false)
				continue
			}
			if err := w.ProcessTelegram(ctx, job); err != nil {
				w.failed("telegram")
				log.Printf("[WORKER] telegram channel for lead %s: %v", job.LeadID, err)
				d.Nack(false, false)
				continue
			}
			d.Ack(false)
		}
	}
}

// ProcessTelegram is idempotent per lead: an existing channel row skips the job.
func (w *Worker) ProcessTelegram(ctx context.Context, job TelegramChannelJob) error {
	exists, err := w.Channels.ExistsForLead(ctx, job.LeadID)
	if err != nil {
		return err
	}
	if exists {
		log.Printf("[WORKER] telegram channel for lead %s already exists, skipping", job.LeadID)
		return nil
	}

	chatID, messageID, err := w.Announcer.AnnounceLead(ctx, job)
	if err != nil {
		return err
	}

	return w.Channels.Create(ctx, &entity.TelegramChannel{
		ClientLeadID: job.LeadID,
		ChatID:       chatID,
		MessageID:    messageID,
		CreatedAt:    time.Now(),
	})
}

func (w *Worker) failed(service string) {
	if w.OnFailure != nil {
		w.OnFailure(service)
	}
}

func RetryCount(headers amqp.Table) int {
	switch v := headers[RetryHeader].(type) {
	case int32:
		return int(v)
	case int64:
		return int(v)
	case int:
		return v
	}
	return 0
}
