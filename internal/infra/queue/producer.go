package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	TemplateNotification = "notification"
	TemplateSessionPdf   = "session_pdf"
	TemplateContractPdf  = "contract_pdf"
)

// RetryHeader counts how many times a job was already attempted.
const RetryHeader = "x-retry-count"

type EmailJob struct {
	To       string            `json:"to"`
	Subject  string            `json:"subject"`
	Template string            `json:"template"`
	Data     map[string]string `json:"data"`
}

// TelegramChannelJob announces a finalized lead. Keyed by LeadID.
type TelegramChannelJob struct {
	LeadID      string `json:"lead_id"`
	Code        int    `json:"code"`
	ClientName  string `json:"client_name"`
	ClientPhone string `json:"client_phone"`
	Category    string `json:"category"`
	Country     string `json:"country"`
}

type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type RabbitMQProducer struct {
	Ch Publisher
}

func NewProducer(ch Publisher) *RabbitMQProducer {
	return &RabbitMQProducer{Ch: ch}
}

func (p *RabbitMQProducer) PublishEmail(ctx context.Context, job EmailJob) error {
	return p.publish(ctx, EmailRoutingKey, job, nil)
}

func (p *RabbitMQProducer) PublishTelegramChannel(ctx context.Context, job TelegramChannelJob) error {
	return p.publish(ctx, TelegramRoutingKey, job, nil)
}

func (p *RabbitMQProducer) publish(ctx context.Context, key string, payload any, headers amqp.Table) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		key,
		false, // Mandatory
		false, // Immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			Headers:      headers,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("publish to rabbitmq: %w", err)
	}
	return nil
}
