package queue

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	ExchangeName = "ex.crm"
	DLXName      = "ex.dlx" // Dead Letter Exchange

	EmailQueue      = "q.emails"
	EmailDLQ        = "q.emails.dlq"
	EmailRoutingKey = "k.email"

	TelegramQueue      = "q.telegram"
	TelegramDLQ        = "q.telegram.dlq"
	TelegramRoutingKey = "k.telegram"
)

type RabbitMQ struct {
	Conn *amqp.Connection
	Ch   *amqp.Channel
}

func NewRabbitMQ(url string) (*RabbitMQ, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := setupTopology(ch); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare topology: %w", err)
	}

	return &RabbitMQ{Conn: conn, Ch: ch}, nil
}

func (r *RabbitMQ) Close() {
	if r.Ch != nil {
		r.Ch.Close()
	}
	if r.Conn != nil {
		r.Conn.Close()
	}
}

func (r *RabbitMQ) IsClosed() bool {
	return r.Conn == nil || r.Conn.IsClosed()
}

// QueueDepths reports the ready message count of every work queue and DLQ.
// A failed passive declare closes its channel, so a throwaway channel is used.
func (r *RabbitMQ) QueueDepths() (map[string]int, error) {
	if r.IsClosed() {
		return nil, amqp.ErrClosed
	}
	ch, err := r.Conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open inspection channel: %w", err)
	}
	defer ch.Close()

	depths := make(map[string]int, 2*len(bindings))
	for _, b := range bindings {
		for _, name := range []string{b.queue, b.dlq} {
			q, err := ch.QueueDeclarePassive(name, true, false, false, false, nil)
			if err != nil {
				return depths, fmt.Errorf("inspect %s: %w", name, err)
			}
			depths[name] = q.Messages
		}
	}
	return depths, nil
}

type binding struct {
	queue      string
	dlq        string
	routingKey string
}

var bindings = []binding{
	{queue: EmailQueue, dlq: EmailDLQ, routingKey: EmailRoutingKey},
	{queue: TelegramQueue, dlq: TelegramDLQ, routingKey: TelegramRoutingKey},
}

func setupTopology(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(DLXName, "direct", true, false, false, false, nil); err != nil {
		return err
	}
	if err := ch.ExchangeDeclare(ExchangeName, "direct", true, false, false, false, nil); err != nil {
		return err
	}

	for _, b := range bindings {
		if _, err := ch.QueueDeclare(b.dlq, true, false, false, false, nil); err != nil {
			return err
		}
		if err := ch.QueueBind(b.dlq, b.routingKey, DLXName, false, nil); err != nil {
			return err
		}

		args := amqp.Table{
			"x-dead-letter-exchange":    DLXName,      // Nack without requeue goes to the DLX
			"x-dead-letter-routing-key": b.routingKey, // with the same key
		}
		if _, err := ch.QueueDeclare(b.queue, true, false, false, false, args); err != nil {
			return err
		}
		if err := ch.QueueBind(b.queue, b.routingKey, ExchangeName, false, nil); err != nil {
			return err
		}
	}
	return nil
}
