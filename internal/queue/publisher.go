package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"smsdispatch/internal/gateway"
)

// Publisher publishes terminal dispatch outcomes to RabbitMQ for
// downstream consumers (delivery-report matching, auditing)
type Publisher struct {
	conn      *Connection
	queueName string
}

// DispatchEvent is the terminal outcome of one dispatched batch
type DispatchEvent struct {
	SMSKey        int       `json:"sms_key"`
	MessageClass  string    `json:"message_class"`
	ReturnCode    string    `json:"return_code"`
	ReturnMessage string    `json:"return_message"`
	MessageID     string    `json:"message_id,omitempty"`
	Recipients    int       `json:"recipients"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// NewPublisher declares the durable queue and returns a publisher
func NewPublisher(conn *Connection, queueName string) (*Publisher, error) {
	if conn == nil {
		return nil, errors.New("connection cannot be nil")
	}
	if queueName == "" {
		return nil, errors.New("queue name cannot be empty")
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to get channel: %w", err)
	}

	_, err = ch.QueueDeclare(
		queueName,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	return &Publisher{
		conn:      conn,
		queueName: queueName,
	}, nil
}

// PublishDispatch publishes a terminal batch outcome
func (p *Publisher) PublishDispatch(smsKey int, messageClass string, outcome gateway.Outcome, recipientCount int) error {
	event := DispatchEvent{
		SMSKey:        smsKey,
		MessageClass:  messageClass,
		ReturnCode:    outcome.ResultCode,
		ReturnMessage: outcome.ResultText,
		MessageID:     outcome.MessageID,
		Recipients:    recipientCount,
		OccurredAt:    time.Now(),
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal dispatch event: %w", err)
	}

	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to get channel: %w", err)
	}

	err = ch.Publish(
		"",          // exchange (default)
		p.queueName, // routing key
		false,       // mandatory
		false,       // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish dispatch event: %w", err)
	}

	return nil
}

// Close closes the publisher (connection is managed externally)
func (p *Publisher) Close() error {
	return nil
}
