package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"movie-ticketing/pkg/utils"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Publisher emits booking events. Callers treat publish failures as
// non-fatal: the booking has already committed by the time an event is sent.
type Publisher interface {
	PublishBookingCreated(ctx context.Context, event BookingCreatedEvent) error
}

type amqpPublisher struct {
	url       string
	queueName string
	log       *zap.Logger
}

// NewPublisher returns an AMQP-backed publisher. With an empty broker URL
// publishing is a no-op, so the service runs without a broker in development.
func NewPublisher(config utils.QueueConfig, log *zap.Logger) Publisher {
	return &amqpPublisher{
		url:       config.URL,
		queueName: config.QueueName,
		log:       log.With(zap.String("component", "queue_publisher")),
	}
}

func (p *amqpPublisher) PublishBookingCreated(ctx context.Context, event BookingCreatedEvent) error {
	if p.url == "" {
		return nil
	}

	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.log.Error("AMQP dial failed", zap.Error(err))
		return fmt.Errorf("amqp dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.log.Error("AMQP channel open failed", zap.Error(err))
		return fmt.Errorf("amqp channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	// Idempotent declare; durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(
		p.queueName,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,   // args
	); err != nil {
		p.log.Error("AMQP queue declare failed", zap.Error(err))
		return fmt.Errorf("amqp queue declare: %w", err)
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal booking event: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx,
		"",          // default exchange
		p.queueName, // routing key = queue name
		false,       // mandatory
		false,       // immediate
		pub,
	); err != nil {
		p.log.Error("AMQP publish failed",
			zap.Error(err),
			zap.String("booking_code", event.BookingCode),
		)
		return fmt.Errorf("amqp publish: %w", err)
	}

	return nil
}
