package queue

import (
    "context"
    "encoding/json"
    "log/slog"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher sends an event to a named queue.
type Publisher interface {
    Publish(ctx context.Context, queue string, event any) error
}

// AMQPPublisher dials the broker for each publish, declares the durable
// queue and sends the JSON encoded event as a persistent message.  Errors
// are logged and returned so callers can ignore them without interrupting
// the request.
type AMQPPublisher struct {
    URL         string
    DialTimeout time.Duration
    Logger      *slog.Logger
}

func NewAMQPPublisher(url string, logger *slog.Logger) *AMQPPublisher {
    return &AMQPPublisher{URL: url, DialTimeout: 2 * time.Second, Logger: logger}
}

func (p *AMQPPublisher) Publish(ctx context.Context, queue string, event any) error {
    conn, err := amqp.DialConfig(p.URL, amqp.Config{Dial: amqp.DefaultDial(p.DialTimeout)})
    if err != nil {
        p.Logger.Warn("rabbitmq: dial failed", "queue", queue, "err", err)
        return err
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        p.Logger.Warn("rabbitmq: channel open failed", "err", err)
        return err
    }
    defer func() { _ = ch.Close() }()

    // Idempotent; durable so messages survive broker restarts.
    if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
        p.Logger.Warn("rabbitmq: queue declare failed", "queue", queue, "err", err)
        return err
    }

    body, err := json.Marshal(event)
    if err != nil {
        p.Logger.Error("rabbitmq: marshal event failed", "queue", queue, "err", err)
        return err
    }

    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        Timestamp:    time.Now().UTC(),
        Type:         queue,
        Body:         body,
    }
    if err := ch.PublishWithContext(ctx, "", queue, false, false, pub); err != nil {
        p.Logger.Warn("rabbitmq: publish failed", "queue", queue, "err", err)
        return err
    }
    return nil
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, any) error { return nil }
