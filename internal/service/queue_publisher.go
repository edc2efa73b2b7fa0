// Package queue_publisher publishes catalog change events to RabbitMQ.
// Errors are logged and returned so callers can ignore failures without
// interrupting the request that caused the change.
package queue_publisher

import (
    "context"
    "encoding/json"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"

    "github.com/iliyamo/film-catalog/internal/logging"
    q "github.com/iliyamo/film-catalog/internal/queue"
)

// Publisher sends catalog events somewhere.
type Publisher interface {
    Publish(ctx context.Context, event q.CatalogChangedEvent) error
}

// New returns an AMQP publisher for url, or a Noop one when audit
// publishing is disabled.
func New(url string, enabled bool) Publisher {
    if !enabled || url == "" {
        return Noop{}
    }
    return &AMQPPublisher{URL: url}
}

// maxDialTimeout bounds the broker dial when ctx has no deadline.
const maxDialTimeout = 2 * time.Second

// dialTimeout returns how long a dial may take under ctx, never more
// than maxDialTimeout.
func dialTimeout(ctx context.Context) (time.Duration, error) {
    if err := ctx.Err(); err != nil {
        return 0, err
    }
    deadline, ok := ctx.Deadline()
    if !ok {
        return maxDialTimeout, nil
    }
    left := time.Until(deadline)
    if left <= 0 {
        return 0, context.DeadlineExceeded
    }
    if left > maxDialTimeout {
        left = maxDialTimeout
    }
    return left, nil
}

// Noop drops every event.
type Noop struct{}

// Publish implements Publisher.
func (Noop) Publish(context.Context, q.CatalogChangedEvent) error { return nil }

// AMQPPublisher opens a connection per event.  Mutations are rare
// admin actions, so there is no pooled connection to keep healthy.
type AMQPPublisher struct {
    URL string
}

// Publish sends event to the catalog.changed queue as a persistent
// JSON message.
func (p *AMQPPublisher) Publish(ctx context.Context, event q.CatalogChangedEvent) error {
    timeout, err := dialTimeout(ctx)
    if err != nil {
        return err
    }
    conn, err := amqp.DialConfig(p.URL, amqp.Config{
        Heartbeat: 10 * time.Second,
        Locale:    "en_US",
        Dial:      amqp.DefaultDial(timeout),
    })
    if err != nil {
        logging.Warn().Err(err).Msg("rabbitmq: dial failed")
        return err
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        logging.Warn().Err(err).Msg("rabbitmq: channel open failed")
        return err
    }
    defer func() { _ = ch.Close() }()

    // Durable so messages survive broker restarts.
    if _, err := ch.QueueDeclare(
        q.CatalogQueueName, // name
        true,               // durable
        false,              // autoDelete
        false,              // exclusive
        false,              // noWait
        nil,                // args
    ); err != nil {
        logging.Warn().Err(err).Msg("rabbitmq: queue declare failed")
        return err
    }

    body, err := json.Marshal(event)
    if err != nil {
        return err
    }

    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        Timestamp:    time.Now().UTC(),
        Body:         body,
    }
    if err := ch.PublishWithContext(ctx, "", q.CatalogQueueName, false, false, pub); err != nil {
        logging.Warn().Err(err).Str("entity", event.Entity).Uint64("id", event.ID).Msg("rabbitmq: publish failed")
        return err
    }
    return nil
}
