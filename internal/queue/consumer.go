package queue

// consumer.go holds the audit consumer that listens to the
// catalog.changed queue and appends one line per event to a log file.
// It runs in its own process (cmd/auditlog), never inside the web server.

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"

    "github.com/iliyamo/film-catalog/internal/logging"
)

// DefaultLogPath is where audit lines go when no path is given.
var DefaultLogPath = filepath.Join("logs", "catalog.log")

// StartCatalogConsumer connects to RabbitMQ, declares the catalog.changed
// queue (durable) and appends every message to logPath.  It reconnects
// with exponential backoff and returns only when ctx is cancelled.
func StartCatalogConsumer(ctx context.Context, url, logPath string) error {
    if logPath == "" {
        logPath = DefaultLogPath
    }
    backoff := time.Second
    for {
        if ctx.Err() != nil {
            return ctx.Err()
        }
        conn, err := amqp.Dial(url)
        if err != nil {
            logging.Warn().Err(err).Dur("retry_in", backoff).Msg("audit-consumer: failed to dial broker")
            if !sleep(ctx, backoff) {
                return ctx.Err()
            }
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second

        err = consumeLoop(ctx, conn, logPath)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        logging.Warn().Err(err).Msg("audit-consumer: consume loop ended; reconnecting")
        if !sleep(ctx, 2*time.Second) {
            return ctx.Err()
        }
    }
}

func sleep(ctx context.Context, d time.Duration) bool {
    t := time.NewTimer(d)
    defer t.Stop()
    select {
    case <-ctx.Done():
        return false
    case <-t.C:
        return true
    }
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, logPath string) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        logging.Warn().Err(err).Msg("audit-consumer: set QoS failed")
    }
    if _, err := ch.QueueDeclare(CatalogQueueName, true, false, false, false, nil); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }
    msgs, err := ch.Consume(CatalogQueueName, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume: %w", err)
    }

    for {
        select {
        case <-ctx.Done():
            return ctx.Err()
        case d, ok := <-msgs:
            if !ok {
                return errors.New("deliveries channel closed")
            }
            if err := handleMessage(d.Body, logPath); err != nil {
                logging.Error().Err(err).Msg("audit-consumer: handle message failed")
                _ = d.Nack(false, false) // do not requeue, avoids a tight loop on a poison message
                continue
            }
            _ = d.Ack(false)
        }
    }
}

func handleMessage(body []byte, logPath string) error {
    var ev CatalogChangedEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    if ev.Entity == "" || ev.Action == "" {
        return errors.New("event without entity or action")
    }
    if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
        return fmt.Errorf("mkdir logs: %w", err)
    }
    f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()

    if _, err := f.WriteString(formatLine(ev)); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}

func formatLine(ev CatalogChangedEvent) string {
    user := ev.Username
    if user == "" {
        user = "-"
    }
    return fmt.Sprintf("[%s] %s %s | id=%d | name=%q | user_id=%d | user=%s\n",
        ev.OccurredAt, ev.Entity, ev.Action, ev.ID, ev.Name, ev.UserID, user)
}
