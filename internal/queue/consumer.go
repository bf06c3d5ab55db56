package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "log/slog"
    "os"
    "path/filepath"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
)

// Consumer drains the OTP and lifecycle queues and appends one line per
// event to <Dir>/notifications.log, which stands in for the SMS and push
// delivery channels.
type Consumer struct {
    URL    string
    Dir    string
    Logger *slog.Logger
}

func NewConsumer(url, dir string, logger *slog.Logger) *Consumer {
    return &Consumer{URL: url, Dir: dir, Logger: logger}
}

// Run keeps a connection to the broker alive until ctx is cancelled,
// reconnecting with exponential backoff.  Messages that cannot be handled
// are rejected without requeue so the loop never spins on them.
func (c *Consumer) Run(ctx context.Context) {
    backoff := time.Second
    for {
        if ctx.Err() != nil {
            return
        }
        conn, err := amqp.Dial(c.URL)
        if err != nil {
            c.Logger.Warn("notification-consumer: dial failed", "err", err, "retry_in", backoff)
            if !sleep(ctx, backoff) {
                return
            }
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second

        err = c.consumeLoop(ctx, conn)
        _ = conn.Close()
        if ctx.Err() != nil {
            return
        }
        c.Logger.Warn("notification-consumer: loop ended, reconnecting", "err", err)
        if !sleep(ctx, 2*time.Second) {
            return
        }
    }
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        c.Logger.Warn("notification-consumer: set QoS failed", "err", err)
    }

    merged := make(chan amqp.Delivery)
    done := make(chan struct{})
    defer close(done)
    for _, q := range []string{QueueOTPIssued, QueueServiceRequests} {
        if _, err := ch.QueueDeclare(q, true, false, false, false, nil); err != nil {
            return fmt.Errorf("queue declare %s: %w", q, err)
        }
        msgs, err := ch.Consume(q, "", false, false, false, false, nil)
        if err != nil {
            return fmt.Errorf("queue consume %s: %w", q, err)
        }
        go func(in <-chan amqp.Delivery) {
            for d := range in {
                select {
                case merged <- d:
                case <-done:
                    return
                }
            }
        }(msgs)
    }

    closed := conn.NotifyClose(make(chan *amqp.Error, 1))
    for {
        select {
        case <-ctx.Done():
            return ctx.Err()
        case amqpErr := <-closed:
            if amqpErr != nil {
                return amqpErr
            }
            return errors.New("connection closed")
        case d := <-merged:
            if err := c.Handle(d.RoutingKey, d.Body); err != nil {
                c.Logger.Error("notification-consumer: handle message failed", "queue", d.RoutingKey, "err", err)
                _ = d.Nack(false, false)
                continue
            }
            _ = d.Ack(false)
        }
    }
}

// Handle formats one message from queue and appends it to the log file.
func (c *Consumer) Handle(queue string, body []byte) error {
    line, err := formatLine(queue, body)
    if err != nil {
        return err
    }
    if err := os.MkdirAll(c.Dir, 0o755); err != nil {
        return fmt.Errorf("mkdir logs: %w", err)
    }
    f, err := os.OpenFile(filepath.Join(c.Dir, "notifications.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()
    if _, err := f.WriteString(line); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}

func formatLine(queue string, body []byte) (string, error) {
    switch queue {
    case QueueOTPIssued:
        var ev OTPIssuedEvent
        if err := json.Unmarshal(body, &ev); err != nil {
            return "", fmt.Errorf("unmarshal: %w", err)
        }
        expires := "never"
        if ev.ExpiresAt != nil {
            expires = ev.ExpiresAt.UTC().Format(time.RFC3339)
        }
        return fmt.Sprintf("[%s] OTP issued | contact=%s | otp=%s | expires=%s\n",
            ev.IssuedAt.UTC().Format(time.RFC3339), ev.ContactNumber, ev.OTP, expires), nil
    case QueueServiceRequests:
        var ev ServiceRequestEvent
        if err := json.Unmarshal(body, &ev); err != nil {
            return "", fmt.Errorf("unmarshal: %w", err)
        }
        line := fmt.Sprintf("[%s] Service request %s | id=%s | service_status=%s | status=%s | actor=%s",
            ev.At.UTC().Format(time.RFC3339), ev.Event, ev.RequestID, ev.ServiceStatus, ev.Status, ev.Actor)
        if ev.ShopOwnerID != "" {
            line += " | shop_owner=" + ev.ShopOwnerID
        }
        if ev.InvoiceNumber != "" {
            line += " | invoice=" + ev.InvoiceNumber
        }
        return line + "\n", nil
    default:
        return "", fmt.Errorf("unknown queue %q", queue)
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
