package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "log/slog"
    "os"
    "path/filepath"
    "strings"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
)

// Consumer drains the reservation queue and appends one line per event to
// <LogDir>/booking.log.
type Consumer struct {
    URL    string
    LogDir string
    Logger *slog.Logger
}

// Run connects to the broker and consumes until ctx is cancelled.  Dial
// failures and closed channels are retried with exponential backoff capped
// at 30s.  A message that cannot be handled is rejected without requeue so
// it cannot loop.
func (c *Consumer) Run(ctx context.Context) error {
    logger := c.Logger
    if logger == nil {
        logger = slog.New(slog.DiscardHandler)
    }
    backoff := time.Second
    for {
        if ctx.Err() != nil {
            return ctx.Err()
        }
        conn, err := amqp.Dial(c.URL)
        if err != nil {
            logger.Warn("booking-consumer: dial failed", "error", err, "retry_in", backoff)
            if !sleep(ctx, backoff) {
                return ctx.Err()
            }
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second

        err = c.consumeLoop(ctx, conn, logger)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        logger.Warn("booking-consumer: consume loop ended, reconnecting", "error", err)
        if !sleep(ctx, 2*time.Second) {
            return ctx.Err()
        }
    }
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection, logger *slog.Logger) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        logger.Warn("booking-consumer: set QoS failed", "error", err)
    }
    if _, err := ch.QueueDeclare(ReservationQueue, true, false, false, false, nil); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }
    msgs, err := ch.Consume(ReservationQueue, "", false, false, false, false, nil)
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
            if err := HandleMessage(d.Body, c.LogDir); err != nil {
                logger.Error("booking-consumer: handle message failed", "error", err)
                _ = d.Nack(false, false)
                continue
            }
            _ = d.Ack(false)
        }
    }
}

// HandleMessage decodes a ReservationEvent and appends it to booking.log
// under dir.
func HandleMessage(body []byte, dir string) error {
    var ev ReservationEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    if err := os.MkdirAll(dir, 0o755); err != nil {
        return fmt.Errorf("mkdir logs: %w", err)
    }
    f, err := os.OpenFile(filepath.Join(dir, "booking.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()

    if _, err := f.WriteString(FormatLine(ev)); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}

// FormatLine renders ev as a single human-friendly log line.
func FormatLine(ev ReservationEvent) string {
    seats := make([]string, len(ev.Seats))
    for i, s := range ev.Seats {
        seats[i] = fmt.Sprint(s)
    }
    return fmt.Sprintf("[%s] %s | order=%s | reservation_id=%s | user_id=%s | trip=%s %s->%s %s %s | company=%q | total=%d | seats=[%s]\n",
        ev.OccurredAt, ev.Type, ev.OrderID, ev.ReservationID, ev.UserID,
        ev.TripID, ev.From, ev.To, ev.Date, ev.Time, ev.Company, ev.TotalPrice, strings.Join(seats, ","))
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
