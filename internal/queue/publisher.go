package queue

import (
    "context"
    "encoding/json"
    "log/slog"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
)

// DefaultDialTimeout bounds connecting to the broker, AMQP handshake
// included, on the booking path.
const DefaultDialTimeout = 2 * time.Second

// Publisher sends reservation events to RabbitMQ.  Every call dials,
// publishes and closes; failures are logged and returned so the caller can
// ignore them without interrupting the booking flow.
type Publisher struct {
    url         string
    queue       string
    dialTimeout time.Duration
    logger      *slog.Logger
}

// NewPublisher builds a publisher for the broker at url.
func NewPublisher(url string, logger *slog.Logger) *Publisher {
    if logger == nil {
        logger = slog.New(slog.DiscardHandler)
    }
    return &Publisher{url: url, queue: ReservationQueue, dialTimeout: DefaultDialTimeout, logger: logger}
}

// PublishReservation publishes ev as a persistent JSON message on the
// reservation queue, declaring the queue first (idempotent, durable).
func (p *Publisher) PublishReservation(ctx context.Context, ev ReservationEvent) error {
    if err := ctx.Err(); err != nil {
        return err
    }
    timeout := p.dialTimeout
    if dl, ok := ctx.Deadline(); ok {
        timeout = min(timeout, time.Until(dl))
    }
    conn, err := amqp.DialConfig(p.url, amqp.Config{
        Heartbeat: 10 * time.Second,
        Locale:    "en_US",
        Dial:      amqp.DefaultDial(timeout),
    })
    if err != nil {
        p.logger.Warn("rabbitmq dial failed", "error", err)
        return err
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        p.logger.Warn("rabbitmq channel open failed", "error", err)
        return err
    }
    defer func() { _ = ch.Close() }()

    if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
        p.logger.Warn("rabbitmq queue declare failed", "queue", p.queue, "error", err)
        return err
    }

    body, err := json.Marshal(ev)
    if err != nil {
        return err
    }
    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        Timestamp:    time.Now().UTC(),
        Type:         ev.Type,
        Body:         body,
    }
    if err := ch.PublishWithContext(ctx, "", p.queue, false, false, pub); err != nil {
        p.logger.Warn("rabbitmq publish failed", "queue", p.queue, "error", err)
        return err
    }
    return nil
}
