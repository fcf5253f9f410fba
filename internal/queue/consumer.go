package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/community-amenities/internal/config"
	"github.com/iliyamo/community-amenities/internal/logger"
)

const reservationLogFile = "reservations.log"

// StartReservationConsumer connects to RabbitMQ, declares the reservation
// queue (durable) and consumes messages, appending each event as one line
// to <LogDir>/reservations.log.  It reconnects with exponential backoff and
// returns only when ctx is cancelled.  Messages that cannot be handled are
// rejected without requeue so the server continues operating.
func StartReservationConsumer(ctx context.Context, cfg config.EventsConfig, log *logger.Logger) error {
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		timeout := cfg.DialTimeout
		if timeout <= 0 {
			timeout = defaultDialTimeout
		}
		conn, err := dial(cfg.URL, timeout)
		if err != nil {
			log.Warn("reservation-consumer: failed to dial broker", "error", err, "retry_in", backoff.String())
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		err = consumeLoop(ctx, conn, cfg, log)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Warn("reservation-consumer: consume loop ended; reconnecting", "error", err)
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

func consumeLoop(ctx context.Context, conn *amqp.Connection, cfg config.EventsConfig, log *logger.Logger) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Warn("reservation-consumer: set QoS failed", "error", err)
	}
	if _, err := declareQueue(ch, cfg.Queue); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.ConsumeWithContext(ctx, cfg.Queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := handleMessage(cfg.LogDir, d.Body); err != nil {
			log.Error("reservation-consumer: handle message failed", "error", err)
			_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

func handleMessage(dir string, body []byte) error {
	var ev ReservationEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.Type == "" || ev.ReservationID == 0 {
		return errors.New("event without type or reservation id")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	f, err := os.OpenFile(filepath.Join(dir, reservationLogFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(formatLine(ev)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

func formatLine(ev ReservationEvent) string {
	return fmt.Sprintf("[%s] %s | event_id=%s | reservation_id=%d | amenity_id=%d | amenity=%q | requester_id=%d | actor_id=%d | date=%s | slot=%s-%s | status=%s\n",
		ev.OccurredAt, ev.Type, ev.EventID, ev.ReservationID, ev.AmenityID, ev.AmenityName,
		ev.RequesterID, ev.ActorID, ev.Date, ev.StartTime, ev.EndTime, ev.Status)
}
