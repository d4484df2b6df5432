// Package notify hands booking lifecycle events to the asynq queue and
// consumes them in the worker.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"sailhaven/internal/adapters/observability"
	"sailhaven/internal/domain"
)

const (
	TypeBookingStatusChanged = "booking:status_changed"
	QueueDefault             = "default"
)

// --- Enqueuing ---

type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Notifier implements domain.Notifier on top of an asynq client.
type Notifier struct {
	client enqueuer
}

func NewNotifier(c enqueuer) *Notifier { return &Notifier{client: c} }

func NewClient(addr, pass string, db int) *asynq.Client {
	return asynq.NewClient(asynq.RedisClientOpt{Addr: addr, Password: pass, DB: db})
}

func NewBookingTask(ev domain.BookingEvent) (*asynq.Task, error) {
	b, err := json.Marshal(ev)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeBookingStatusChanged, b), nil
}

// BookingChanged enqueues ev once per (booking, action).
func (n *Notifier) BookingChanged(ctx context.Context, ev domain.BookingEvent) error {
	task, err := NewBookingTask(ev)
	if err != nil {
		return err
	}
	_, err = n.client.EnqueueContext(ctx, task,
		asynq.Queue(QueueDefault),
		asynq.MaxRetry(5),
		asynq.TaskID(ev.BookingID+":"+string(ev.Action)),
		asynq.Retention(24*time.Hour),
	)
	switch {
	case err == nil, errors.Is(err, asynq.ErrTaskIDConflict):
		observability.ObserveNotification(TypeBookingStatusChanged, "enqueued")
		return nil
	default:
		observability.ObserveNotification(TypeBookingStatusChanged, "error")
		return fmt.Errorf("enqueue %s: %w", TypeBookingStatusChanged, err)
	}
}

// --- Processing ---

// Delivery is the outbound channel (email, push). The real channel is external;
// the worker ships with LogDelivery.
type Delivery interface {
	Deliver(ctx context.Context, ev domain.BookingEvent) error
}

type LogDelivery struct{}

func (LogDelivery) Deliver(ctx context.Context, ev domain.BookingEvent) error {
	log.Info().Str("booking_id", ev.BookingID).Str("yacht_id", ev.YachtID).
		Str("renter_id", ev.RenterID).Str("owner_id", ev.OwnerID).
		Str("action", string(ev.Action)).Str("to", string(ev.To)).
		Msg("booking notification delivered")
	return nil
}

type Processor struct {
	out Delivery
}

func NewProcessor(out Delivery) *Processor { return &Processor{out: out} }

func (p *Processor) HandleBookingStatusChanged(ctx context.Context, t *asynq.Task) error {
	var ev domain.BookingEvent
	if err := json.Unmarshal(t.Payload(), &ev); err != nil {
		return fmt.Errorf("unmarshal booking event: %v: %w", err, asynq.SkipRetry)
	}
	if ev.BookingID == "" {
		return fmt.Errorf("booking event without booking id: %w", asynq.SkipRetry)
	}
	if err := p.out.Deliver(ctx, ev); err != nil {
		observability.ObserveNotification(TypeBookingStatusChanged, "retry")
		return err
	}
	observability.ObserveNotification(TypeBookingStatusChanged, "delivered")
	return nil
}

// Mux routes task types to p's handlers.
func (p *Processor) Mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeBookingStatusChanged, p.HandleBookingStatusChanged)
	return mux
}

func NewServer(addr, pass string, db, concurrency int) *asynq.Server {
	return asynq.NewServer(
		asynq.RedisClientOpt{Addr: addr, Password: pass, DB: db},
		asynq.Config{
			Concurrency: concurrency,
			Queues:      map[string]int{QueueDefault: 1},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				log.Error().Err(err).Str("type", task.Type()).Msg("task failed")
			}),
		},
	)
}
