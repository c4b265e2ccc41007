package notify

import (
	"context"

	"github.com/google/uuid"

	"rentacar-escrow-backend/internal/logger"
)

// Topics mirror the audit events the contract publishes. The engine emits
// them after a successful commit; nothing in the core ever reads them back.
const (
	TopicCarAdded       = "car_added"
	TopicCarRemoved     = "car_removed"
	TopicRented         = "rented"
	TopicCarReturned    = "car_returned"
	TopicPayoutOwner    = "payout_owner"
	TopicAdminFeeSet    = "admin_fee_set"
	TopicAdminWithdraw  = "admin_withdraw"
	TopicAuditViolation = "audit_violation"
)

type Event struct {
	ID         string            `json:"id"`
	Topic      string            `json:"topic"`
	Attributes map[string]string `json:"attributes"`
}

func NewEvent(topic string, attributes map[string]string) Event {
	return Event{
		ID:         uuid.New().String(),
		Topic:      topic,
		Attributes: attributes,
	}
}

// Notifier is the side-channel audit log. Emit must never fail the
// operation that produced the event; implementations log and swallow their
// own errors.
type Notifier interface {
	Emit(ctx context.Context, event Event)
}

type logNotifier struct{}

// NewLogNotifier returns the always-on notifier that writes every event to
// the structured log.
func NewLogNotifier() Notifier {
	return &logNotifier{}
}

func (n *logNotifier) Emit(_ context.Context, event Event) {
	args := []any{"event_id", event.ID, "topic", event.Topic}
	for key, value := range event.Attributes {
		args = append(args, key, value)
	}
	logger.WithService("notifier").Info("event emitted", args...)
}

type fanout struct {
	notifiers []Notifier
}

// NewFanout forwards each event to every wrapped notifier.
func NewFanout(notifiers ...Notifier) Notifier {
	return &fanout{notifiers: notifiers}
}

func (f *fanout) Emit(ctx context.Context, event Event) {
	for _, n := range f.notifiers {
		n.Emit(ctx, event)
	}
}
