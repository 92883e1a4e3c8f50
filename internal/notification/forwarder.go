package notification

import (
	"context"
	"time"

	"leadflow_backend/internal/events"
	"leadflow_backend/platform/metrics"
)

// Publisher sends a JSON payload under a routing key. queue.Publisher
// implements it over RabbitMQ.
type Publisher interface {
	PublishJSON(ctx context.Context, routingKey string, payload any) error
}

// Envelope is the message body forwarded for every domain event.
type Envelope struct {
	Event      string       `json:"event"`
	OccurredAt time.Time    `json:"occurredAt"`
	Payload    events.Event `json:"payload"`
}

// Forwarder republishes domain events to the message broker with the event
// name as routing key. Failures are counted and returned to the bus, which
// logs them; they never reach the code that published the event.
type Forwarder struct {
	pub     Publisher
	metrics *metrics.Metrics
}

// NewForwarder creates a forwarder. m may be nil.
func NewForwarder(pub Publisher, m *metrics.Metrics) *Forwarder {
	return &Forwarder{pub: pub, metrics: m}
}

// Handle implements events.Handler.
func (f *Forwarder) Handle(ctx context.Context, event events.Event) error {
	name := event.EventName()
	err := f.pub.PublishJSON(ctx, name, Envelope{
		Event:      name,
		OccurredAt: event.OccurredAt().UTC(),
		Payload:    event,
	})
	f.metrics.RecordEventForward(name, err)
	return err
}
