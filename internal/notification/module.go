// Package notification pushes domain events out of the process: to browsers
// over Server-Sent Events and, when configured, to a RabbitMQ exchange.
// Domain modules only publish on the bus and never know about either sink.
package notification

import (
	"context"

	"leadflow_backend/internal/events"
	apphttp "leadflow_backend/internal/http"
	"leadflow_backend/internal/notification/sse"
	"leadflow_backend/platform/logger"

	"github.com/google/uuid"
)

// Module wires the SSE stream and the optional broker forwarder.
type Module struct {
	sse       *sse.Service
	forwarder *Forwarder
	log       *logger.Logger
}

// New creates the notification module. forwarder may be nil when event
// forwarding is disabled.
func New(forwarder *Forwarder, log *logger.Logger) *Module {
	return &Module{
		sse:       sse.New(log),
		forwarder: forwarder,
		log:       log,
	}
}

// Name returns the module name.
func (m *Module) Name() string { return "notification" }

// RegisterRoutes mounts the live event stream.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.GET("/events/stream", m.sse.Handler())
}

// SSE exposes the stream service.
func (m *Module) SSE() *sse.Service { return m.sse }

// RegisterHandlers subscribes the module to every domain event.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.AllEvents, m)
	if m.forwarder != nil {
		bus.Subscribe(events.AllEvents, m.forwarder)
	}
}

// Close disconnects stream clients.
func (m *Module) Close() {
	m.sse.Close()
}

// Handle implements events.Handler by broadcasting to stream clients.
func (m *Module) Handle(_ context.Context, event events.Event) error {
	m.sse.Broadcast(sse.Event{
		Type:   event.EventName(),
		LeadID: leadID(event),
		Data:   event,
	})
	return nil
}

func leadID(event events.Event) *uuid.UUID {
	var id uuid.UUID
	switch e := event.(type) {
	case events.LeadCreated:
		id = e.LeadID
	case events.LeadUpdated:
		id = e.LeadID
	case events.LeadStageChanged:
		id = e.LeadID
	case events.LeadDeleted:
		id = e.LeadID
	default:
		return nil
	}
	return &id
}

var _ apphttp.Module = (*Module)(nil)
