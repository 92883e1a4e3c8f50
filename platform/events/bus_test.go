package events

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"leadflow_backend/platform/logger"
)

type pingEvent struct{ BaseEvent }

func (pingEvent) EventName() string { return "test.ping" }

func TestPublishReachesSpecificAndWildcardHandlers(t *testing.T) {
	bus := NewInMemoryBus(logger.Discard())
	var specific, wildcard atomic.Int32

	bus.Subscribe("test.ping", HandlerFunc(func(context.Context, Event) error {
		specific.Add(1)
		return nil
	}))
	bus.Subscribe(AllEvents, HandlerFunc(func(context.Context, Event) error {
		wildcard.Add(1)
		return nil
	}))

	bus.Publish(context.Background(), pingEvent{NewBaseEvent()})
	bus.Wait()

	if specific.Load() != 1 || wildcard.Load() != 1 {
		t.Fatalf("expected one call each, got specific=%d wildcard=%d", specific.Load(), wildcard.Load())
	}
}

func TestPublishSyncJoinsErrorsAndRecoversPanics(t *testing.T) {
	bus := NewInMemoryBus(logger.Discard())
	boom := errors.New("boom")

	bus.Subscribe("test.ping", HandlerFunc(func(context.Context, Event) error { return boom }))
	bus.Subscribe("test.ping", HandlerFunc(func(context.Context, Event) error { panic("bad handler") }))

	err := bus.PublishSync(context.Background(), pingEvent{NewBaseEvent()})
	if !errors.Is(err, boom) {
		t.Fatalf("expected joined error to contain boom, got %v", err)
	}
}
