package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/spec-kit/clinic-service/internal/domain"
)

func TestDispatcher_PublishInvokesSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()

	var received []Event
	d.Subscribe(EventAppointmentBooked, func(_ context.Context, e Event) error {
		received = append(received, e)
		return nil
	})

	event := Event{
		ID:        "evt-1",
		Type:      EventAppointmentBooked,
		PatientID: "p-1",
		Actor:     Actor{SubjectID: "u-1", Role: domain.RolePatient},
		Timestamp: time.Now(),
	}
	if err := d.Publish(context.Background(), event); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	if len(received) != 1 {
		t.Fatalf("received %d events, want 1", len(received))
	}
	if received[0].ID != "evt-1" || received[0].Actor.SubjectID != "u-1" {
		t.Errorf("unexpected event: %+v", received[0])
	}
}

func TestDispatcher_IgnoresOtherEventTypes(t *testing.T) {
	d := NewInMemoryDispatcher()

	calls := 0
	d.Subscribe(EventVisitRecordAdded, func(context.Context, Event) error {
		calls++
		return nil
	})

	if err := d.Publish(context.Background(), Event{Type: EventAppointmentCancelled}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if calls != 0 {
		t.Errorf("handler invoked %d times for unrelated event, want 0", calls)
	}
}

func TestDispatcher_FailingHandlerDoesNotStopOthers(t *testing.T) {
	d := NewInMemoryDispatcher()

	second := 0
	d.Subscribe(EventAppointmentStatusChanged, func(context.Context, Event) error {
		return errors.New("boom")
	})
	d.Subscribe(EventAppointmentStatusChanged, func(context.Context, Event) error {
		second++
		return nil
	})

	if err := d.Publish(context.Background(), Event{Type: EventAppointmentStatusChanged}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if second != 1 {
		t.Errorf("second handler invoked %d times, want 1", second)
	}
}

func TestDispatcher_PublishWithoutSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()
	if err := d.Publish(context.Background(), Event{Type: EventAppointmentBooked}); err != nil {
		t.Fatalf("Publish on empty dispatcher: %v", err)
	}
}
