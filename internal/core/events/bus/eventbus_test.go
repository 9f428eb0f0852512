package bus

import (
	"errors"
	"testing"
	"time"
)

func TestBasicPublishSubscribe(t *testing.T) {
	b := New()
	done := make(chan Event, 1)
	_, err := b.Subscribe(EntityCreated, func(e Event) error {
		done <- e
		return nil
	})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if err = b.Publish(NewEvent(EntityCreated, "main", 42, nil)); err != nil {
		t.Fatalf("publish: %v", err)
	}
	select {
	case e := <-done:
		if e.UUID != 42 || e.Source != "main" {
			t.Fatalf("unexpected event: %+v", e)
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatal("handler not called")
	}
}

func TestPublishJoinsErrors(t *testing.T) {
	b := New()
	errA, errB := errors.New("a"), errors.New("b")
	_, _ = b.Subscribe("x", func(Event) error { return errA })
	_, _ = b.Subscribe("x", func(Event) error { return errB })

	err := b.Publish(NewEvent("x", "src", 0, nil))
	if !errors.Is(err, errA) || !errors.Is(err, errB) {
		t.Fatalf("expected both errors, got %v", err)
	}
}

func TestPublishAsyncReturnsErrorChannel(t *testing.T) {
	b := New()
	handlerErr := errors.New("fail")
	if _, err := b.Subscribe("x", func(Event) error { return handlerErr }); err != nil {
		t.Fatalf("sub: %v", err)
	}
	select {
	case err := <-b.PublishAsync(NewEvent("x", "src", 0, nil)):
		if !errors.Is(err, handlerErr) {
			t.Fatalf("expected handler error, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("async publish did not finish")
	}
}

func TestUnsubscribe(t *testing.T) {
	b := New()
	calls := 0
	sub, err := b.Subscribe(EntityDestroyed, func(Event) error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("sub: %v", err)
	}
	if b.Subscribers(EntityDestroyed) != 1 {
		t.Fatalf("expected one subscriber")
	}
	if err = b.Unsubscribe(sub); err != nil {
		t.Fatalf("unsub: %v", err)
	}
	_ = sub.Cancel()
	_ = b.Unsubscribe(nil)

	_ = b.Publish(NewEvent(EntityDestroyed, "main", 1, nil))
	if calls != 0 || sub.IsActive() || b.Subscribers(EntityDestroyed) != 0 {
		t.Fatalf("handler still registered: calls=%d", calls)
	}
}

func TestSubscribeNilHandler(t *testing.T) {
	if _, err := New().Subscribe("x", nil); err == nil {
		t.Fatal("expected error for nil handler")
	}
}
