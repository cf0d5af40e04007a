package eventbus

import (
	"testing"
)

func TestPublishDeliversToAllSubscribers(t *testing.T) {
	b := New()
	ch1, un1 := b.Subscribe(4)
	defer un1()
	ch2, un2 := b.Subscribe(4)
	defer un2()

	b.Publish(Event{Type: TypeReminderFired, Data: "stretch"})

	for i, ch := range []<-chan Event{ch1, ch2} {
		select {
		case e := <-ch:
			if e.Type != TypeReminderFired || e.Data != "stretch" {
				t.Fatalf("subscriber %d got %+v", i, e)
			}
			if e.Time.IsZero() {
				t.Fatalf("subscriber %d: expected publish to stamp time", i)
			}
		default:
			t.Fatalf("subscriber %d got nothing", i)
		}
	}
}

func TestSlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe(1)
	defer unsub()

	// A full buffer must never block the publisher.
	for i := 0; i < 10; i++ {
		b.Publish(Event{Type: TypeBatchFlushed})
	}
	if got := len(ch); got != 1 {
		t.Fatalf("buffered events = %d, want 1", got)
	}
}

func TestUnsubscribeClosesAndIsIdempotent(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe(2)
	unsub()
	unsub()

	// Publishing after unsubscribe must not panic.
	b.Publish(Event{Type: TypeConfigReloaded})

	if _, ok := <-ch; ok {
		t.Fatal("expected closed channel after unsubscribe")
	}
}
