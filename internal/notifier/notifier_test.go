package notifier

import (
	"testing"
	"time"

	"splashd/internal/dispatch"
	"splashd/internal/reminder"
	logx "splashd/pkg/logx"
)

type gateStub struct {
	running bool
	paused  bool
}

func (g *gateStub) Running() bool { return g.running }
func (g *gateStub) Paused() bool  { return g.paused }

func newTestService(quiet time.Duration, gate Gate) (*Service, *dispatch.Queue[dispatch.Batch]) {
	out := dispatch.NewQueue[dispatch.Batch]()
	return New(Config{QuietWindow: quiet}, gate, out, logx.Nop(), nil), out
}

func rem(id, msg, color string, hint reminder.DisplayHint) *reminder.Reminder {
	return &reminder.Reminder{ID: id, Message: msg, Color: color, Hint: hint}
}

func TestFiresWithinQuietWindowCombine(t *testing.T) {
	t.Parallel()
	gate := &gateStub{running: true}
	s, out := newTestService(2*time.Second, gate)

	base := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	s.OnFired(rem("a", "Stretch!", "#FF6B35", reminder.DisplayNormal), base)
	s.OnFired(rem("b", "Water!", "#4ECDC4", reminder.DisplayNormal), base.Add(500*time.Millisecond))

	// Quiet window restarted by the second fire: base+2s is still too early.
	if s.FlushDue(base.Add(2 * time.Second)) {
		t.Fatal("flushed before the restarted quiet window elapsed")
	}
	if !s.FlushDue(base.Add(2*time.Second + 500*time.Millisecond)) {
		t.Fatal("expected flush once quiet window elapsed")
	}

	b, ok := out.TryPop()
	if !ok {
		t.Fatal("no batch on dispatch queue")
	}
	if b.Kind != dispatch.Combined {
		t.Fatalf("Kind = %s, want combined", b.Kind)
	}
	if got := b.Messages(); len(got) != 2 || got[0] != "Stretch!" || got[1] != "Water!" {
		t.Fatalf("Messages = %v", got)
	}
	if s.Pending() != 0 {
		t.Fatalf("pending = %d after flush, want 0", s.Pending())
	}
}

func TestFiresOutsideQuietWindowStaySingle(t *testing.T) {
	t.Parallel()
	gate := &gateStub{running: true}
	s, out := newTestService(2*time.Second, gate)

	base := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	s.OnFired(rem("a", "Stretch!", "#FF6B35", reminder.DisplayNormal), base)
	if !s.FlushDue(base.Add(2 * time.Second)) {
		t.Fatal("first batch did not flush")
	}

	s.OnFired(rem("b", "Water!", "#4ECDC4", reminder.DisplayNormal), base.Add(5*time.Second))
	if !s.FlushDue(base.Add(7 * time.Second)) {
		t.Fatal("second batch did not flush")
	}

	for i, wantMsg := range []string{"Stretch!", "Water!"} {
		b, ok := out.TryPop()
		if !ok {
			t.Fatalf("missing batch %d", i)
		}
		if b.Kind != dispatch.Single {
			t.Fatalf("batch %d Kind = %s, want single", i, b.Kind)
		}
		if b.Items[0].Message != wantMsg {
			t.Fatalf("batch %d message = %q, want %q", i, b.Items[0].Message, wantMsg)
		}
	}
}

func TestPopupHintCollapsesBatch(t *testing.T) {
	t.Parallel()
	gate := &gateStub{running: true}
	s, out := newTestService(time.Second, gate)

	base := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	s.OnFired(rem("a", "Stretch!", "#FF6B35", reminder.DisplayNormal), base)
	s.OnFired(rem("b", "Meeting!", "#E74C3C", reminder.DisplayPopup), base.Add(100*time.Millisecond))

	if !s.FlushDue(base.Add(2 * time.Second)) {
		t.Fatal("expected flush")
	}
	b, _ := out.TryPop()
	if b.Kind != dispatch.Popup {
		t.Fatalf("Kind = %s, want popup", b.Kind)
	}
	if len(b.Items) != 1 {
		t.Fatalf("popup batch has %d items, want 1 collapsed item", len(b.Items))
	}
	if want := "Stretch!" + PopupSeparator + "Meeting!"; b.Items[0].Message != want {
		t.Fatalf("collapsed message = %q, want %q", b.Items[0].Message, want)
	}
	// First entry's color wins for the collapsed item.
	if b.Items[0].Color != "#FF6B35" {
		t.Fatalf("collapsed color = %q, want first entry's", b.Items[0].Color)
	}
}

func TestPausedCollapsesMultiBatch(t *testing.T) {
	t.Parallel()
	gate := &gateStub{running: true, paused: true}
	s, out := newTestService(time.Second, gate)

	base := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	s.OnFired(rem("a", "Stretch!", "#FF6B35", reminder.DisplayNormal), base)
	s.OnFired(rem("b", "Water!", "#4ECDC4", reminder.DisplayNormal), base.Add(100*time.Millisecond))

	if !s.FlushDue(base.Add(2 * time.Second)) {
		t.Fatal("expected flush")
	}
	b, _ := out.TryPop()
	if b.Kind != dispatch.Popup {
		t.Fatalf("Kind = %s, want popup while paused", b.Kind)
	}
}

func TestPausedSingleKeepsSingleTag(t *testing.T) {
	t.Parallel()
	gate := &gateStub{running: true, paused: true}
	s, out := newTestService(time.Second, gate)

	base := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	s.OnFired(rem("a", "Stretch!", "#FF6B35", reminder.DisplayNormal), base)
	if !s.FlushDue(base.Add(2 * time.Second)) {
		t.Fatal("expected flush")
	}
	// The popup routing for paused singles is the consumer's decision; the
	// tag stays single so the hint and color survive untouched.
	b, _ := out.TryPop()
	if b.Kind != dispatch.Single {
		t.Fatalf("Kind = %s, want single", b.Kind)
	}
}

func TestNotRunningIgnoresFires(t *testing.T) {
	t.Parallel()
	gate := &gateStub{running: false}
	s, out := newTestService(time.Second, gate)

	base := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	s.OnFired(rem("a", "Stretch!", "", reminder.DisplayNormal), base)
	if s.Pending() != 0 {
		t.Fatalf("pending = %d, want 0 when stopped", s.Pending())
	}
	if s.FlushDue(base.Add(time.Hour)) {
		t.Fatal("flushed with nothing pending")
	}
	if out.Len() != 0 {
		t.Fatal("dispatch queue not empty")
	}
}

func TestStopBetweenAppendAndFlushDropsBatch(t *testing.T) {
	t.Parallel()
	gate := &gateStub{running: true}
	s, out := newTestService(time.Second, gate)

	base := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	s.OnFired(rem("a", "Stretch!", "", reminder.DisplayNormal), base)

	gate.running = false
	if s.FlushDue(base.Add(2 * time.Second)) {
		t.Fatal("FlushDue reported a flush for a dropped batch")
	}
	if out.Len() != 0 {
		t.Fatal("dropped batch reached the dispatch queue")
	}
	if s.Pending() != 0 {
		t.Fatal("dropped batch still pending")
	}
}

func TestDiscardClearsPending(t *testing.T) {
	t.Parallel()
	gate := &gateStub{running: true}
	s, out := newTestService(time.Second, gate)

	base := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	s.OnFired(rem("a", "Stretch!", "", reminder.DisplayNormal), base)
	s.OnFired(rem("b", "Water!", "", reminder.DisplayNormal), base)

	s.Discard()
	if s.Pending() != 0 {
		t.Fatalf("pending = %d after Discard", s.Pending())
	}
	if s.FlushDue(base.Add(time.Hour)) {
		t.Fatal("flush after Discard")
	}
	if out.Len() != 0 {
		t.Fatal("dispatch queue not empty after Discard")
	}
}

func TestFlushAtMostOncePerQuietPeriod(t *testing.T) {
	t.Parallel()
	gate := &gateStub{running: true}
	s, out := newTestService(time.Second, gate)

	base := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	s.OnFired(rem("a", "Stretch!", "", reminder.DisplayNormal), base)

	flushes := 0
	for i := 0; i < 10; i++ {
		if s.FlushDue(base.Add(2*time.Second + time.Duration(i)*100*time.Millisecond)) {
			flushes++
		}
	}
	if flushes != 1 {
		t.Fatalf("flushes = %d, want 1", flushes)
	}
	if out.Len() != 1 {
		t.Fatalf("queue length = %d, want 1", out.Len())
	}
}
