package notifier

import (
	"strings"
	"sync"
	"time"

	"splashd/internal/dispatch"
	"splashd/internal/eventbus"
	"splashd/internal/reminder"
	logx "splashd/pkg/logx"
)

// PopupSeparator joins the collapsed messages of a popup batch.
const PopupSeparator = " | "

const defaultQuietWindow = 2 * time.Second

// Service is the debounce aggregator between the scheduler and the dispatch
// queue. OnFired is called from the timing goroutine; FlushDue and Discard
// from the consumer loop. The mutex only ever guards the pending slice and
// its deadline; tagging and enqueueing happen outside it.
type Service struct {
	log   logx.Logger
	bus   eventbus.Bus
	gate  Gate
	out   *dispatch.Queue[dispatch.Batch]
	quiet time.Duration

	mu       sync.Mutex
	pending  []dispatch.Item
	deadline time.Time
}

func New(cfg Config, gate Gate, out *dispatch.Queue[dispatch.Batch], log logx.Logger, bus eventbus.Bus) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	quiet := cfg.QuietWindow
	if quiet <= 0 {
		quiet = defaultQuietWindow
	}
	return &Service{
		log:   log,
		bus:   bus,
		gate:  gate,
		out:   out,
		quiet: quiet,
	}
}

// OnFired appends a fired reminder to the pending batch and restarts the
// quiet window. Fires arriving while the controller is not running are
// dropped here, before any batch work is scheduled for them.
func (s *Service) OnFired(r *reminder.Reminder, at time.Time) {
	if s.gate != nil && !s.gate.Running() {
		s.log.Debug("fire ignored; reminders stopped", logx.String("id", r.ID))
		return
	}

	s.mu.Lock()
	s.pending = append(s.pending, dispatch.Item{Message: r.Message, Color: r.Color, Hint: r.Hint})
	s.deadline = at.Add(s.quiet)
	n := len(s.pending)
	s.mu.Unlock()

	s.log.Debug("fire batched", logx.String("id", r.ID), logx.Int("pending", n))
}

// FlushDue hands the pending batch to the dispatch queue once the quiet
// deadline has passed. It reports whether a batch was flushed. An empty
// pending batch is a no-op.
func (s *Service) FlushDue(now time.Time) bool {
	s.mu.Lock()
	if len(s.pending) == 0 || now.Before(s.deadline) {
		s.mu.Unlock()
		return false
	}
	items := s.pending
	s.pending = nil
	s.deadline = time.Time{}
	s.mu.Unlock()

	// A stop that raced the deadline wins: the batch is discarded, not shown.
	if s.gate != nil && !s.gate.Running() {
		s.log.Debug("batch dropped; reminders stopped", logx.Int("count", len(items)))
		s.publish(eventbus.TypeBatchDropped, "", len(items), now)
		return false
	}

	paused := s.gate != nil && s.gate.Paused()
	b := buildBatch(items, paused, now)
	s.out.Push(b)

	s.log.Debug("batch flushed", logx.String("kind", string(b.Kind)), logx.Int("count", len(items)))
	s.publish(eventbus.TypeBatchFlushed, string(b.Kind), len(items), now)
	return true
}

// Discard drops the pending batch and clears the quiet deadline. The
// controller calls this during its stop sequence.
func (s *Service) Discard() {
	s.mu.Lock()
	n := len(s.pending)
	s.pending = nil
	s.deadline = time.Time{}
	s.mu.Unlock()

	if n > 0 {
		s.log.Debug("pending batch discarded", logx.Int("count", n))
	}
}

// Pending reports the current batch size.
func (s *Service) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

func (s *Service) publish(typ, kind string, count int, at time.Time) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(eventbus.Event{Type: typ, Data: BatchEvent{Kind: kind, Count: count, At: at}})
}

// buildBatch tags the flushed items. One item stays Single (the presentation
// boundary decides its form). Several items combine, unless any of them hints
// popup or the controller is paused: then the whole batch collapses into one
// popup item, joined messages and the first item's color.
func buildBatch(items []dispatch.Item, paused bool, now time.Time) dispatch.Batch {
	if len(items) == 1 {
		return dispatch.Batch{Kind: dispatch.Single, Items: items, FlushedAt: now}
	}

	popup := paused
	if !popup {
		for _, it := range items {
			if it.Hint == reminder.DisplayPopup {
				popup = true
				break
			}
		}
	}
	if !popup {
		return dispatch.Batch{Kind: dispatch.Combined, Items: items, FlushedAt: now}
	}

	msgs := make([]string, len(items))
	for i, it := range items {
		msgs[i] = it.Message
	}
	return dispatch.Batch{
		Kind:      dispatch.Popup,
		FlushedAt: now,
		Items: []dispatch.Item{{
			Message: strings.Join(msgs, PopupSeparator),
			Color:   items[0].Color,
			Hint:    reminder.DisplayPopup,
		}},
	}
}
