package scheduler

import (
	"container/heap"
	"context"
	"runtime/debug"
	"sort"
	"sync"
	"time"

	"splashd/internal/eventbus"
	"splashd/internal/reminder"
	logx "splashd/pkg/logx"
)

// Sink receives fired reminders. The call happens on the timing goroutine and
// must not block (the aggregator only appends to a pending batch).
type Sink interface {
	OnFired(r *reminder.Reminder, at time.Time)
}

// Fired is the bus payload published for every delivered fire.
type Fired struct {
	ID      string    `json:"id"`
	Message string    `json:"message"`
	Kind    string    `json:"kind"`
	At      time.Time `json:"at"`
}

// Entry is a read-only view of one pending fire, for status and tests.
type Entry struct {
	ID      string
	Message string
	FireAt  time.Time
	Seq     uint64
}

type Config struct {
	// PollCeiling caps every sleep so stop requests and an empty heap are
	// re-examined at least this often. Defaults to 1s.
	PollCeiling time.Duration
}

const defaultPollCeiling = time.Second

// Service runs the timing loop: a min-heap of pending fires drained by one
// background goroutine. Due reminders are forwarded to the sink and
// immediately re-inserted at their next occurrence.
//
// The heap and its seq counter are only ever mutated by the timing goroutine;
// the mutex exists so Snapshot() can copy state from other goroutines.
type Service struct {
	log  logx.Logger
	bus  eventbus.Bus
	sink Sink
	poll time.Duration
	now  func() time.Time

	mu   sync.Mutex
	heap entryHeap
	seq  uint64

	runMu    sync.Mutex
	stopCh   chan struct{}
	loopDone chan struct{}
}

func New(cfg Config, sink Sink, log logx.Logger, bus eventbus.Bus) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	poll := cfg.PollCeiling
	if poll <= 0 {
		poll = defaultPollCeiling
	}
	return &Service{
		log:  log,
		bus:  bus,
		sink: sink,
		poll: poll,
		now:  time.Now,
	}
}

// Start seeds the heap with every reminder's next occurrence and launches the
// timing goroutine. Calling Start while already running is a logged no-op.
func (s *Service) Start(ctx context.Context, rems []*reminder.Reminder) {
	// If a previous Stop timed out with its loop still draining, wait for it
	// so two loops never share the heap.
	for {
		s.runMu.Lock()
		if s.stopCh != nil {
			s.runMu.Unlock()
			s.log.Debug("start requested while already running")
			return
		}
		done := s.loopDone
		if done == nil {
			break
		}
		s.runMu.Unlock()
		select {
		case <-done:
			s.runMu.Lock()
			if s.loopDone == done {
				s.loopDone = nil
			}
			s.runMu.Unlock()
		case <-ctx.Done():
			return
		}
	}
	defer s.runMu.Unlock()

	stopCh := make(chan struct{})
	loopDone := make(chan struct{})
	s.stopCh = stopCh
	s.loopDone = loopDone

	go s.run(ctx, rems, stopCh, loopDone)
}

// Stop signals the timing goroutine and waits for it, bounded by ctx. On
// timeout it logs a warning and returns; the loop keeps winding down in the
// background and clears the heap on exit. Stop on a stopped service is a no-op.
func (s *Service) Stop(ctx context.Context) {
	s.runMu.Lock()
	stopCh := s.stopCh
	done := s.loopDone
	s.stopCh = nil
	s.runMu.Unlock()

	if stopCh == nil {
		return
	}
	start := time.Now()
	close(stopCh)

	select {
	case <-done:
		s.runMu.Lock()
		if s.loopDone == done {
			s.loopDone = nil
		}
		s.runMu.Unlock()
		s.log.Info("timing loop stopped", logx.Duration("took", time.Since(start)))
	case <-ctx.Done():
		s.log.Warn("timing loop did not stop in time; continuing shutdown",
			logx.Duration("waited", time.Since(start)))
	}
}

// Running reports whether the timing goroutine is active.
func (s *Service) Running() bool {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	return s.stopCh != nil
}

// Snapshot copies the pending entries, ordered by fire time.
func (s *Service) Snapshot() []Entry {
	s.mu.Lock()
	out := make([]Entry, 0, len(s.heap))
	for _, e := range s.heap {
		out = append(out, Entry{ID: e.rem.ID, Message: e.rem.Message, FireAt: e.fireAt, Seq: e.seq})
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].FireAt.Equal(out[j].FireAt) {
			return out[i].Seq < out[j].Seq
		}
		return out[i].FireAt.Before(out[j].FireAt)
	})
	return out
}

func (s *Service) run(ctx context.Context, rems []*reminder.Reminder, stopCh, loopDone chan struct{}) {
	defer close(loopDone)
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("panic in timing loop", logx.Any("panic", r), logx.Stack(string(debug.Stack())))
		}
		// The heap only describes the finished run; leftover entries must not
		// leak into the next Start.
		s.mu.Lock()
		s.heap = nil
		s.seq = 0
		s.mu.Unlock()
	}()

	s.seed(rems)

	for {
		select {
		case <-stopCh:
			return
		case <-ctx.Done():
			return
		default:
		}

		s.mu.Lock()
		top := s.heap.peek()
		if top == nil {
			s.mu.Unlock()
			if !s.sleep(ctx, stopCh, s.poll) {
				return
			}
			continue
		}

		now := s.now()
		if top.fireAt.After(now) {
			d := top.fireAt.Sub(now)
			if d > s.poll {
				d = s.poll
			}
			s.mu.Unlock()
			if !s.sleep(ctx, stopCh, d) {
				return
			}
			continue
		}

		it := heap.Pop(&s.heap).(*entry)
		s.mu.Unlock()

		s.deliver(it.rem, now, stopCh)

		// Re-insert at the next occurrence, measured from fire processing
		// time. Every reminder keeps exactly one entry in the heap.
		next := it.rem.NextAfter(s.now())
		s.mu.Lock()
		s.seq++
		heap.Push(&s.heap, &entry{fireAt: next, seq: s.seq, rem: it.rem})
		s.mu.Unlock()
		// No sleep here: all due entries drain before the next wait.
	}
}

func (s *Service) seed(rems []*reminder.Reminder) {
	now := s.now()
	s.mu.Lock()
	s.heap = make(entryHeap, 0, len(rems))
	s.seq = 0
	for _, r := range rems {
		if r == nil {
			continue
		}
		s.seq++
		s.heap = append(s.heap, &entry{fireAt: r.NextAfter(now), seq: s.seq, rem: r})
	}
	heap.Init(&s.heap)
	count := len(s.heap)
	s.mu.Unlock()

	s.log.Info("timing loop started", logx.Int("reminders", count))
	for _, e := range s.Snapshot() {
		s.log.Debug("scheduled", logx.String("id", e.ID), logx.String("message", e.Message), logx.Time("next", e.FireAt))
	}
}

func (s *Service) deliver(r *reminder.Reminder, at time.Time, stopCh chan struct{}) {
	// A stop racing this fire means the batch would be doomed anyway;
	// suppress the forward instead of scheduling dead work.
	select {
	case <-stopCh:
		s.log.Debug("fire suppressed during stop", logx.String("id", r.ID))
		return
	default:
	}

	s.log.Info("reminder fired",
		logx.String("id", r.ID),
		logx.String("message", r.Message),
		logx.String("schedule", r.Schedule()))

	if s.sink != nil {
		s.sink.OnFired(r, at)
	}
	if s.bus != nil {
		s.bus.Publish(eventbus.Event{Type: eventbus.TypeReminderFired, Data: Fired{
			ID:      r.ID,
			Message: r.Message,
			Kind:    r.Kind.String(),
			At:      at,
		}})
	}
}

// sleep waits for d, the stop signal, or ctx, whichever comes first.
// It returns false when the loop should exit.
func (s *Service) sleep(ctx context.Context, stopCh chan struct{}, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-stopCh:
		return false
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
