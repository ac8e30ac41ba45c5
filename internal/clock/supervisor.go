package clock

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/peladaclub/rachao/internal/metrics"
)

// WorkerFactory creates the isolated ticking source for a match. The
// default factory spawns a Worker goroutine; tests inject failing or stub
// factories.
type WorkerFactory func() (Ticker, error)

// Supervisor wraps a ticking worker with stall detection. It tracks the
// timestamp of the last delivered tick and, when the worker goes quiet for
// longer than the stall threshold, runs a local fallback ticker that keeps
// publishing the countdown until the worker recovers or the match ends.
// If the worker cannot be created at all the supervisor degrades to the
// fallback permanently; that is a logged degradation, not a fatal error.
type Supervisor struct {
	mu      sync.Mutex
	factory WorkerFactory
	metrics metrics.Metrics
	events  chan Event

	tickInterval  time.Duration
	watchdogEvery time.Duration
	stallAfter    time.Duration

	worker       Ticker
	duration     int
	remaining    int
	lastTick     time.Time
	running      bool
	paused       bool
	stopped      bool
	degraded     bool
	fallbackStop chan struct{}
	watchdogStop chan struct{}
}

// Option configures a Supervisor.
type Option func(*Supervisor)

// WithTickInterval overrides the one-second tick for tests.
func WithTickInterval(d time.Duration) Option {
	return func(s *Supervisor) { s.tickInterval = d }
}

// WithWatchdog overrides the watchdog poll interval and stall threshold.
func WithWatchdog(every, stallAfter time.Duration) Option {
	return func(s *Supervisor) {
		s.watchdogEvery = every
		s.stallAfter = stallAfter
	}
}

// WithFactory overrides how the ticking worker is created.
func WithFactory(f WorkerFactory) Option {
	return func(s *Supervisor) { s.factory = f }
}

// NewSupervisor creates a match clock supervisor.
func NewSupervisor(m metrics.Metrics, opts ...Option) *Supervisor {
	s := &Supervisor{
		metrics:       m,
		events:        make(chan Event, 32),
		tickInterval:  time.Second,
		watchdogEvery: 1500 * time.Millisecond,
		stallAfter:    2 * time.Second,
	}
	s.factory = func() (Ticker, error) {
		return NewWorker(WithInterval(s.tickInterval)), nil
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Events returns the stream of tick/done events seen by the caller,
// regardless of whether the worker or the fallback produced them.
func (s *Supervisor) Events() <-chan Event { return s.events }

// Remaining returns the seconds left on the countdown.
func (s *Supervisor) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remaining
}

// Duration returns the configured countdown length in seconds.
func (s *Supervisor) Duration() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.duration
}

// Degraded reports whether the supervisor runs on the fallback permanently.
func (s *Supervisor) Degraded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.degraded
}

// Start begins a countdown, replacing any previous one.
func (s *Supervisor) Start(seconds int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopFallbackLocked()
	s.stopWatchdogLocked()
	if s.worker != nil {
		s.worker.Stop()
		s.worker = nil
	}

	s.stopped = false
	s.duration = seconds
	s.remaining = seconds
	s.paused = false
	s.running = seconds > 0
	s.lastTick = time.Now()
	if !s.running {
		return
	}

	if !s.degraded {
		w, err := s.factory()
		if err != nil {
			log.Error("Match clock worker could not be created, degrading to fallback timer", "error", err)
			s.degraded = true
		} else {
			s.worker = w
			w.Start(seconds)
			go s.pump(w)
			stop := make(chan struct{})
			s.watchdogStop = stop
			go s.watchdog(stop)
			return
		}
	}
	s.startFallbackLocked()
}

// Pause suspends ticking on whichever source is active.
func (s *Supervisor) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running || s.paused {
		return
	}
	s.paused = true
	if s.worker != nil {
		s.worker.Pause()
	}
}

// Resume restarts ticking after a pause.
func (s *Supervisor) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running || !s.paused {
		return
	}
	s.paused = false
	s.lastTick = time.Now()
	if s.worker != nil {
		s.worker.Resume()
	}
}

// AddSeconds extends the running countdown.
func (s *Supervisor) AddSeconds(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.remaining += n
	if s.worker != nil {
		s.worker.AddSeconds(n)
	}
}

// Stop zeroes the remaining time and tears down the worker, the watchdog
// and any fallback. Idempotent.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	s.running = false
	s.remaining = 0
	s.stopFallbackLocked()
	s.stopWatchdogLocked()
	if s.worker != nil {
		s.worker.Stop()
		s.worker = nil
	}
}

// pump relays worker events to the caller and keeps the stall bookkeeping
// current. If a worker tick arrives while the fallback runs, the worker has
// recovered and the fallback is retired.
func (s *Supervisor) pump(w Ticker) {
	for e := range w.Events() {
		s.mu.Lock()
		if s.stopped || s.worker != w {
			s.mu.Unlock()
			return
		}
		s.lastTick = time.Now()
		if s.fallbackStop != nil {
			log.Info("Match clock worker recovered, stopping fallback timer")
			s.stopFallbackLocked()
		}
		s.remaining = e.Remaining
		if e.Type == EventDone {
			s.running = false
			s.stopWatchdogLocked()
		}
		s.mu.Unlock()
		s.emit(e)
	}
}

// watchdog polls tick delivery while the clock is running and unpaused.
func (s *Supervisor) watchdog(stop chan struct{}) {
	ticker := time.NewTicker(s.watchdogEvery)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.mu.Lock()
			if s.stopped || !s.running {
				s.mu.Unlock()
				return
			}
			if s.paused || s.fallbackStop != nil {
				s.mu.Unlock()
				continue
			}
			if time.Since(s.lastTick) > s.stallAfter {
				log.Warn("Match clock stalled, starting fallback timer", "since_last_tick", time.Since(s.lastTick))
				s.metrics.IncClockStalls()
				s.startFallbackLocked()
			}
			s.mu.Unlock()
		}
	}
}

func (s *Supervisor) startFallbackLocked() {
	if s.fallbackStop != nil {
		return
	}
	stop := make(chan struct{})
	s.fallbackStop = stop
	s.metrics.IncClockFallbacks()
	go s.runFallback(stop)
}

func (s *Supervisor) stopFallbackLocked() {
	if s.fallbackStop != nil {
		close(s.fallbackStop)
		s.fallbackStop = nil
	}
}

func (s *Supervisor) stopWatchdogLocked() {
	if s.watchdogStop != nil {
		close(s.watchdogStop)
		s.watchdogStop = nil
	}
}

// runFallback is the local single-goroutine interval that decrements and
// republishes ticks while the worker is unavailable.
func (s *Supervisor) runFallback(stop chan struct{}) {
	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.mu.Lock()
			if s.fallbackStop != stop || s.stopped || !s.running {
				s.mu.Unlock()
				return
			}
			if s.paused {
				s.mu.Unlock()
				continue
			}
			s.remaining--
			if s.remaining <= 0 {
				s.remaining = 0
				s.running = false
				s.fallbackStop = nil
				s.stopWatchdogLocked()
				s.mu.Unlock()
				s.emit(Event{Type: EventDone, Remaining: 0})
				return
			}
			rem := s.remaining
			s.mu.Unlock()
			s.emit(Event{Type: EventTick, Remaining: rem})
		}
	}
}

func (s *Supervisor) emit(e Event) {
	select {
	case s.events <- e:
	default:
		log.Warn("Dropping clock event, consumer too slow", "type", e.Type, "remaining", e.Remaining)
	}
}
