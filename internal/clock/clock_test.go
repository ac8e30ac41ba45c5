package clock

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peladaclub/rachao/internal/metrics"
)

// collect reads events until a done event or the timeout elapses.
func collect(t *testing.T, events <-chan Event, timeout time.Duration) []Event {
	t.Helper()
	var out []Event
	deadline := time.After(timeout)
	for {
		select {
		case e := <-events:
			out = append(out, e)
			if e.Type == EventDone {
				return out
			}
		case <-deadline:
			return out
		}
	}
}

func TestWorker_CountsDownToDone(t *testing.T) {
	w := NewWorker(WithInterval(5 * time.Millisecond))
	w.Start(3)

	events := collect(t, w.Events(), 2*time.Second)
	require.NotEmpty(t, events)

	last := events[len(events)-1]
	assert.Equal(t, EventDone, last.Type)
	assert.Equal(t, 0, last.Remaining)

	var remainings []int
	for _, e := range events[:len(events)-1] {
		assert.Equal(t, EventTick, e.Type)
		remainings = append(remainings, e.Remaining)
	}
	assert.Equal(t, []int{2, 1}, remainings)
}

func TestWorker_PauseStopsTicks(t *testing.T) {
	w := NewWorker(WithInterval(10 * time.Millisecond))
	w.Start(1000)

	// Wait for at least one tick so we know the countdown is live.
	select {
	case <-w.Events():
	case <-time.After(2 * time.Second):
		t.Fatal("no tick received before pause")
	}

	w.Pause()
	time.Sleep(50 * time.Millisecond)
	// Drain anything that was in flight when the pause landed.
	for len(w.Events()) > 0 {
		<-w.Events()
	}

	time.Sleep(100 * time.Millisecond)
	assert.Empty(t, w.Events(), "no ticks expected while paused")

	w.Resume()
	select {
	case e := <-w.Events():
		assert.Equal(t, EventTick, e.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("no tick received after resume")
	}
	w.Stop()
}

// stubTicker is a worker that only ticks when the test says so.
type stubTicker struct {
	events chan Event
}

func newStubTicker() *stubTicker {
	return &stubTicker{events: make(chan Event, 16)}
}

func (s *stubTicker) Start(int)            {}
func (s *stubTicker) Pause()               {}
func (s *stubTicker) Resume()              {}
func (s *stubTicker) AddSeconds(int)       {}
func (s *stubTicker) Stop()                {}
func (s *stubTicker) Events() <-chan Event { return s.events }

func TestSupervisor_FallbackOnConstructionFailure(t *testing.T) {
	m := metrics.NewMock()
	s := NewSupervisor(m,
		WithTickInterval(5*time.Millisecond),
		WithFactory(func() (Ticker, error) { return nil, errors.New("no worker context") }),
	)

	s.Start(3)
	assert.True(t, s.Degraded())
	assert.Equal(t, 1, m.ClockFallbacks())

	events := collect(t, s.Events(), 2*time.Second)
	require.NotEmpty(t, events)
	assert.Equal(t, EventDone, events[len(events)-1].Type)
}

func TestSupervisor_WatchdogStartsFallbackOnStall(t *testing.T) {
	m := metrics.NewMock()
	stub := newStubTicker()
	s := NewSupervisor(m,
		WithTickInterval(5*time.Millisecond),
		WithWatchdog(10*time.Millisecond, 20*time.Millisecond),
		WithFactory(func() (Ticker, error) { return stub, nil }),
	)

	// The stub never ticks, so the watchdog must take over.
	s.Start(3)
	events := collect(t, s.Events(), 5*time.Second)
	require.NotEmpty(t, events, "fallback should have produced events")
	assert.Equal(t, EventDone, events[len(events)-1].Type)
	assert.GreaterOrEqual(t, m.ClockStalls(), 1)
	assert.GreaterOrEqual(t, m.ClockFallbacks(), 1)
	assert.False(t, s.Degraded(), "a stall is transient, not a permanent degradation")
}

func TestSupervisor_WorkerTickResyncsRemaining(t *testing.T) {
	m := metrics.NewMock()
	stub := newStubTicker()
	s := NewSupervisor(m,
		WithTickInterval(time.Hour), // fallback must never fire here
		WithWatchdog(time.Hour, time.Hour),
		WithFactory(func() (Ticker, error) { return stub, nil }),
	)

	s.Start(600)
	assert.Equal(t, 600, s.Remaining())
	assert.Equal(t, 600, s.Duration())

	stub.events <- Event{Type: EventTick, Remaining: 599}
	select {
	case e := <-s.Events():
		assert.Equal(t, 599, e.Remaining)
	case <-time.After(2 * time.Second):
		t.Fatal("tick was not relayed")
	}
	assert.Equal(t, 599, s.Remaining())

	s.AddSeconds(30)
	assert.Equal(t, 629, s.Remaining())

	s.Stop()
	assert.Equal(t, 0, s.Remaining())
}

func TestSupervisor_StopIsIdempotent(t *testing.T) {
	m := metrics.NewMock()
	s := NewSupervisor(m, WithTickInterval(5*time.Millisecond))
	s.Start(100)
	s.Stop()
	s.Stop()
	assert.Equal(t, 0, s.Remaining())
}

func TestSupervisor_PauseGatesFallback(t *testing.T) {
	m := metrics.NewMock()
	s := NewSupervisor(m,
		WithTickInterval(10*time.Millisecond),
		WithFactory(func() (Ticker, error) { return nil, errors.New("degraded") }),
	)

	s.Start(1000)
	select {
	case <-s.Events():
	case <-time.After(2 * time.Second):
		t.Fatal("no fallback tick before pause")
	}

	s.Pause()
	time.Sleep(50 * time.Millisecond)
	for len(s.Events()) > 0 {
		<-s.Events()
	}
	time.Sleep(100 * time.Millisecond)
	assert.Empty(t, s.Events(), "fallback must not tick while paused")

	s.Resume()
	select {
	case <-s.Events():
	case <-time.After(2 * time.Second):
		t.Fatal("no fallback tick after resume")
	}
	s.Stop()
}
