package clock

import (
	"time"

	"github.com/charmbracelet/log"
)

type cmdKind int

const (
	cmdStart cmdKind = iota
	cmdPause
	cmdResume
	cmdAdd
	cmdStop
)

type command struct {
	kind cmdKind
	arg  int
}

// Worker is the goroutine-backed ticking source. One worker serves one
// countdown: after done or stop the goroutine exits and the event channel
// is closed.
type Worker struct {
	cmds     chan command
	events   chan Event
	interval time.Duration
}

// WorkerOption configures a Worker.
type WorkerOption func(*Worker)

// WithInterval overrides the tick interval. Used by tests; production
// clocks tick once per second.
func WithInterval(d time.Duration) WorkerOption {
	return func(w *Worker) {
		w.interval = d
	}
}

// NewWorker creates a ticking worker and starts its goroutine.
func NewWorker(opts ...WorkerOption) *Worker {
	w := &Worker{
		cmds:     make(chan command, 8),
		events:   make(chan Event, 16),
		interval: time.Second,
	}
	for _, opt := range opts {
		opt(w)
	}
	go w.run()
	return w
}

func (w *Worker) Start(seconds int)  { w.send(command{cmdStart, seconds}) }
func (w *Worker) Pause()             { w.send(command{kind: cmdPause}) }
func (w *Worker) Resume()            { w.send(command{kind: cmdResume}) }
func (w *Worker) AddSeconds(n int)   { w.send(command{cmdAdd, n}) }
func (w *Worker) Stop()              { w.send(command{kind: cmdStop}) }
func (w *Worker) Events() <-chan Event { return w.events }

// send never blocks: once the worker has exited, stale commands are
// dropped instead of wedging the caller.
func (w *Worker) send(cmd command) {
	select {
	case w.cmds <- cmd:
	default:
		log.Debug("Dropping clock command, worker not accepting", "kind", cmd.kind)
	}
}

func (w *Worker) emit(e Event) {
	select {
	case w.events <- e:
	default:
		log.Warn("Dropping clock event, consumer too slow", "type", e.Type, "remaining", e.Remaining)
	}
}

func (w *Worker) run() {
	defer close(w.events)

	var ticker *time.Ticker
	var tickC <-chan time.Time
	remaining := 0
	running := false
	paused := false

	startTicker := func() {
		ticker = time.NewTicker(w.interval)
		tickC = ticker.C
	}
	stopTicker := func() {
		if ticker != nil {
			ticker.Stop()
			ticker = nil
			tickC = nil
		}
	}
	defer stopTicker()

	for {
		select {
		case cmd := <-w.cmds:
			switch cmd.kind {
			case cmdStart:
				stopTicker()
				remaining = cmd.arg
				paused = false
				running = remaining > 0
				if running {
					startTicker()
				}
			case cmdPause:
				if running && !paused {
					paused = true
					stopTicker()
				}
			case cmdResume:
				if running && paused {
					paused = false
					startTicker()
				}
			case cmdAdd:
				if running {
					remaining += cmd.arg
				}
			case cmdStop:
				return
			}
		case <-tickC:
			remaining--
			if remaining <= 0 {
				w.emit(Event{Type: EventDone, Remaining: 0})
				return
			}
			w.emit(Event{Type: EventTick, Remaining: remaining})
		}
	}
}
