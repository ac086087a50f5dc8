package bayes

import (
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// StepEvent describes one join-and-sum-out step of variable elimination.
type StepEvent struct {
	Variable string
	Duration time.Duration
	// Joined is the number of factors multiplied together before
	// Variable was summed out.
	Joined int
	// JoinedWidth and JoinedSize are the scope length and the entry
	// count of that product, the quantities that make an elimination
	// order cheap or expensive.
	JoinedWidth int
	JoinedSize  int
	ResultSize  int
}

func newStepEvent(variable string, elapsed time.Duration, consumed int, joined, summed *Factor) StepEvent {
	return StepEvent{
		Variable:    variable,
		Duration:    elapsed,
		Joined:      consumed,
		JoinedWidth: len(joined.scope),
		JoinedSize:  len(joined.values),
		ResultSize:  len(summed.values),
	}
}

type StepObserver interface {
	ObserveStep(ev StepEvent)
}

// StepLogger writes one line per elimination step.
type StepLogger struct {
	logger *log.Logger
}

func NewStepLogger(logger *log.Logger) *StepLogger {
	return &StepLogger{logger: logger}
}

func (l *StepLogger) ObserveStep(ev StepEvent) {
	if l == nil || l.logger == nil {
		return
	}
	l.logger.Printf("bayes_elimination_step variable=%s joined=%d width=%d size=%d result=%d duration_ms=%.3f",
		ev.Variable, ev.Joined, ev.JoinedWidth, ev.JoinedSize, ev.ResultSize, float64(ev.Duration.Microseconds())/1000.0)
}

// AsyncStepObserver hands events to next on a single goroutine so the
// engine never waits on a slow sink. Events that do not fit in the
// buffer, or arrive after Close, are dropped and counted.
type AsyncStepObserver struct {
	next      StepObserver
	events    chan StepEvent
	once      sync.Once
	mu        sync.RWMutex
	closed    bool
	done      chan struct{}
	dropped   atomic.Uint64
	delivered atomic.Uint64
}

func NewAsyncStepObserver(next StepObserver, buffer int) *AsyncStepObserver {
	if buffer <= 0 {
		buffer = 1
	}
	o := &AsyncStepObserver{
		next:   next,
		events: make(chan StepEvent, buffer),
		done:   make(chan struct{}),
	}
	go o.forward()
	return o
}

func (o *AsyncStepObserver) forward() {
	defer close(o.done)
	for ev := range o.events {
		if o.next != nil {
			o.next.ObserveStep(ev)
		}
		o.delivered.Add(1)
	}
}

func (o *AsyncStepObserver) ObserveStep(ev StepEvent) {
	if o == nil {
		return
	}
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.closed {
		o.dropped.Add(1)
		return
	}
	select {
	case o.events <- ev:
	default:
		o.dropped.Add(1)
	}
}

func (o *AsyncStepObserver) Dropped() uint64 {
	if o == nil {
		return 0
	}
	return o.dropped.Load()
}

func (o *AsyncStepObserver) Delivered() uint64 {
	if o == nil {
		return 0
	}
	return o.delivered.Load()
}

// Close stops accepting events and blocks until the buffered ones have
// reached next. Calling it again is a no-op.
func (o *AsyncStepObserver) Close() {
	if o == nil {
		return
	}
	o.once.Do(func() {
		o.mu.Lock()
		o.closed = true
		close(o.events)
		o.mu.Unlock()
		<-o.done
	})
}

// MultiStepObserver fans each event out to every observer in order.
type MultiStepObserver []StepObserver

func (m MultiStepObserver) ObserveStep(ev StepEvent) {
	for _, o := range m {
		if o != nil {
			o.ObserveStep(ev)
		}
	}
}
