package bayes

import (
	"bytes"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func (s *spyStepObserver) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func TestStepLogger_WritesLine(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStepLogger(log.New(&buf, "", 0))

	logger.ObserveStep(StepEvent{Variable: "Alarm", Duration: 1500 * time.Microsecond, Joined: 3, JoinedWidth: 3, JoinedSize: 8, ResultSize: 4})

	want := "bayes_elimination_step variable=Alarm joined=3 width=3 size=8 result=4 duration_ms=1.500"
	if got := strings.TrimSpace(buf.String()); got != want {
		t.Fatalf("unexpected log line %q", got)
	}
}

func TestStepLogger_FromEngine(t *testing.T) {
	var buf bytes.Buffer
	e := NewEngine(WithStepObserver(NewStepLogger(log.New(&buf, "", 0))))

	if _, err := e.Run(loadNetwork(t, "chain.xml"), Query{Variable: "C", Outcome: "T"}); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected one line per eliminated variable, got %q", buf.String())
	}
	if !strings.HasPrefix(lines[0], "bayes_elimination_step variable=B joined=2 width=3 size=8 result=4 ") {
		t.Fatalf("unexpected first line %q", lines[0])
	}
}

func TestAsyncStepObserver_DeliversEventsOnClose(t *testing.T) {
	spy := &spyStepObserver{}
	async := NewAsyncStepObserver(spy, 8)

	async.ObserveStep(StepEvent{Variable: "Alarm", JoinedSize: 8})
	async.ObserveStep(StepEvent{Variable: "Earthquake", JoinedSize: 4})
	async.Close()

	if got := spy.Count(); got != 2 {
		t.Fatalf("expected 2 delivered events, got %d", got)
	}
	if async.Delivered() != 2 {
		t.Fatalf("expected delivered=2, got %d", async.Delivered())
	}
	if spy.events[0].JoinedSize != 8 || spy.events[1].Variable != "Earthquake" {
		t.Fatalf("events changed in transit: %+v", spy.events)
	}
}

func TestAsyncStepObserver_DropsWhenBufferIsFull(t *testing.T) {
	spy := &spyStepObserver{}
	async := NewAsyncStepObserver(spy, 1)

	for i := 0; i < 1000; i++ {
		async.ObserveStep(StepEvent{Variable: "X"})
	}
	async.Close()

	if async.Dropped() == 0 {
		t.Fatalf("expected dropped events > 0")
	}
	if async.Dropped()+async.Delivered() != 1000 {
		t.Fatalf("expected every event dropped or delivered, dropped=%d delivered=%d", async.Dropped(), async.Delivered())
	}
}

func TestAsyncStepObserver_ObserveAfterCloseIsDropped(t *testing.T) {
	spy := &spyStepObserver{}
	async := NewAsyncStepObserver(spy, 4)
	async.Close()
	async.Close()

	async.ObserveStep(StepEvent{Variable: "X"})

	if async.Dropped() != 1 || spy.Count() != 0 {
		t.Fatalf("expected one dropped event and none delivered, dropped=%d delivered=%d", async.Dropped(), spy.Count())
	}
}

func TestAsyncStepObserver_CloseDuringConcurrentObserveDoesNotPanic(t *testing.T) {
	spy := &spyStepObserver{}
	async := NewAsyncStepObserver(spy, 32)

	const workers = 8
	const perWorker = 200
	var wg sync.WaitGroup
	var panics atomic.Int32

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if recover() != nil {
					panics.Add(1)
				}
			}()
			for j := 0; j < perWorker; j++ {
				async.ObserveStep(StepEvent{Variable: "X"})
			}
		}()
	}

	time.Sleep(1 * time.Millisecond)
	async.Close()
	wg.Wait()

	if panics.Load() != 0 {
		t.Fatalf("expected no panics, got %d", panics.Load())
	}
}

func TestMultiStepObserver_FansOut(t *testing.T) {
	a, b := &spyStepObserver{}, &spyStepObserver{}
	multi := MultiStepObserver{a, nil, b}

	multi.ObserveStep(StepEvent{Variable: "Alarm"})

	if a.Count() != 1 || b.Count() != 1 {
		t.Fatalf("expected both observers called once, got %d and %d", a.Count(), b.Count())
	}
}
