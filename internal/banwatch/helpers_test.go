package banwatch

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

type fakeClock struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*fakeTicker
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) NewTicker(d time.Duration) Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTicker{clock: c, c: make(chan time.Time, 1), period: d, next: c.now.Add(d)}
	c.tickers = append(c.tickers, t)
	return t
}

// Advance moves time forward and fires every ticker that came due. Like
// time.Ticker, a tick is dropped when the previous one was not received.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	for _, t := range c.tickers {
		if t.stopped {
			continue
		}
		for !t.next.After(c.now) {
			select {
			case t.c <- c.now:
			default:
			}
			t.next = t.next.Add(t.period)
		}
	}
}

func (c *fakeClock) activeTickers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.tickers {
		if !t.stopped {
			n++
		}
	}
	return n
}

type fakeTicker struct {
	clock   *fakeClock
	c       chan time.Time
	period  time.Duration
	next    time.Time
	stopped bool
}

func (t *fakeTicker) C() <-chan time.Time { return t.c }

func (t *fakeTicker) Reset(d time.Duration) {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	t.period = d
	t.next = t.clock.now.Add(d)
	t.stopped = false
}

func (t *fakeTicker) Stop() {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	t.stopped = true
}

// eventLog records session, navigation and observer calls in order
type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (l *eventLog) add(e string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

func (l *eventLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.events...)
}

func (l *eventLog) count(e string) int {
	n := 0
	for _, got := range l.snapshot() {
		if got == e {
			n++
		}
	}
	return n
}

func (l *eventLog) index(e string) int {
	for i, got := range l.snapshot() {
		if got == e {
			return i
		}
	}
	return -1
}

type logSession struct{ log *eventLog }

func (s logSession) SignOut() { s.log.add("signout") }

type logNavigator struct{ log *eventLog }

func (n logNavigator) Navigate(route string) { n.log.add("navigate:" + route) }

type logObserver struct{ log *eventLog }

func (o logObserver) OnStateChange(s Snapshot) { o.log.add(s.State.String()) }

func quietLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func staticChecker(res Result, err error) CheckFunc {
	return func(ctx context.Context) (Result, error) { return res, err }
}

type harness struct {
	t     *testing.T
	clock *fakeClock
	log   *eventLog
	p     *Poller
}

func newHarness(t *testing.T, checker Checker, tweak func(*Options)) *harness {
	t.Helper()
	h := &harness{t: t, clock: newFakeClock(), log: &eventLog{}}
	opts := Options{
		Checker:   checker,
		Session:   logSession{h.log},
		Navigator: logNavigator{h.log},
		Observer:  logObserver{h.log},
		Clock:     h.clock,
		Logger:    quietLogger(),
	}
	if tweak != nil {
		tweak(&opts)
	}
	p, err := New(opts)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	h.p = p
	t.Cleanup(p.Stop)
	return h
}

func (h *harness) start() {
	h.t.Helper()
	if err := h.p.Start(context.Background()); err != nil {
		h.t.Fatalf("Start() failed: %v", err)
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
