// Package banwatch re-verifies the ban status of a signed-in client.
//
// A Poller asks the server once when started, then every CheckInterval and
// whenever the host reports it is back in the foreground. When the server
// reports an active ban the poller signs the local session out at once,
// counts down CountdownTicks ticks while the host shows the ban reason, then
// navigates to the landing route and exits.
package banwatch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// Defaults
const (
	CheckInterval    = time.Minute
	MinCheckInterval = time.Minute
	CheckTimeout     = 15 * time.Second
	CountdownTicks   = 10
	CountdownPeriod  = time.Second
	LandingRoute     = "/"
)

// ErrNotStartable is returned by Start on a poller that was already started
// or stopped
var ErrNotStartable = errors.New("banwatch: poller already started or stopped")

// State is the poller state
type State int

const (
	Idle State = iota
	Checking
	Clean
	BanDetected
	Exited
)

func (s State) String() string {
	switch s {
	case Idle:
		return "IDLE"
	case Checking:
		return "CHECKING"
	case Clean:
		return "CLEAN"
	case BanDetected:
		return "BAN_DETECTED"
	case Exited:
		return "EXITED"
	default:
		return "UNKNOWN"
	}
}

// Result is what the server reported for the current session holder
type Result struct {
	Banned      bool
	Reason      *string
	BannedUntil *time.Time
}

// Checker performs the server round-trip
type Checker interface {
	Check(ctx context.Context) (Result, error)
}

// CheckFunc adapts a function to Checker
type CheckFunc func(ctx context.Context) (Result, error)

// Check implements Checker
func (f CheckFunc) Check(ctx context.Context) (Result, error) { return f(ctx) }

// Session is the local authenticated state
type Session interface {
	SignOut()
}

// Navigator performs the forced exit
type Navigator interface {
	Navigate(route string)
}

// Snapshot is the externally visible poller state
type Snapshot struct {
	State     State
	Countdown int
	Ban       *Result
}

// Observer is told about every state change. It is called from the poller
// goroutine and must not block.
type Observer interface {
	OnStateChange(s Snapshot)
}

// Options configures a Poller. Zero durations and counts take the package
// defaults.
type Options struct {
	Checker   Checker
	Session   Session
	Navigator Navigator
	Observer  Observer
	Clock     Clock
	Logger    *logrus.Entry

	CheckInterval    time.Duration
	MinCheckInterval time.Duration
	CheckTimeout     time.Duration
	CountdownTicks   int
	CountdownPeriod  time.Duration
	LandingRoute     string
}

type checkResult struct {
	res Result
	err error
}

// Poller is the ban status state machine of one client
type Poller struct {
	opts Options

	foreground chan struct{}
	stop       chan struct{}
	done       chan struct{}
	results    chan checkResult

	running   atomic.Bool
	startOnce sync.Once
	stopOnce  sync.Once

	mu     sync.RWMutex
	snap   Snapshot
	checks int
}

// New creates a poller. Checker, Session and Navigator are required.
func New(opts Options) (*Poller, error) {
	if opts.Checker == nil || opts.Session == nil || opts.Navigator == nil {
		return nil, errors.New("banwatch: Checker, Session and Navigator are required")
	}
	if opts.Clock == nil {
		opts.Clock = realClock{}
	}
	if opts.Logger == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		opts.Logger = logrus.NewEntry(l)
	}
	opts.Logger = opts.Logger.WithField("component", "banwatch")
	if opts.CheckInterval <= 0 {
		opts.CheckInterval = CheckInterval
	}
	if opts.MinCheckInterval <= 0 {
		opts.MinCheckInterval = MinCheckInterval
	}
	if opts.CheckTimeout <= 0 {
		opts.CheckTimeout = CheckTimeout
	}
	if opts.CountdownTicks <= 0 {
		opts.CountdownTicks = CountdownTicks
	}
	if opts.CountdownPeriod <= 0 {
		opts.CountdownPeriod = CountdownPeriod
	}
	if opts.LandingRoute == "" {
		opts.LandingRoute = LandingRoute
	}

	return &Poller{
		opts:       opts,
		foreground: make(chan struct{}),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
		results:    make(chan checkResult, 1),
	}, nil
}

// Start runs the poller until the ban countdown navigates away, Stop is
// called or ctx is cancelled. The first check starts immediately.
func (p *Poller) Start(ctx context.Context) error {
	started := false
	p.startOnce.Do(func() { started = true })
	if !started {
		return ErrNotStartable
	}
	p.running.Store(true)
	go p.run(ctx)
	return nil
}

// Foreground reports that the host regained visibility. A check starts
// unless one is in flight, one started within MinCheckInterval, or a ban
// was already detected.
func (p *Poller) Foreground() {
	if !p.running.Load() {
		return
	}
	select {
	case p.foreground <- struct{}{}:
	case <-p.done:
	}
}

// Stop tears down every timer and waits for the poller to exit. No
// navigation happens after Stop returns.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() { close(p.stop) })
	p.startOnce.Do(func() { close(p.done) })
	<-p.done
}

// Done is closed once the poller has exited
func (p *Poller) Done() <-chan struct{} {
	return p.done
}

// State returns the current state
func (p *Poller) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.snap.State
}

// Countdown returns the remaining countdown ticks, or 0 outside BanDetected
func (p *Poller) Countdown() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.snap.Countdown
}

// BanInfo returns the detected ban, or nil
func (p *Poller) BanInfo() *Result {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.snap.Ban == nil {
		return nil
	}
	b := *p.snap.Ban
	return &b
}

// Checks returns how many checks have been started
func (p *Poller) Checks() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.checks
}

func (p *Poller) publish(s Snapshot) {
	p.mu.Lock()
	p.snap = s
	p.mu.Unlock()
	if p.opts.Observer != nil {
		p.opts.Observer.OnStateChange(s)
	}
}

func (p *Poller) run(parent context.Context) {
	defer close(p.done)
	defer p.running.Store(false)

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	log := p.opts.Logger
	clock := p.opts.Clock

	recurring := clock.NewTicker(p.opts.CheckInterval)
	recurringC := recurring.C()
	var countdown Ticker
	var countdownC <-chan time.Time
	defer func() {
		recurring.Stop()
		if countdown != nil {
			countdown.Stop()
		}
	}()

	var (
		inFlight  bool
		lastCheck time.Time
		remaining int
		ban       *Result
	)

	startCheck := func() {
		inFlight = true
		lastCheck = clock.Now()
		recurring.Reset(p.opts.CheckInterval)
		p.mu.Lock()
		p.checks++
		p.mu.Unlock()
		p.publish(Snapshot{State: Checking})

		checkCtx, checkCancel := context.WithTimeout(ctx, p.opts.CheckTimeout)
		go func() {
			defer checkCancel()
			res, err := p.opts.Checker.Check(checkCtx)
			select {
			case p.results <- checkResult{res: res, err: err}:
			case <-ctx.Done():
			}
		}()
	}

	exit := func() {
		p.publish(Snapshot{State: Exited, Ban: ban})
	}

	p.publish(Snapshot{State: Idle})
	startCheck()

	for {
		select {
		case <-ctx.Done():
			exit()
			return

		case <-p.stop:
			exit()
			return

		case <-recurringC:
			if inFlight {
				continue
			}
			startCheck()

		case <-p.foreground:
			if inFlight || ban != nil {
				continue
			}
			if clock.Now().Sub(lastCheck) < p.opts.MinCheckInterval {
				log.Debug("Foreground check suppressed by minimum interval")
				continue
			}
			startCheck()

		case r := <-p.results:
			inFlight = false
			if r.err != nil {
				log.WithError(r.err).Debug("Ban status check failed")
				p.publish(Snapshot{State: Idle})
				continue
			}
			if !r.res.Banned {
				p.publish(Snapshot{State: Clean})
				p.publish(Snapshot{State: Idle})
				continue
			}

			res := r.res
			ban = &res
			p.opts.Session.SignOut()

			recurring.Stop()
			recurringC = nil
			remaining = p.opts.CountdownTicks
			countdown = clock.NewTicker(p.opts.CountdownPeriod)
			countdownC = countdown.C()

			log.WithField("countdown", remaining).Info("Ban detected, session signed out")
			p.publish(Snapshot{State: BanDetected, Countdown: remaining, Ban: ban})

		case <-countdownC:
			remaining--
			if remaining > 0 {
				p.publish(Snapshot{State: BanDetected, Countdown: remaining, Ban: ban})
				continue
			}
			countdown.Stop()
			countdownC = nil
			p.publish(Snapshot{State: BanDetected, Countdown: 0, Ban: ban})
			p.opts.Navigator.Navigate(p.opts.LandingRoute)
			exit()
			return
		}
	}
}
