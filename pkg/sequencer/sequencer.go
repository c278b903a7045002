// Package sequencer runs the thrust test cycle: an idle prompt, an
// optional ESC auto-detect probe, the sampling/logging loop, and session
// teardown. It owns the log file and the actuator for the duration of one
// session; everything hardware-shaped comes in through small interfaces.
package sequencer

import (
	"context"
	"log"
	"time"

	"github.com/itohio/gostand/pkg/actuator"
	"github.com/itohio/gostand/pkg/cancel"
	"github.com/itohio/gostand/pkg/catalog"
	"github.com/itohio/gostand/pkg/clock"
	"github.com/itohio/gostand/pkg/display"
)

// State identifies the sequencer's position in the test cycle.
type State int

const (
	// Idle means no session is active; the start prompt is showing.
	Idle State = iota
	// Starting covers log allocation and the auto-detect probe.
	Starting
	// Running is the sampling loop.
	Running
	// Ending covers log closure and session teardown.
	Ending
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Starting:
		return "starting"
	case Running:
		return "running"
	case Ending:
		return "ending"
	default:
		return "unknown"
	}
}

// ForceReader supplies one calibrated force measurement per call.
type ForceReader interface {
	Read() (float64, error)
}

// Monitor is the operator input primitive; satisfied by input.Monitor.
type Monitor interface {
	Wait(tok *cancel.Token, max time.Duration, requireFull bool) cancel.Result
	AwaitPress(tok *cancel.Token)
}

// Store abstracts session log storage.
type Store interface {
	Available() bool
	Create(name string, forcedSync bool) (RowWriter, error)
}

// RowWriter appends rows to one session log.
type RowWriter interface {
	WriteHeader() error
	Append(elapsed time.Duration, pos int, force float64) error
	Close() error
}

// Timing groups the cadences of the test cycle. Tests shrink them.
type Timing struct {
	SamplePeriod      time.Duration // Sampling loop period
	ProbeSkipWindow   time.Duration // Operator window to skip auto-detect
	ProbeStepInterval time.Duration // Ramp cadence during the probe
	ProbeHold         time.Duration // Dwell at the probe position
	PromptInterval    time.Duration // Idle prompt redraw period
	EndDwell          time.Duration // Completion notice dwell
}

// DefaultTiming returns the production cadences.
func DefaultTiming() Timing {
	return Timing{
		SamplePeriod:      100 * time.Millisecond,
		ProbeSkipWindow:   2 * time.Second,
		ProbeStepInterval: 20 * time.Millisecond,
		ProbeHold:         time.Second,
		PromptInterval:    2 * time.Second,
		EndDwell:          display.ScrollDwell,
	}
}

// Config carries the test parameters, resolved from the application
// configuration at startup.
type Config struct {
	AutoDetect   bool          // Probe for an ESC before the first test
	MinTestForce float64       // Force delta confirming the ESC drives a load
	Hold         time.Duration // Dwell at full throttle in auto mode
	ForcedSync   bool          // A failed log write aborts the test
	Verbose      bool
	Timing       Timing
}

// Deps are the sequencer's collaborators. Store may be nil when no storage
// is attached at all.
type Deps struct {
	Reader   ForceReader
	Actuator *actuator.Actuator
	Monitor  Monitor
	Display  display.Display
	Store    Store
	Catalog  *catalog.Catalog
	Clock    clock.Clock
}

// Sequencer drives the test cycle. Not safe for concurrent use: the whole
// cycle runs on one control goroutine.
type Sequencer struct {
	cfg Config

	reader ForceReader
	act    *actuator.Actuator
	mon    Monitor
	disp   display.Display
	store  Store
	cat    *catalog.Catalog
	clk    clock.Clock

	tok   *cancel.Token
	state State

	probed       bool // Auto-detect ran (it runs at most once per power cycle)
	servoPresent bool
}

// New creates a sequencer. Zero Timing fields fall back to defaults.
func New(cfg Config, deps Deps) *Sequencer {
	def := DefaultTiming()
	if cfg.Timing.SamplePeriod <= 0 {
		cfg.Timing.SamplePeriod = def.SamplePeriod
	}
	if cfg.Timing.ProbeSkipWindow <= 0 {
		cfg.Timing.ProbeSkipWindow = def.ProbeSkipWindow
	}
	if cfg.Timing.ProbeStepInterval <= 0 {
		cfg.Timing.ProbeStepInterval = def.ProbeStepInterval
	}
	if cfg.Timing.ProbeHold <= 0 {
		cfg.Timing.ProbeHold = def.ProbeHold
	}
	if cfg.Timing.PromptInterval <= 0 {
		cfg.Timing.PromptInterval = def.PromptInterval
	}
	if cfg.Timing.EndDwell <= 0 {
		cfg.Timing.EndDwell = def.EndDwell
	}

	clk := deps.Clock
	if clk == nil {
		clk = clock.Real{}
	}

	return &Sequencer{
		cfg:    cfg,
		reader: deps.Reader,
		act:    deps.Actuator,
		mon:    deps.Monitor,
		disp:   deps.Display,
		store:  deps.Store,
		cat:    deps.Catalog,
		clk:    clk,
		tok:    cancel.NewToken(),
	}
}

// State returns the current machine state. Only meaningful from the
// control goroutine.
func (s *Sequencer) State() State {
	return s.state
}

// Run loops test sessions until the context is cancelled: wait for a start
// press, run one session, repeat.
func (s *Sequencer) Run(ctx context.Context) {
	for ctx.Err() == nil {
		if !s.waitForStart(ctx) {
			return
		}
		s.RunSession()
	}
}

// waitForStart shows the idle prompt until the button starts a session or
// the context ends.
func (s *Sequencer) waitForStart(ctx context.Context) bool {
	s.state = Idle
	for {
		if ctx.Err() != nil {
			return false
		}
		s.disp.WriteTop("Thrust stand")
		s.disp.WriteBottom("Press to start")
		if s.mon.Wait(s.tok, s.cfg.Timing.PromptInterval, false) == cancel.Stopped {
			// A press that races shutdown must not start a session.
			return ctx.Err() == nil
		}
	}
}

// RunSession executes one full session: Starting, Running, Ending.
func (s *Sequencer) RunSession() {
	s.state = Starting
	sess := &session{}

	s.openLog(sess)

	if s.cfg.AutoDetect && !s.probed {
		s.servoPresent = s.Probe() == ServoPresent
		s.probed = true
	}

	if s.servoPresent {
		sess.step = throttleStep
		sess.maxPos = actuator.MaxPosition + holdMargin(s.cfg.Hold, s.cfg.Timing.SamplePeriod)
	}

	sess.start = s.clk.Now()
	s.state = Running

	for {
		if res := s.tick(sess); res != cancel.Completed {
			break
		}
	}

	s.endSession(sess)
}

// openLog allocates a file name and opens the session log, degrading to an
// unlogged run on any failure.
func (s *Sequencer) openLog(sess *session) {
	if s.store == nil || !s.store.Available() {
		s.disp.WriteTop("No storage")
		s.disp.WriteBottom("Running unlogged")
		s.verbosef("storage unavailable, session will not be logged")
		return
	}

	name := s.cat.Next(s.confirmWrap)
	w, err := s.store.Create(name, s.cfg.ForcedSync)
	if err != nil {
		s.disp.WriteTop("Log open failed")
		s.disp.WriteBottom("Running unlogged")
		s.verbosef("log open failed: %v", err)
		return
	}
	if err := w.WriteHeader(); err != nil {
		s.disp.WriteTop("Log open failed")
		s.disp.WriteBottom("Running unlogged")
		s.verbosef("header write failed: %v", err)
		w.Close()
		return
	}

	sess.name = name
	sess.log = w
}

// confirmWrap blocks until the operator acknowledges reuse of the file
// number space.
func (s *Sequencer) confirmWrap() {
	s.disp.WriteTop("File limit 999")
	s.disp.WriteBottom("Press to restart")
	s.mon.AwaitPress(s.tok)
}

// endSession closes the log, announces the result, and resets for idle.
func (s *Sequencer) endSession(sess *session) {
	s.state = Ending

	if sess.log != nil {
		if err := sess.log.Close(); err != nil {
			s.verbosef("log close failed: %v", err)
		}
		sess.log = nil
	}

	// Throttle rests at zero between sessions regardless of how the test
	// ended.
	if err := s.act.Move(0); err != nil {
		s.verbosef("servo zero failed: %v", err)
	}

	notice := "Test complete\nMax " + FormatForce(sess.maxForce)
	if sess.name != "" {
		notice += "\nSaved as\n" + sess.name
	} else {
		notice += "\nNot logged"
	}
	display.Scroll(s.disp, s.mon, s.tok, notice, s.cfg.Timing.EndDwell)

	s.state = Idle
}

func (s *Sequencer) verbosef(format string, args ...any) {
	if s.cfg.Verbose {
		log.Printf(format, args...)
	}
}
