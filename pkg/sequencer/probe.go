package sequencer

import (
	"math"

	"github.com/itohio/gostand/pkg/cancel"
)

// ProbeOutcome is the result of the ESC auto-detect probe.
type ProbeOutcome int

const (
	// ServoPresent means the throttle ramp produced a measurable force
	// change: an ESC is driving a load.
	ServoPresent ProbeOutcome = iota
	// ServoAbsent means the ramp produced no measurable force change.
	ServoAbsent
	// ProbeSkipped means the operator interrupted the probe. Treated the
	// same as absent for control purposes.
	ProbeSkipped
)

// probePosition is the throttle angle the probe ramps to.
const probePosition = 90

// Probe ramps the throttle briefly and compares the force delta against
// the configured threshold to decide whether an ESC is attached. Whatever
// happens, the actuator is back at exactly 0 when Probe returns. The probe
// cannot overlap sampling; the sequencer calls it before the running loop
// starts.
func (s *Sequencer) Probe() ProbeOutcome {
	// A press from a previous operation must not skip the probe.
	s.tok.Consume()

	s.disp.WriteTop("ESC detect")
	s.disp.WriteBottom("Press to skip")
	if res := s.mon.Wait(s.tok, s.cfg.Timing.ProbeSkipWindow, false); res != cancel.Completed {
		return s.probeDone(ProbeSkipped)
	}

	baseline, err := s.reader.Read()
	if err != nil {
		s.verbosef("probe baseline read failed: %v", err)
		return s.probeDone(ProbeSkipped)
	}

	if res := s.act.RampTo(s.tok, s.mon, probePosition, s.cfg.Timing.ProbeStepInterval); res != cancel.Completed {
		return s.probeDone(ProbeSkipped)
	}
	if res := s.mon.Wait(s.tok, s.cfg.Timing.ProbeHold, false); res != cancel.Completed {
		return s.probeDone(ProbeSkipped)
	}

	loaded, err := s.reader.Read()
	if err != nil {
		s.verbosef("probe loaded read failed: %v", err)
		return s.probeDone(ProbeSkipped)
	}

	if res := s.act.RampTo(s.tok, s.mon, 0, s.cfg.Timing.ProbeStepInterval); res != cancel.Completed {
		return s.probeDone(ProbeSkipped)
	}

	delta := math.Abs(loaded - baseline)
	if delta > s.cfg.MinTestForce {
		return s.probeDone(ServoPresent)
	}
	return s.probeDone(ServoAbsent)
}

// probeDone reconciles the actuator to exactly 0 and announces the outcome.
func (s *Sequencer) probeDone(out ProbeOutcome) ProbeOutcome {
	if err := s.act.Move(0); err != nil {
		s.verbosef("probe servo zero failed: %v", err)
	}

	switch out {
	case ServoPresent:
		s.disp.WriteTop("ESC detected")
		s.disp.WriteBottom("Auto throttle")
	case ServoAbsent:
		s.disp.WriteTop("No ESC found")
		s.disp.WriteBottom("Manual mode")
	case ProbeSkipped:
		s.disp.WriteTop("Detect skipped")
		s.disp.WriteBottom("Manual mode")
	}
	return out
}
