package sequencer

import (
	"github.com/itohio/gostand/pkg/actuator"
	"github.com/itohio/gostand/pkg/cancel"
)

// tick is one iteration of the running loop: pace, measure, display, log,
// advance. Anything but Completed ends the session.
func (s *Sequencer) tick(sess *session) cancel.Result {
	// Pace to the sample period, minus whatever the previous iteration
	// already spent measuring. A slow iteration yields a zero wait, not a
	// shortened next period.
	elapsed := s.clk.Since(sess.start)
	remaining := s.cfg.Timing.SamplePeriod - (elapsed - sess.lastOffset)
	if remaining < 0 {
		remaining = 0
	}
	if res := s.mon.Wait(s.tok, remaining, false); res != cancel.Completed {
		return res
	}
	sess.lastOffset = s.clk.Since(sess.start)

	force, err := s.reader.Read()
	if err != nil {
		s.disp.WriteTop("Sensor error")
		s.verbosef("force read failed: %v", err)
		s.safeStop(sess)
		s.tok.Trip(cancel.CauseError)
		return s.tok.Outcome()
	}
	if force > sess.maxForce {
		sess.maxForce = force
	}

	s.disp.WriteTop("F " + FormatForce(force))
	s.disp.WriteBottom("Max " + FormatForce(sess.maxForce))

	if sess.log != nil {
		err := sess.log.Append(sess.lastOffset, actuator.Clamp(s.act.Position()), force)
		if err != nil {
			if s.cfg.ForcedSync {
				// The operator asked for every row on the medium; a lost
				// row means the test result cannot be trusted.
				s.disp.WriteTop("Write failed")
				s.disp.WriteBottom("Test aborted")
				s.verbosef("forced-sync write failed: %v", err)
				s.safeStop(sess)
				s.tok.Trip(cancel.CauseError)
				return s.tok.Outcome()
			}
			s.verbosef("log write failed: %v", err)
		}
	}

	if sess.step != 0 {
		next := s.act.Position() + sess.step
		if err := s.act.Move(next); err != nil {
			s.disp.WriteTop("Servo error")
			s.verbosef("servo command failed: %v", err)
			s.safeStop(sess)
			s.tok.Trip(cancel.CauseError)
			return s.tok.Outcome()
		}
		switch {
		case sess.step > 0 && next >= sess.maxPos:
			sess.step = -throttleStep
		case sess.step < 0 && next <= 0:
			// Ramp-down finished: the auto test ends itself.
			sess.step = 0
			if err := s.act.Move(0); err != nil {
				s.verbosef("servo zero failed: %v", err)
			}
			return cancel.Stopped
		}
	}

	return cancel.Completed
}

// safeStop zeroes the throttle if the session was driving it.
func (s *Sequencer) safeStop(sess *session) {
	if sess.step == 0 {
		return
	}
	sess.step = 0
	if err := s.act.Move(0); err != nil {
		s.verbosef("servo zero failed: %v", err)
	}
}
