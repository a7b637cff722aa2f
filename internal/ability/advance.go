package ability

import "time"

// Advance moves one ability instance forward by dt.
//
// Phases are evaluated in priority order:
//
//	Preparing  !Exhausted && (Holdable && HoldAbility || PrepareTimer < PrepareDuration)
//	Executing  first tick the Preparing condition is false while !Exhausted
//	Recovering Exhausted && RecoverDuration != 0
//	Done       Exhausted && RecoverDuration == 0
//
// The Preparing condition is checked again after the timer advance, so the
// tick on which the timer reaches PrepareDuration (with the hold released) is
// the execution tick. Preparing and Executing carry locomotion scaled by
// MoveFactor; Recovering and Done return without it. Events are produced only
// on the execution tick.
//
// Advance is deterministic and has no side effects. Negative dt counts as zero.
func Advance(s State, snap Snapshot, in Inputs, dt time.Duration) Update {
	if dt < 0 {
		dt = 0
	}

	if s.Phase == PhaseDone {
		return Update{State: s}
	}

	if !s.Exhausted {
		update := Update{Locomotion: locomotion(in, s.MoveFactor)}
		next := s

		if next.preparing(in) {
			next.PrepareTimer = saturatingAdd(next.PrepareTimer, dt)
			if next.preparing(in) {
				next.Phase = PhasePreparing
				update.State = next
				return update
			}
		}

		next.Phase = PhaseExecuting
		next.Exhausted = true
		update.State = next
		update.Events = execute(next.Effect, snap, in)
		return update
	}

	next := s
	if s.RecoverDuration != 0 {
		next.Phase = PhaseRecovering
		next.RecoverDuration = SaturatingSub(s.RecoverDuration, dt)
		return Update{State: next}
	}

	next.Phase = PhaseDone
	return Update{State: next}
}
