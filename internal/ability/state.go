package ability

import (
	"fmt"
	"time"
)

// State is the per-entity ability instance. It is a value: Advance never
// mutates its argument and returns the next State in the Update.
type State struct {
	AbilityID string
	Phase     Phase
	Holdable  bool

	PrepareDuration time.Duration
	PrepareTimer    time.Duration
	RecoverDuration time.Duration

	// Exhausted flips to true on the execution tick and never back.
	Exhausted bool

	MoveFactor float64
	Effect     EffectSpec
}

// NewState creates a fresh instance of def in the Preparing phase.
// The effect spec is copied so later catalog reloads do not leak into it.
func NewState(def Definition) State {
	return State{
		AbilityID:       def.ID,
		Phase:           PhasePreparing,
		Holdable:        def.Holdable,
		PrepareDuration: def.Prepare,
		RecoverDuration: def.Recover,
		MoveFactor:      def.MoveFactor,
		Effect:          def.Effect.clone(),
	}
}

// IsDone reports whether the instance finished and the entity is idle again.
func (s State) IsDone() bool {
	return s.Phase == PhaseDone
}

// preparing evaluates the Preparing condition for the given inputs.
func (s State) preparing(in Inputs) bool {
	if s.Exhausted {
		return false
	}
	if s.Holdable && in.HoldAbility {
		return true
	}
	return s.PrepareTimer < s.PrepareDuration
}

// Validate rejects states that cannot be produced by Advance, e.g. ones
// loaded from storage after a schema change.
func (s State) Validate() error {
	if !s.Phase.IsValid() {
		return fmt.Errorf("%w: phase %d", ErrInvalidState, s.Phase)
	}
	if s.PrepareDuration < 0 || s.PrepareTimer < 0 || s.RecoverDuration < 0 {
		return fmt.Errorf("%w: negative duration", ErrInvalidState)
	}
	if s.MoveFactor < 0 || s.MoveFactor > 1 {
		return fmt.Errorf("%w: move factor %v", ErrInvalidState, s.MoveFactor)
	}
	switch s.Phase {
	case PhasePreparing:
		if s.Exhausted {
			return fmt.Errorf("%w: preparing but exhausted", ErrInvalidState)
		}
	case PhaseExecuting, PhaseRecovering:
		if !s.Exhausted {
			return fmt.Errorf("%w: %s but not exhausted", ErrInvalidState, s.Phase)
		}
	case PhaseDone:
		if !s.Exhausted || s.RecoverDuration != 0 {
			return fmt.Errorf("%w: done with exhausted=%t recover=%s", ErrInvalidState, s.Exhausted, s.RecoverDuration)
		}
	}
	if err := validateEffect(s.Effect); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidState, err)
	}
	return nil
}
