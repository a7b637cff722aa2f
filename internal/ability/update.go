package ability

import "github.com/udisondev/abilitysim/internal/model"

// Locomotion is the movement request produced for one tick.
type Locomotion struct {
	// Move is the horizontal input direction already scaled by the phase factor.
	Move model.Vec3
	Jump bool
}

// IsZero reports whether the delta requests nothing.
func (l Locomotion) IsZero() bool {
	return l.Move.IsZero() && !l.Jump
}

func locomotion(in Inputs, factor float64) Locomotion {
	return Locomotion{
		Move: in.Move.Horizontal().Scale(factor),
		Jump: in.Jump,
	}
}

// Update is the result of advancing one entity for one tick.
type Update struct {
	State      State
	Locomotion Locomotion
	// Events must be dispatched in slice order.
	Events []Event
}

// Finished reports whether the entity left the ability and returns to idle.
func (u Update) Finished() bool {
	return u.State.IsDone()
}

// Executed reports whether this tick was the execution tick.
func (u Update) Executed() bool {
	return u.State.Phase == PhaseExecuting
}

// CarriesLocomotion reports whether the movement system should consume
// Locomotion this tick. Recovering and Done leave movement untouched.
func (u Update) CarriesLocomotion() bool {
	return u.State.Phase == PhasePreparing || u.State.Phase == PhaseExecuting
}
