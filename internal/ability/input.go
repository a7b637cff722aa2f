package ability

import "github.com/udisondev/abilitysim/internal/model"

// Inputs are the player or AI signals sampled for one tick.
type Inputs struct {
	Move        model.Vec3
	Jump        bool
	HoldAbility bool
	// LookDir overrides the entity facing for executed effects when non-zero.
	LookDir model.Vec3
}

// Snapshot is the read-only view of the entity for one tick.
type Snapshot struct {
	EntityID uint32
	UID      uint64
	Location model.Location
	Velocity model.Vec3
	Scale    float64
}

// lookDir picks the direction used by executors.
func lookDir(snap Snapshot, in Inputs) model.Vec3 {
	if !in.LookDir.IsZero() {
		return in.LookDir.Normalized()
	}
	if !snap.Location.Facing.IsZero() {
		return snap.Location.Facing
	}
	return model.DefaultFacing
}
