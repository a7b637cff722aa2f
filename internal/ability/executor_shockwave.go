package ability

import "github.com/udisondev/abilitysim/internal/model"

// shockwave emits one area pulse centred on the caster. Radius grows with the
// caster's scale.
func shockwave(spec EffectSpec, snap Snapshot, in Inputs) []Event {
	scale := snap.Scale
	if scale <= 0 {
		scale = 1
	}
	return []Event{Shockwave{
		Origin:    snap.Location.Pos,
		Dir:       lookDir(snap, in),
		Owner:     snap.EntityID,
		Radius:    spec.Radius * scale,
		Magnitude: spec.Magnitude,
		Alignment: model.Owned(snap.UID),
	}}
}
