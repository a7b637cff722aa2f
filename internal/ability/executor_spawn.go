package ability

import "github.com/udisondev/abilitysim/internal/model"

// spawnObject places a single object at the caster's feet, facing where the
// caster looks. Scale comes from the effect, not from the caster.
func spawnObject(spec EffectSpec, snap Snapshot, in Inputs) []Event {
	scale := spec.Scale
	if scale == 0 {
		scale = 1
	}
	var drop *model.DropItem
	if spec.DropItem != nil {
		d := *spec.DropItem
		drop = &d
	}
	return []Event{SpawnObject{
		Pos:        snap.Location.Pos,
		Dir:        lookDir(snap, in),
		Owner:      snap.EntityID,
		Scale:      scale,
		DropItem:   drop,
		ObjectKind: spec.ObjectKind,
		Alignment:  model.Owned(snap.UID),
	}}
}
