package ability

import (
	"fmt"
	"time"

	"github.com/udisondev/abilitysim/internal/model"
)

// DefaultMoveFactor is the movement multiplier applied while an ability is
// being prepared or executed, unless the definition overrides it.
const DefaultMoveFactor = 0.3

// EffectSpec describes what an ability does on its execution tick.
// Only the fields relevant to Type are read by the executor.
type EffectSpec struct {
	Type string

	// spawn_object
	ObjectKind model.ObjectKind
	Scale      float64
	DropItem   *model.DropItem

	// shockwave
	Radius    float64
	Magnitude float64
}

// clone returns a copy that shares no pointers with s.
func (s EffectSpec) clone() EffectSpec {
	if s.DropItem != nil {
		d := *s.DropItem
		s.DropItem = &d
	}
	return s
}

// Definition is a catalog entry for one ability variant.
type Definition struct {
	ID         string
	Name       string
	Holdable   bool
	Prepare    time.Duration
	Recover    time.Duration
	MoveFactor float64
	Effect     EffectSpec
}

// Validate checks durations, move factor and effect type.
func (d Definition) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("ability id is empty")
	}
	if d.Prepare < 0 {
		return fmt.Errorf("ability %s: negative prepare duration %s", d.ID, d.Prepare)
	}
	if d.Recover < 0 {
		return fmt.Errorf("ability %s: negative recover duration %s", d.ID, d.Recover)
	}
	if d.MoveFactor < 0 || d.MoveFactor > 1 {
		return fmt.Errorf("ability %s: move factor %v out of [0,1]", d.ID, d.MoveFactor)
	}
	if err := validateEffect(d.Effect); err != nil {
		return fmt.Errorf("ability %s: %w", d.ID, err)
	}
	return nil
}

func validateEffect(e EffectSpec) error {
	if !HasExecutor(e.Type) {
		return fmt.Errorf("%w: %q", ErrUnknownEffect, e.Type)
	}
	switch e.Type {
	case EffectSpawnObject:
		if !e.ObjectKind.IsValid() {
			return fmt.Errorf("unknown object kind %q", e.ObjectKind)
		}
		if e.Scale < 0 {
			return fmt.Errorf("negative scale %v", e.Scale)
		}
		if e.DropItem != nil && e.DropItem.Count <= 0 {
			return fmt.Errorf("drop item %d: count must be positive", e.DropItem.ItemID)
		}
	case EffectShockwave:
		if e.Radius <= 0 {
			return fmt.Errorf("shockwave radius must be positive, got %v", e.Radius)
		}
	}
	return nil
}
