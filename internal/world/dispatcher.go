package world

import (
	"log/slog"
	"sync/atomic"

	"github.com/udisondev/abilitysim/internal/ability"
	"github.com/udisondev/abilitysim/internal/model"
)

// Dispatcher applies ability events to the world in queue order.
// Rejected events (capacity, unknown kinds) are logged and counted; they are
// never reported back to the ability state machine.
type Dispatcher struct {
	world *World

	// onSpawn is called for every object that made it into the world.
	onSpawn func(obj *model.SpawnedObject)

	applied  atomic.Int64
	rejected atomic.Int64
}

// NewDispatcher creates a dispatcher bound to w. onSpawn may be nil.
func NewDispatcher(w *World, onSpawn func(obj *model.SpawnedObject)) *Dispatcher {
	return &Dispatcher{world: w, onSpawn: onSpawn}
}

// Dispatch applies events of one tick. Must be called by a single consumer.
func (d *Dispatcher) Dispatch(tick uint64, events []ability.Event) {
	for _, e := range events {
		switch ev := e.(type) {
		case ability.SpawnObject:
			obj, err := d.world.SpawnObject(tick, ev)
			if err != nil {
				d.rejected.Add(1)
				slog.Warn("spawn rejected",
					"tick", tick,
					"owner", ev.Owner,
					"kind", ev.ObjectKind,
					"error", err)
				continue
			}
			d.applied.Add(1)
			slog.Debug("object spawned",
				"tick", tick,
				"objectID", obj.ObjectID,
				"kind", obj.Kind,
				"owner", obj.Owner,
				"alignment", obj.Alignment.String())
			if d.onSpawn != nil {
				d.onSpawn(obj)
			}

		case ability.Shockwave:
			hits := d.world.ApplyShockwave(ev)
			d.applied.Add(1)
			slog.Debug("shockwave applied",
				"tick", tick,
				"owner", ev.Owner,
				"radius", ev.Radius,
				"hits", hits)

		default:
			d.rejected.Add(1)
			slog.Warn("unhandled ability event", "tick", tick, "kind", e.Kind().String(), "owner", e.OwnerID())
		}
	}
}

// Applied returns how many events changed the world.
func (d *Dispatcher) Applied() int64 {
	return d.applied.Load()
}

// Rejected returns how many events were dropped.
func (d *Dispatcher) Rejected() int64 {
	return d.rejected.Load()
}
