package world

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/udisondev/abilitysim/internal/ability"
	"github.com/udisondev/abilitysim/internal/model"
)

var (
	// ErrEntityNotFound is returned when an entity id is not in the world.
	ErrEntityNotFound = errors.New("entity not found")

	// ErrCapacity is returned when the spawned object limit is reached.
	ErrCapacity = errors.New("world object capacity reached")
)

// Options configures kinematics and limits.
type Options struct {
	MaxObjects int // 0 = unlimited
	MoveSpeed  float64
	JumpSpeed  float64
	Gravity    float64
}

// World stores entity kinematics and the objects spawned by abilities.
// It is the snapshot provider and locomotion sink of the tick driver.
//
// Thread-safe: maps are protected by sync.RWMutex, entity kinematics by the
// entity's own lock.
type World struct {
	mu       sync.RWMutex
	entities map[uint32]*model.WorldObject
	objects  map[uint32]*model.SpawnedObject
	byUID    map[uint64]uint32

	opts Options
	ids  *ObjectIDGenerator
}

// New creates an empty world.
func New(opts Options) *World {
	return &World{
		entities: make(map[uint32]*model.WorldObject, 64),
		objects:  make(map[uint32]*model.SpawnedObject, 64),
		byUID:    make(map[uint64]uint32, 64),
		opts:     opts,
		ids:      NewObjectIDGenerator(),
	}
}

// AddEntity creates a new entity and returns it.
// Returns an error if uid is already taken.
func (w *World) AddEntity(uid uint64, name string, loc model.Location, scale float64) (*model.WorldObject, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if existing, ok := w.byUID[uid]; ok {
		return nil, fmt.Errorf("uid %d already used by entity %d", uid, existing)
	}

	obj := model.NewWorldObject(w.ids.NextEntityID(), uid, name, loc, scale)
	w.entities[obj.ObjectID()] = obj
	w.byUID[uid] = obj.ObjectID()

	slog.Debug("entity added", "objectID", obj.ObjectID(), "uid", uid, "name", name)
	return obj, nil
}

// RemoveEntity removes an entity. Objects it spawned stay in the world.
func (w *World) RemoveEntity(objectID uint32) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	obj, ok := w.entities[objectID]
	if !ok {
		return false
	}
	delete(w.entities, objectID)
	delete(w.byUID, obj.UID())
	return true
}

// Entity returns an entity by object id.
func (w *World) Entity(objectID uint32) (*model.WorldObject, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	obj, ok := w.entities[objectID]
	return obj, ok
}

// EntityByUID resolves a stable uid to the local object id.
func (w *World) EntityByUID(uid uint64) (uint32, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	id, ok := w.byUID[uid]
	return id, ok
}

// EntityCount returns the number of entities.
func (w *World) EntityCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.entities)
}

// Snapshot returns the read-only view used by ability.Advance.
func (w *World) Snapshot(objectID uint32) (ability.Snapshot, bool) {
	obj, ok := w.Entity(objectID)
	if !ok {
		return ability.Snapshot{}, false
	}
	loc, vel := obj.Kinematics()
	return ability.Snapshot{
		EntityID: obj.ObjectID(),
		UID:      obj.UID(),
		Location: loc,
		Velocity: vel,
		Scale:    obj.Scale(),
	}, true
}

// ApplyLocomotion integrates one tick of movement for the entity.
// Horizontal velocity follows the requested move; a jump is honored only on
// the ground. Unknown entities are ignored.
func (w *World) ApplyLocomotion(objectID uint32, loco ability.Locomotion, dt time.Duration) {
	obj, ok := w.Entity(objectID)
	if !ok {
		return
	}

	secs := dt.Seconds()
	loc, vel := obj.Kinematics()

	move := loco.Move.Horizontal().Scale(w.opts.MoveSpeed)
	vel.X, vel.Y = move.X, move.Y

	grounded := loc.Pos.Z <= 0
	if loco.Jump && grounded {
		vel.Z = w.opts.JumpSpeed
	} else if !grounded {
		vel.Z -= w.opts.Gravity * secs
	}

	pos := loc.Pos.Add(vel.Scale(secs))
	if pos.Z <= 0 {
		pos.Z = 0
		if vel.Z < 0 {
			vel.Z = 0
		}
	}

	obj.SetKinematics(loc.WithPosition(pos).WithFacing(loco.Move.Horizontal()), vel)
}

// SpawnObject creates a world object from a spawn event.
func (w *World) SpawnObject(tick uint64, ev ability.SpawnObject) (*model.SpawnedObject, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.opts.MaxObjects > 0 && len(w.objects) >= w.opts.MaxObjects {
		return nil, fmt.Errorf("spawning %s for entity %d: %w", ev.ObjectKind, ev.Owner, ErrCapacity)
	}

	obj := &model.SpawnedObject{
		ObjectID:  w.ids.NextObjectID(),
		Kind:      ev.ObjectKind,
		Owner:     ev.Owner,
		Alignment: ev.Alignment,
		Location:  model.NewLocation(ev.Pos, ev.Dir),
		Scale:     ev.Scale,
		DropItem:  ev.DropItem,
		Tick:      tick,
	}
	w.objects[obj.ObjectID] = obj
	return obj, nil
}

// RemoveObject deletes a spawned object.
func (w *World) RemoveObject(objectID uint32) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.objects[objectID]; !ok {
		return false
	}
	delete(w.objects, objectID)
	return true
}

// Objects returns spawned objects sorted by object id.
func (w *World) Objects() []*model.SpawnedObject {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := make([]*model.SpawnedObject, 0, len(w.objects))
	for _, o := range w.objects {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ObjectID < out[j].ObjectID })
	return out
}

// ObjectCount returns the number of spawned objects.
func (w *World) ObjectCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.objects)
}

// ApplyShockwave pushes every entity within the wave radius away from its
// origin, excluding the owner. Returns the number of entities hit.
func (w *World) ApplyShockwave(ev ability.Shockwave) int {
	w.mu.RLock()
	targets := make([]*model.WorldObject, 0, len(w.entities))
	for id, obj := range w.entities {
		if id != ev.Owner {
			targets = append(targets, obj)
		}
	}
	w.mu.RUnlock()

	r2 := ev.Radius * ev.Radius
	hits := 0
	for _, obj := range targets {
		loc, vel := obj.Kinematics()
		offset := loc.Pos.Sub(ev.Origin).Horizontal()
		if offset.LengthSquared() > r2 {
			continue
		}
		dir := offset.Normalized()
		if dir.IsZero() {
			dir = ev.Dir.Horizontal().Normalized()
		}
		obj.SetKinematics(loc, vel.Add(dir.Scale(ev.Magnitude)))
		hits++
	}
	return hits
}
