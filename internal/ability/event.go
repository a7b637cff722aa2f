package ability

import "github.com/udisondev/abilitysim/internal/model"

// EventKind identifies world events emitted by abilities.
type EventKind uint8

const (
	EventSpawnObject EventKind = iota + 1
	EventShockwave
)

func (k EventKind) String() string {
	switch k {
	case EventSpawnObject:
		return "spawn_object"
	case EventShockwave:
		return "shockwave"
	default:
		return "unknown"
	}
}

// Event is a world mutation request. Ownership passes to the queue consumer
// once the event is enqueued.
type Event interface {
	Kind() EventKind
	OwnerID() uint32
}

// SpawnObject asks the world to create a new object (totem, ward, beacon).
type SpawnObject struct {
	Pos        model.Vec3
	Dir        model.Vec3
	Owner      uint32
	Scale      float64
	DropItem   *model.DropItem
	ObjectKind model.ObjectKind
	Alignment  model.Alignment
}

func (SpawnObject) Kind() EventKind { return EventSpawnObject }
func (e SpawnObject) OwnerID() uint32 { return e.Owner }

// Shockwave asks the world to push every entity within Radius of Origin.
type Shockwave struct {
	Origin    model.Vec3
	Dir       model.Vec3
	Owner     uint32
	Radius    float64
	Magnitude float64
	Alignment model.Alignment
}

func (Shockwave) Kind() EventKind { return EventShockwave }
func (e Shockwave) OwnerID() uint32 { return e.Owner }
