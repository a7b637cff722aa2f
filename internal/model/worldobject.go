package model

import "sync"

// WorldObject — сущность в мире, которая может использовать способности.
// Хранит кинематику (позиция, направление, скорость), UID и масштаб.
type WorldObject struct {
	objectID uint32
	uid      uint64
	name     string
	location Location
	velocity Vec3
	scale    float64

	mu sync.RWMutex
}

// NewWorldObject создаёт новый объект в игровом мире.
// Non-positive scale is treated as 1.
func NewWorldObject(objectID uint32, uid uint64, name string, loc Location, scale float64) *WorldObject {
	if scale <= 0 {
		scale = 1
	}
	return &WorldObject{
		objectID: objectID,
		uid:      uid,
		name:     name,
		location: loc,
		scale:    scale,
	}
}

// ObjectID возвращает локальный ID объекта (immutable после создания).
func (w *WorldObject) ObjectID() uint32 {
	return w.objectID
}

// UID возвращает стабильный идентификатор, общий для всех наблюдателей.
func (w *WorldObject) UID() uint64 {
	return w.uid
}

// Name возвращает имя объекта.
func (w *WorldObject) Name() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.name
}

// Scale возвращает масштаб объекта.
func (w *WorldObject) Scale() float64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.scale
}

// Location возвращает копию координат объекта (value type).
func (w *WorldObject) Location() Location {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.location
}

// SetLocation устанавливает новые координаты объекта.
func (w *WorldObject) SetLocation(loc Location) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.location = loc
}

// Velocity возвращает текущую скорость.
func (w *WorldObject) Velocity() Vec3 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.velocity
}

// SetVelocity устанавливает скорость.
func (w *WorldObject) SetVelocity(v Vec3) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.velocity = v
}

// Kinematics returns location and velocity under a single lock.
func (w *WorldObject) Kinematics() (Location, Vec3) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.location, w.velocity
}

// SetKinematics atomically replaces location and velocity.
func (w *WorldObject) SetKinematics(loc Location, vel Vec3) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.location = loc
	w.velocity = vel
}
