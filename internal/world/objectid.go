package world

import "sync/atomic"

// ObjectIDGenerator generates unique object IDs for all world entities.
//
// ID ranges (convention):
//
//	0x00000000 - 0x0FFFFFFF: Reserved (0 = invalid)
//	0x10000000 - 0x2FFFFFFF: Entities that can use abilities
//	0x30000000 - 0x3FFFFFFF: Objects spawned by abilities
//	0x40000000 - 0xFFFFFFFF: Reserved for future use
type ObjectIDGenerator struct {
	nextEntityID atomic.Uint32
	nextObjectID atomic.Uint32
}

const (
	entityIDBase  = 0x10000000
	spawnedIDBase = 0x30000000
)

// NewObjectIDGenerator creates a new ID generator.
func NewObjectIDGenerator() *ObjectIDGenerator {
	gen := &ObjectIDGenerator{}
	gen.nextEntityID.Store(entityIDBase)
	gen.nextObjectID.Store(spawnedIDBase)
	return gen
}

// NextEntityID generates next unique entity ID.
// Thread-safe via atomic increment.
func (g *ObjectIDGenerator) NextEntityID() uint32 {
	return g.nextEntityID.Add(1)
}

// NextObjectID generates next unique spawned object ID.
// Thread-safe via atomic increment.
func (g *ObjectIDGenerator) NextObjectID() uint32 {
	return g.nextObjectID.Add(1)
}

// IsEntityID reports whether id belongs to the entity range.
func IsEntityID(id uint32) bool {
	return id > entityIDBase && id < spawnedIDBase
}

// IsSpawnedObjectID reports whether id belongs to the spawned object range.
func IsSpawnedObjectID(id uint32) bool {
	return id > spawnedIDBase && id < 0x40000000
}
