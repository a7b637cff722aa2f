package model

// ObjectKind — подтип объекта, создаваемого способностью (тотем, вард, маяк).
type ObjectKind string

const (
	ObjectKindTotem  ObjectKind = "totem"
	ObjectKindWard   ObjectKind = "ward"
	ObjectKindBeacon ObjectKind = "beacon"
)

// IsValid reports whether k is one of the known object kinds.
func (k ObjectKind) IsValid() bool {
	switch k {
	case ObjectKindTotem, ObjectKindWard, ObjectKindBeacon:
		return true
	default:
		return false
	}
}

// DropItem — предмет, который выпадает при разрушении созданного объекта.
type DropItem struct {
	ItemID int32
	Count  int64
}

// SpawnedObject — объект, созданный в мире в результате способности.
// Immutable после создания.
type SpawnedObject struct {
	ObjectID  uint32
	Kind      ObjectKind
	Owner     uint32
	Alignment Alignment
	Location  Location
	Scale     float64
	DropItem  *DropItem
	// Tick is the simulation tick that produced the object.
	Tick uint64
}
