package model

import "fmt"

// AlignmentKind определяет, кому подчиняется объект.
type AlignmentKind uint8

const (
	AlignmentWild AlignmentKind = iota
	AlignmentEnemy
	AlignmentNpc
	AlignmentTame
	AlignmentOwned
)

// String returns the lowercase name used in configs and the event journal.
func (k AlignmentKind) String() string {
	switch k {
	case AlignmentWild:
		return "wild"
	case AlignmentEnemy:
		return "enemy"
	case AlignmentNpc:
		return "npc"
	case AlignmentTame:
		return "tame"
	case AlignmentOwned:
		return "owned"
	default:
		return fmt.Sprintf("alignment(%d)", uint8(k))
	}
}

// Alignment — тег принадлежности. Owner заполнен только для AlignmentOwned.
type Alignment struct {
	Kind  AlignmentKind
	Owner uint64
}

// Owned returns the alignment of an object owned by the entity with the given UID.
func Owned(uid uint64) Alignment {
	return Alignment{Kind: AlignmentOwned, Owner: uid}
}

// IsOwnedBy reports whether the alignment ties the object to uid.
func (a Alignment) IsOwnedBy(uid uint64) bool {
	return a.Kind == AlignmentOwned && a.Owner == uid
}

func (a Alignment) String() string {
	if a.Kind == AlignmentOwned {
		return fmt.Sprintf("owned(%d)", a.Owner)
	}
	return a.Kind.String()
}
