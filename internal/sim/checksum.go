package sim

import (
	"encoding/binary"
	"encoding/hex"
	"hash"
	"math"

	"golang.org/x/crypto/blake2b"

	"github.com/udisondev/abilitysim/internal/ability"
	"github.com/udisondev/abilitysim/internal/model"
)

// Checksum is a BLAKE2b-256 digest of one tick's outputs. Two observers
// running the same inputs in lockstep must produce equal checksums.
type Checksum [blake2b.Size256]byte

func (c Checksum) String() string {
	return hex.EncodeToString(c[:])
}

// checksumWriter encodes values in a fixed little-endian layout.
type checksumWriter struct {
	h   hash.Hash
	buf [8]byte
}

func newChecksumWriter() *checksumWriter {
	h, err := blake2b.New256(nil)
	if err != nil {
		// only fails for keys longer than 64 bytes
		panic(err)
	}
	return &checksumWriter{h: h}
}

func (w *checksumWriter) u64(v uint64) {
	binary.LittleEndian.PutUint64(w.buf[:], v)
	w.h.Write(w.buf[:])
}

func (w *checksumWriter) u32(v uint32) { w.u64(uint64(v)) }

func (w *checksumWriter) f64(v float64) { w.u64(math.Float64bits(v)) }

func (w *checksumWriter) flag(v bool) {
	if v {
		w.u64(1)
		return
	}
	w.u64(0)
}

func (w *checksumWriter) str(s string) {
	w.u64(uint64(len(s)))
	w.h.Write([]byte(s))
}

func (w *checksumWriter) vec(v model.Vec3) {
	w.f64(v.X)
	w.f64(v.Y)
	w.f64(v.Z)
}

func (w *checksumWriter) state(s ability.State) {
	w.str(s.AbilityID)
	w.u64(uint64(s.Phase))
	w.flag(s.Holdable)
	w.u64(uint64(s.PrepareDuration))
	w.u64(uint64(s.PrepareTimer))
	w.u64(uint64(s.RecoverDuration))
	w.flag(s.Exhausted)
	w.f64(s.MoveFactor)
}

func (w *checksumWriter) event(e ability.Event) {
	w.u64(uint64(e.Kind()))
	switch ev := e.(type) {
	case ability.SpawnObject:
		w.vec(ev.Pos)
		w.vec(ev.Dir)
		w.u32(ev.Owner)
		w.f64(ev.Scale)
		w.str(string(ev.ObjectKind))
		w.u64(uint64(ev.Alignment.Kind))
		w.u64(ev.Alignment.Owner)
		if ev.DropItem != nil {
			w.flag(true)
			w.u64(uint64(ev.DropItem.ItemID))
			w.u64(uint64(ev.DropItem.Count))
		} else {
			w.flag(false)
		}
	case ability.Shockwave:
		w.vec(ev.Origin)
		w.vec(ev.Dir)
		w.u32(ev.Owner)
		w.f64(ev.Radius)
		w.f64(ev.Magnitude)
		w.u64(uint64(ev.Alignment.Kind))
		w.u64(ev.Alignment.Owner)
	default:
		w.u32(e.OwnerID())
	}
}

func (w *checksumWriter) sum() Checksum {
	var c Checksum
	copy(c[:], w.h.Sum(nil))
	return c
}

// computeChecksum digests the tick number, every advanced entity in
// ascending id order and the dispatched events in queue order.
func computeChecksum(tick uint64, dt int64, advanced []advanced, events []ability.Event) Checksum {
	w := newChecksumWriter()
	w.u64(tick)
	w.u64(uint64(dt))
	w.u64(uint64(len(advanced)))
	for _, a := range advanced {
		w.u32(a.entityID)
		w.state(a.update.State)
		w.vec(a.update.Locomotion.Move)
		w.flag(a.update.Locomotion.Jump)
	}
	w.u64(uint64(len(events)))
	for _, e := range events {
		w.event(e)
	}
	return w.sum()
}
