package scenario

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/udisondev/abilitysim/internal/model"
	"github.com/udisondev/abilitysim/internal/sim"
	"github.com/udisondev/abilitysim/internal/world"
)

// Script plays the steps of a scenario against a tick manager.
type Script struct {
	sc  *Scenario
	ids map[uint64]uint32
	// next is the index of the first step not yet applied.
	next int
}

// Seed adds the scenario entities to w. Entities whose UID is already in
// the world are reused.
func Seed(sc *Scenario, w *world.World) (*Script, error) {
	ids := make(map[uint64]uint32, len(sc.Entities))
	for _, e := range sc.Entities {
		if id, ok := w.EntityByUID(e.UID); ok {
			ids[e.UID] = id
			continue
		}
		scale := e.Scale
		if scale == 0 {
			scale = 1
		}
		obj, err := w.AddEntity(e.UID, e.Name, model.NewLocation(e.Pos.Vec3(), e.Facing.Vec3()), scale)
		if err != nil {
			return nil, fmt.Errorf("seeding entity %d: %w", e.UID, err)
		}
		ids[e.UID] = obj.ObjectID()
	}
	return &Script{sc: sc, ids: ids}, nil
}

// EntityID returns the world id of the scripted entity uid.
func (s *Script) EntityID(uid uint64) (uint32, bool) {
	id, ok := s.ids[uid]
	return id, ok
}

// Apply runs every step scheduled for tick. Steps for earlier ticks that
// were never applied run first. Busy entities and unknown abilities are
// logged and skipped so a live server keeps running.
func (s *Script) Apply(m *sim.TickManager, tick uint64) {
	for s.next < len(s.sc.Steps) && s.sc.Steps[s.next].Tick <= tick {
		st := s.sc.Steps[s.next]
		s.next++

		id := s.ids[st.UID]
		if st.Input != nil {
			m.Inputs().Set(id, st.Input.Inputs())
		}
		if st.Interrupt {
			m.Interrupt(id)
		}
		if st.Begin != "" {
			if err := m.Begin(id, st.Begin); err != nil {
				level := slog.LevelWarn
				if errors.Is(err, sim.ErrBusy) {
					level = slog.LevelDebug
				}
				slog.Log(context.Background(), level, "scripted ability not started",
					"tick", tick,
					"uid", st.UID,
					"ability", st.Begin,
					"error", err)
			}
		}
	}
}

// Done reports whether all steps were applied.
func (s *Script) Done() bool {
	return s.next >= len(s.sc.Steps)
}
