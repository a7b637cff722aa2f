package scenario

import (
	"context"
	"fmt"
	"time"

	"github.com/udisondev/abilitysim/internal/model"
	"github.com/udisondev/abilitysim/internal/sim"
	"github.com/udisondev/abilitysim/internal/world"
)

// Result is what a finished run leaves behind.
type Result struct {
	Ticks   []sim.TickResult
	Objects []*model.SpawnedObject
}

// Run plays sc from a fresh world at a fixed step of 1/TickRate. Every tick
// result is passed to onTick (may be nil) before the next tick starts.
// Two runs of the same scenario and catalog produce identical results.
func Run(ctx context.Context, sc *Scenario, catalog sim.Catalog, opts world.Options, onTick func(sim.TickResult)) (*Result, error) {
	w := world.New(opts)
	script, err := Seed(sc, w)
	if err != nil {
		return nil, err
	}

	var m *sim.TickManager
	m = sim.NewTickManager(sim.Config{
		Catalog:    catalog,
		World:      w,
		Dispatcher: world.NewDispatcher(w, nil),
		Workers:    sc.Workers,
		BeforeTick: func(tick uint64) { script.Apply(m, tick) },
	})

	dt := time.Second / time.Duration(sc.TickRate)
	res := &Result{Ticks: make([]sim.TickResult, 0, sc.Ticks)}
	for range sc.Ticks {
		if err := ctx.Err(); err != nil {
			return res, fmt.Errorf("scenario %q interrupted: %w", sc.Name, err)
		}
		tr := m.Tick(dt)
		res.Ticks = append(res.Ticks, tr)
		if onTick != nil {
			onTick(tr)
		}
	}
	res.Objects = w.Objects()
	return res, nil
}
