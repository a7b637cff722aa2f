package sim

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/abilitysim/internal/ability"
	"github.com/udisondev/abilitysim/internal/model"
	"github.com/udisondev/abilitysim/internal/world"
)

var testDefs = map[string]ability.Definition{
	"spawn_totem": {
		ID:         "spawn_totem",
		Holdable:   true,
		Prepare:    time.Second,
		Recover:    500 * time.Millisecond,
		MoveFactor: ability.DefaultMoveFactor,
		Effect:     ability.EffectSpec{Type: ability.EffectSpawnObject, ObjectKind: model.ObjectKindTotem, Scale: 1},
	},
	"instant_ward": {
		ID:         "instant_ward",
		MoveFactor: ability.DefaultMoveFactor,
		Effect:     ability.EffectSpec{Type: ability.EffectSpawnObject, ObjectKind: model.ObjectKindWard, Scale: 0.5},
	},
}

func testCatalog() Catalog {
	return CatalogFunc(func(id string) (ability.Definition, bool) {
		def, ok := testDefs[id]
		return def, ok
	})
}

type recordingDispatcher struct {
	mu     sync.Mutex
	ticks  []uint64
	events []ability.Event
}

func (d *recordingDispatcher) Dispatch(tick uint64, events []ability.Event) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ticks = append(d.ticks, tick)
	d.events = append(d.events, events...)
}

type fixture struct {
	world      *world.World
	dispatcher *recordingDispatcher
	manager    *TickManager
	entities   []uint32
}

func newFixture(t *testing.T, workers, entities int) *fixture {
	t.Helper()
	w := world.New(world.Options{MoveSpeed: 10, JumpSpeed: 5, Gravity: 10})
	d := &recordingDispatcher{}
	f := &fixture{
		world:      w,
		dispatcher: d,
		manager: NewTickManager(Config{
			Catalog:    testCatalog(),
			World:      w,
			Dispatcher: d,
			Workers:    workers,
		}),
	}
	for i := range entities {
		obj, err := w.AddEntity(uint64(1000+i), "Shaman", model.NewLocation(model.NewVec3(float64(i), 0, 0), model.Vec3{}), 1)
		require.NoError(t, err)
		f.entities = append(f.entities, obj.ObjectID())
	}
	return f
}

func TestTickManager_Scenario(t *testing.T) {
	f := newFixture(t, 1, 1)
	id := f.entities[0]
	require.NoError(t, f.manager.Begin(id, "spawn_totem"))
	assert.Equal(t, 1, f.manager.Count())

	half := ability.Seconds(0.5)

	res := f.manager.Tick(half)
	assert.Empty(t, res.Events)
	st, ok := f.manager.State(id)
	require.True(t, ok)
	assert.Equal(t, ability.PhasePreparing, st.Phase)

	res = f.manager.Tick(half)
	require.Len(t, res.Events, 1)
	assert.Equal(t, 1, f.world.ObjectCount(), "spawn reached the world through the dispatcher")

	res = f.manager.Tick(half)
	assert.Empty(t, res.Events)
	st, _ = f.manager.State(id)
	assert.Equal(t, ability.PhaseRecovering, st.Phase)

	res = f.manager.Tick(ability.Seconds(0.1))
	assert.Equal(t, []uint32{id}, res.Finished)
	_, ok = f.manager.State(id)
	assert.False(t, ok, "finished entity returns to idle")
	assert.Equal(t, 0, f.manager.Count())
	assert.Equal(t, uint64(4), f.manager.CurrentTick())
	assert.Equal(t, []uint64{2}, f.dispatcher.ticks)
}

func TestTickManager_BeginErrors(t *testing.T) {
	f := newFixture(t, 1, 1)
	id := f.entities[0]

	assert.True(t, errors.Is(f.manager.Begin(id, "nope"), ErrUnknownAbility))
	assert.ErrorIs(t, f.manager.Begin(999, "spawn_totem"), ErrEntityNotFound)

	require.NoError(t, f.manager.Begin(id, "spawn_totem"))
	assert.ErrorIs(t, f.manager.Begin(id, "instant_ward"), ErrBusy)

	assert.True(t, f.manager.Interrupt(id))
	assert.False(t, f.manager.Interrupt(id))
	assert.NoError(t, f.manager.Begin(id, "instant_ward"))
}

func TestTickManager_InterruptSkipsExecution(t *testing.T) {
	f := newFixture(t, 1, 1)
	id := f.entities[0]
	require.NoError(t, f.manager.Begin(id, "spawn_totem"))

	f.manager.Tick(ability.Seconds(0.5))
	require.True(t, f.manager.Interrupt(id))

	for range 5 {
		res := f.manager.Tick(ability.Seconds(0.5))
		assert.Empty(t, res.Events)
		assert.Zero(t, res.Advanced)
	}
	assert.Equal(t, 0, f.world.ObjectCount())
}

func TestTickManager_EventOrderIsLIFOPerTick(t *testing.T) {
	f := newFixture(t, 1, 3)
	for _, id := range f.entities {
		require.NoError(t, f.manager.Begin(id, "instant_ward"))
	}

	res := f.manager.Tick(time.Millisecond)
	require.Len(t, res.Events, 3)
	assert.Equal(t, f.entities[2], res.Events[0].OwnerID())
	assert.Equal(t, f.entities[1], res.Events[1].OwnerID())
	assert.Equal(t, f.entities[0], res.Events[2].OwnerID())
	assert.Equal(t, res.Events, f.dispatcher.events)
}

func TestTickManager_HoldInputFromBuffer(t *testing.T) {
	f := newFixture(t, 1, 1)
	id := f.entities[0]
	require.NoError(t, f.manager.Begin(id, "spawn_totem"))

	f.manager.SetInputs(id, ability.Inputs{HoldAbility: true, Move: model.NewVec3(1, 0, 0)})
	for range 10 {
		res := f.manager.Tick(ability.Seconds(0.5))
		require.Empty(t, res.Events)
	}

	obj, _ := f.world.Entity(id)
	assert.InDelta(t, 0.3*10*0.5*10, obj.Location().Pos.X, 1e-9, "preparing moves at the reduced factor")

	f.manager.Inputs().Set(id, ability.Inputs{})
	res := f.manager.Tick(ability.Seconds(0.5))
	assert.Len(t, res.Events, 1)
}

func TestTickManager_RecoveringLeavesMovementAlone(t *testing.T) {
	f := newFixture(t, 1, 1)
	id := f.entities[0]
	obj, _ := f.world.Entity(id)

	def := testDefs["instant_ward"]
	def.ID = "slow_ward"
	def.Recover = time.Second
	testDefs["slow_ward"] = def
	t.Cleanup(func() { delete(testDefs, "slow_ward") })

	require.NoError(t, f.manager.Begin(id, "slow_ward"))
	f.manager.Inputs().Set(id, ability.Inputs{Move: model.NewVec3(1, 0, 0)})

	f.manager.Tick(100 * time.Millisecond) // executes, moves
	afterExec := obj.Location().Pos

	f.manager.Tick(100 * time.Millisecond) // recovering
	st, _ := f.manager.State(id)
	require.Equal(t, ability.PhaseRecovering, st.Phase)
	assert.Equal(t, afterExec, obj.Location().Pos)
}

func TestTickManager_EntityRemovedDropsAbility(t *testing.T) {
	f := newFixture(t, 1, 1)
	id := f.entities[0]
	require.NoError(t, f.manager.Begin(id, "spawn_totem"))
	f.world.RemoveEntity(id)

	res := f.manager.Tick(time.Second)
	assert.Zero(t, res.Advanced)
	assert.Equal(t, 0, f.manager.Count())
}

func TestTickManager_ParallelMatchesSequential(t *testing.T) {
	run := func(workers int) []TickResult {
		f := newFixture(t, workers, 16)
		for i, id := range f.entities {
			name := "spawn_totem"
			if i%3 == 0 {
				name = "instant_ward"
			}
			require.NoError(t, f.manager.Begin(id, name))
			f.manager.Inputs().Set(id, ability.Inputs{Move: model.NewVec3(float64(i), 1, 0), HoldAbility: i%2 == 0})
		}
		var out []TickResult
		for range 60 {
			out = append(out, f.manager.Tick(ability.Seconds(1.0/30)))
		}
		return out
	}

	seq := run(1)
	par := run(8)
	require.Len(t, par, len(seq))
	for i := range seq {
		assert.Equal(t, seq[i].Checksum, par[i].Checksum, "tick %d", i+1)
		assert.Equal(t, seq[i].Events, par[i].Events, "tick %d", i+1)
	}
}

func TestTickManager_ChecksumChangesWithInputs(t *testing.T) {
	a := newFixture(t, 1, 1)
	b := newFixture(t, 1, 1)
	require.NoError(t, a.manager.Begin(a.entities[0], "spawn_totem"))
	require.NoError(t, b.manager.Begin(b.entities[0], "spawn_totem"))
	b.manager.Inputs().Set(b.entities[0], ability.Inputs{Jump: true})

	assert.NotEqual(t, a.manager.Tick(time.Millisecond).Checksum, b.manager.Tick(time.Millisecond).Checksum)
}

func TestTickManager_Restore(t *testing.T) {
	f := newFixture(t, 1, 3)

	running := ability.NewState(testDefs["spawn_totem"])
	running.PrepareTimer = 900 * time.Millisecond

	done := ability.NewState(testDefs["instant_ward"])
	done.Phase = ability.PhaseDone
	done.Exhausted = true

	broken := ability.NewState(testDefs["spawn_totem"])
	broken.Exhausted = true

	err := f.manager.Restore(map[uint32]ability.State{
		f.entities[0]: running,
		f.entities[1]: done,
		f.entities[2]: broken,
	})
	assert.ErrorIs(t, err, ability.ErrInvalidState)
	assert.Equal(t, 1, f.manager.Count())

	res := f.manager.Tick(100 * time.Millisecond)
	assert.Len(t, res.Events, 1, "restored instance continues where it stopped")
}

func TestTickManager_StartStop(t *testing.T) {
	f := newFixture(t, 1, 1)
	f.manager.interval = 5 * time.Millisecond
	require.NoError(t, f.manager.Begin(f.entities[0], "instant_ward"))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- f.manager.Start(ctx) }()

	require.Eventually(t, func() bool { return f.manager.CurrentTick() >= 3 }, time.Second, time.Millisecond)
	f.manager.Stop()
	f.manager.Stop()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("tick manager did not stop")
	}
	assert.Equal(t, 1, f.world.ObjectCount())
}

func TestTickManager_BeforeTickAppliesToSameTick(t *testing.T) {
	w := world.New(world.Options{MoveSpeed: 10})
	obj, err := w.AddEntity(1, "Shaman", model.NewLocation(model.Vec3{}, model.Vec3{}), 1)
	require.NoError(t, err)

	var (
		m    *TickManager
		seen []uint64
	)
	m = NewTickManager(Config{
		Catalog: testCatalog(),
		World:   w,
		BeforeTick: func(tick uint64) {
			seen = append(seen, tick)
			if tick == 2 {
				require.NoError(t, m.Begin(obj.ObjectID(), "instant_ward"))
			}
		},
	})

	assert.Empty(t, m.Tick(time.Millisecond).Events)
	res := m.Tick(time.Millisecond)
	assert.Len(t, res.Events, 1, "ability begun in the hook runs in the same tick")
	assert.Equal(t, []uint64{1, 2}, seen)
}

func TestTickManager_ReleasesInputs(t *testing.T) {
	f := newFixture(t, 1, 2)
	held, gone := f.entities[0], f.entities[1]

	// Interrupt сбрасывает удерживаемый ввод
	f.manager.SetInputs(held, ability.Inputs{HoldAbility: true})
	require.NoError(t, f.manager.Begin(held, "spawn_totem"))
	f.manager.Tick(ability.Seconds(0.5))
	require.True(t, f.manager.Interrupt(held))
	assert.Equal(t, ability.Inputs{}, f.manager.Inputs().Get(held))

	// the next instance is not held by the old input and executes on time
	require.NoError(t, f.manager.Begin(held, "spawn_totem"))
	f.manager.Tick(ability.Seconds(0.5))
	res := f.manager.Tick(ability.Seconds(0.5))
	assert.Len(t, res.Events, 1)

	// an entity that left the world loses its inputs with its ability
	f.manager.SetInputs(gone, ability.Inputs{HoldAbility: true})
	require.NoError(t, f.manager.Begin(gone, "spawn_totem"))
	f.world.RemoveEntity(gone)
	f.manager.Tick(ability.Seconds(0.5))

	_, ok := f.manager.State(gone)
	assert.False(t, ok)
	assert.Zero(t, f.manager.Inputs().Len())
}
