package scenario

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/abilitysim/internal/ability"
	"github.com/udisondev/abilitysim/internal/model"
	"github.com/udisondev/abilitysim/internal/sim"
	"github.com/udisondev/abilitysim/internal/testutil"
	"github.com/udisondev/abilitysim/internal/world"
)

const totemScenario = `
name: totem
tick_rate: 2
ticks: 5
entities:
  - uid: 1
    name: Shaman
    pos: {x: 1, y: 2}
  - uid: 2
    name: Warden
    pos: {x: -3}
steps:
  - tick: 1
    uid: 1
    begin: test_totem
  - tick: 1
    uid: 2
    begin: test_beacon
    input:
      move: {x: 1}
  - tick: 3
    uid: 2
    input: {}
`

func fixtureCatalog() sim.Catalog {
	defs := testutil.Catalog()
	return sim.CatalogFunc(func(id string) (ability.Definition, bool) {
		def, ok := defs[id]
		return def, ok
	})
}

func TestParse_Defaults(t *testing.T) {
	sc, err := Parse([]byte("entities:\n  - uid: 7\n"))
	require.NoError(t, err)
	assert.Equal(t, 30, sc.TickRate)
	assert.Equal(t, 1, sc.Workers)
	assert.Zero(t, sc.Ticks)
}

func TestParse_SortsStepsStable(t *testing.T) {
	sc, err := Parse([]byte(`
entities: [{uid: 1}]
steps:
  - {tick: 3, uid: 1, interrupt: true}
  - {tick: 1, uid: 1, begin: a}
  - {tick: 1, uid: 1, input: {jump: true}}
`))
	require.NoError(t, err)
	require.Len(t, sc.Steps, 3)
	assert.Equal(t, "a", sc.Steps[0].Begin)
	require.NotNil(t, sc.Steps[1].Input)
	assert.True(t, sc.Steps[1].Input.Jump)
	assert.True(t, sc.Steps[2].Interrupt)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"bad tick rate", "tick_rate: -1"},
		{"missing uid", "entities: [{name: x}]"},
		{"duplicate uid", "entities: [{uid: 1}, {uid: 1}]"},
		{"tick zero", "entities: [{uid: 1}]\nsteps: [{tick: 0, uid: 1, begin: a}]"},
		{"unknown entity", "entities: [{uid: 1}]\nsteps: [{tick: 1, uid: 2, begin: a}]"},
		{"begin and interrupt", "entities: [{uid: 1}]\nsteps: [{tick: 1, uid: 1, begin: a, interrupt: true}]"},
		{"empty step", "entities: [{uid: 1}]\nsteps: [{tick: 1, uid: 1}]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.raw))
			assert.ErrorIs(t, err, ErrInvalidScenario)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "totem.yaml")
	require.NoError(t, os.WriteFile(path, []byte(totemScenario), 0o644))

	sc, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "totem", sc.Name)
	assert.Len(t, sc.Entities, 2)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestRun_Totem(t *testing.T) {
	sc, err := Parse([]byte(totemScenario))
	require.NoError(t, err)

	var seen []uint64
	res, err := Run(context.Background(), sc, fixtureCatalog(), world.Options{MoveSpeed: 4}, func(tr sim.TickResult) {
		seen = append(seen, tr.Tick)
	})
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 2, 3, 4, 5}, seen)

	// beacon: prepare 200ms < 500ms step, executes on tick 1
	require.Len(t, res.Ticks[0].Events, 1)
	// totem: prepare 1s at 500ms per tick, executes on tick 2
	require.Len(t, res.Ticks[1].Events, 1)

	require.Len(t, res.Objects, 2)
	kinds := []model.ObjectKind{res.Objects[0].Kind, res.Objects[1].Kind}
	assert.ElementsMatch(t, []model.ObjectKind{model.ObjectKindBeacon, model.ObjectKindTotem}, kinds)
}

func TestRun_Deterministic(t *testing.T) {
	sc, err := Parse([]byte(totemScenario))
	require.NoError(t, err)

	a, err := Run(context.Background(), sc, fixtureCatalog(), world.Options{MoveSpeed: 4}, nil)
	require.NoError(t, err)

	sc.Workers = 4
	b, err := Run(context.Background(), sc, fixtureCatalog(), world.Options{MoveSpeed: 4}, nil)
	require.NoError(t, err)

	require.Len(t, b.Ticks, len(a.Ticks))
	for i := range a.Ticks {
		assert.Equal(t, a.Ticks[i].Checksum, b.Ticks[i].Checksum, "tick %d", i+1)
	}
}

func TestRun_Canceled(t *testing.T) {
	sc, err := Parse([]byte(totemScenario))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := Run(ctx, sc, fixtureCatalog(), world.Options{}, nil)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, res.Ticks)
}

func TestScript_BusyAndUnknownAreSkipped(t *testing.T) {
	sc, err := Parse([]byte(`
entities: [{uid: 1}]
steps:
  - {tick: 1, uid: 1, begin: test_totem}
  - {tick: 2, uid: 1, begin: test_beacon}
  - {tick: 2, uid: 1, begin: nope}
`))
	require.NoError(t, err)

	w := world.New(world.Options{})
	script, err := Seed(sc, w)
	require.NoError(t, err)
	m := sim.NewTickManager(sim.Config{Catalog: fixtureCatalog(), World: w})

	script.Apply(m, 1)
	assert.False(t, script.Done())
	script.Apply(m, 2)
	assert.True(t, script.Done())

	id, ok := script.EntityID(1)
	require.True(t, ok)
	st, ok := m.State(id)
	require.True(t, ok)
	assert.Equal(t, "test_totem", st.AbilityID)
}

func TestSeed_ReusesExistingUID(t *testing.T) {
	sc, err := Parse([]byte("entities: [{uid: 5, name: a}]"))
	require.NoError(t, err)

	w := world.New(world.Options{})
	obj, err := w.AddEntity(5, "a", model.NewLocation(model.Vec3{}, model.Vec3{}), 1)
	require.NoError(t, err)

	script, err := Seed(sc, w)
	require.NoError(t, err)
	id, _ := script.EntityID(5)
	assert.Equal(t, obj.ObjectID(), id)
	assert.Equal(t, 1, w.EntityCount())
}
