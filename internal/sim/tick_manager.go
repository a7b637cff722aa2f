package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/abilitysim/internal/ability"
)

var (
	// ErrUnknownAbility is returned by Begin when the catalog has no such ability.
	ErrUnknownAbility = errors.New("unknown ability")

	// ErrEntityNotFound is returned when the world has no such entity.
	ErrEntityNotFound = errors.New("entity not found")

	// ErrBusy is returned by Begin when the entity already runs an ability.
	ErrBusy = errors.New("entity is busy with another ability")
)

// Catalog resolves ability definitions.
type Catalog interface {
	Get(id string) (ability.Definition, bool)
}

// CatalogFunc adapts a lookup function to Catalog.
type CatalogFunc func(id string) (ability.Definition, bool)

// Get implements Catalog.
func (f CatalogFunc) Get(id string) (ability.Definition, bool) { return f(id) }

// World is the entity side of the tick: snapshots in, locomotion out.
type World interface {
	Snapshot(entityID uint32) (ability.Snapshot, bool)
	ApplyLocomotion(entityID uint32, loco ability.Locomotion, dt time.Duration)
}

// Dispatcher is the single consumer of the per-tick event queue.
type Dispatcher interface {
	Dispatch(tick uint64, events []ability.Event)
}

// JournalSink records dispatched events. Record must not block the tick.
type JournalSink interface {
	Record(tick uint64, events []ability.Event)
}

// Config wires the tick manager.
type Config struct {
	Catalog    Catalog
	World      World
	Dispatcher Dispatcher
	Inputs     *InputBuffer // created when nil
	Journal    JournalSink  // optional
	Interval   time.Duration
	Workers    int // parallel Advance workers, <= 1 means sequential

	// BeforeTick runs at the start of every tick with the number of the tick
	// about to run. Begin, Interrupt and input updates made here apply to it.
	BeforeTick func(tick uint64)
}

// TickResult summarizes one tick.
type TickResult struct {
	Tick     uint64
	Advanced int
	Events   []ability.Event
	// Finished lists entities that returned to idle this tick, ascending.
	Finished []uint32
	Checksum Checksum
}

type advanced struct {
	entityID uint32
	update   ability.Update
}

// TickManager advances every entity with an active ability once per tick.
//
// Per tick, all entities use the same dt; each entity's state is read,
// advanced and written back before the tick's events are dispatched. Events
// are front-inserted per entity in ascending id order, so the highest id is
// dispatched first (see ability.EventQueue).
type TickManager struct {
	mu     sync.Mutex
	states map[uint32]ability.State
	tick   uint64

	// tickMu serializes Tick so dispatch order matches tick order.
	tickMu sync.Mutex

	catalog    Catalog
	world      World
	dispatcher Dispatcher
	inputs     *InputBuffer
	journal    JournalSink
	interval   time.Duration
	workers    int
	beforeTick func(tick uint64)

	activeCount atomic.Int32
	stopCh      chan struct{}
	stopOnce    sync.Once
}

// NewTickManager creates a tick manager.
func NewTickManager(cfg Config) *TickManager {
	if cfg.Inputs == nil {
		cfg.Inputs = NewInputBuffer()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second / 30
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &TickManager{
		states:     make(map[uint32]ability.State, 64),
		catalog:    cfg.Catalog,
		world:      cfg.World,
		dispatcher: cfg.Dispatcher,
		inputs:     cfg.Inputs,
		journal:    cfg.Journal,
		interval:   cfg.Interval,
		workers:    cfg.Workers,
		beforeTick: cfg.BeforeTick,
		stopCh:     make(chan struct{}),
	}
}

// Inputs returns the input buffer fed by producers.
func (m *TickManager) Inputs() *InputBuffer {
	return m.inputs
}

// SetInputs replaces the inputs used for the entity from the next tick on.
func (m *TickManager) SetInputs(entityID uint32, in ability.Inputs) {
	m.inputs.Set(entityID, in)
}

// Begin starts ability abilityID on the entity. The instance takes effect on
// the next tick.
func (m *TickManager) Begin(entityID uint32, abilityID string) error {
	def, ok := m.catalog.Get(abilityID)
	if !ok {
		return fmt.Errorf("beginning %q: %w", abilityID, ErrUnknownAbility)
	}
	if _, ok := m.world.Snapshot(entityID); !ok {
		return fmt.Errorf("beginning %q on %d: %w", abilityID, entityID, ErrEntityNotFound)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if cur, ok := m.states[entityID]; ok && !cur.IsDone() {
		return fmt.Errorf("beginning %q on %d (running %q): %w", abilityID, entityID, cur.AbilityID, ErrBusy)
	}
	m.states[entityID] = ability.NewState(def)
	m.activeCount.Store(int32(len(m.states)))

	slog.Debug("ability started", "entity", entityID, "ability", abilityID)
	return nil
}

// Interrupt drops the entity back to idle at the next tick boundary.
// Its buffered inputs are cleared too, so a held ability input does not
// carry into the next Begin. Returns false if the entity had no active ability.
func (m *TickManager) Interrupt(entityID uint32) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.states[entityID]
	if !ok {
		return false
	}
	delete(m.states, entityID)
	m.activeCount.Store(int32(len(m.states)))
	m.inputs.Clear(entityID)

	slog.Debug("ability interrupted", "entity", entityID, "ability", st.AbilityID, "phase", st.Phase.String())
	return true
}

// Restore installs persisted states, e.g. after a restart. Invalid or
// finished states are skipped and reported in the returned error.
func (m *TickManager) Restore(states map[uint32]ability.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for id, st := range states {
		if err := st.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("restoring entity %d: %w", id, err))
			continue
		}
		if st.IsDone() {
			continue
		}
		m.states[id] = st
	}
	m.activeCount.Store(int32(len(m.states)))
	return errors.Join(errs...)
}

// State returns the active state of an entity.
func (m *TickManager) State(entityID uint32) (ability.State, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.states[entityID]
	return st, ok
}

// States returns a copy of all active states.
func (m *TickManager) States() map[uint32]ability.State {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[uint32]ability.State, len(m.states))
	for id, st := range m.states {
		out[id] = st
	}
	return out
}

// Count returns number of entities with an active ability (O(1) cached count).
func (m *TickManager) Count() int {
	return int(m.activeCount.Load())
}

// CurrentTick returns the number of completed ticks.
func (m *TickManager) CurrentTick() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tick
}

// Tick advances all active entities by dt and dispatches the produced events.
func (m *TickManager) Tick(dt time.Duration) TickResult {
	m.tickMu.Lock()
	defer m.tickMu.Unlock()

	if m.beforeTick != nil {
		m.beforeTick(m.CurrentTick() + 1)
	}

	m.mu.Lock()
	m.tick++
	tick := m.tick

	ids := make([]uint32, 0, len(m.states))
	for id := range m.states {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	results := m.advanceAll(ids, dt)

	var queue ability.EventQueue
	res := TickResult{Tick: tick}
	done := make([]advanced, 0, len(results))
	for _, r := range results {
		if r.missing {
			// entity left the world; its ability goes with it
			delete(m.states, r.entityID)
			m.inputs.Clear(r.entityID)
			slog.Debug("ability dropped, entity gone", "entity", r.entityID)
			continue
		}
		if r.update.Finished() {
			delete(m.states, r.entityID)
			res.Finished = append(res.Finished, r.entityID)
		} else {
			m.states[r.entityID] = r.update.State
		}
		queue.PushFront(r.update.Events...)
		done = append(done, advanced{entityID: r.entityID, update: r.update})
	}
	m.activeCount.Store(int32(len(m.states)))
	m.mu.Unlock()

	for _, a := range done {
		if a.update.CarriesLocomotion() {
			m.world.ApplyLocomotion(a.entityID, a.update.Locomotion, dt)
		}
	}

	res.Advanced = len(done)
	res.Events = queue.Drain()
	res.Checksum = computeChecksum(tick, int64(dt), done, res.Events)

	if len(res.Events) > 0 {
		if m.dispatcher != nil {
			m.dispatcher.Dispatch(tick, res.Events)
		}
		if m.journal != nil {
			m.journal.Record(tick, res.Events)
		}
	}

	if res.Advanced > 0 {
		slog.Debug("ability tick completed",
			"tick", tick,
			"advanced", res.Advanced,
			"events", len(res.Events),
			"finished", len(res.Finished))
	}
	return res
}

type advanceResult struct {
	entityID uint32
	update   ability.Update
	missing  bool
}

// advanceAll runs ability.Advance for every id. States, snapshots and inputs are read
// up front so the parallel section touches nothing shared. Results keep the
// order of ids. Caller holds m.mu.
func (m *TickManager) advanceAll(ids []uint32, dt time.Duration) []advanceResult {
	results := make([]advanceResult, len(ids))
	states := make([]ability.State, len(ids))
	snaps := make([]ability.Snapshot, len(ids))
	inputs := make([]ability.Inputs, len(ids))

	for i, id := range ids {
		results[i].entityID = id
		snap, ok := m.world.Snapshot(id)
		if !ok {
			results[i].missing = true
			continue
		}
		states[i] = m.states[id]
		snaps[i] = snap
		inputs[i] = m.inputs.Get(id)
	}

	step := func(i int) {
		if results[i].missing {
			return
		}
		results[i].update = ability.Advance(states[i], snaps[i], inputs[i], dt)
	}

	if m.workers <= 1 || len(ids) < 2 {
		for i := range ids {
			step(i)
		}
		return results
	}

	var g errgroup.Group
	g.SetLimit(m.workers)
	for i := range ids {
		g.Go(func() error {
			step(i)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// Start runs the fixed-rate tick loop (blocks until context is canceled).
func (m *TickManager) Start(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	slog.Info("ability tick manager started", "interval", m.interval, "workers", m.workers)

	for {
		select {
		case <-ctx.Done():
			slog.Info("ability tick manager stopping", "tick", m.CurrentTick(), "active", m.Count())
			return ctx.Err()

		case <-m.stopCh:
			slog.Info("ability tick manager stopped", "tick", m.CurrentTick())
			return nil

		case <-ticker.C:
			m.Tick(m.interval)
		}
	}
}

// Stop stops the tick loop. Safe to call more than once.
func (m *TickManager) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}
