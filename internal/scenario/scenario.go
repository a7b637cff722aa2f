// Package scenario loads scripted entity sessions: which entities exist,
// which abilities they trigger and what inputs they hold on each tick.
// Scenarios drive the replay tool and can seed a live server.
package scenario

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/abilitysim/internal/ability"
	"github.com/udisondev/abilitysim/internal/model"
)

// ErrInvalidScenario is returned for structurally broken scenario files.
var ErrInvalidScenario = errors.New("invalid scenario")

// Vec is the YAML form of model.Vec3.
type Vec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

// Vec3 converts v to model.Vec3.
func (v Vec) Vec3() model.Vec3 {
	return model.Vec3{X: v.X, Y: v.Y, Z: v.Z}
}

// Entity is an entity created before the first tick.
type Entity struct {
	UID    uint64  `yaml:"uid"`
	Name   string  `yaml:"name"`
	Pos    Vec     `yaml:"pos"`
	Facing Vec     `yaml:"facing"`
	Scale  float64 `yaml:"scale"`
}

// Input is the YAML form of ability.Inputs.
type Input struct {
	Move    Vec  `yaml:"move"`
	Jump    bool `yaml:"jump"`
	Hold    bool `yaml:"hold"`
	LookDir Vec  `yaml:"look_dir"`
}

// Inputs converts in to ability.Inputs.
func (in Input) Inputs() ability.Inputs {
	return ability.Inputs{
		Move:        in.Move.Vec3(),
		Jump:        in.Jump,
		HoldAbility: in.Hold,
		LookDir:     in.LookDir.Vec3(),
	}
}

// Step is one scripted action. Steps of the same tick run in file order.
type Step struct {
	Tick      uint64 `yaml:"tick"`
	UID       uint64 `yaml:"uid"`
	Begin     string `yaml:"begin"`     // ability id to start
	Interrupt bool   `yaml:"interrupt"` // drop the running ability
	Input     *Input `yaml:"input"`     // replaces the held inputs until the next input step
}

// Scenario is a complete scripted session.
type Scenario struct {
	Name     string   `yaml:"name"`
	TickRate int      `yaml:"tick_rate"` // default: 30
	Ticks    uint64   `yaml:"ticks"`
	Workers  int      `yaml:"workers"` // default: 1
	Entities []Entity `yaml:"entities"`
	Steps    []Step   `yaml:"steps"`
}

// Load reads and validates a scenario file.
func Load(path string) (*Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario %s: %w", path, err)
	}
	sc, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return sc, nil
}

// Parse decodes and validates a scenario from YAML.
func Parse(raw []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(raw, &sc); err != nil {
		return nil, fmt.Errorf("parsing scenario: %w", err)
	}
	if sc.TickRate == 0 {
		sc.TickRate = 30
	}
	if sc.Workers == 0 {
		sc.Workers = 1
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	// stable: steps of one tick keep file order
	sort.SliceStable(sc.Steps, func(i, j int) bool { return sc.Steps[i].Tick < sc.Steps[j].Tick })
	return &sc, nil
}

// Validate checks references between steps and entities.
func (sc *Scenario) Validate() error {
	if sc.TickRate <= 0 || sc.TickRate > 1000 {
		return fmt.Errorf("%w: tick_rate %d out of [1,1000]", ErrInvalidScenario, sc.TickRate)
	}
	if sc.Workers < 1 {
		return fmt.Errorf("%w: workers must be >= 1, got %d", ErrInvalidScenario, sc.Workers)
	}

	uids := make(map[uint64]struct{}, len(sc.Entities))
	for _, e := range sc.Entities {
		if e.UID == 0 {
			return fmt.Errorf("%w: entity %q has no uid", ErrInvalidScenario, e.Name)
		}
		if _, dup := uids[e.UID]; dup {
			return fmt.Errorf("%w: duplicate entity uid %d", ErrInvalidScenario, e.UID)
		}
		uids[e.UID] = struct{}{}
	}

	for i, st := range sc.Steps {
		if st.Tick == 0 {
			return fmt.Errorf("%w: step %d: ticks start at 1", ErrInvalidScenario, i)
		}
		if _, ok := uids[st.UID]; !ok {
			return fmt.Errorf("%w: step %d: unknown entity uid %d", ErrInvalidScenario, i, st.UID)
		}
		if st.Begin != "" && st.Interrupt {
			return fmt.Errorf("%w: step %d: begin and interrupt are exclusive", ErrInvalidScenario, i)
		}
		if st.Begin == "" && !st.Interrupt && st.Input == nil {
			return fmt.Errorf("%w: step %d: nothing to do", ErrInvalidScenario, i)
		}
	}
	return nil
}
