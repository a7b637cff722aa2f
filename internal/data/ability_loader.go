package data

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync/atomic"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/abilitysim/internal/ability"
	"github.com/udisondev/abilitysim/internal/model"
)

// AbilityCatalog — неизменяемый снимок каталога способностей.
type AbilityCatalog struct {
	byID  map[string]ability.Definition
	order []string
}

// Get returns the definition by id.
func (c *AbilityCatalog) Get(id string) (ability.Definition, bool) {
	if c == nil {
		return ability.Definition{}, false
	}
	def, ok := c.byID[id]
	return def, ok
}

// Len returns the number of abilities.
func (c *AbilityCatalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.order)
}

// All returns definitions sorted by id.
func (c *AbilityCatalog) All() []ability.Definition {
	if c == nil {
		return nil
	}
	out := make([]ability.Definition, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}

// abilityTable — текущий каталог. Заменяется атомарно при hot reload,
// поэтому GetAbility безопасен из tick loop.
var abilityTable atomic.Pointer[AbilityCatalog]

// GetAbility возвращает определение способности по ID из текущего каталога.
func GetAbility(id string) (ability.Definition, bool) {
	return abilityTable.Load().Get(id)
}

// Abilities returns the current catalog snapshot (may be nil before loading).
func Abilities() *AbilityCatalog {
	return abilityTable.Load()
}

// LoadAbilities загружает каталог из YAML файла и устанавливает его текущим.
// Если path пустой или файла нет — используется встроенный каталог.
// On error the previously installed catalog stays in place.
func LoadAbilities(path string) error {
	catalog, err := ReadAbilities(path)
	if err != nil {
		return err
	}
	abilityTable.Store(catalog)
	slog.Info("loaded abilities", "count", catalog.Len(), "path", path)
	return nil
}

// ReadAbilities builds a catalog without installing it.
func ReadAbilities(path string) (*AbilityCatalog, error) {
	if path == "" {
		return NewAbilityCatalog(builtinAbilities)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Warn("ability catalog not found, using built-in", "path", path)
			return NewAbilityCatalog(builtinAbilities)
		}
		return nil, fmt.Errorf("reading ability catalog %s: %w", path, err)
	}

	catalog, err := ParseAbilities(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing ability catalog %s: %w", path, err)
	}
	return catalog, nil
}

// ParseAbilities decodes and validates a YAML catalog.
func ParseAbilities(raw []byte) (*AbilityCatalog, error) {
	var file abilityFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("decoding yaml: %w", err)
	}
	if len(file.Abilities) == 0 {
		return nil, fmt.Errorf("catalog has no abilities")
	}

	defs := make([]ability.Definition, 0, len(file.Abilities))
	for i, a := range file.Abilities {
		def, err := a.definition()
		if err != nil {
			return nil, fmt.Errorf("ability #%d: %w", i, err)
		}
		defs = append(defs, def)
	}
	return NewAbilityCatalog(defs)
}

// NewAbilityCatalog validates definitions and rejects duplicate ids.
func NewAbilityCatalog(defs []ability.Definition) (*AbilityCatalog, error) {
	c := &AbilityCatalog{
		byID:  make(map[string]ability.Definition, len(defs)),
		order: make([]string, 0, len(defs)),
	}
	for _, def := range defs {
		if err := def.Validate(); err != nil {
			return nil, err
		}
		if _, dup := c.byID[def.ID]; dup {
			return nil, fmt.Errorf("duplicate ability id %q", def.ID)
		}
		c.byID[def.ID] = def
		c.order = append(c.order, def.ID)
	}
	sort.Strings(c.order)
	return c, nil
}

type abilityFile struct {
	Abilities []abilityEntry `yaml:"abilities"`
}

type abilityEntry struct {
	ID         string        `yaml:"id"`
	Name       string        `yaml:"name"`
	Holdable   bool          `yaml:"holdable"`
	Prepare    time.Duration `yaml:"prepare"`
	Recover    time.Duration `yaml:"recover"`
	MoveFactor *float64      `yaml:"move_factor"` // default: ability.DefaultMoveFactor
	Effect     effectEntry   `yaml:"effect"`
}

type effectEntry struct {
	Type       string         `yaml:"type"`
	ObjectKind string         `yaml:"object_kind"`
	Scale      float64        `yaml:"scale"`
	DropItem   *dropItemEntry `yaml:"drop_item"`
	Radius     float64        `yaml:"radius"`
	Magnitude  float64        `yaml:"magnitude"`
}

type dropItemEntry struct {
	ItemID int32 `yaml:"item_id"`
	Count  int64 `yaml:"count"`
}

func (e abilityEntry) definition() (ability.Definition, error) {
	moveFactor := ability.DefaultMoveFactor
	if e.MoveFactor != nil {
		moveFactor = *e.MoveFactor
	}
	name := e.Name
	if name == "" {
		name = e.ID
	}

	def := ability.Definition{
		ID:         e.ID,
		Name:       name,
		Holdable:   e.Holdable,
		Prepare:    e.Prepare,
		Recover:    e.Recover,
		MoveFactor: moveFactor,
		Effect: ability.EffectSpec{
			Type:       e.Effect.Type,
			ObjectKind: model.ObjectKind(e.Effect.ObjectKind),
			Scale:      e.Effect.Scale,
			Radius:     e.Effect.Radius,
			Magnitude:  e.Effect.Magnitude,
		},
	}
	if e.Effect.DropItem != nil {
		def.Effect.DropItem = &model.DropItem{
			ItemID: e.Effect.DropItem.ItemID,
			Count:  e.Effect.DropItem.Count,
		}
	}
	if err := def.Validate(); err != nil {
		return ability.Definition{}, err
	}
	return def, nil
}
