package testutil

import (
	"time"

	"github.com/udisondev/abilitysim/internal/ability"
	"github.com/udisondev/abilitysim/internal/model"
)

// Fixtures содержит готовые определения способностей для тестов,
// чтобы не дублировать их в каждом пакете.
var Fixtures = struct {
	// Totem — удерживаемая способность, создающая тотем
	Totem ability.Definition
	// Beacon — мгновенная способность с выпадающим предметом
	Beacon ability.Definition
	// Shockwave — толчок без создания объекта
	Shockwave ability.Definition
}{
	Totem: ability.Definition{
		ID:         "test_totem",
		Name:       "Test Totem",
		Holdable:   true,
		Prepare:    time.Second,
		Recover:    500 * time.Millisecond,
		MoveFactor: ability.DefaultMoveFactor,
		Effect: ability.EffectSpec{
			Type:       ability.EffectSpawnObject,
			ObjectKind: model.ObjectKindTotem,
			Scale:      1,
		},
	},
	Beacon: ability.Definition{
		ID:         "test_beacon",
		Name:       "Test Beacon",
		Prepare:    200 * time.Millisecond,
		Recover:    300 * time.Millisecond,
		MoveFactor: ability.DefaultMoveFactor,
		Effect: ability.EffectSpec{
			Type:       ability.EffectSpawnObject,
			ObjectKind: model.ObjectKindBeacon,
			Scale:      1.5,
			DropItem:   &model.DropItem{ItemID: 57, Count: 3},
		},
	},
	Shockwave: ability.Definition{
		ID:         "test_shockwave",
		Name:       "Test Shockwave",
		Prepare:    100 * time.Millisecond,
		Recover:    100 * time.Millisecond,
		MoveFactor: 0,
		Effect: ability.EffectSpec{
			Type:      ability.EffectShockwave,
			Radius:    5,
			Magnitude: 2,
		},
	},
}

// Catalog returns the fixture definitions indexed by id.
func Catalog() map[string]ability.Definition {
	return map[string]ability.Definition{
		Fixtures.Totem.ID:     Fixtures.Totem,
		Fixtures.Beacon.ID:    Fixtures.Beacon,
		Fixtures.Shockwave.ID: Fixtures.Shockwave,
	}
}
