package data

import (
	"time"

	"github.com/udisondev/abilitysim/internal/ability"
	"github.com/udisondev/abilitysim/internal/model"
)

// builtinAbilities — каталог по умолчанию, используется если YAML файла нет.
var builtinAbilities = []ability.Definition{
	{
		ID:         "spawn_totem",
		Name:       "Spawn Totem",
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
	{
		ID:         "place_ward",
		Name:       "Place Ward",
		Prepare:    600 * time.Millisecond,
		Recover:    300 * time.Millisecond,
		MoveFactor: ability.DefaultMoveFactor,
		Effect: ability.EffectSpec{
			Type:       ability.EffectSpawnObject,
			ObjectKind: model.ObjectKindWard,
			Scale:      0.5,
		},
	},
	{
		ID:         "raise_beacon",
		Name:       "Raise Beacon",
		Prepare:    2 * time.Second,
		Recover:    time.Second,
		MoveFactor: 0,
		Effect: ability.EffectSpec{
			Type:       ability.EffectSpawnObject,
			ObjectKind: model.ObjectKindBeacon,
			Scale:      2,
			DropItem:   &model.DropItem{ItemID: 57, Count: 1},
		},
	},
	{
		ID:         "shockwave",
		Name:       "Shockwave",
		Holdable:   true,
		Prepare:    400 * time.Millisecond,
		Recover:    800 * time.Millisecond,
		MoveFactor: 0.1,
		Effect: ability.EffectSpec{
			Type:      ability.EffectShockwave,
			Radius:    6,
			Magnitude: 12,
		},
	},
}
