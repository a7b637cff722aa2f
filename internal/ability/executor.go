package ability

import "sort"

// Effect types understood by the built-in executors.
const (
	EffectSpawnObject = "spawn_object"
	EffectShockwave   = "shockwave"
)

// Executor builds the events of the execution tick. It must be a pure
// function of its arguments.
type Executor func(spec EffectSpec, snap Snapshot, in Inputs) []Event

// executorRegistry maps effect type → executor.
// Populated by init() and read-only afterwards.
var executorRegistry = map[string]Executor{}

// RegisterExecutor registers an executor by effect type.
// Must only be called from init().
func RegisterExecutor(effectType string, exec Executor) {
	if effectType == "" || exec == nil {
		panic("ability: invalid executor registration")
	}
	if _, dup := executorRegistry[effectType]; dup {
		panic("ability: duplicate executor " + effectType)
	}
	executorRegistry[effectType] = exec
}

// HasExecutor reports whether effectType has a registered executor.
func HasExecutor(effectType string) bool {
	_, ok := executorRegistry[effectType]
	return ok
}

// EffectTypes returns the registered effect types, sorted.
func EffectTypes() []string {
	types := make([]string, 0, len(executorRegistry))
	for t := range executorRegistry {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

func execute(spec EffectSpec, snap Snapshot, in Inputs) []Event {
	exec, ok := executorRegistry[spec.Type]
	if !ok {
		return nil
	}
	return exec(spec, snap, in)
}

func init() {
	RegisterExecutor(EffectSpawnObject, spawnObject)
	RegisterExecutor(EffectShockwave, shockwave)
}
