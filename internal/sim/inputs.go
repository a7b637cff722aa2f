package sim

import (
	"sync"

	"github.com/udisondev/abilitysim/internal/ability"
)

// InputBuffer keeps the latest sampled inputs per entity. Producers (network
// intake, AI) write at any time; the tick driver reads once per tick.
type InputBuffer struct {
	mu     sync.RWMutex
	inputs map[uint32]ability.Inputs
}

// NewInputBuffer creates an empty buffer.
func NewInputBuffer() *InputBuffer {
	return &InputBuffer{inputs: make(map[uint32]ability.Inputs, 64)}
}

// Set replaces the inputs of an entity.
func (b *InputBuffer) Set(entityID uint32, in ability.Inputs) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.inputs[entityID] = in
}

// Get returns the inputs of an entity, zero value when none were sampled.
func (b *InputBuffer) Get(entityID uint32) ability.Inputs {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.inputs[entityID]
}

// Clear forgets the inputs of an entity.
func (b *InputBuffer) Clear(entityID uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.inputs, entityID)
}

// Len returns the number of entities with buffered inputs.
func (b *InputBuffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.inputs)
}
