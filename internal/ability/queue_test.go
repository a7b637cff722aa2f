package ability

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventQueue_PushFrontOrdering(t *testing.T) {
	var q EventQueue

	first := SpawnObject{Owner: 1}
	second := SpawnObject{Owner: 2}
	third := Shockwave{Owner: 3}
	fourth := SpawnObject{Owner: 3}
	tail := SpawnObject{Owner: 99}

	q.Push(tail)
	q.PushFront(first)
	q.PushFront(second)
	q.PushFront(third, fourth)

	assert.Equal(t, 5, q.Len())
	got := q.Drain()

	owners := make([]uint32, 0, len(got))
	for _, e := range got {
		owners = append(owners, e.OwnerID())
	}
	assert.Equal(t, []uint32{3, 3, 2, 1, 99}, owners)
	assert.Equal(t, EventShockwave, got[0].Kind(), "batch order is preserved")
	assert.Equal(t, 0, q.Len())
	assert.Nil(t, q.Drain())
}

func TestEventQueue_NilSafe(t *testing.T) {
	var q *EventQueue
	q.PushFront(SpawnObject{})
	q.Push(SpawnObject{})
	assert.Equal(t, 0, q.Len())
	assert.Nil(t, q.Drain())
}
