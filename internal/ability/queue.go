package ability

// EventQueue collects the events of one tick.
//
// Ordering contract: producers front-insert. PushFront places a batch ahead of
// everything already queued while keeping the batch's own order, so with
// several producers per tick the batch pushed last is dispatched first
// (LIFO per producer, FIFO within a producer). Push appends and is meant for
// lower priority producers.
//
// Not safe for concurrent use; the tick driver owns it.
type EventQueue struct {
	items []Event
}

// PushFront inserts events ahead of the queued ones.
func (q *EventQueue) PushFront(events ...Event) {
	if q == nil || len(events) == 0 {
		return
	}
	merged := make([]Event, 0, len(events)+len(q.items))
	merged = append(merged, events...)
	q.items = append(merged, q.items...)
}

// Push appends events behind the queued ones.
func (q *EventQueue) Push(events ...Event) {
	if q == nil {
		return
	}
	q.items = append(q.items, events...)
}

// Len returns the number of queued events.
func (q *EventQueue) Len() int {
	if q == nil {
		return 0
	}
	return len(q.items)
}

// Drain returns all events in dispatch order and clears the queue.
func (q *EventQueue) Drain() []Event {
	if q == nil || len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}
