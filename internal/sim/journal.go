package sim

import (
	"context"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/abilitysim/internal/ability"
)

// JournalStore persists dispatched events (implemented by db.EventJournalRepository).
type JournalStore interface {
	Append(ctx context.Context, tick uint64, events []ability.Event) error
}

type journalBatch struct {
	tick   uint64
	events []ability.Event
}

// AsyncJournal decouples the tick loop from the database: Record enqueues a
// batch and Run writes batches in tick order. When the buffer is full the
// batch is dropped and counted instead of stalling the simulation.
type AsyncJournal struct {
	store   JournalStore
	batches chan journalBatch
	dropped atomic.Int64
	written atomic.Int64
}

// NewAsyncJournal creates a journal with room for buffer pending ticks.
func NewAsyncJournal(store JournalStore, buffer int) *AsyncJournal {
	if buffer < 1 {
		buffer = 1
	}
	return &AsyncJournal{
		store:   store,
		batches: make(chan journalBatch, buffer),
	}
}

// Record implements JournalSink.
func (j *AsyncJournal) Record(tick uint64, events []ability.Event) {
	if len(events) == 0 {
		return
	}
	batch := journalBatch{tick: tick, events: append([]ability.Event(nil), events...)}
	select {
	case j.batches <- batch:
	default:
		j.dropped.Add(1)
		slog.Warn("event journal full, dropping batch", "tick", tick, "events", len(events))
	}
}

// Run writes batches until ctx is canceled, then flushes what is queued
// using a background context. Batches recorded after the flush are not
// written; use RunJournaled to stop the producer first.
func (j *AsyncJournal) Run(ctx context.Context) error {
	slog.Info("event journal writer started", "buffer", cap(j.batches))
	for {
		select {
		case <-ctx.Done():
			j.flush()
			slog.Info("event journal writer stopped", "written", j.Written(), "dropped", j.Dropped())
			return nil
		case b := <-j.batches:
			j.write(ctx, b)
		}
	}
}

func (j *AsyncJournal) flush() {
	for {
		select {
		case b := <-j.batches:
			j.write(context.Background(), b)
		default:
			return
		}
	}
}

func (j *AsyncJournal) write(ctx context.Context, b journalBatch) {
	if err := j.store.Append(ctx, b.tick, b.events); err != nil {
		slog.Error("writing event journal", "tick", b.tick, "events", len(b.events), "error", err)
		return
	}
	j.written.Add(int64(len(b.events)))
}

// Dropped returns the number of dropped tick batches.
func (j *AsyncJournal) Dropped() int64 {
	return j.dropped.Load()
}

// Written returns the number of events persisted.
func (j *AsyncJournal) Written() int64 {
	return j.written.Load()
}

// RunJournaled runs the tick loop of m and the journal writer j. The writer
// is canceled only after the tick loop has returned, so every batch the loop
// recorded is flushed before RunJournaled returns.
func RunJournaled(ctx context.Context, m *TickManager, j *AsyncJournal) error {
	jctx, stop := context.WithCancel(context.WithoutCancel(ctx))
	defer stop()

	var g errgroup.Group
	g.Go(func() error { return j.Run(jctx) })

	err := m.Start(ctx)
	stop()
	if werr := g.Wait(); werr != nil {
		return werr
	}
	return err
}
