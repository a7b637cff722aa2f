package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/abilitysim/internal/ability"
	"github.com/udisondev/abilitysim/internal/model"
	"github.com/udisondev/abilitysim/internal/sim"
)

var _ sim.JournalStore = (*EventJournalRepository)(nil)

// JournalEntry is one persisted event.
type JournalEntry struct {
	Tick           uint64
	Seq            int
	Kind           string
	OwnerID        uint32
	Alignment      string
	AlignmentOwner uint64
	Pos            model.Vec3
	Dir            model.Vec3
	ObjectKind     model.ObjectKind
	Scale          float64
	DropItem       *model.DropItem
	Radius         float64
	Magnitude      float64
}

// EventJournalRepository записывает события, отправленные диспетчеру.
// Each server run writes under its own session id, ticks restart at 1.
type EventJournalRepository struct {
	pool    *pgxpool.Pool
	session uuid.UUID
}

// NewEventJournalRepository создаёт репозиторий с новой сессией.
func NewEventJournalRepository(pool *pgxpool.Pool) *EventJournalRepository {
	return &EventJournalRepository{pool: pool, session: uuid.New()}
}

// Session returns the id this repository writes under.
func (r *EventJournalRepository) Session() uuid.UUID {
	return r.session
}

const insertJournalEntry = `
	INSERT INTO event_journal (session_id, tick, seq, kind, owner_id, alignment, alignment_owner,
		pos_x, pos_y, pos_z, dir_x, dir_y, dir_z,
		object_kind, scale, drop_item_id, drop_item_count, radius, magnitude)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
`

// Append stores the events of one tick, seq follows dispatch order.
func (r *EventJournalRepository) Append(ctx context.Context, tick uint64, events []ability.Event) error {
	if len(events) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for seq, e := range events {
		entry := journalEntryFromEvent(tick, seq, e)
		var dropID *int32
		var dropCount *int64
		if entry.DropItem != nil {
			dropID = &entry.DropItem.ItemID
			dropCount = &entry.DropItem.Count
		}
		batch.Queue(insertJournalEntry,
			r.session, int64(entry.Tick), entry.Seq, entry.Kind, int64(entry.OwnerID),
			entry.Alignment, int64(entry.AlignmentOwner),
			entry.Pos.X, entry.Pos.Y, entry.Pos.Z, entry.Dir.X, entry.Dir.Y, entry.Dir.Z,
			string(entry.ObjectKind), entry.Scale, dropID, dropCount, entry.Radius, entry.Magnitude,
		)
	}

	if err := r.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("appending %d events for tick %d: %w", len(events), tick, err)
	}
	return nil
}

// ListByTick returns the events of one tick of the current session in dispatch order.
func (r *EventJournalRepository) ListByTick(ctx context.Context, tick uint64) ([]JournalEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT tick, seq, kind, owner_id, alignment, alignment_owner,
			pos_x, pos_y, pos_z, dir_x, dir_y, dir_z,
			object_kind, scale, drop_item_id, drop_item_count, radius, magnitude
		FROM event_journal
		WHERE session_id = $1 AND tick = $2
		ORDER BY seq`, r.session, int64(tick))
	if err != nil {
		return nil, fmt.Errorf("querying journal tick %d: %w", tick, err)
	}
	defer rows.Close()

	var out []JournalEntry
	for rows.Next() {
		var (
			e            JournalEntry
			tickV, owner int64
			alignOwner   int64
			objectKind   string
			dropID       *int32
			dropCount    *int64
		)
		if err := rows.Scan(&tickV, &e.Seq, &e.Kind, &owner, &e.Alignment, &alignOwner,
			&e.Pos.X, &e.Pos.Y, &e.Pos.Z, &e.Dir.X, &e.Dir.Y, &e.Dir.Z,
			&objectKind, &e.Scale, &dropID, &dropCount, &e.Radius, &e.Magnitude); err != nil {
			return nil, fmt.Errorf("scanning journal row: %w", err)
		}
		e.Tick = uint64(tickV)
		e.OwnerID = uint32(owner)
		e.AlignmentOwner = uint64(alignOwner)
		e.ObjectKind = model.ObjectKind(objectKind)
		if dropID != nil && dropCount != nil {
			e.DropItem = &model.DropItem{ItemID: *dropID, Count: *dropCount}
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating journal rows: %w", err)
	}
	return out, nil
}

func journalEntryFromEvent(tick uint64, seq int, e ability.Event) JournalEntry {
	entry := JournalEntry{
		Tick:    tick,
		Seq:     seq,
		Kind:    e.Kind().String(),
		OwnerID: e.OwnerID(),
	}
	switch ev := e.(type) {
	case ability.SpawnObject:
		entry.Alignment = ev.Alignment.Kind.String()
		entry.AlignmentOwner = ev.Alignment.Owner
		entry.Pos, entry.Dir = ev.Pos, ev.Dir
		entry.ObjectKind = ev.ObjectKind
		entry.Scale = ev.Scale
		entry.DropItem = ev.DropItem
	case ability.Shockwave:
		entry.Alignment = ev.Alignment.Kind.String()
		entry.AlignmentOwner = ev.Alignment.Owner
		entry.Pos, entry.Dir = ev.Origin, ev.Dir
		entry.Radius = ev.Radius
		entry.Magnitude = ev.Magnitude
	default:
		entry.Alignment = model.AlignmentWild.String()
	}
	return entry
}
