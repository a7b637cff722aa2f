package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/abilitysim/internal/ability"
	"github.com/udisondev/abilitysim/internal/model"
)

// AbilityStateRepository сохраняет незавершённые способности между рестартами.
// States are keyed by entity UID because object ids are process-local.
type AbilityStateRepository struct {
	pool *pgxpool.Pool
}

// NewAbilityStateRepository создаёт новый AbilityStateRepository.
func NewAbilityStateRepository(pool *pgxpool.Pool) *AbilityStateRepository {
	return &AbilityStateRepository{pool: pool}
}

const abilityStateColumns = `entity_uid, ability_id, phase, holdable,
	prepare_duration_ns, prepare_timer_ns, recover_duration_ns, exhausted, move_factor,
	effect_type, object_kind, effect_scale, drop_item_id, drop_item_count, radius, magnitude`

const upsertAbilityState = `
	INSERT INTO ability_states (` + abilityStateColumns + `, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, now())
	ON CONFLICT (entity_uid) DO UPDATE SET
		ability_id = EXCLUDED.ability_id,
		phase = EXCLUDED.phase,
		holdable = EXCLUDED.holdable,
		prepare_duration_ns = EXCLUDED.prepare_duration_ns,
		prepare_timer_ns = EXCLUDED.prepare_timer_ns,
		recover_duration_ns = EXCLUDED.recover_duration_ns,
		exhausted = EXCLUDED.exhausted,
		move_factor = EXCLUDED.move_factor,
		effect_type = EXCLUDED.effect_type,
		object_kind = EXCLUDED.object_kind,
		effect_scale = EXCLUDED.effect_scale,
		drop_item_id = EXCLUDED.drop_item_id,
		drop_item_count = EXCLUDED.drop_item_count,
		radius = EXCLUDED.radius,
		magnitude = EXCLUDED.magnitude,
		updated_at = now()
`

func abilityStateArgs(uid uint64, s ability.State) []any {
	var dropID *int32
	var dropCount *int64
	if s.Effect.DropItem != nil {
		dropID = &s.Effect.DropItem.ItemID
		dropCount = &s.Effect.DropItem.Count
	}
	return []any{
		int64(uid), s.AbilityID, s.Phase.String(), s.Holdable,
		int64(s.PrepareDuration), int64(s.PrepareTimer), int64(s.RecoverDuration), s.Exhausted, s.MoveFactor,
		s.Effect.Type, string(s.Effect.ObjectKind), s.Effect.Scale, dropID, dropCount, s.Effect.Radius, s.Effect.Magnitude,
	}
}

// Save записывает состояние способности (UPSERT). Invalid states are refused.
func (r *AbilityStateRepository) Save(ctx context.Context, uid uint64, s ability.State) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("saving ability state for uid %d: %w", uid, err)
	}
	if _, err := r.pool.Exec(ctx, upsertAbilityState, abilityStateArgs(uid, s)...); err != nil {
		return fmt.Errorf("upserting ability state for uid %d: %w", uid, err)
	}
	return nil
}

// SaveAll заменяет все сохранённые состояния одним снимком в одной транзакции.
func (r *AbilityStateRepository) SaveAll(ctx context.Context, states map[uint64]ability.State) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		// Rollback after commit is expected to fail
		_ = tx.Rollback(ctx)
	}()

	if _, err := tx.Exec(ctx, `DELETE FROM ability_states`); err != nil {
		return fmt.Errorf("clearing ability states: %w", err)
	}

	batch := &pgx.Batch{}
	for uid, s := range states {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("saving ability state for uid %d: %w", uid, err)
		}
		batch.Queue(upsertAbilityState, abilityStateArgs(uid, s)...)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("inserting ability states: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing ability states: %w", err)
	}
	return nil
}

// Load загружает состояние по UID. Returns false if none is stored.
func (r *AbilityStateRepository) Load(ctx context.Context, uid uint64) (ability.State, bool, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+abilityStateColumns+` FROM ability_states WHERE entity_uid = $1`, int64(uid))

	_, s, err := scanAbilityState(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return ability.State{}, false, nil
	}
	if err != nil {
		return ability.State{}, false, fmt.Errorf("loading ability state for uid %d: %w", uid, err)
	}
	return s, true, nil
}

// LoadAll загружает все сохранённые состояния.
func (r *AbilityStateRepository) LoadAll(ctx context.Context) (map[uint64]ability.State, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+abilityStateColumns+` FROM ability_states ORDER BY entity_uid`)
	if err != nil {
		return nil, fmt.Errorf("querying ability states: %w", err)
	}
	defer rows.Close()

	out := make(map[uint64]ability.State)
	for rows.Next() {
		uid, s, err := scanAbilityState(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning ability state: %w", err)
		}
		out[uid] = s
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating ability states: %w", err)
	}
	return out, nil
}

// Delete удаляет состояние по UID.
func (r *AbilityStateRepository) Delete(ctx context.Context, uid uint64) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM ability_states WHERE entity_uid = $1`, int64(uid)); err != nil {
		return fmt.Errorf("deleting ability state for uid %d: %w", uid, err)
	}
	return nil
}

func scanAbilityState(row pgx.Row) (uint64, ability.State, error) {
	var (
		uid                                int64
		s                                  ability.State
		phase, objectKind                  string
		prepareDur, prepareTimer, recovery int64
		dropID                             *int32
		dropCount                          *int64
	)
	err := row.Scan(&uid, &s.AbilityID, &phase, &s.Holdable,
		&prepareDur, &prepareTimer, &recovery, &s.Exhausted, &s.MoveFactor,
		&s.Effect.Type, &objectKind, &s.Effect.Scale, &dropID, &dropCount, &s.Effect.Radius, &s.Effect.Magnitude)
	if err != nil {
		return 0, ability.State{}, err
	}

	p, err := ability.ParsePhase(phase)
	if err != nil {
		return 0, ability.State{}, err
	}
	s.Phase = p
	s.PrepareDuration = time.Duration(prepareDur)
	s.PrepareTimer = time.Duration(prepareTimer)
	s.RecoverDuration = time.Duration(recovery)
	s.Effect.ObjectKind = model.ObjectKind(objectKind)
	if dropID != nil && dropCount != nil {
		s.Effect.DropItem = &model.DropItem{ItemID: *dropID, Count: *dropCount}
	}
	return uint64(uid), s, nil
}
