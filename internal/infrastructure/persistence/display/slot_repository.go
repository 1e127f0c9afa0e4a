package display

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/brightframe/rotator-go/internal/domain/entities/display"
	"github.com/brightframe/rotator-go/internal/infrastructure/caching/interfaces"
	"github.com/brightframe/rotator-go/internal/infrastructure/observability/logging"
	"github.com/brightframe/rotator-go/pkg/config"
)

type SlotRepository struct {
	db     *sql.DB
	cache  interfaces.DisplayCache
	logger *logging.ChanneledLogger
}

func NewSlotRepository(db *sql.DB, cache interfaces.DisplayCache, logger *logging.ChanneledLogger) *SlotRepository {
	return &SlotRepository{
		db:     db,
		cache:  cache,
		logger: logger,
	}
}

// FindByToken retrieves a slot by its position token, cache-first.
// Returns nil without error when the slot does not exist.
func (r *SlotRepository) FindByToken(ctx context.Context, token string) (*display.Slot, error) {
	if slot, found := r.cache.GetSlot(token); found {
		return slot, nil
	}

	query := `SELECT position_token, primary_group_id, fallback_group_id, priority
	          FROM slots WHERE position_token = ?`

	start := time.Now()
	row := r.db.QueryRowContext(ctx, query, token)

	slot, err := scanSlot(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Database().Error("Failed to scan slot", "error", err.Error(), "token", token)
		return nil, err
	}

	duration := time.Since(start)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery(query, duration)
	}
	r.cache.SetSlot(slot)
	return slot, nil
}

// FindAll retrieves every slot ordered by priority then token. Lower
// priority values rank first.
func (r *SlotRepository) FindAll(ctx context.Context) ([]*display.Slot, error) {
	query := `SELECT position_token, primary_group_id, fallback_group_id, priority
	          FROM slots ORDER BY priority, position_token`

	start := time.Now()
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Database().Error("Failed to query slots", "error", err.Error())
		return nil, fmt.Errorf("failed to query slots: %w", err)
	}
	defer rows.Close()

	var slots []*display.Slot
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate slots: %w", err)
	}

	duration := time.Since(start)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery(query, duration)
	}
	return slots, nil
}

// FindByPrimaryGroup retrieves the slot whose primary group matches, or
// nil when none does. The resolver uses this to continue a fallback walk
// past the first hop. When several slots share the group, the lowest
// priority value wins, then token, for determinism.
func (r *SlotRepository) FindByPrimaryGroup(ctx context.Context, groupID string) (*display.Slot, error) {
	query := `SELECT position_token, primary_group_id, fallback_group_id, priority
	          FROM slots WHERE primary_group_id = ?
	          ORDER BY priority, position_token LIMIT 1`

	row := r.db.QueryRowContext(ctx, query, groupID)

	slot, err := scanSlot(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Database().Error("Failed to query slot by group", "error", err.Error(), "groupId", groupID)
		return nil, err
	}
	return slot, nil
}

func (r *SlotRepository) Store(ctx context.Context, slot *display.Slot) error {
	query := `INSERT INTO slots (position_token, primary_group_id, fallback_group_id, priority)
	          VALUES (?, ?, ?, ?)`

	start := time.Now()
	r.logger.Database().Debug("Executing slot insert", "token", slot.PositionToken)

	_, err := r.db.ExecContext(ctx, query,
		slot.PositionToken, slot.PrimaryGroupID, slot.FallbackGroupID, slot.Priority)
	if err != nil {
		r.logger.Database().Error("Slot insert failed", "error", err.Error(), "token", slot.PositionToken)
		return fmt.Errorf("failed to insert slot: %w", err)
	}

	r.logger.Database().Info("Slot insert completed", "token", slot.PositionToken, "duration", time.Since(start))
	r.cache.SetSlot(slot)
	// Chains that previously dead-ended at this group can now continue
	// through the new slot. Every resolution that walked the group
	// recorded it as a dependency, so dropping on the group catches them.
	r.cache.InvalidateGroup(slot.PrimaryGroupID)
	return nil
}

func (r *SlotRepository) Update(ctx context.Context, slot *display.Slot) error {
	var oldPrimary string
	err := r.db.QueryRowContext(ctx,
		`SELECT primary_group_id FROM slots WHERE position_token = ?`, slot.PositionToken).Scan(&oldPrimary)
	if err == sql.ErrNoRows {
		return fmt.Errorf("slot %s: %w", slot.PositionToken, display.ErrSlotNotFound)
	}
	if err != nil {
		r.logger.Database().Error("Slot lookup failed", "error", err.Error(), "token", slot.PositionToken)
		return fmt.Errorf("failed to load slot %s: %w", slot.PositionToken, err)
	}

	query := `UPDATE slots SET primary_group_id = ?, fallback_group_id = ?, priority = ?
	          WHERE position_token = ?`

	start := time.Now()
	r.logger.Database().Debug("Executing slot update", "token", slot.PositionToken)

	result, err := r.db.ExecContext(ctx, query,
		slot.PrimaryGroupID, slot.FallbackGroupID, slot.Priority, slot.PositionToken)
	if err != nil {
		r.logger.Database().Error("Slot update failed", "error", err.Error(), "token", slot.PositionToken)
		return fmt.Errorf("failed to update slot: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return fmt.Errorf("slot %s: %w", slot.PositionToken, display.ErrSlotNotFound)
	}

	r.logger.Database().Info("Slot update completed", "token", slot.PositionToken, "duration", time.Since(start))
	r.cache.InvalidateSlot(slot.PositionToken)
	// Upstream tokens whose fallback chains pass through this slot cached
	// resolutions that depend on its primary group. Invalidating on the
	// group, old and new, drops them along with the slot's own entry.
	r.cache.InvalidateGroup(oldPrimary)
	if slot.PrimaryGroupID != oldPrimary {
		r.cache.InvalidateGroup(slot.PrimaryGroupID)
	}
	return nil
}

func (r *SlotRepository) Delete(ctx context.Context, token string) error {
	var primary string
	err := r.db.QueryRowContext(ctx,
		`SELECT primary_group_id FROM slots WHERE position_token = ?`, token).Scan(&primary)
	if err != nil && err != sql.ErrNoRows {
		r.logger.Database().Error("Slot lookup failed", "error", err.Error(), "token", token)
		return fmt.Errorf("failed to load slot %s: %w", token, err)
	}

	start := time.Now()
	if _, err := r.db.ExecContext(ctx, `DELETE FROM slots WHERE position_token = ?`, token); err != nil {
		r.logger.Database().Error("Slot delete failed", "error", err.Error(), "token", token)
		return fmt.Errorf("failed to delete slot: %w", err)
	}

	r.logger.Database().Info("Slot delete completed", "token", token, "duration", time.Since(start))
	r.cache.InvalidateSlot(token)
	if primary != "" {
		r.cache.InvalidateGroup(primary)
	}
	return nil
}

func scanSlot(row rowScanner) (*display.Slot, error) {
	var slot display.Slot
	var fallback sql.NullString

	err := row.Scan(&slot.PositionToken, &slot.PrimaryGroupID, &fallback, &slot.Priority)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan slot: %w", err)
	}

	if fallback.Valid {
		slot.FallbackGroupID = &fallback.String
	}
	return &slot, nil
}
