// Package display provides repositories for groups, items, and slots
package display

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/brightframe/rotator-go/internal/domain/entities/display"
	"github.com/brightframe/rotator-go/internal/infrastructure/caching/interfaces"
	"github.com/brightframe/rotator-go/internal/infrastructure/observability/logging"
	"github.com/brightframe/rotator-go/pkg/config"
)

type GroupRepository struct {
	db     *sql.DB
	cache  interfaces.DisplayCache
	logger *logging.ChanneledLogger
}

func NewGroupRepository(db *sql.DB, cache interfaces.DisplayCache, logger *logging.ChanneledLogger) *GroupRepository {
	return &GroupRepository{
		db:     db,
		cache:  cache,
		logger: logger,
	}
}

// FindByID retrieves a group with its items, cache-first. Returns nil
// without error when the group does not exist.
func (r *GroupRepository) FindByID(ctx context.Context, id string) (*display.ContentGroup, error) {
	if group, found := r.cache.GetGroup(id); found {
		return group, nil
	}

	group, err := r.loadFromDB(ctx, id)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, nil
	}

	r.cache.SetGroup(group)
	return group, nil
}

// FindAll retrieves every group with items. Administrative path; bypasses
// the cache so operators always see committed state.
func (r *GroupRepository) FindAll(ctx context.Context) ([]*display.ContentGroup, error) {
	query := `SELECT id, name, is_active, deletable, usage_type,
	                 play_mode, display_duration_ms, transition_duration_ms, animation_type, dimensions
	          FROM content_groups ORDER BY name`

	start := time.Now()
	r.logger.Database().Debug("Loading all groups from database")

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Database().Error("Failed to query groups", "error", err.Error())
		return nil, fmt.Errorf("failed to query groups: %w", err)
	}
	defer rows.Close()

	var groups []*display.ContentGroup
	for rows.Next() {
		group, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}
		groups = append(groups, group)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}

	for _, group := range groups {
		items, err := loadItemsForGroup(ctx, r.db, group.ID)
		if err != nil {
			return nil, err
		}
		group.Items = items
	}

	r.logger.Database().Info("Loaded groups from database", "count", len(groups), "duration", time.Since(start))
	duration := time.Since(start)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery(query, duration)
	}
	return groups, nil
}

func (r *GroupRepository) Store(ctx context.Context, group *display.ContentGroup) error {
	dimensionsJSON, _ := json.Marshal(group.RotationPolicy.Dimensions)

	query := `INSERT INTO content_groups
	          (id, name, is_active, deletable, usage_type, play_mode, display_duration_ms, transition_duration_ms, animation_type, dimensions)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	start := time.Now()
	r.logger.Database().Debug("Executing group insert", "id", group.ID)

	_, err := r.db.ExecContext(ctx, query,
		group.ID, group.Name, group.IsActive, group.Deletable, group.UsageType,
		string(group.RotationPolicy.PlayMode), group.RotationPolicy.DisplayDurationMs,
		group.RotationPolicy.TransitionDurationMs, string(group.RotationPolicy.AnimationType),
		string(dimensionsJSON))
	if err != nil {
		r.logger.Database().Error("Group insert failed", "error", err.Error(), "id", group.ID)
		return fmt.Errorf("failed to insert group: %w", err)
	}

	r.logger.Database().Info("Group insert completed", "id", group.ID, "duration", time.Since(start))
	duration := time.Since(start)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery(query, duration)
	}
	r.cache.SetGroup(group)
	return nil
}

func (r *GroupRepository) Update(ctx context.Context, group *display.ContentGroup) error {
	dimensionsJSON, _ := json.Marshal(group.RotationPolicy.Dimensions)

	query := `UPDATE content_groups
	          SET name = ?, is_active = ?, deletable = ?, usage_type = ?,
	              play_mode = ?, display_duration_ms = ?, transition_duration_ms = ?, animation_type = ?, dimensions = ?
	          WHERE id = ?`

	start := time.Now()
	r.logger.Database().Debug("Executing group update", "id", group.ID)

	_, err := r.db.ExecContext(ctx, query,
		group.Name, group.IsActive, group.Deletable, group.UsageType,
		string(group.RotationPolicy.PlayMode), group.RotationPolicy.DisplayDurationMs,
		group.RotationPolicy.TransitionDurationMs, string(group.RotationPolicy.AnimationType),
		string(dimensionsJSON), group.ID)
	if err != nil {
		r.logger.Database().Error("Group update failed", "error", err.Error(), "id", group.ID)
		return fmt.Errorf("failed to update group: %w", err)
	}

	r.logger.Database().Info("Group update completed", "id", group.ID, "duration", time.Since(start))
	duration := time.Since(start)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery(query, duration)
	}
	// Drop rather than re-set: the entity passed in may not carry items.
	r.cache.InvalidateGroup(group.ID)
	return nil
}

func (r *GroupRepository) Delete(ctx context.Context, id string) error {
	start := time.Now()
	r.logger.Database().Debug("Executing group delete", "id", id)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin group delete: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM content_items WHERE group_id = ?`, id); err != nil {
		r.logger.Database().Error("Group item delete failed", "error", err.Error(), "id", id)
		return fmt.Errorf("failed to delete group items: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM content_groups WHERE id = ?`, id); err != nil {
		r.logger.Database().Error("Group delete failed", "error", err.Error(), "id", id)
		return fmt.Errorf("failed to delete group: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit group delete: %w", err)
	}

	r.logger.Database().Info("Group delete completed", "id", id, "duration", time.Since(start))
	r.cache.InvalidateGroup(id)
	return nil
}

func (r *GroupRepository) loadFromDB(ctx context.Context, id string) (*display.ContentGroup, error) {
	query := `SELECT id, name, is_active, deletable, usage_type,
	                 play_mode, display_duration_ms, transition_duration_ms, animation_type, dimensions
	          FROM content_groups WHERE id = ?`

	start := time.Now()
	r.logger.Database().Debug("Loading group from database", "id", id)

	row := r.db.QueryRowContext(ctx, query, id)

	group, err := scanGroup(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Database().Error("Failed to scan group", "error", err.Error(), "id", id)
		return nil, err
	}

	items, err := loadItemsForGroup(ctx, r.db, id)
	if err != nil {
		return nil, err
	}
	group.Items = items

	r.logger.Database().Info("Group loaded from database", "id", id, "itemCount", len(items), "duration", time.Since(start))
	duration := time.Since(start)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery(query, duration)
	}
	return group, nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanGroup(row rowScanner) (*display.ContentGroup, error) {
	var group display.ContentGroup
	var playMode, animationType, dimensionsStr string

	err := row.Scan(&group.ID, &group.Name, &group.IsActive, &group.Deletable, &group.UsageType,
		&playMode, &group.RotationPolicy.DisplayDurationMs, &group.RotationPolicy.TransitionDurationMs,
		&animationType, &dimensionsStr)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan group: %w", err)
	}

	group.RotationPolicy.PlayMode = display.PlayMode(playMode)
	group.RotationPolicy.AnimationType = display.AnimationType(animationType)
	if err := json.Unmarshal([]byte(dimensionsStr), &group.RotationPolicy.Dimensions); err != nil {
		return nil, fmt.Errorf("failed to parse group dimensions: %w", err)
	}

	return &group, nil
}

func loadItemsForGroup(ctx context.Context, db *sql.DB, groupID string) ([]*display.ContentItem, error) {
	query := `SELECT id, group_id, order_index, is_active, payload, view_count, click_count
	          FROM content_items WHERE group_id = ? ORDER BY order_index, id`

	rows, err := db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to query items for group %s: %w", groupID, err)
	}
	defer rows.Close()

	var items []*display.ContentItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func scanItem(row rowScanner) (*display.ContentItem, error) {
	var item display.ContentItem
	var payloadStr string

	err := row.Scan(&item.ID, &item.GroupID, &item.Order, &item.IsActive,
		&payloadStr, &item.ViewCount, &item.ClickCount)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan item: %w", err)
	}

	item.Payload = json.RawMessage(payloadStr)
	return &item, nil
}
