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

type ItemRepository struct {
	db     *sql.DB
	cache  interfaces.DisplayCache
	logger *logging.ChanneledLogger
}

func NewItemRepository(db *sql.DB, cache interfaces.DisplayCache, logger *logging.ChanneledLogger) *ItemRepository {
	return &ItemRepository{
		db:     db,
		cache:  cache,
		logger: logger,
	}
}

// FindByID retrieves a single item. Returns nil without error when absent.
func (r *ItemRepository) FindByID(ctx context.Context, id string) (*display.ContentItem, error) {
	query := `SELECT id, group_id, order_index, is_active, payload, view_count, click_count
	          FROM content_items WHERE id = ?`

	start := time.Now()
	row := r.db.QueryRowContext(ctx, query, id)

	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Database().Error("Failed to scan item", "error", err.Error(), "id", id)
		return nil, err
	}

	duration := time.Since(start)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery(query, duration)
	}
	return item, nil
}

// FindByGroup retrieves every item of a group in stored order, including
// inactive rows. Eligibility filtering is an entity concern, not a query one.
func (r *ItemRepository) FindByGroup(ctx context.Context, groupID string) ([]*display.ContentItem, error) {
	start := time.Now()
	items, err := loadItemsForGroup(ctx, r.db, groupID)
	if err != nil {
		r.logger.Database().Error("Failed to load items", "error", err.Error(), "groupId", groupID)
		return nil, err
	}

	duration := time.Since(start)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery("SELECT content_items by group", duration)
	}
	return items, nil
}

func (r *ItemRepository) Store(ctx context.Context, item *display.ContentItem) error {
	query := `INSERT INTO content_items (id, group_id, order_index, is_active, payload, view_count, click_count)
	          VALUES (?, ?, ?, ?, ?, 0, 0)`

	start := time.Now()
	r.logger.Database().Debug("Executing item insert", "id", item.ID, "groupId", item.GroupID)

	_, err := r.db.ExecContext(ctx, query,
		item.ID, item.GroupID, item.Order, item.IsActive, string(item.Payload))
	if err != nil {
		r.logger.Database().Error("Item insert failed", "error", err.Error(), "id", item.ID)
		return fmt.Errorf("failed to insert item: %w", err)
	}

	r.logger.Database().Info("Item insert completed", "id", item.ID, "duration", time.Since(start))
	r.cache.InvalidateGroup(item.GroupID)
	return nil
}

// Update writes item content and visibility. Ordering is deliberately not
// touched here; order changes go through the reorder transaction.
func (r *ItemRepository) Update(ctx context.Context, item *display.ContentItem) error {
	query := `UPDATE content_items SET is_active = ?, payload = ? WHERE id = ?`

	start := time.Now()
	r.logger.Database().Debug("Executing item update", "id", item.ID)

	result, err := r.db.ExecContext(ctx, query, item.IsActive, string(item.Payload), item.ID)
	if err != nil {
		r.logger.Database().Error("Item update failed", "error", err.Error(), "id", item.ID)
		return fmt.Errorf("failed to update item: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return fmt.Errorf("item %s: %w", item.ID, display.ErrItemNotFound)
	}

	r.logger.Database().Info("Item update completed", "id", item.ID, "duration", time.Since(start))
	r.cache.InvalidateGroup(item.GroupID)
	return nil
}

// Deactivate soft-deletes an item. The row and its counters survive.
func (r *ItemRepository) Deactivate(ctx context.Context, id string) error {
	item, err := r.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if item == nil {
		return fmt.Errorf("item %s: %w", id, display.ErrItemNotFound)
	}

	_, err = r.db.ExecContext(ctx, `UPDATE content_items SET is_active = 0 WHERE id = ?`, id)
	if err != nil {
		r.logger.Database().Error("Item deactivate failed", "error", err.Error(), "id", id)
		return fmt.Errorf("failed to deactivate item: %w", err)
	}

	r.logger.Database().Info("Item deactivated", "id", id)
	r.cache.InvalidateGroup(item.GroupID)
	return nil
}

// Purge hard-deletes an item row, counters included.
func (r *ItemRepository) Purge(ctx context.Context, id string) error {
	item, err := r.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if item == nil {
		return fmt.Errorf("item %s: %w", id, display.ErrItemNotFound)
	}

	_, err = r.db.ExecContext(ctx, `DELETE FROM content_items WHERE id = ?`, id)
	if err != nil {
		r.logger.Database().Error("Item purge failed", "error", err.Error(), "id", id)
		return fmt.Errorf("failed to purge item: %w", err)
	}

	r.logger.Database().Info("Item purged", "id", id)
	r.cache.InvalidateGroup(item.GroupID)
	return nil
}
