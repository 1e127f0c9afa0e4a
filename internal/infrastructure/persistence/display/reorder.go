package display

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/brightframe/rotator-go/internal/domain/ordering"
	"github.com/brightframe/rotator-go/internal/infrastructure/caching/interfaces"
	"github.com/brightframe/rotator-go/internal/infrastructure/observability/logging"
)

// ReorderRepository applies batch order rewrites in a single transaction.
// Either every pair lands or none do.
type ReorderRepository struct {
	db     *sql.DB
	cache  interfaces.DisplayCache
	logger *logging.ChanneledLogger
}

func NewReorderRepository(db *sql.DB, cache interfaces.DisplayCache, logger *logging.ChanneledLogger) *ReorderRepository {
	return &ReorderRepository{
		db:     db,
		cache:  cache,
		logger: logger,
	}
}

// OwnersByIDs maps each requested item id to its owning group id. Items
// that do not exist are simply absent from the result.
func (r *ReorderRepository) OwnersByIDs(ctx context.Context, itemIDs []string) (map[string]string, error) {
	owners := make(map[string]string, len(itemIDs))
	if len(itemIDs) == 0 {
		return owners, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(itemIDs)), ",")
	query := fmt.Sprintf(`SELECT id, group_id FROM content_items WHERE id IN (%s)`, placeholders)

	args := make([]any, len(itemIDs))
	for i, id := range itemIDs {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Database().Error("Failed to query item owners", "error", err.Error())
		return nil, fmt.Errorf("failed to query item owners: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var itemID, groupID string
		if err := rows.Scan(&itemID, &groupID); err != nil {
			return nil, fmt.Errorf("failed to scan item owner: %w", err)
		}
		owners[itemID] = groupID
	}
	return owners, rows.Err()
}

// ApplyOrders rewrites the order index of each pair inside one transaction.
// The group_id guard on every statement means a row moved out of the scope
// between validation and apply fails the whole batch instead of half of it.
func (r *ReorderRepository) ApplyOrders(ctx context.Context, scopeID string, pairs []ordering.Pair) error {
	start := time.Now()
	r.logger.Content().Debug("Applying reorder batch", "scopeId", scopeID, "pairs", len(pairs))

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin reorder transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `UPDATE content_items SET order_index = ? WHERE id = ? AND group_id = ?`)
	if err != nil {
		return fmt.Errorf("failed to prepare reorder statement: %w", err)
	}
	defer stmt.Close()

	for _, pair := range pairs {
		result, err := stmt.ExecContext(ctx, pair.NewOrder, pair.ItemID, scopeID)
		if err != nil {
			r.logger.Content().Error("Reorder statement failed",
				"error", err.Error(), "scopeId", scopeID, "itemId", pair.ItemID)
			return fmt.Errorf("failed to reorder item %s: %w", pair.ItemID, err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read reorder result for item %s: %w", pair.ItemID, err)
		}
		if affected == 0 {
			return fmt.Errorf("item %s no longer in scope %s: %w", pair.ItemID, scopeID, ordering.ErrScopeMismatch)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reorder transaction: %w", err)
	}

	r.logger.Content().Info("Reorder batch applied",
		"scopeId", scopeID, "pairs", len(pairs), "duration", time.Since(start))
	r.cache.InvalidateGroup(scopeID)
	return nil
}
