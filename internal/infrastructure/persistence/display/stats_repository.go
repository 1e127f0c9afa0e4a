package display

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/brightframe/rotator-go/internal/infrastructure/observability/logging"
	"github.com/brightframe/rotator-go/pkg/config"
)

// StatsRepository applies engagement counter increments. Increments are
// expressed relative to the stored value so concurrent writers never lose
// updates; no read-modify-write happens in application code.
type StatsRepository struct {
	db     *sql.DB
	logger *logging.ChanneledLogger
}

func NewStatsRepository(db *sql.DB, logger *logging.ChanneledLogger) *StatsRepository {
	return &StatsRepository{
		db:     db,
		logger: logger,
	}
}

// IncrementView bumps an item's view counter. The bool reports whether
// the item existed; unknown items are not an error on this path.
func (r *StatsRepository) IncrementView(ctx context.Context, itemID string) (bool, error) {
	return r.increment(ctx, itemID, `UPDATE content_items SET view_count = view_count + 1 WHERE id = ?`)
}

// IncrementClick bumps an item's click counter.
func (r *StatsRepository) IncrementClick(ctx context.Context, itemID string) (bool, error) {
	return r.increment(ctx, itemID, `UPDATE content_items SET click_count = click_count + 1 WHERE id = ?`)
}

func (r *StatsRepository) increment(ctx context.Context, itemID, query string) (bool, error) {
	start := time.Now()

	result, err := r.db.ExecContext(ctx, query, itemID)
	if err != nil {
		r.logger.Stats().Error("Counter increment failed", "error", err.Error(), "itemId", itemID)
		return false, fmt.Errorf("failed to increment counter for item %s: %w", itemID, err)
	}

	duration := time.Since(start)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery(query, duration)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read increment result for item %s: %w", itemID, err)
	}
	return affected > 0, nil
}
