package database

import (
	"database/sql"
	"fmt"

	"github.com/brightframe/rotator-go/internal/infrastructure/security"
)

var tables = []string{
	`CREATE TABLE IF NOT EXISTS content_groups (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		is_active INTEGER NOT NULL DEFAULT 1,
		deletable INTEGER NOT NULL DEFAULT 1,
		usage_type TEXT NOT NULL DEFAULT '',
		play_mode TEXT NOT NULL DEFAULT 'AUTO',
		display_duration_ms INTEGER NOT NULL DEFAULT 5000,
		transition_duration_ms INTEGER NOT NULL DEFAULT 400,
		animation_type TEXT NOT NULL DEFAULT 'FADE',
		dimensions TEXT NOT NULL DEFAULT '{}'
	)`,
	`CREATE TABLE IF NOT EXISTS content_items (
		id TEXT PRIMARY KEY,
		group_id TEXT NOT NULL REFERENCES content_groups(id),
		order_index INTEGER NOT NULL DEFAULT 0,
		is_active INTEGER NOT NULL DEFAULT 1,
		payload TEXT NOT NULL DEFAULT '{}',
		view_count INTEGER NOT NULL DEFAULT 0 CHECK (view_count >= 0),
		click_count INTEGER NOT NULL DEFAULT 0 CHECK (click_count >= 0)
	)`,
	`CREATE TABLE IF NOT EXISTS slots (
		position_token TEXT PRIMARY KEY,
		primary_group_id TEXT NOT NULL REFERENCES content_groups(id),
		fallback_group_id TEXT,
		priority INTEGER NOT NULL DEFAULT 0
	)`,
}

var indexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_content_items_group ON content_items(group_id)`,
	`CREATE INDEX IF NOT EXISTS idx_content_items_group_order ON content_items(group_id, order_index)`,
	`CREATE INDEX IF NOT EXISTS idx_slots_primary_group ON slots(primary_group_id)`,
}

// TableCreator handles the creation of the database schema.
type TableCreator struct{}

// NewTableCreator creates a new TableCreator.
func NewTableCreator() *TableCreator {
	return &TableCreator{}
}

// CreateSchema executes all necessary queries to build the tables and indexes.
func (tc *TableCreator) CreateSchema(db *sql.DB) error {
	for _, tableSQL := range tables {
		if _, err := db.Exec(tableSQL); err != nil {
			return fmt.Errorf("failed to create table for query [%s]: %w", tableSQL, err)
		}
	}

	for _, indexSQL := range indexes {
		if _, err := db.Exec(indexSQL); err != nil {
			return fmt.Errorf("failed to create index for query [%s]: %w", indexSQL, err)
		}
	}
	return nil
}

// SeedInitialContent idempotently creates the protected HERO group a fresh
// install needs so the public site always has a designated hero slot target.
func (tc *TableCreator) SeedInitialContent(db *sql.DB) error {
	var heroID string
	err := db.QueryRow("SELECT id FROM content_groups WHERE usage_type = 'HERO'").Scan(&heroID)
	if err == sql.ErrNoRows {
		heroID = security.GenerateULID()
		_, err = db.Exec(`INSERT INTO content_groups (id, name, is_active, deletable, usage_type) VALUES (?, ?, 1, 0, 'HERO')`,
			heroID, "Hero Rotation")
		if err != nil {
			return fmt.Errorf("failed to insert hero group: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("failed to check for hero group: %w", err)
	}

	var slotExists bool
	err = db.QueryRow("SELECT EXISTS(SELECT 1 FROM slots WHERE position_token = 'home-hero')").Scan(&slotExists)
	if err != nil {
		return fmt.Errorf("failed to check for hero slot: %w", err)
	}

	if !slotExists {
		_, err = db.Exec(`INSERT INTO slots (position_token, primary_group_id, priority) VALUES (?, ?, 0)`,
			"home-hero", heroID)
		if err != nil {
			return fmt.Errorf("failed to insert hero slot: %w", err)
		}
	}

	return nil
}
