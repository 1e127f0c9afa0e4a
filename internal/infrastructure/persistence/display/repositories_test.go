package display

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	_ "github.com/mattn/go-sqlite3"

	"github.com/brightframe/rotator-go/internal/domain/entities/display"
	"github.com/brightframe/rotator-go/internal/domain/ordering"
	"github.com/brightframe/rotator-go/internal/infrastructure/caching/manager"
	"github.com/brightframe/rotator-go/internal/infrastructure/observability/logging"
	"github.com/brightframe/rotator-go/internal/infrastructure/persistence/database"
)

func newTestLogger(t *testing.T) *logging.ChanneledLogger {
	t.Helper()
	logger, err := logging.NewChanneledLogger(&logging.LoggerConfig{
		OutputToFile:    false,
		OutputToConsole: false,
		JSONFormat:      true,
		DefaultLevel:    slog.LevelError + 4,
		ChannelLevels:   map[logging.Channel]slog.Level{},
	})
	if err != nil {
		t.Fatalf("failed to create test logger: %v", err)
	}
	return logger
}

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	// In-memory sqlite drops its schema if the pool opens a second
	// connection, so pin the pool to one.
	db.SetMaxOpenConns(1)

	if err := database.NewTableCreator().CreateSchema(db); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}
	return db
}

func newTestCache(t *testing.T) *manager.Manager {
	t.Helper()
	return manager.NewManagerWithTTLs(newTestLogger(t), time.Minute, time.Minute, time.Minute)
}

func seedGroup(t *testing.T, db *sql.DB, id string, itemOrders map[string]int) {
	t.Helper()
	_, err := db.Exec(
		`INSERT INTO content_groups (id, name, is_active, deletable, usage_type, play_mode, display_duration_ms, transition_duration_ms, animation_type, dimensions)
		 VALUES (?, ?, 1, 1, 'banner', 'AUTO', 5000, 500, 'FADE', '{}')`,
		id, "group "+id)
	if err != nil {
		t.Fatalf("failed to seed group %s: %v", id, err)
	}
	for itemID, order := range itemOrders {
		_, err := db.Exec(
			`INSERT INTO content_items (id, group_id, order_index, is_active, payload, view_count, click_count)
			 VALUES (?, ?, ?, 1, '{}', 0, 0)`,
			itemID, id, order)
		if err != nil {
			t.Fatalf("failed to seed item %s: %v", itemID, err)
		}
	}
}

func TestGroupRepositoryRoundTrip(t *testing.T) {
	db := newTestDB(t)
	cache := newTestCache(t)
	repo := NewGroupRepository(db, cache, newTestLogger(t))
	ctx := context.Background()

	group := &display.ContentGroup{
		ID:        "grp-1",
		Name:      "Homepage banners",
		IsActive:  true,
		Deletable: true,
		UsageType: "banner",
		RotationPolicy: display.RotationPolicy{
			PlayMode:             display.PlayModeAuto,
			DisplayDurationMs:    5000,
			TransitionDurationMs: 500,
			AnimationType:        display.AnimationFade,
		},
	}
	if err := repo.Store(ctx, group); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	itemRepo := NewItemRepository(db, cache, newTestLogger(t))
	for i, id := range []string{"itm-b", "itm-a", "itm-c"} {
		item := &display.ContentItem{
			ID:       id,
			GroupID:  "grp-1",
			Order:    3 - i,
			IsActive: true,
			Payload:  json.RawMessage(`{"headline":"x"}`),
		}
		if err := itemRepo.Store(ctx, item); err != nil {
			t.Fatalf("item Store failed: %v", err)
		}
	}

	loaded, err := repo.FindByID(ctx, "grp-1")
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if loaded == nil {
		t.Fatal("expected group, got nil")
	}
	if loaded.Name != "Homepage banners" {
		t.Errorf("name = %q", loaded.Name)
	}
	if len(loaded.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(loaded.Items))
	}
	// order_index ascending: itm-c(1), itm-a(2), itm-b(3)
	wantOrder := []string{"itm-c", "itm-a", "itm-b"}
	for i, item := range loaded.Items {
		if item.ID != wantOrder[i] {
			t.Errorf("items[%d] = %s, want %s", i, item.ID, wantOrder[i])
		}
	}
}

func TestGroupRepositoryFindByIDMissing(t *testing.T) {
	repo := NewGroupRepository(newTestDB(t), newTestCache(t), newTestLogger(t))

	group, err := repo.FindByID(context.Background(), "no-such-group")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if group != nil {
		t.Errorf("expected nil for missing group, got %+v", group)
	}
}

func TestGroupRepositoryDeleteRemovesItems(t *testing.T) {
	db := newTestDB(t)
	seedGroup(t, db, "grp-del", map[string]int{"itm-1": 1, "itm-2": 2})
	repo := NewGroupRepository(db, newTestCache(t), newTestLogger(t))
	ctx := context.Background()

	if err := repo.Delete(ctx, "grp-del"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM content_items WHERE group_id = 'grp-del'`).Scan(&count); err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected orphaned items removed, found %d", count)
	}
}

func TestItemRepositoryDeactivateKeepsCounters(t *testing.T) {
	db := newTestDB(t)
	seedGroup(t, db, "grp-1", map[string]int{"itm-1": 1})
	if _, err := db.Exec(`UPDATE content_items SET view_count = 7 WHERE id = 'itm-1'`); err != nil {
		t.Fatalf("failed to set counter: %v", err)
	}

	repo := NewItemRepository(db, newTestCache(t), newTestLogger(t))
	ctx := context.Background()

	if err := repo.Deactivate(ctx, "itm-1"); err != nil {
		t.Fatalf("Deactivate failed: %v", err)
	}

	item, err := repo.FindByID(ctx, "itm-1")
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if item == nil {
		t.Fatal("soft-deleted item should still exist")
	}
	if item.IsActive {
		t.Error("item should be inactive after Deactivate")
	}
	if item.ViewCount != 7 {
		t.Errorf("view count = %d, want 7", item.ViewCount)
	}
}

func TestItemRepositoryPurgeRemovesRow(t *testing.T) {
	db := newTestDB(t)
	seedGroup(t, db, "grp-1", map[string]int{"itm-1": 1})
	repo := NewItemRepository(db, newTestCache(t), newTestLogger(t))
	ctx := context.Background()

	if err := repo.Purge(ctx, "itm-1"); err != nil {
		t.Fatalf("Purge failed: %v", err)
	}

	item, err := repo.FindByID(ctx, "itm-1")
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if item != nil {
		t.Error("purged item should be gone")
	}

	if err := repo.Purge(ctx, "itm-1"); !errors.Is(err, display.ErrItemNotFound) {
		t.Errorf("second purge error = %v, want ErrItemNotFound", err)
	}
}

func TestSlotRepositoryRoundTrip(t *testing.T) {
	db := newTestDB(t)
	seedGroup(t, db, "grp-primary", nil)
	seedGroup(t, db, "grp-fallback", nil)
	repo := NewSlotRepository(db, newTestCache(t), newTestLogger(t))
	ctx := context.Background()

	fallback := "grp-fallback"
	slot := &display.Slot{
		PositionToken:   "home-top",
		PrimaryGroupID:  "grp-primary",
		FallbackGroupID: &fallback,
		Priority:        10,
	}
	if err := repo.Store(ctx, slot); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	loaded, err := repo.FindByToken(ctx, "home-top")
	if err != nil {
		t.Fatalf("FindByToken failed: %v", err)
	}
	if loaded == nil {
		t.Fatal("expected slot, got nil")
	}
	if loaded.FallbackGroupID == nil || *loaded.FallbackGroupID != "grp-fallback" {
		t.Errorf("fallback = %v, want grp-fallback", loaded.FallbackGroupID)
	}

	loaded.FallbackGroupID = nil
	if err := repo.Update(ctx, loaded); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	reloaded, err := repo.FindByToken(ctx, "home-top")
	if err != nil {
		t.Fatalf("FindByToken after update failed: %v", err)
	}
	if reloaded.FallbackGroupID != nil {
		t.Errorf("fallback should be cleared, got %v", *reloaded.FallbackGroupID)
	}
}

func TestSlotRepositoryFindByPrimaryGroup(t *testing.T) {
	db := newTestDB(t)
	seedGroup(t, db, "grp-a", nil)
	seedGroup(t, db, "grp-b", nil)
	repo := NewSlotRepository(db, newTestCache(t), newTestLogger(t))
	ctx := context.Background()

	for _, s := range []*display.Slot{
		{PositionToken: "tok-1", PrimaryGroupID: "grp-a", Priority: 1},
		{PositionToken: "tok-2", PrimaryGroupID: "grp-a", Priority: 5},
		{PositionToken: "tok-3", PrimaryGroupID: "grp-b", Priority: 9},
	} {
		if err := repo.Store(ctx, s); err != nil {
			t.Fatalf("Store %s failed: %v", s.PositionToken, err)
		}
	}

	slot, err := repo.FindByPrimaryGroup(ctx, "grp-a")
	if err != nil {
		t.Fatalf("FindByPrimaryGroup failed: %v", err)
	}
	if slot == nil {
		t.Fatal("expected a slot, got nil")
	}
	if slot.PositionToken != "tok-1" {
		t.Errorf("expected lowest priority value to win, got %s", slot.PositionToken)
	}

	none, err := repo.FindByPrimaryGroup(ctx, "grp-unreferenced")
	if err != nil {
		t.Fatalf("FindByPrimaryGroup for unreferenced group failed: %v", err)
	}
	if none != nil {
		t.Errorf("expected nil for unreferenced group, got %+v", none)
	}
}

func TestSlotRepositoryUpdateDropsChainedResolutions(t *testing.T) {
	db := newTestDB(t)
	seedGroup(t, db, "grp-a", nil)
	seedGroup(t, db, "grp-b", nil)
	cache := newTestCache(t)
	repo := NewSlotRepository(db, cache, newTestLogger(t))
	ctx := context.Background()

	fallback := "grp-b"
	if err := repo.Store(ctx, &display.Slot{PositionToken: "home-top", PrimaryGroupID: "grp-a", FallbackGroupID: &fallback}); err != nil {
		t.Fatalf("Store home-top failed: %v", err)
	}
	if err := repo.Store(ctx, &display.Slot{PositionToken: "sidebar", PrimaryGroupID: "grp-b"}); err != nil {
		t.Fatalf("Store sidebar failed: %v", err)
	}

	// home-top's cached outcome walked through grp-b, the sidebar slot's
	// primary, before settling. Rewiring the sidebar slot must drop it
	// even though the token differs.
	cache.SetResolution("home-top", &display.Resolution{}, []string{"grp-a", "grp-b"})
	cache.SetResolution("unrelated", &display.Resolution{}, []string{"grp-c"})

	if err := repo.Update(ctx, &display.Slot{PositionToken: "sidebar", PrimaryGroupID: "grp-b", Priority: 2}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if _, found := cache.GetResolution("home-top"); found {
		t.Error("resolution chained through the updated slot survived")
	}
	if _, found := cache.GetResolution("unrelated"); !found {
		t.Error("resolution with no dependency on the slot was dropped")
	}
}

func TestSlotRepositoryDeleteDropsChainedResolutions(t *testing.T) {
	db := newTestDB(t)
	seedGroup(t, db, "grp-a", nil)
	seedGroup(t, db, "grp-b", nil)
	cache := newTestCache(t)
	repo := NewSlotRepository(db, cache, newTestLogger(t))
	ctx := context.Background()

	if err := repo.Store(ctx, &display.Slot{PositionToken: "sidebar", PrimaryGroupID: "grp-b"}); err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	cache.SetResolution("home-top", &display.Resolution{}, []string{"grp-a", "grp-b"})

	if err := repo.Delete(ctx, "sidebar"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, found := cache.GetResolution("home-top"); found {
		t.Error("resolution chained through the deleted slot survived")
	}
}

func TestStatsRepositoryIncrement(t *testing.T) {
	db := newTestDB(t)
	seedGroup(t, db, "grp-1", map[string]int{"itm-1": 1})
	repo := NewStatsRepository(db, newTestLogger(t))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		found, err := repo.IncrementView(ctx, "itm-1")
		if err != nil {
			t.Fatalf("IncrementView failed: %v", err)
		}
		if !found {
			t.Fatal("expected item to exist")
		}
	}
	found, err := repo.IncrementClick(ctx, "itm-1")
	if err != nil {
		t.Fatalf("IncrementClick failed: %v", err)
	}
	if !found {
		t.Fatal("expected item to exist")
	}

	var views, clicks int64
	if err := db.QueryRow(`SELECT view_count, click_count FROM content_items WHERE id = 'itm-1'`).Scan(&views, &clicks); err != nil {
		t.Fatalf("counter query failed: %v", err)
	}
	if views != 3 || clicks != 1 {
		t.Errorf("counters = (%d, %d), want (3, 1)", views, clicks)
	}
}

func TestStatsRepositoryUnknownItem(t *testing.T) {
	repo := NewStatsRepository(newTestDB(t), newTestLogger(t))

	found, err := repo.IncrementView(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("unknown item should not error, got %v", err)
	}
	if found {
		t.Error("unknown item reported as found")
	}
}

func TestReorderRepositoryOwnersByIDs(t *testing.T) {
	db := newTestDB(t)
	seedGroup(t, db, "grp-a", map[string]int{"itm-1": 1, "itm-2": 2})
	seedGroup(t, db, "grp-b", map[string]int{"itm-3": 1})
	repo := NewReorderRepository(db, newTestCache(t), newTestLogger(t))

	owners, err := repo.OwnersByIDs(context.Background(), []string{"itm-1", "itm-3", "ghost"})
	if err != nil {
		t.Fatalf("OwnersByIDs failed: %v", err)
	}
	if len(owners) != 2 {
		t.Fatalf("expected 2 owners, got %d", len(owners))
	}
	if owners["itm-1"] != "grp-a" || owners["itm-3"] != "grp-b" {
		t.Errorf("owners = %v", owners)
	}
	if _, ok := owners["ghost"]; ok {
		t.Error("unknown item should be absent from owners")
	}
}

func TestReorderRepositoryApplyOrders(t *testing.T) {
	db := newTestDB(t)
	seedGroup(t, db, "grp-a", map[string]int{"itm-1": 1, "itm-2": 2, "itm-3": 3})
	repo := NewReorderRepository(db, newTestCache(t), newTestLogger(t))

	pairs := []ordering.Pair{
		{ItemID: "itm-1", NewOrder: 3},
		{ItemID: "itm-2", NewOrder: 1},
		{ItemID: "itm-3", NewOrder: 2},
	}
	if err := repo.ApplyOrders(context.Background(), "grp-a", pairs); err != nil {
		t.Fatalf("ApplyOrders failed: %v", err)
	}

	rows, err := db.Query(`SELECT id FROM content_items WHERE group_id = 'grp-a' ORDER BY order_index, id`)
	if err != nil {
		t.Fatalf("order query failed: %v", err)
	}
	defer rows.Close()

	var got []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			t.Fatalf("scan failed: %v", err)
		}
		got = append(got, id)
	}
	want := []string{"itm-2", "itm-3", "itm-1"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order after reorder = %v, want %v", got, want)
		}
	}
}

func TestReorderRepositoryForeignItemRollsBack(t *testing.T) {
	db := newTestDB(t)
	seedGroup(t, db, "grp-a", map[string]int{"itm-1": 1, "itm-2": 2})
	seedGroup(t, db, "grp-b", map[string]int{"itm-x": 1})
	repo := NewReorderRepository(db, newTestCache(t), newTestLogger(t))

	pairs := []ordering.Pair{
		{ItemID: "itm-1", NewOrder: 2},
		{ItemID: "itm-x", NewOrder: 1}, // belongs to grp-b
	}
	err := repo.ApplyOrders(context.Background(), "grp-a", pairs)
	if !errors.Is(err, ordering.ErrScopeMismatch) {
		t.Fatalf("error = %v, want ErrScopeMismatch", err)
	}

	// The itm-1 update must not have survived the rollback.
	var order int
	if err := db.QueryRow(`SELECT order_index FROM content_items WHERE id = 'itm-1'`).Scan(&order); err != nil {
		t.Fatalf("order query failed: %v", err)
	}
	if order != 1 {
		t.Errorf("itm-1 order = %d after failed batch, want 1", order)
	}
}

func TestReorderRepositoryMidBatchFailureRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(`UPDATE content_items SET order_index`)
	prep.ExpectExec().
		WithArgs(1, "itm-1", "grp-a").
		WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().
		WithArgs(2, "itm-2", "grp-a").
		WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	repo := NewReorderRepository(db, newTestCache(t), newTestLogger(t))
	pairs := []ordering.Pair{
		{ItemID: "itm-1", NewOrder: 1},
		{ItemID: "itm-2", NewOrder: 2},
	}
	if err := repo.ApplyOrders(context.Background(), "grp-a", pairs); err == nil {
		t.Fatal("expected error from failing statement")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet sqlmock expectations: %v", err)
	}
}
