package library

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"
)

func setupTestCollection(t *testing.T) *LocalCollection {
	t.Helper()

	tmpDir := t.TempDir()
	coll, err := NewLocalCollection(
		filepath.Join(tmpDir, "test.db"),
		filepath.Join(tmpDir, "index.bleve"),
	)
	if err != nil {
		t.Fatalf("creating collection: %v", err)
	}
	t.Cleanup(func() { coll.Close() })
	return coll
}

func seedItems(t *testing.T, coll *LocalCollection, n int) []*Voizy {
	t.Helper()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	items := make([]*Voizy, 0, n)
	for i := 0; i < n; i++ {
		item := &Voizy{
			ID:        fmt.Sprintf("item-%03d", i),
			Name:      fmt.Sprintf("Recording %d", i),
			Tags:      []string{"daily"},
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := coll.SaveItem(item); err != nil {
			t.Fatalf("seeding item %d: %v", i, err)
		}
		items = append(items, item)
	}
	return items
}

func TestSaveAndGetItem(t *testing.T) {
	coll := setupTestCollection(t)

	item := &Voizy{
		ID:          "abc",
		Name:        "Morning thoughts",
		Tags:        []string{"morning", "coffee"},
		PlaybackURL: "https://cdn.example.com/abc.mp3",
		RemotePath:  "voizys/abc.mp3",
		CreatedAt:   time.Now(),
	}

	if err := coll.SaveItem(item); err != nil {
		t.Fatalf("saving item: %v", err)
	}

	got, err := coll.GetItem("abc")
	if err != nil {
		t.Fatalf("getting item: %v", err)
	}
	if got.Name != item.Name {
		t.Errorf("expected name %q, got %q", item.Name, got.Name)
	}
	if got.RemotePath != item.RemotePath {
		t.Errorf("expected remote path %q, got %q", item.RemotePath, got.RemotePath)
	}
}

func TestGetItem_NotFound(t *testing.T) {
	coll := setupTestCollection(t)

	if _, err := coll.GetItem("missing"); err == nil {
		t.Error("expected error for missing item, got nil")
	}
}

func TestSaveItem_EmptyID(t *testing.T) {
	coll := setupTestCollection(t)

	if err := coll.SaveItem(&Voizy{Name: "nameless"}); err == nil {
		t.Error("expected error for empty id, got nil")
	}
}

func TestBrowsePage_NewestFirstWithCursor(t *testing.T) {
	coll := setupTestCollection(t)
	seedItems(t, coll, 7)

	ctx := context.Background()

	page1, err := coll.FetchPage(ctx, "", "", 3)
	if err != nil {
		t.Fatalf("first page: %v", err)
	}
	if len(page1.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(page1.Items))
	}
	// Newest item was seeded last.
	if page1.Items[0].ID != "item-006" {
		t.Errorf("expected newest item first, got %s", page1.Items[0].ID)
	}
	if page1.NextCursor == "" {
		t.Fatal("expected continuation cursor on first page")
	}

	page2, err := coll.FetchPage(ctx, "", page1.NextCursor, 3)
	if err != nil {
		t.Fatalf("second page: %v", err)
	}
	if len(page2.Items) != 3 {
		t.Fatalf("expected 3 items on second page, got %d", len(page2.Items))
	}

	page3, err := coll.FetchPage(ctx, "", page2.NextCursor, 3)
	if err != nil {
		t.Fatalf("third page: %v", err)
	}
	if len(page3.Items) != 1 {
		t.Fatalf("expected 1 item on last page, got %d", len(page3.Items))
	}
	if page3.NextCursor != "" {
		t.Errorf("expected empty cursor at end, got %q", page3.NextCursor)
	}

	seen := map[string]bool{}
	for _, p := range []*Page{page1, page2, page3} {
		for _, item := range p.Items {
			if seen[item.ID] {
				t.Errorf("item %s returned on more than one page", item.ID)
			}
			seen[item.ID] = true
		}
	}
	if len(seen) != 7 {
		t.Errorf("expected 7 distinct items across pages, got %d", len(seen))
	}
}

func TestFetchPage_SameCursorIsRepeatable(t *testing.T) {
	coll := setupTestCollection(t)
	seedItems(t, coll, 6)

	ctx := context.Background()

	page1, err := coll.FetchPage(ctx, "", "", 2)
	if err != nil {
		t.Fatal(err)
	}

	a, err := coll.FetchPage(ctx, "", page1.NextCursor, 2)
	if err != nil {
		t.Fatal(err)
	}
	b, err := coll.FetchPage(ctx, "", page1.NextCursor, 2)
	if err != nil {
		t.Fatal(err)
	}

	if len(a.Items) != len(b.Items) {
		t.Fatalf("retry returned different page sizes: %d vs %d", len(a.Items), len(b.Items))
	}
	for i := range a.Items {
		if a.Items[i].ID != b.Items[i].ID {
			t.Errorf("retry diverged at position %d: %s vs %s", i, a.Items[i].ID, b.Items[i].ID)
		}
	}
}

func TestSearchPage_KeywordAndOffsets(t *testing.T) {
	coll := setupTestCollection(t)

	now := time.Now()
	for i := 0; i < 5; i++ {
		if err := coll.SaveItem(&Voizy{
			ID:        fmt.Sprintf("jazz-%d", i),
			Name:      fmt.Sprintf("jazz session %d", i),
			Tags:      []string{"jazz"},
			CreatedAt: now.Add(time.Duration(i) * time.Second),
		}); err != nil {
			t.Fatal(err)
		}
	}
	if err := coll.SaveItem(&Voizy{ID: "other", Name: "grocery list", CreatedAt: now}); err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()

	page1, err := coll.FetchPage(ctx, "jazz", "", 3)
	if err != nil {
		t.Fatalf("search page: %v", err)
	}
	if len(page1.Items) != 3 {
		t.Fatalf("expected 3 hits, got %d", len(page1.Items))
	}
	if page1.NextCursor == "" {
		t.Fatal("expected continuation cursor")
	}

	page2, err := coll.FetchPage(ctx, "jazz", page1.NextCursor, 3)
	if err != nil {
		t.Fatalf("second search page: %v", err)
	}
	if len(page2.Items) != 2 {
		t.Fatalf("expected 2 remaining hits, got %d", len(page2.Items))
	}
	if page2.NextCursor != "" {
		t.Errorf("expected exhausted cursor, got %q", page2.NextCursor)
	}

	for _, p := range []*Page{page1, page2} {
		for _, item := range p.Items {
			if item.ID == "other" {
				t.Error("non-matching item returned by search")
			}
		}
	}
}

func TestFetchPage_InvalidSearchCursor(t *testing.T) {
	coll := setupTestCollection(t)
	seedItems(t, coll, 1)

	if _, err := coll.FetchPage(context.Background(), "recording", "not-a-number", 5); err == nil {
		t.Error("expected error for malformed cursor")
	}
}

func TestFetchPage_CancelledContext(t *testing.T) {
	coll := setupTestCollection(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := coll.FetchPage(ctx, "", "", 5); err == nil {
		t.Error("expected context error")
	}
}

func TestDeleteItem(t *testing.T) {
	coll := setupTestCollection(t)
	seedItems(t, coll, 3)

	if err := coll.DeleteItem("item-001"); err != nil {
		t.Fatalf("deleting item: %v", err)
	}

	if _, err := coll.GetItem("item-001"); err == nil {
		t.Error("expected deleted item to be gone")
	}

	page, err := coll.FetchPage(context.Background(), "", "", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Items) != 2 {
		t.Errorf("expected 2 items after delete, got %d", len(page.Items))
	}
}

func TestSetDuration_Once(t *testing.T) {
	item := &Voizy{ID: "x"}

	if !item.SetDuration(1500) {
		t.Fatal("first SetDuration should succeed")
	}
	if item.SetDuration(9000) {
		t.Error("second SetDuration should be ignored")
	}
	if item.DurationMillis != 1500 {
		t.Errorf("duration changed after second set: %d", item.DurationMillis)
	}

	fresh := &Voizy{ID: "y"}
	if fresh.SetDuration(0) {
		t.Error("zero duration should not be recorded")
	}
}
