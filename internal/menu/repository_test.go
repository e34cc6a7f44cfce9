package menu

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestReloadJoinsItemsToCategories(t *testing.T) {
	fake := newFakeStore()
	fake.addCategory("c1", "Facials", 0)
	fake.addCategory("c2", "Massage", 1)
	fake.addItem("i1", "c1", "Deep Clean", "$80", "45 min", 0)
	fake.addItem("i2", "c2", "Relaxation", "$90", "60 min", 0)
	fake.addItem("i3", "c1", "Signature", "$95", "60 min", 1)
	fake.addItem("orphan", "missing", "Ghost", "$1", "1 min", 0)

	repo := NewRepository(fake, testLogger())
	snap := repo.Reload(context.Background())

	if snap.UsingFallback {
		t.Fatal("expected remote data, got fallback")
	}
	if snap.Err != "" {
		t.Fatalf("unexpected error %q", snap.Err)
	}
	if len(snap.Categories) != 2 {
		t.Fatalf("categories = %d, want 2", len(snap.Categories))
	}

	facials := snap.Categories[0]
	if facials.ID != "c1" {
		t.Errorf("first category = %q, want c1", facials.ID)
	}
	if len(facials.Items) != 2 {
		t.Fatalf("c1 items = %d, want 2", len(facials.Items))
	}
	if facials.Items[0].ID != "i1" || facials.Items[1].ID != "i3" {
		t.Errorf("c1 item order = %q, %q, want i1, i3", facials.Items[0].ID, facials.Items[1].ID)
	}

	// The orphan item resolves to no loaded category and is dropped silently.
	for _, c := range snap.Categories {
		for _, it := range c.Items {
			if it.ID == "orphan" {
				t.Errorf("orphan item attached to category %q", c.ID)
			}
		}
	}
}

func TestReloadOrdersSortOrderNullsFirst(t *testing.T) {
	fake := newFakeStore()
	fake.addCategory("c-late", "Late", 5)
	fake.addCategory("c-null", "Unordered", nil)
	fake.addCategory("c-early", "Early", 1)
	fake.addItem("i-2", "c-early", "Two", "$2", "2 min", 2)
	fake.addItem("i-null", "c-early", "None", "$0", "0 min", nil)
	fake.addItem("i-1", "c-early", "One", "$1", "1 min", 1)

	repo := NewRepository(fake, testLogger())
	snap := repo.Reload(context.Background())

	gotCats := []string{snap.Categories[0].ID, snap.Categories[1].ID, snap.Categories[2].ID}
	wantCats := []string{"c-null", "c-early", "c-late"}
	if !reflect.DeepEqual(gotCats, wantCats) {
		t.Errorf("category order = %v, want %v", gotCats, wantCats)
	}

	items := snap.Categories[1].Items
	gotItems := []string{items[0].ID, items[1].ID, items[2].ID}
	wantItems := []string{"i-null", "i-1", "i-2"}
	if !reflect.DeepEqual(gotItems, wantItems) {
		t.Errorf("item order = %v, want %v", gotItems, wantItems)
	}
	if items[0].SortOrder != nil {
		t.Error("expected nil sort order to survive the round trip")
	}
}

func TestReloadUnconfiguredUsesFallbackWithoutError(t *testing.T) {
	fake := newFakeStore()
	fake.configured = false

	repo := NewRepository(fake, testLogger())
	snap := repo.Reload(context.Background())

	if !snap.UsingFallback {
		t.Error("expected fallback mode")
	}
	if snap.Err != "" {
		t.Errorf("error = %q, want empty: unconfigured is not a data error", snap.Err)
	}
	if snap.Loading {
		t.Error("expected loading to be finished")
	}
	if !reflect.DeepEqual(snap.Categories, FallbackCategories()) {
		t.Error("categories do not match the fallback dataset")
	}
	if got := fake.selectCalls[categoriesTable] + fake.selectCalls[itemsTable]; got != 0 {
		t.Errorf("store calls = %d, want 0", got)
	}
}

func TestReloadReadFailureFallsBack(t *testing.T) {
	fake := newFakeStore()
	fake.addCategory("c1", "Facials", 0)
	fake.selectErr[itemsTable] = errors.New("items read timed out")

	repo := NewRepository(fake, testLogger())
	snap := repo.Reload(context.Background())

	if !snap.UsingFallback {
		t.Error("expected fallback mode after failed read")
	}
	if snap.Err != "items read timed out" {
		t.Errorf("error = %q, want the store's message", snap.Err)
	}
	if !reflect.DeepEqual(snap.Categories, FallbackCategories()) {
		t.Error("categories do not match the fallback dataset")
	}
}

func TestReloadBothReadsFailCategoryErrorWins(t *testing.T) {
	fake := newFakeStore()
	fake.selectErr[categoriesTable] = errors.New("category read failed")
	fake.selectErr[itemsTable] = errors.New("item read failed")

	repo := NewRepository(fake, testLogger())
	snap := repo.Reload(context.Background())

	if snap.Err != "category read failed" {
		t.Errorf("error = %q, want the category read error to win the tie", snap.Err)
	}
}

func TestReloadRecoversAfterFailure(t *testing.T) {
	fake := newFakeStore()
	fake.addCategory("c1", "Facials", 0)
	fake.selectErr[categoriesTable] = errors.New("transient")

	repo := NewRepository(fake, testLogger())
	snap := repo.Reload(context.Background())
	if !snap.UsingFallback {
		t.Fatal("expected fallback after failure")
	}

	delete(fake.selectErr, categoriesTable)
	snap = repo.Reload(context.Background())
	if snap.UsingFallback {
		t.Error("expected remote data after retry")
	}
	if snap.Err != "" {
		t.Errorf("error = %q, want cleared", snap.Err)
	}
	if len(snap.Categories) != 1 || snap.Categories[0].ID != "c1" {
		t.Errorf("categories = %+v, want the remote row", snap.Categories)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	fake := newFakeStore()
	fake.addCategory("c1", "Facials", 0)
	fake.addItem("i1", "c1", "Deep Clean", "$80", "45 min", 0)

	repo := NewRepository(fake, testLogger())
	repo.Reload(context.Background())

	snap := repo.Snapshot()
	snap.Categories[0].Title = "Mutated"
	snap.Categories[0].Items[0].Price = "$999"

	again := repo.Snapshot()
	if again.Categories[0].Title != "Facials" {
		t.Error("mutating a snapshot leaked into the canonical dataset")
	}
	if again.Categories[0].Items[0].Price != "$80" {
		t.Error("mutating a snapshot's items leaked into the canonical dataset")
	}
}
