package guidelines_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/guidesync/internal/guidelines"
	"github.com/JaimeStill/guidesync/pkg/pagination"
)

func memoryGuideline(title string, updated time.Time) guidelines.Guideline {
	return guidelines.Guideline{
		ID:         uuid.New(),
		TrustName:  "St George's Hospital",
		Title:      title,
		Speciality: guidelines.Emergency,
		Content:    guidelines.Inline{Text: title},
		Tags:       []string{"emergency"},
		IsActive:   true,
		CreatedBy:  "admin-1",
		CreatedAt:  updated,
		UpdatedAt:  updated,
	}
}

func TestMemoryStoreWrites(t *testing.T) {
	ctx := context.Background()
	store := guidelines.NewMemoryStore()
	g := memoryGuideline("Sepsis Six", stamp)

	if err := store.Insert(ctx, g); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := store.Insert(ctx, g); !errors.Is(err, guidelines.ErrDuplicate) {
		t.Errorf("second Insert = %v, want ErrDuplicate", err)
	}

	missing := memoryGuideline("Missing", stamp)
	if err := store.Update(ctx, missing); !errors.Is(err, guidelines.ErrNotFound) {
		t.Errorf("Update missing = %v, want ErrNotFound", err)
	}
	if err := store.Delete(ctx, missing.ID); !errors.Is(err, guidelines.ErrNotFound) {
		t.Errorf("Delete missing = %v, want ErrNotFound", err)
	}
	if _, err := store.Find(ctx, missing.ID); !errors.Is(err, guidelines.ErrNotFound) {
		t.Errorf("Find missing = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreIsolation(t *testing.T) {
	ctx := context.Background()
	store := guidelines.NewMemoryStore()
	g := memoryGuideline("Sepsis Six", stamp)

	if err := store.Insert(ctx, g); err != nil {
		t.Fatal(err)
	}
	g.Tags[0] = "mutated"

	found, err := store.Find(ctx, g.ID)
	if err != nil {
		t.Fatal(err)
	}
	if found.Tags[0] != "emergency" {
		t.Errorf("stored tags changed through caller slice: %v", found.Tags)
	}

	found.Tags[0] = "mutated"
	again, _ := store.Find(ctx, g.ID)
	if again.Tags[0] != "emergency" {
		t.Errorf("stored tags changed through returned slice: %v", again.Tags)
	}
}

func TestMemoryStoreOrdering(t *testing.T) {
	ctx := context.Background()
	store := guidelines.NewMemoryStore()

	older := memoryGuideline("Older", stamp)
	newer := memoryGuideline("Newer", stamp.Add(time.Hour))
	tiedA := memoryGuideline("Tied A", stamp.Add(2*time.Hour))
	tiedB := memoryGuideline("Tied B", stamp.Add(2*time.Hour))

	for _, g := range []guidelines.Guideline{older, newer, tiedA, tiedB} {
		if err := store.Insert(ctx, g); err != nil {
			t.Fatal(err)
		}
	}

	q := guidelines.BuildQuery(guidelines.Filters{}, pagination.PageRequest{Page: 1, Limit: 10})
	items, total, err := store.Query(ctx, q)
	if err != nil {
		t.Fatal(err)
	}
	if total != 4 || len(items) != 4 {
		t.Fatalf("total = %d, len = %d", total, len(items))
	}

	first, second := tiedA, tiedB
	if tiedB.ID.String() > tiedA.ID.String() {
		first, second = tiedB, tiedA
	}
	want := []uuid.UUID{first.ID, second.ID, newer.ID, older.ID}
	for i, g := range items {
		if g.ID != want[i] {
			t.Errorf("items[%d] = %s, want %s", i, g.Title, want[i])
		}
	}

	q = guidelines.BuildQuery(guidelines.Filters{}, pagination.PageRequest{Page: 3, Limit: 2})
	items, total, _ = store.Query(ctx, q)
	if total != 4 || len(items) != 0 {
		t.Errorf("past last page: total = %d, len = %d", total, len(items))
	}
}

func TestMemoryStoreHugePage(t *testing.T) {
	ctx := context.Background()
	store := guidelines.NewMemoryStore()
	if err := store.Insert(ctx, memoryGuideline("Only", stamp)); err != nil {
		t.Fatal(err)
	}

	q := guidelines.BuildQuery(guidelines.Filters{}, pagination.PageRequest{Page: math.MaxInt, Limit: 20})
	items, total, err := store.Query(ctx, q)
	if err != nil {
		t.Fatal(err)
	}
	if total != 1 || len(items) != 0 {
		t.Errorf("total = %d, len = %d", total, len(items))
	}
}
