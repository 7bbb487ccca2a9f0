package persist

import (
	"math/rand"
	"path/filepath"
	"testing"
	"time"

	"github.com/neonmatrix/neonmatrix/internal/game"
)

func setupStore(t *testing.T) *SnapshotStore {
	t.Helper()
	return NewSnapshotStore(filepath.Join(t.TempDir(), "saves.json"))
}

func testSnapshot(t *testing.T, now time.Time) game.Snapshot {
	t.Helper()
	g, err := game.New(game.Easy, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("new game: %v", err)
	}
	return g.Snapshot(now)
}

func TestListEmptyWhenFileMissing(t *testing.T) {
	store := setupStore(t)

	snaps, err := store.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(snaps) != 0 {
		t.Errorf("got %d snapshots from missing file, want 0", len(snaps))
	}
}

func TestSaveAppendsWithoutDeduplicating(t *testing.T) {
	store := setupStore(t)
	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	snap := testSnapshot(t, now)

	// The same snapshot saved twice yields two entries.
	if err := store.Save(snap); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Save(snap); err != nil {
		t.Fatalf("save: %v", err)
	}

	snaps, err := store.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(snaps) != 2 {
		t.Fatalf("got %d snapshots, want 2", len(snaps))
	}
	if snaps[0].ID != snap.ID || snaps[1].ID != snap.ID {
		t.Error("saved snapshot ids do not round-trip")
	}
	if len(snaps[0].Cards) != len(snap.Cards) {
		t.Errorf("got %d cards, want %d", len(snaps[0].Cards), len(snap.Cards))
	}
}

func TestGetReturnsLatestMatch(t *testing.T) {
	store := setupStore(t)
	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	first := testSnapshot(t, now)
	second := testSnapshot(t, now)
	second.Moves = 3

	if err := store.Save(first); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Save(second); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := store.Get(first.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatal("snapshot not found")
	}
	if got.Moves != 3 {
		t.Errorf("got moves %d, want the most recent entry", got.Moves)
	}
}

func TestGetMissingID(t *testing.T) {
	store := setupStore(t)

	got, err := store.Get("nope")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Error("expected nil for unknown id")
	}
}

func TestSavedSnapshotRestores(t *testing.T) {
	store := setupStore(t)
	snap := testSnapshot(t, time.Now())

	if err := store.Save(snap); err != nil {
		t.Fatalf("save: %v", err)
	}
	snaps, err := store.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	g, err := game.Restore(snaps[0])
	if err != nil {
		t.Fatalf("restore from file: %v", err)
	}
	if g.Difficulty() != game.Easy {
		t.Errorf("difficulty = %q, want easy", g.Difficulty())
	}
}
