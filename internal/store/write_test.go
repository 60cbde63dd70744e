package store

import (
	"context"
	"testing"

	"github.com/roach88/gate/internal/ir"
)

func TestSave_Basic(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	snap := createTestSnapshot()

	if err := s.Save(ctx, snap); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	var entries, versions, mods int
	s.db.QueryRow("SELECT COUNT(*) FROM entries").Scan(&entries)
	s.db.QueryRow("SELECT COUNT(*) FROM versions").Scan(&versions)
	s.db.QueryRow("SELECT COUNT(*) FROM mods").Scan(&mods)

	if entries != 3 {
		t.Errorf("entries = %d, want 3", entries)
	}
	if versions != 2 {
		t.Errorf("versions = %d, want 2", versions)
	}
	if mods != 4 {
		t.Errorf("mods = %d, want 4", mods)
	}

	ok, err := s.HasState(ctx)
	if err != nil || !ok {
		t.Errorf("HasState() = %v, %v; want true, nil", ok, err)
	}
}

func TestSave_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	snap := createTestSnapshot()

	for i := 0; i < 3; i++ {
		if err := s.Save(ctx, snap); err != nil {
			t.Fatalf("Save() iteration %d failed: %v", i, err)
		}
	}

	var mods int
	s.db.QueryRow("SELECT COUNT(*) FROM mods").Scan(&mods)
	if mods != 4 {
		t.Errorf("mods = %d after repeated saves, want 4", mods)
	}
}

func TestSave_AppendsNewMods(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	snap := createTestSnapshot()
	if err := s.Save(ctx, snap); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	file := snap.Entries[2]
	file.Append(ir.DataMod(testVersion(30), []byte("three")))
	if err := s.Save(ctx, snap); err != nil {
		t.Fatalf("second Save() failed: %v", err)
	}

	loaded, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	got := findEntry(loaded, file.ID)
	if len(got.Mods) != 3 {
		t.Fatalf("mods = %d, want 3", len(got.Mods))
	}
	if string(got.Mods[2].Data) != "three" {
		t.Errorf("last mod data = %q, want %q", got.Mods[2].Data, "three")
	}
}

func TestSave_UpdatesCurrent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	snap := createTestSnapshot()
	if err := s.Save(ctx, snap); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	root := snap.Entries[0]
	root.Current = testTime(5)
	if err := s.Save(ctx, snap); err != nil {
		t.Fatalf("second Save() failed: %v", err)
	}

	loaded, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if got := findEntry(loaded, root.ID).Current; !got.Equal(testTime(5)) {
		t.Errorf("Current = %v, want %v", got, testTime(5))
	}
}

func TestSave_EmptyFile(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	root := newTestEntry(ir.RootPath, nil, true)
	empty := newTestEntry("empty.txt", []byte{}, false)
	root.Children.Add(empty.ID)

	snap := &Snapshot{RootID: root.ID, InitTime: testTime(0), Entries: []*ir.Entry{root, empty}}
	if err := s.Save(ctx, snap); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	loaded, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	got := findEntry(loaded, empty.ID)
	if got.Data == nil || len(got.Data) != 0 {
		t.Errorf("Data = %#v, want empty non-nil slice", got.Data)
	}
}
