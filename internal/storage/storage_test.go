package storage_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Tiliavir/gitlab-todotxt-sync/internal/model"
	"github.com/Tiliavir/gitlab-todotxt-sync/internal/storage"
)

func TestLoadNotExist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "todo.txt")
	recs, err := storage.Load(path)
	if err != nil {
		t.Fatalf("Load on missing file: %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("Load records = %d, want 0", len(recs))
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "todo.txt")
	created := model.Date{Year: 2026, Month: 2, Day: 27}
	recs := []model.Record{
		{Priority: 'A', Created: &created, Description: "Review MR +group/app id:7 @gitlab"},
		{Description: "water plants"},
	}

	if err := storage.Save(path, recs); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := storage.Load(path)
	if err != nil {
		t.Fatalf("Load after save: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("Load records = %d, want 2", len(loaded))
	}
	for i := range recs {
		if !loaded[i].Equal(recs[i]) {
			t.Errorf("record %d = %+v, want %+v", i, loaded[i], recs[i])
		}
	}
}

func TestSaveOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "todo.txt")
	if err := os.WriteFile(path, []byte("old one\nold two\nold three\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := storage.Save(path, []model.Record{{Description: "new"}}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "new\n" {
		t.Errorf("file content = %q, want %q", string(data), "new\n")
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o644 {
		t.Errorf("mode = %v, want 0644 preserved", info.Mode().Perm())
	}
}

func TestLoadMalformedLeavesFileUntouched(t *testing.T) {
	path := filepath.Join(t.TempDir(), "todo.txt")
	content := "good line\n2024-02-01 2024-01-01 open item with completion date\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := storage.Load(path); err == nil {
		t.Fatal("expected error for malformed line, got nil")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != content {
		t.Errorf("file modified after failed load: %q", string(data))
	}
}
