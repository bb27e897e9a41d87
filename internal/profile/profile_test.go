package profile

import (
	"path/filepath"
	"testing"
)

func TestCreateAssignsIDAndPersists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profiles.toml")

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	created, err := s.Create(Profile{Name: "Work", UserDataDir: dir})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == "" {
		t.Error("expected an id to be assigned")
	}

	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	got, ok := reloaded.Get(created.ID)
	if !ok {
		t.Fatal("expected profile to survive reload")
	}
	if got.Name != "Work" {
		t.Errorf("expected name Work, got %q", got.Name)
	}
}

func TestCreateRejectsDuplicateID(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "profiles.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := s.Create(Profile{ID: "p1", Name: "A"}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := s.Create(Profile{ID: "p1", Name: "B"}); err == nil {
		t.Error("expected duplicate id to be rejected")
	}
}

func TestUpdateUnknownIDErrors(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "profiles.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := s.Update("missing", Profile{Name: "X"}); err == nil {
		t.Error("expected update of unknown profile to error")
	}
}

func TestDeleteRemovesProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.toml")
	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	created, err := s.Create(Profile{Name: "Temp"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := s.Delete(created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := s.Get(created.ID); ok {
		t.Error("expected profile to be gone after delete")
	}
}

func TestLoadMissingFileStartsEmpty(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(s.List()) != 0 {
		t.Error("expected empty store for missing file")
	}
}
