package snapshot

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCreateCopiesFilesAndWritesManifest(t *testing.T) {
	root := t.TempDir()
	userData := filepath.Join(root, "profile-data")
	if err := os.MkdirAll(filepath.Join(userData, "Default"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(userData, "Default", "Cookies"), []byte("cookie-bytes"), 0o644); err != nil {
		t.Fatal(err)
	}

	snapshotsDir := filepath.Join(root, "snapshots")
	m, err := Create(snapshotsDir, "p1", "snap-1", userData)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if m.TotalBytes != int64(len("cookie-bytes")) {
		t.Errorf("expected TotalBytes %d, got %d", len("cookie-bytes"), m.TotalBytes)
	}

	copied, err := os.ReadFile(filepath.Join(snapshotsDir, "p1", "snap-1", "Default", "Cookies"))
	if err != nil {
		t.Fatalf("expected copied file: %v", err)
	}
	if string(copied) != "cookie-bytes" {
		t.Errorf("got %q", copied)
	}
}

func TestCreateRejectsDuplicateName(t *testing.T) {
	root := t.TempDir()
	userData := filepath.Join(root, "profile-data")
	os.MkdirAll(userData, 0o755)
	snapshotsDir := filepath.Join(root, "snapshots")

	if _, err := Create(snapshotsDir, "p1", "snap-1", userData); err != nil {
		t.Fatalf("first Create: %v", err)
	}
	if _, err := Create(snapshotsDir, "p1", "snap-1", userData); err == nil {
		t.Error("expected error creating a duplicate snapshot name")
	}
}

func TestListReturnsManifests(t *testing.T) {
	root := t.TempDir()
	userData := filepath.Join(root, "profile-data")
	os.MkdirAll(userData, 0o755)
	snapshotsDir := filepath.Join(root, "snapshots")

	Create(snapshotsDir, "p1", "snap-1", userData)
	Create(snapshotsDir, "p1", "snap-2", userData)

	list, err := List(snapshotsDir, "p1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("expected 2 manifests, got %d", len(list))
	}
}

func TestListMissingProfileReturnsEmpty(t *testing.T) {
	root := t.TempDir()
	list, err := List(filepath.Join(root, "snapshots"), "missing")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("expected empty list, got %+v", list)
	}
}

func TestDeleteRemovesSnapshotDirectory(t *testing.T) {
	root := t.TempDir()
	userData := filepath.Join(root, "profile-data")
	os.MkdirAll(userData, 0o755)
	snapshotsDir := filepath.Join(root, "snapshots")

	Create(snapshotsDir, "p1", "snap-1", userData)
	if err := Delete(snapshotsDir, "p1", "snap-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := os.Stat(filepath.Join(snapshotsDir, "p1", "snap-1")); !os.IsNotExist(err) {
		t.Error("expected snapshot directory to be gone")
	}
}
