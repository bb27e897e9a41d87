// Package snapshot implements C10's profile user-data-directory backup: a
// recursive copy plus a manifest.json, written inside the copy, recording
// when it was taken and how large it is.
package snapshot

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/browsion/browsion-core/internal/atomicfile"
	"github.com/browsion/browsion-core/internal/browsionerr"
)

// Manifest describes one snapshot directory.
type Manifest struct {
	Name       string    `json:"name"`
	ProfileID  string    `json:"profile_id"`
	CreatedAt  time.Time `json:"created_at"`
	TotalBytes int64     `json:"total_bytes"`
}

// Create copies userDataDir into snapshotsDir/<profileID>/<name> and writes
// a manifest.json inside that directory. name is typically a timestamp-derived
// identifier chosen by the caller so snapshots sort chronologically.
func Create(snapshotsDir, profileID, name, userDataDir string) (*Manifest, error) {
	dest := filepath.Join(snapshotsDir, profileID, name)
	if _, err := os.Stat(dest); err == nil {
		return nil, browsionerr.New(browsionerr.KindInvalidArgument, "snapshot %q already exists for profile %q", name, profileID)
	}

	total, err := copyTree(userDataDir, dest)
	if err != nil {
		return nil, err
	}

	m := &Manifest{
		Name:       name,
		ProfileID:  profileID,
		CreatedAt:  time.Now().UTC(),
		TotalBytes: total,
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, browsionerr.New(browsionerr.KindIOError, "marshal snapshot manifest: %v", err)
	}
	if err := atomicfile.Write(filepath.Join(dest, "manifest.json"), data, 0o644); err != nil {
		return nil, browsionerr.New(browsionerr.KindIOError, "write snapshot manifest: %v", err)
	}
	return m, nil
}

// List returns every snapshot manifest recorded for a profile, oldest
// first by directory name (names are expected to be chronologically
// sortable, e.g. RFC3339-derived).
func List(snapshotsDir, profileID string) ([]Manifest, error) {
	base := filepath.Join(snapshotsDir, profileID)
	entries, err := os.ReadDir(base)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, browsionerr.New(browsionerr.KindIOError, "list snapshots for %q: %v", profileID, err)
	}

	var out []Manifest
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(base, e.Name(), "manifest.json"))
		if err != nil {
			continue // a partially-written or foreign directory is skipped, not fatal
		}
		var m Manifest
		if json.Unmarshal(data, &m) == nil {
			out = append(out, m)
		}
	}
	return out, nil
}

// Delete removes a snapshot directory entirely.
func Delete(snapshotsDir, profileID, name string) error {
	dest := filepath.Join(snapshotsDir, profileID, name)
	if err := os.RemoveAll(dest); err != nil {
		return browsionerr.New(browsionerr.KindIOError, "delete snapshot %q: %v", name, err)
	}
	return nil
}

// copyTree recursively copies src into dst, returning the total bytes
// copied. Symlinks are skipped rather than followed, since a user-data
// directory's lock files and sockets are not meaningful to snapshot.
func copyTree(src, dst string) (int64, error) {
	var total int64
	err := filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		switch {
		case info.Mode()&os.ModeSymlink != 0:
			return nil
		case info.IsDir():
			return os.MkdirAll(target, 0o755)
		default:
			n, err := copyFile(path, target, info.Mode())
			total += n
			return err
		}
	})
	if err != nil {
		return 0, browsionerr.New(browsionerr.KindIOError, "copy %s to %s: %v", src, dst, err)
	}
	return total, nil
}

func copyFile(src, dst string, mode os.FileMode) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return 0, err
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, mode)
	if err != nil {
		return 0, err
	}
	defer out.Close()

	return io.Copy(out, in)
}
