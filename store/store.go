// Package store persists catalogs as immutable numbered snapshots, each
// paired with a plain-text change-notes document.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"workshop-catalog-updater/catalog"
)

// SnapshotName returns the snapshot file name for a version; the version is
// zero-padded to four digits so names sort naturally.
func SnapshotName(version int) string {
	return fmt.Sprintf("Catalog_v%04d.json", version)
}

// ChangeNotesName returns the change-notes file name paired with a snapshot.
func ChangeNotesName(version int) string {
	return fmt.Sprintf("Catalog_v%04d_ChangeNotes.txt", version)
}

// Save writes the catalog as the next snapshot in dir together with its
// change-notes document. The catalog's version is bumped only after the
// snapshot landed on disk, so a failed save leaves the catalog unchanged and
// the prior snapshot intact. An existing snapshot file is never overwritten.
func Save(cat *catalog.Catalog, dir string, notes *catalog.ChangeNotes) error {
	version := cat.Version + 1

	snapshot := *cat
	snapshot.Version = version
	snapshot.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(&snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize catalog: %w", err)
	}

	path := filepath.Join(dir, SnapshotName(version))
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return fmt.Errorf("failed to create snapshot '%s': %w", path, err)
	}
	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(path)
		return fmt.Errorf("failed to write snapshot '%s': %w", path, err)
	}
	if err := file.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("failed to close snapshot '%s': %w", path, err)
	}

	notesPath := filepath.Join(dir, ChangeNotesName(version))
	if err := os.WriteFile(notesPath, []byte(notes.Render(version)), 0644); err != nil {
		return fmt.Errorf("failed to write change notes '%s': %w", notesPath, err)
	}

	cat.Version = version
	cat.UpdatedAt = snapshot.UpdatedAt
	return nil
}

// Load reads one snapshot file; all lookup indices are rebuilt.
func Load(path string) (*catalog.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot '%s': %w", path, err)
	}
	var cat catalog.Catalog
	if err := json.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot '%s': %w", path, err)
	}
	return &cat, nil
}

var snapshotNamePattern = regexp.MustCompile(`^Catalog_v(\d{4})\.json$`)

// LatestVersion finds the highest-numbered snapshot in dir. Version 0 with
// an empty path means no snapshot exists yet.
func LatestVersion(dir string) (int, string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, "", fmt.Errorf("failed to list snapshot directory '%s': %w", dir, err)
	}
	best, bestName := 0, ""
	for _, entry := range entries {
		match := snapshotNamePattern.FindStringSubmatch(entry.Name())
		if match == nil {
			continue
		}
		version, err := strconv.Atoi(match[1])
		if err != nil || version <= best {
			continue
		}
		best, bestName = version, entry.Name()
	}
	if best == 0 {
		return 0, "", nil
	}
	return best, filepath.Join(dir, bestName), nil
}

// LoadLatest loads the highest-numbered snapshot in dir, nil when the
// directory has none.
func LoadLatest(dir string) (*catalog.Catalog, error) {
	version, path, err := LatestVersion(dir)
	if err != nil {
		return nil, err
	}
	if version == 0 {
		return nil, nil
	}
	return Load(path)
}
