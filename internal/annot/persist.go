package annot

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Persister is the durable-storage port for the annotation store. Load is
// called once at startup; Save after every mutation.
type Persister interface {
	Load() (Snapshot, error)
	Save(Snapshot) error
}

// FilePersister stores the snapshot as one JSON document on disk.
type FilePersister struct {
	path string
}

// NewFilePersister creates a persister writing to the given file path.
func NewFilePersister(path string) FilePersister {
	return FilePersister{path: path}
}

// rawSnapshot defers section decoding so one corrupted section resets only
// that section, never the whole store.
type rawSnapshot struct {
	Highlights json.RawMessage `json:"highlights"`
	Bookmarks  json.RawMessage `json:"bookmarks"`
	Progress   json.RawMessage `json:"readingProgress"`
	AudioRate  json.RawMessage `json:"audioRate"`
}

// Load reads the snapshot. A missing file yields defaults; a corrupted file
// or section yields defaults for the affected part. Load never fails the
// caller with a parse error.
func (p FilePersister) Load() (Snapshot, error) {
	data, err := os.ReadFile(p.path)
	if os.IsNotExist(err) {
		return defaultSnapshot(), nil
	}
	if err != nil {
		return defaultSnapshot(), err
	}

	snap := defaultSnapshot()
	var raw rawSnapshot
	if err := json.Unmarshal(data, &raw); err != nil {
		return snap, nil
	}
	if len(raw.Highlights) > 0 {
		if err := json.Unmarshal(raw.Highlights, &snap.Highlights); err != nil {
			snap.Highlights = nil
		}
	}
	if len(raw.Bookmarks) > 0 {
		if err := json.Unmarshal(raw.Bookmarks, &snap.Bookmarks); err != nil {
			snap.Bookmarks = nil
		}
	}
	if len(raw.Progress) > 0 {
		if err := json.Unmarshal(raw.Progress, &snap.Progress); err != nil || snap.Progress == nil {
			snap.Progress = make(map[int]Progress)
		}
	}
	if len(raw.AudioRate) > 0 {
		var rate float64
		if err := json.Unmarshal(raw.AudioRate, &rate); err == nil && rate > 0 {
			snap.AudioRate = rate
		}
	}
	return snap, nil
}

// Save writes the snapshot, creating parent directories as needed.
func (p FilePersister) Save(snap Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p.path, data, 0o644)
}
