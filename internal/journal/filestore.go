package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"rsimaster/internal/model"
)

// FileStore keeps one JSON file per journal day. Writes go to a temp
// file in the same directory followed by a rename, so a crash mid-write
// leaves the previous record intact.
type FileStore struct {
	dir string
}

// NewFileStore creates the journal directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("filestore: create dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(date string) string {
	return filepath.Join(s.dir, "journal_"+date+".json")
}

func (s *FileStore) Load(_ context.Context, date string) (*model.JournalDay, bool, error) {
	data, err := os.ReadFile(s.path(date))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("filestore: read %s: %w", date, err)
	}

	var day model.JournalDay
	if err := json.Unmarshal(data, &day); err != nil {
		return nil, false, fmt.Errorf("filestore: decode %s: %w", date, err)
	}
	return &day, true, nil
}

func (s *FileStore) Save(_ context.Context, day *model.JournalDay) error {
	data, err := json.MarshalIndent(day, "", "  ")
	if err != nil {
		return fmt.Errorf("filestore: encode %s: %w", day.Date, err)
	}

	target := s.path(day.Date)
	tmp, err := os.CreateTemp(s.dir, "journal_*.tmp")
	if err != nil {
		return fmt.Errorf("filestore: temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("filestore: write %s: %w", day.Date, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("filestore: close temp: %w", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("filestore: replace %s: %w", day.Date, err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }
