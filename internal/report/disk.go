package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// DiskStore writes session records as JSON files, one per run.
type DiskStore struct {
	mu  sync.Mutex
	dir string
}

// NewDiskStore creates a store rooted at dir. When dir is empty a temp
// directory is created lazily on first use.
func NewDiskStore(dir string) *DiskStore {
	return &DiskStore{dir: dir}
}

// Save writes record as <dir>/<id>.json.
func (s *DiskStore) Save(record *SessionRecord) error {
	if record.ID == "" {
		return fmt.Errorf("saving record: empty run ID")
	}
	dir, err := s.ensureDir()
	if err != nil {
		return err
	}
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshalling record %s: %w", record.ID, err)
	}
	path := filepath.Join(dir, record.ID+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing record %s: %w", record.ID, err)
	}
	return nil
}

// Load reads the record saved for runID.
func (s *DiskStore) Load(runID string) (*SessionRecord, error) {
	if runID == "" || filepath.Base(runID) != runID {
		return nil, fmt.Errorf("invalid run ID %q", runID)
	}
	dir, err := s.ensureDir()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(dir, runID+".json"))
	if err != nil {
		return nil, fmt.Errorf("reading record %s: %w", runID, err)
	}
	var record SessionRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("unmarshalling record %s: %w", runID, err)
	}
	return &record, nil
}

func (s *DiskStore) ensureDir() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dir != "" {
		if err := os.MkdirAll(s.dir, 0o755); err != nil {
			return "", fmt.Errorf("creating record directory: %w", err)
		}
		return s.dir, nil
	}
	dir, err := os.MkdirTemp("", "microtap-runs-*")
	if err != nil {
		return "", fmt.Errorf("creating record directory: %w", err)
	}
	s.dir = dir
	return dir, nil
}
