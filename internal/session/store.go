// Package session persists the single active remote browser session between
// command invocations.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"sitegrab-cli/config"
)

const fileName = "browser-session.json"

// Record is the one persisted browser session pointer. The store is
// single-slot: saving a new record silently supersedes the previous one.
type Record struct {
	ID        string    `json:"id"`
	CDPURL    string    `json:"cdpUrl"`
	CreatedAt time.Time `json:"createdAt"`
}

type Store struct {
	path string
}

func NewStore(cfg config.Config) (*Store, error) {
	dir, err := cfg.ResolveStateDir()
	if err != nil {
		return nil, err
	}
	return &Store{path: filepath.Join(dir, fileName)}, nil
}

// Load returns the stored record and whether one exists.
func (s *Store) Load() (Record, bool, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Record{}, false, nil
		}
		return Record{}, false, fmt.Errorf("read session file: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return Record{}, false, fmt.Errorf("decode session file: %w", err)
	}
	if rec.ID == "" {
		return Record{}, false, nil
	}
	return rec, true, nil
}

// Save overwrites the slot, last write wins. The write goes through a temp
// file and rename so a crash never leaves a torn record.
func (s *Store) Save(rec Record) error {
	raw, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session record: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace session file: %w", err)
	}
	return nil
}

// Clear removes the stored record; clearing an empty store is not an error.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clear session file: %w", err)
	}
	return nil
}
