package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"

	"github.com/peterbourgon/diskv/v3"
)

// sessionKey is the single document kept in the store.
const sessionKey = "session.json"

// Store persists a Session as a JSON document backed by diskv.
type Store struct {
	d *diskv.Diskv
}

// Open returns a Store rooted at basePath. The directory is created on
// first write.
func Open(basePath string) *Store {
	return &Store{d: diskv.New(diskv.Options{
		BasePath:     basePath,
		Transform:    func(string) []string { return []string{} },
		CacheSizeMax: 1024 * 1024, // 1MB
		FilePerm:     0600,
		PathPerm:     0700,
	})}
}

// Load reads the session. A missing document yields an empty session.
func (s *Store) Load() (*Session, error) {
	data, err := s.d.Read(sessionKey)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Session{}, nil
		}
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("invalid session file: %w", err)
	}
	if sess.Editing && sess.Snapshot == nil {
		// a session can only be editing with a baseline
		return nil, fmt.Errorf("invalid session file: editing without snapshot")
	}
	return &sess, nil
}

// Save writes the session.
func (s *Store) Save(sess *Session) error {
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return err
	}
	if err := s.d.Write(sessionKey, data); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}

// Reset removes the persisted session.
func (s *Store) Reset() error {
	if !s.d.Has(sessionKey) {
		return nil
	}
	return s.d.Erase(sessionKey)
}
