package session

import (
	"encoding/json"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// CredentialStore persists a serialized Identity snapshot for fast session
// restoration. A loaded snapshot is a cache hit, never authoritative: the
// manager revalidates it against the backend.
type CredentialStore interface {
	// Save overwrites the stored snapshot. Medium failures are logged, never
	// surfaced to the caller.
	Save(identity *Identity)
	// Load returns the snapshot, or false when it is missing or corrupt.
	// Corrupt data is purged and treated as absent.
	Load() (*Identity, bool)
	// Clear removes the snapshot unconditionally.
	Clear()
}

// FileStore keeps the snapshot as one JSON file.
type FileStore struct {
	path   string
	logger *zap.Logger
}

// NewFileStore builds a store writing to path. A nil logger is replaced with
// a nop logger.
func NewFileStore(path string, logger *zap.Logger) *FileStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileStore{path: path, logger: logger}
}

// Save writes the snapshot atomically via a temp file rename.
func (s *FileStore) Save(identity *Identity) {
	if identity == nil {
		s.Clear()
		return
	}

	data, err := json.Marshal(identity)
	if err != nil {
		s.logger.Warn("credential snapshot marshal failed", zap.Error(err))
		return
	}

	tmp := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		s.logger.Warn("credential snapshot dir unavailable", zap.Error(err))
		return
	}
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		s.logger.Warn("credential snapshot write failed", zap.Error(err))
		return
	}
	if err := os.Rename(tmp, s.path); err != nil {
		s.logger.Warn("credential snapshot rename failed", zap.Error(err))
	}
}

// Load reads and deserializes the snapshot.
func (s *FileStore) Load() (*Identity, bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("credential snapshot read failed", zap.Error(err))
		}
		return nil, false
	}

	var identity Identity
	if err := json.Unmarshal(data, &identity); err != nil {
		s.logger.Warn("corrupt credential snapshot purged", zap.Error(err))
		s.Clear()
		return nil, false
	}
	if identity.ID == "" {
		s.logger.Warn("corrupt credential snapshot purged", zap.String("reason", "missing id"))
		s.Clear()
		return nil, false
	}
	return &identity, true
}

// Clear removes the snapshot file.
func (s *FileStore) Clear() {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("credential snapshot remove failed", zap.Error(err))
	}
}
