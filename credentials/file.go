package credentials

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore persists credentials as a single JSON document on disk.
// Writes go through a temp file plus rename so a crash mid-write leaves
// either the old or the new document, never a torn one. A missing or
// corrupt file reads as an empty snapshot.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// fileDocument is the on-disk schema boundary. Persisted data is decoded
// into this typed record; any shape failure degrades to an absent field
// rather than an error.
type fileDocument struct {
	AccessToken  string         `json:"access_token,omitempty"`
	RefreshToken string         `json:"refresh_token,omitempty"`
	UserIdentity map[string]any `json:"user_identity,omitempty"`
	Role         string         `json:"role,omitempty"`
	UserID       string         `json:"user_id,omitempty"`
}

// NewFileStore creates a file-backed store at path. The file is created
// lazily on the first Save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Save applies the non-nil fields of the update, rewriting the document.
func (s *FileStore) Save(_ context.Context, update Update) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.load()
	if update.Access != nil {
		doc.AccessToken = *update.Access
	}
	if update.Refresh != nil {
		doc.RefreshToken = *update.Refresh
	}
	if update.Identity != nil {
		doc.UserIdentity = update.Identity.Profile
		doc.Role = string(update.Identity.Role)
		doc.UserID = update.Identity.UserID
	}
	return s.write(doc)
}

// Read returns the persisted snapshot, treating missing or malformed data
// as absent.
func (s *FileStore) Read(_ context.Context) (Snapshot, error) {
	s.mu.Lock()
	doc := s.load()
	s.mu.Unlock()

	snap := Snapshot{
		Pair: Pair{Access: doc.AccessToken, Refresh: doc.RefreshToken},
		Identity: Identity{
			UserID:  doc.UserID,
			Profile: doc.UserIdentity,
		},
	}
	if role, err := ParseRole(doc.Role); err == nil {
		snap.Identity.Role = role
	}
	return snap, nil
}

// Clear removes the document. A subsequent Read observes all fields absent.
func (s *FileStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// load reads and decodes the document. Caller must hold the lock.
func (s *FileStore) load() fileDocument {
	var doc fileDocument
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fileDocument{}
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		// Corrupt persisted state degrades to anonymous.
		return fileDocument{}
	}
	return doc
}

// write atomically replaces the document. Caller must hold the lock.
func (s *FileStore) write(doc fileDocument) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("credentials: encode document: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".credentials-*")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Ensure FileStore implements Store
var _ Store = (*FileStore)(nil)
