package filestore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/jrsteele09/go-ticket-client/tokenstore"
	"github.com/pkg/errors"
)

var _ tokenstore.Repo = (*FileStore)(nil)

var errCorruptFile = errors.New("corrupt session file")

// FileStore persists the session as a JSON object in a single file readable
// only by the current user. The file is re-read on every Get so several
// processes observe each other's logins and logouts.
type FileStore struct {
	path string
	mu   sync.Mutex
}

func New(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Get(_ context.Context, slot tokenstore.Slot) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read()
	if err != nil {
		return "", err
	}
	return values[slot], nil
}

func (s *FileStore) Set(_ context.Context, slot tokenstore.Slot, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read()
	if err != nil {
		return err
	}
	values[slot] = value
	return s.write(values)
}

// Clear removes slots. A file that no longer parses is treated as empty, so
// clearing every slot always gets rid of it.
func (s *FileStore) Clear(_ context.Context, slots ...tokenstore.Slot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read()
	if errors.Is(err, errCorruptFile) {
		values = map[tokenstore.Slot]string{}
	} else if err != nil {
		return err
	}
	for _, slot := range tokenstore.Targets(slots) {
		delete(values, slot)
	}
	if len(values) == 0 {
		if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
			return errors.Wrapf(err, "removing session file %s", s.path)
		}
		return nil
	}
	return s.write(values)
}

func (s *FileStore) read() (map[tokenstore.Slot]string, error) {
	values := map[tokenstore.Slot]string{}

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return values, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "reading session file %s", s.path)
	}
	if len(data) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, errors.Wrapf(errCorruptFile, "parsing session file %s: %v", s.path, err)
	}
	return values, nil
}

func (s *FileStore) write(values map[tokenstore.Slot]string) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return errors.Wrapf(err, "creating session directory %s", dir)
	}

	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding session")
	}

	tmp, err := os.CreateTemp(dir, ".session-*.json")
	if err != nil {
		return errors.Wrap(err, "creating temporary session file")
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return errors.Wrap(err, "restricting session file permissions")
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "writing session file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "closing session file")
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return errors.Wrapf(err, "replacing session file %s", s.path)
	}
	return nil
}
