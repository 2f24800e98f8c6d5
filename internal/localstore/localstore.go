// Package localstore keeps small keyed values as files in one directory.
// Writes are atomic: a reader sees either the old value or the new one.
package localstore

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/go-faster/errors"
	"github.com/moby/sys/atomicwriter"
)

// ErrNotFound is returned by Get for a key that was never set or was removed.
var ErrNotFound = errors.New("localstore: key not found")

const filePerm = 0o600

// Store is a directory of entries.
type Store struct {
	dir string
}

// Open creates dir if needed and returns a store rooted there.
func Open(dir string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("localstore: empty directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create store dir")
	}
	return &Store{dir: dir}, nil
}

// Dir is the directory holding the entries.
func (s *Store) Dir() string {
	return s.dir
}

// Get returns the value stored under key.
func (s *Store) Get(key string) ([]byte, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrapf(err, "read %q", key)
	}
	return data, nil
}

// Set replaces the value stored under key.
func (s *Store) Set(key string, value []byte) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := atomicwriter.WriteFile(path, value, filePerm); err != nil {
		return errors.Wrapf(err, "write %q", key)
	}
	return nil
}

// Remove deletes key. Removing a missing key is not an error.
func (s *Store) Remove(key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return errors.Wrapf(err, "remove %q", key)
	}
	return nil
}

func (s *Store) path(key string) (string, error) {
	if key == "" {
		return "", errors.New("localstore: empty key")
	}
	return filepath.Join(s.dir, fileName(key)), nil
}

// fileName maps a key to a file name one-to-one. Bytes outside
// [A-Za-z0-9_-] and a leading dot are percent-encoded.
func fileName(key string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	for i := 0; i < len(key); i++ {
		c := key[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9',
			c == '_', c == '-':
			b.WriteByte(c)
		case c == '.' && i > 0:
			b.WriteByte(c)
		default:
			b.WriteByte('%')
			b.WriteByte(hex[c>>4])
			b.WriteByte(hex[c&0x0f])
		}
	}
	return b.String()
}
