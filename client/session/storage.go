package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
)

// Storage is a string key/value store that survives restarts.
type Storage interface {
	GetItem(key string) (string, bool, error)
	SetItem(key, value string) error
	RemoveItem(key string) error
}

// FileStorage keeps every item in a single JSON object on disk.
type FileStorage struct {
	mu   sync.Mutex
	path string
}

var _ Storage = (*FileStorage)(nil)

func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

func (fs *FileStorage) Path() string { return fs.path }

func (fs *FileStorage) load() (map[string]string, error) {
	items := make(map[string]string)
	data, err := os.ReadFile(fs.path)
	if err != nil {
		if os.IsNotExist(err) {
			return items, nil
		}
		return nil, errors.Wrap(err, "reading storage file")
	}
	if len(data) == 0 {
		return items, nil
	}
	if err = json.Unmarshal(data, &items); err != nil {
		return nil, errors.Wrapf(err, "decoding storage file %s", fs.path)
	}
	return items, nil
}

// save replaces the file atomically.
func (fs *FileStorage) save(items map[string]string) error {
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding storage")
	}
	dir := filepath.Dir(fs.path)
	if err = os.MkdirAll(dir, 0o700); err != nil {
		return errors.Wrap(err, "creating storage dir")
	}

	tmp, err := os.CreateTemp(dir, ".storage-*.json")
	if err != nil {
		return errors.Wrap(err, "creating temp storage file")
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "writing storage")
	}
	if err = tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "chmod storage")
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrap(err, "closing storage")
	}
	return errors.Wrap(os.Rename(tmp.Name(), fs.path), "replacing storage file")
}

func (fs *FileStorage) GetItem(key string) (string, bool, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	items, err := fs.load()
	if err != nil {
		return "", false, err
	}
	val, ok := items[key]
	return val, ok, nil
}

func (fs *FileStorage) SetItem(key, value string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	items, err := fs.load()
	if err != nil {
		// a corrupt file is replaced rather than blocking every write
		items = make(map[string]string)
	}
	items[key] = value
	return fs.save(items)
}

func (fs *FileStorage) RemoveItem(key string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	items, err := fs.load()
	if err != nil {
		items = make(map[string]string)
	} else if _, ok := items[key]; !ok {
		return nil
	}
	delete(items, key)
	return fs.save(items)
}

// MemoryStorage is a Storage that lives as long as the process.
type MemoryStorage struct {
	mu    sync.RWMutex
	items map[string]string
}

var _ Storage = (*MemoryStorage)(nil)

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{items: make(map[string]string)}
}

func (ms *MemoryStorage) GetItem(key string) (string, bool, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	val, ok := ms.items[key]
	return val, ok, nil
}

func (ms *MemoryStorage) SetItem(key, value string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.items[key] = value
	return nil
}

func (ms *MemoryStorage) RemoveItem(key string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	delete(ms.items, key)
	return nil
}
