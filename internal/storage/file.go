package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// FileStore persists all keys as one JSON object on disk. Every operation
// re-reads the file under the mutex, so writes by another process to other
// keys survive; only a write to the same key is last-writer-wins.
type FileStore struct {
	mu       sync.Mutex
	filePath string
}

// NewFileStore opens the store at filePath, starting empty if the file
// does not exist yet.
func NewFileStore(filePath string) (*FileStore, error) {
	if _, err := loadFile(filePath); err != nil {
		return nil, err
	}
	return &FileStore{filePath: filePath}, nil
}

func loadFile(filePath string) (map[string]string, error) {
	raw, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, fmt.Errorf("read store: %w", err)
	}
	data := make(map[string]string)
	if len(raw) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse store: %w", err)
	}
	return data, nil
}

// update applies fn to a fresh copy of the file and writes it back when fn
// reports a change.
func (f *FileStore) update(fn func(data map[string]string) bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := loadFile(f.filePath)
	if err != nil {
		return err
	}
	if !fn(data) {
		return nil
	}
	return f.save(data)
}

func (f *FileStore) Get(key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := loadFile(f.filePath)
	if err != nil {
		return "", err
	}
	v, ok := data[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (f *FileStore) Set(key, value string) error {
	return f.update(func(data map[string]string) bool {
		data[key] = value
		return true
	})
}

func (f *FileStore) Remove(key string) error {
	return f.update(func(data map[string]string) bool {
		if _, ok := data[key]; !ok {
			return false
		}
		delete(data, key)
		return true
	})
}

func (f *FileStore) Keys() ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := loadFile(f.filePath)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (f *FileStore) Clear() error {
	return f.update(func(data map[string]string) bool {
		clear(data)
		return true
	})
}

func (f *FileStore) save(data map[string]string) error {
	if dir := filepath.Dir(f.filePath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create store dir: %w", err)
		}
	}
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	tmp := f.filePath + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("write store: %w", err)
	}
	return os.Rename(tmp, f.filePath)
}
