// internal/storage/file_storage.go
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStorage reads and replaces whole files under a base directory.
// Writes go to a temp file that is renamed into place, so readers see the
// old or the new content and never a partial write.
type FileStorage struct {
	BaseDir string

	fileLocks sync.Map // path -> *sync.RWMutex
}

// NewFileStorage creates the base directory if needed
func NewFileStorage(baseDir string) (*FileStorage, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &FileStorage{BaseDir: baseDir}, nil
}

func (fs *FileStorage) path(filename string) string {
	if filepath.IsAbs(filename) {
		return filename
	}
	return filepath.Join(fs.BaseDir, filename)
}

func (fs *FileStorage) getFileLock(fullPath string) *sync.RWMutex {
	value, _ := fs.fileLocks.LoadOrStore(fullPath, &sync.RWMutex{})
	return value.(*sync.RWMutex)
}

// LoadFile returns the file content. A missing file is reported with an
// error satisfying os.IsNotExist.
func (fs *FileStorage) LoadFile(filename string) ([]byte, error) {
	fullPath := fs.path(filename)

	lock := fs.getFileLock(fullPath)
	lock.RLock()
	defer lock.RUnlock()

	return os.ReadFile(fullPath)
}

// SaveFile atomically replaces the file content
func (fs *FileStorage) SaveFile(filename string, content []byte) error {
	fullPath := fs.path(filename)

	lock := fs.getFileLock(fullPath)
	lock.Lock()
	defer lock.Unlock()

	return writeAtomic(fullPath, content)
}

// UpdateFile runs a read-modify-write cycle under the file's write lock.
// update receives nil when the file does not exist yet.
func (fs *FileStorage) UpdateFile(filename string, update func(current []byte) ([]byte, error)) error {
	fullPath := fs.path(filename)

	lock := fs.getFileLock(fullPath)
	lock.Lock()
	defer lock.Unlock()

	current, err := os.ReadFile(fullPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to read %s: %w", fullPath, err)
	}

	next, err := update(current)
	if err != nil {
		return err
	}
	return writeAtomic(fullPath, next)
}

// FileExists reports whether the file is present
func (fs *FileStorage) FileExists(filename string) bool {
	_, err := os.Stat(fs.path(filename))
	return err == nil
}

func writeAtomic(fullPath string, content []byte) error {
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tempPath := fullPath + ".tmp"
	if err := os.WriteFile(tempPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tempPath, fullPath); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to replace %s: %w", fullPath, err)
	}
	return nil
}
