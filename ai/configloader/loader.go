// Package configloader reads prompt templates and catalog overrides from disk.
package configloader

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Loader resolves files relative to a base directory, falling back to the directory of the
// running executable for installed builds.
type Loader struct {
	baseDir string
	cache   sync.Map // subPath -> []byte
}

// NewLoader creates a new loader rooted at baseDir.
func NewLoader(baseDir string) *Loader {
	return &Loader{
		baseDir: baseDir,
	}
}

// Load reads a YAML file and unmarshals it into target.
func (l *Loader) Load(subPath string, target any) error {
	data, err := l.Read(subPath)
	if err != nil {
		return fmt.Errorf("read file %s: %w", subPath, err)
	}

	if err := yaml.Unmarshal(data, target); err != nil {
		return fmt.Errorf("unmarshal YAML %s: %w", subPath, err)
	}

	return nil
}

// Read returns the raw file content, caching successful reads.
func (l *Loader) Read(subPath string) ([]byte, error) {
	if cached, ok := l.cache.Load(subPath); ok {
		return cached.([]byte), nil //nolint:forcetypeassert // only []byte is stored
	}

	data, err := l.ReadFileWithFallback(subPath)
	if err != nil {
		return nil, err
	}

	l.cache.Store(subPath, data)
	return data, nil
}

// Exists reports whether subPath resolves to a readable file.
func (l *Loader) Exists(subPath string) bool {
	_, err := l.Read(subPath)
	return err == nil
}

// ReadFileWithFallback tries baseDir first, then the executable directory.
func (l *Loader) ReadFileWithFallback(path string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(l.baseDir, path))
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, fs.ErrNotExist) || filepath.IsAbs(l.baseDir) {
		return nil, err
	}

	execPath, execErr := os.Executable()
	if execErr != nil {
		return nil, err
	}

	return os.ReadFile(filepath.Join(filepath.Dir(execPath), l.baseDir, path))
}

// ClearCache drops cached file contents so edits on disk are picked up.
func (l *Loader) ClearCache() {
	l.cache.Range(func(key, _ any) bool {
		l.cache.Delete(key)
		return true
	})
}
