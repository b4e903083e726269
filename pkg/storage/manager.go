package storage

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// Manager lays media files out as outputDir/username/category/filename
// and remembers what is already on disk, so re-running a batch skips
// files it already has instead of re-downloading them.
type Manager struct {
	outputDir string
	mu        sync.RWMutex
	existing  map[string]bool
}

// NewManager creates the output directory and indexes any files already
// present under it.
func NewManager(outputDir string) (*Manager, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	m := &Manager{
		outputDir: outputDir,
		existing:  make(map[string]bool),
	}

	if err := m.scanExistingFiles(); err != nil {
		return nil, fmt.Errorf("failed to scan existing files: %w", err)
	}

	return m, nil
}

// scanExistingFiles walks the output tree and indexes every regular
// file by its path relative to the output directory.
func (m *Manager) scanExistingFiles() error {
	return filepath.WalkDir(m.outputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if filepath.Ext(path) == ".tmp" {
			// Leftover from an interrupted write; it never counts as
			// downloaded.
			return nil
		}
		rel, err := filepath.Rel(m.outputDir, path)
		if err != nil {
			return err
		}
		m.existing[rel] = true
		return nil
	})
}

func (m *Manager) relPath(username, category, filename string) string {
	return filepath.Join(username, category, filename)
}

// Exists reports whether the file is already on disk, consulting the
// in-memory index first and the filesystem as a fallback.
func (m *Manager) Exists(username, category, filename string) bool {
	rel := m.relPath(username, category, filename)

	m.mu.RLock()
	known := m.existing[rel]
	m.mu.RUnlock()
	if known {
		return true
	}

	if _, err := os.Stat(filepath.Join(m.outputDir, rel)); err == nil {
		m.mu.Lock()
		m.existing[rel] = true
		m.mu.Unlock()
		return true
	}

	return false
}

// Save writes media bytes to the per-user, per-category subfolder. The
// write goes through a temp file and rename, so a crash mid-write never
// leaves a truncated media file behind.
func (m *Manager) Save(username, category, filename string, r io.Reader) error {
	rel := m.relPath(username, category, filename)
	dest := filepath.Join(m.outputDir, rel)

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("failed to create media directory: %w", err)
	}

	tempFile := dest + ".tmp"
	out, err := os.Create(tempFile)
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	_, err = io.Copy(out, r)
	closeErr := out.Close()

	if err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to save media data: %w", err)
	}
	if closeErr != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to close file: %w", closeErr)
	}

	if err := os.Rename(tempFile, dest); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	m.mu.Lock()
	m.existing[rel] = true
	m.mu.Unlock()

	return nil
}

// GetOutputDir returns the output directory path.
func (m *Manager) GetOutputDir() string {
	return m.outputDir
}

// GetDownloadedCount returns the number of files the manager knows about.
func (m *Manager) GetDownloadedCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.existing)
}
