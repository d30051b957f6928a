package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"carecall/internal/models"
)

// FileBackend stores the document as one JSON file on disk.
type FileBackend struct {
	path string
}

// NewFileBackend creates a file backend at the given path. The file is not
// touched until the first Save.
func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path}
}

// Load reads and decodes the state file. A missing file yields an empty
// document with no error. A corrupt or unreadable file yields an empty
// document plus the error, leaving the file on disk as it was.
func (b *FileBackend) Load() (*models.Document, error) {
	data, err := os.ReadFile(b.path)
	if errors.Is(err, os.ErrNotExist) {
		return models.NewDocument(), nil
	}
	if err != nil {
		return models.NewDocument(), fmt.Errorf("failed to read state file %s: %w", b.path, err)
	}

	var doc models.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return models.NewDocument(), fmt.Errorf("failed to parse state file %s: %w", b.path, err)
	}
	doc.EnsureDefaults()
	return &doc, nil
}

// Save writes the complete document, creating the parent directory as
// needed. The document goes to a temp file first and is renamed into place,
// so a crash mid-write never leaves a truncated state file.
func (b *FileBackend) Save(doc *models.Document) error {
	if dir := filepath.Dir(b.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create state directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode state document: %w", err)
	}

	tmp := b.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write state file %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, b.path); err != nil {
		return fmt.Errorf("failed to replace state file %s: %w", b.path, err)
	}
	return nil
}
