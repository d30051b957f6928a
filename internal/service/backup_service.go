package service

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"carecall/internal/models"
	"carecall/internal/store"
)

// BackupData wraps the state document with snapshot metadata. The
// envelope lets a snapshot be identified without decoding the state.
type BackupData struct {
	Version    string           `json:"version"`
	ExportedAt time.Time        `json:"exportedAt"`
	State      *models.Document `json:"state"`
}

// BackupService copies the state document between a backend and portable
// JSON snapshots. The backup CLI uses it to take snapshots and to migrate
// state across backends, file to SQL and back.
type BackupService struct {
	backend store.Backend
}

// NewBackupService creates a backup service over the given backend.
func NewBackupService(backend store.Backend) *BackupService {
	return &BackupService{backend: backend}
}

// Export writes a snapshot of the current state to outputPath.
func (s *BackupService) Export(outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := s.ExportToWriter(file); err != nil {
		return err
	}

	log.Printf("State exported successfully to %s", outputPath)
	return nil
}

// ExportToWriter writes a snapshot of the current state to w.
func (s *BackupService) ExportToWriter(w io.Writer) error {
	doc, err := s.backend.Load()
	if err != nil {
		return fmt.Errorf("failed to load state: %w", err)
	}

	backup := &BackupData{
		Version:    "1.0",
		ExportedAt: time.Now().UTC(),
		State:      doc,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}

	log.Printf("Exported: %d users, %d families, %d members, %d logs",
		len(doc.Users), len(doc.Families), len(doc.Members), len(doc.Logs))
	return nil
}

// Import replaces the backend state with the snapshot at inputPath.
func (s *BackupService) Import(inputPath string) error {
	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	if err := s.ImportFromReader(file); err != nil {
		return err
	}

	log.Printf("State imported successfully from %s", inputPath)
	return nil
}

// ImportFromReader replaces the backend state with the snapshot read from
// reader. A bare state document without the snapshot envelope is accepted
// too, so a state file written by the file backend imports directly.
func (s *BackupService) ImportFromReader(reader io.Reader) error {
	raw, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("failed to read backup: %w", err)
	}

	var doc *models.Document
	var backup BackupData
	if err := json.Unmarshal(raw, &backup); err == nil && backup.State != nil {
		log.Printf("Backup version: %s, exported at: %s", backup.Version, backup.ExportedAt)
		doc = backup.State
	} else {
		doc = &models.Document{}
		if err := json.Unmarshal(raw, doc); err != nil {
			return fmt.Errorf("failed to decode backup: %w", err)
		}
	}
	doc.EnsureDefaults()

	if err := s.backend.Save(doc); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}

	log.Printf("Imported: %d users, %d families, %d members, %d logs",
		len(doc.Users), len(doc.Families), len(doc.Members), len(doc.Logs))
	return nil
}
