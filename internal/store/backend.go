// Package store keeps the application state document in memory and
// persists it wholesale through a pluggable backend.
package store

import "carecall/internal/models"

// Backend loads and saves the complete state document. Save always writes
// the whole document; backends never do partial updates.
type Backend interface {
	// Load returns the stored document, or an empty document when nothing
	// has been stored yet. A corrupt store is reported via error together
	// with a usable empty document.
	Load() (*models.Document, error)

	// Save persists the complete document, replacing whatever was stored.
	Save(doc *models.Document) error
}
