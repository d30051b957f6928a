package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"carecall/internal/models"
)

// blobName keys the single document row in the state_blobs table.
const blobName = "carecall"

// SQLBackend stores the document as one JSON blob row in a relational
// database, selected by dialect.
type SQLBackend struct {
	db      *sql.DB
	dialect Dialect
}

// NewSQLBackend opens the database for the given backend type ("sqlite",
// "mysql" or "postgres") and ensures the blob table exists.
func NewSQLBackend(backendType string, cfg DialectConfig) (*SQLBackend, error) {
	var dialect Dialect
	switch strings.ToLower(backendType) {
	case "postgres", "postgresql":
		dialect = NewPostgresDialect()
	case "mysql":
		dialect = NewMySQLDialect()
	case "sqlite", "sqlite3":
		dialect = NewSQLiteDialect()
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", backendType)
	}

	db, err := sql.Open(dialect.DriverName(), dialect.DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Apply dialect-specific configuration
	if err := dialect.ConfigureConnection(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to configure connection: %w", err)
	}

	if _, err := db.Exec(dialect.CreateBlobTableQuery()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create state table: %w", err)
	}

	return &SQLBackend{db: db, dialect: dialect}, nil
}

// Load reads and decodes the document row. A missing row yields an empty
// document with no error; an undecodable row yields an empty document plus
// the error, leaving the stored row in place.
func (b *SQLBackend) Load() (*models.Document, error) {
	query := b.dialect.RewriteQuery("SELECT body FROM state_blobs WHERE name = ?")

	var body []byte
	err := b.db.QueryRow(query, blobName).Scan(&body)
	if err == sql.ErrNoRows {
		return models.NewDocument(), nil
	}
	if err != nil {
		return models.NewDocument(), fmt.Errorf("failed to read state blob: %w", err)
	}

	var doc models.Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return models.NewDocument(), fmt.Errorf("failed to parse state blob: %w", err)
	}
	doc.EnsureDefaults()
	return &doc, nil
}

// Save upserts the complete document as one row.
func (b *SQLBackend) Save(doc *models.Document) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode state document: %w", err)
	}

	query := b.dialect.RewriteQuery(b.dialect.UpsertBlobQuery())
	if _, err := b.db.Exec(query, blobName, body); err != nil {
		return fmt.Errorf("failed to write state blob: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (b *SQLBackend) Close() error {
	return b.db.Close()
}
