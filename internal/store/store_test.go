package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"carecall/internal/models"
)

func TestFileBackendMissingFile(t *testing.T) {
	backend := NewFileBackend(filepath.Join(t.TempDir(), "state.json"))

	doc, err := backend.Load()
	if err != nil {
		t.Fatalf("Load() on missing file returned error: %v", err)
	}
	if doc.Version != models.DocumentVersion {
		t.Errorf("empty document version = %d, want %d", doc.Version, models.DocumentVersion)
	}
	if len(doc.Users) != 0 || len(doc.Families) != 0 || len(doc.Logs) != 0 {
		t.Error("empty document should have no users, families or logs")
	}
}

func TestFileBackendCorruptFileLeftUntouched(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	corrupt := []byte("{not json at all")
	if err := os.WriteFile(path, corrupt, 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	backend := NewFileBackend(path)
	doc, err := backend.Load()
	if err == nil {
		t.Fatal("Load() on corrupt file should report the parse error")
	}
	if doc == nil || len(doc.Users) != 0 {
		t.Error("Load() on corrupt file should still return an empty document")
	}

	after, readErr := os.ReadFile(path)
	if readErr != nil {
		t.Fatalf("reread corrupt file: %v", readErr)
	}
	if string(after) != string(corrupt) {
		t.Error("corrupt file bytes were modified by Load")
	}
}

func TestFileBackendRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")
	backend := NewFileBackend(path)

	doc := models.NewDocument()
	doc.Users = append(doc.Users, models.User{ID: "u1", Username: "asha", Role: models.RoleHead})
	doc.Families = append(doc.Families, models.Family{ID: "f1", Name: "Sharma", HeadIDs: []string{"u1"}})
	doc.Members = append(doc.Members, models.Member{
		ID:       "m1",
		FamilyID: "f1",
		Name:     "Dadi",
		AgeGroup: models.AgeGroupSenior,
		Medications: []models.Medication{{
			ID:          "med1",
			Name:        "Metformin",
			TimesPerDay: 2,
			DoseTimes:   []string{"08:00", "20:00"},
			Supply:      30,
		}},
	})

	if err := backend.Save(doc); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	loaded, err := backend.Load()
	if err != nil {
		t.Fatalf("Load() after save error: %v", err)
	}
	if len(loaded.Users) != 1 || loaded.Users[0].Username != "asha" {
		t.Errorf("loaded users = %+v, want the saved user", loaded.Users)
	}
	if loaded.FamilyByID("f1") == nil {
		t.Fatal("loaded document is missing family f1")
	}
	member := loaded.FamilyMember("f1", "m1")
	if member == nil {
		t.Fatal("loaded document is missing member m1")
	}
	med := member.MedicationByID("med1")
	if med == nil || med.Supply != 30 || len(med.DoseTimes) != 2 {
		t.Errorf("loaded medication = %+v, want supply 30 with 2 dose times", med)
	}
}

func TestStoreUpdatePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	s := New(NewFileBackend(path))

	err := s.Update(func(doc *models.Document) error {
		doc.Users = append(doc.Users, models.User{ID: "u1", Username: "asha"})
		return nil
	})
	if err != nil {
		t.Fatalf("Update() error: %v", err)
	}

	// A second store over the same file simulates a restart.
	reopened := New(NewFileBackend(path))
	var found bool
	reopened.View(func(doc *models.Document) error {
		found = doc.UserByUsername("asha") != nil
		return nil
	})
	if !found {
		t.Error("update was not visible after reopening the store")
	}
}

func TestStoreUpdateErrorDoesNotPersist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	s := New(NewFileBackend(path))

	wantErr := errors.New("rejected")
	err := s.Update(func(doc *models.Document) error {
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("Update() error = %v, want %v", err, wantErr)
	}

	if _, statErr := os.Stat(path); !errors.Is(statErr, os.ErrNotExist) {
		t.Error("failed update should not have created the state file")
	}
}

func TestStoreStartsEmptyOnCorruptBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("][junk"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	s := New(NewFileBackend(path))
	var users int
	s.View(func(doc *models.Document) error {
		users = len(doc.Users)
		return nil
	})
	if users != 0 {
		t.Errorf("store over corrupt backend has %d users, want 0", users)
	}
}

// TestSQLBackendRoundTrip exercises the SQLite dialect end to end.
func TestSQLBackendRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	dbPath := filepath.Join(t.TempDir(), "state.db")
	backend, err := NewSQLBackend("sqlite", DialectConfig{Path: dbPath})
	if err != nil {
		t.Fatalf("NewSQLBackend() error: %v", err)
	}
	defer backend.Close()

	doc, err := backend.Load()
	if err != nil {
		t.Fatalf("Load() on empty table error: %v", err)
	}
	if len(doc.Users) != 0 {
		t.Errorf("empty table loaded %d users, want 0", len(doc.Users))
	}

	doc.Users = append(doc.Users, models.User{ID: "u1", Username: "asha"})
	if err := backend.Save(doc); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	// Save again to exercise the upsert path.
	doc.Users[0].Phone = "+919876543210"
	if err := backend.Save(doc); err != nil {
		t.Fatalf("second Save() error: %v", err)
	}

	loaded, err := backend.Load()
	if err != nil {
		t.Fatalf("Load() after save error: %v", err)
	}
	if u := loaded.UserByUsername("asha"); u == nil || u.Phone != "+919876543210" {
		t.Errorf("loaded user = %+v, want phone +919876543210", loaded.Users)
	}
}

func TestSQLBackendRejectsUnknownType(t *testing.T) {
	if _, err := NewSQLBackend("oracle", DialectConfig{}); err == nil {
		t.Error("NewSQLBackend should reject unsupported backend types")
	}
}

func TestDialectQueries(t *testing.T) {
	tests := []struct {
		name    string
		dialect Dialect
		driver  string
	}{
		{name: "sqlite", dialect: NewSQLiteDialect(), driver: "sqlite3"},
		{name: "mysql", dialect: NewMySQLDialect(), driver: "mysql"},
		{name: "postgres", dialect: NewPostgresDialect(), driver: "postgres"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.dialect.DriverName(); got != tt.driver {
				t.Errorf("DriverName() = %v, want %v", got, tt.driver)
			}
			if tt.dialect.CreateBlobTableQuery() == "" {
				t.Error("CreateBlobTableQuery() returned empty SQL")
			}
			if tt.dialect.UpsertBlobQuery() == "" {
				t.Error("UpsertBlobQuery() returned empty SQL")
			}
		})
	}
}

func TestRewritePlaceholdersToNumbered(t *testing.T) {
	d := NewPostgresDialect()
	got := d.RewriteQuery("SELECT body FROM state_blobs WHERE name = ? AND updated_at > ?")
	want := "SELECT body FROM state_blobs WHERE name = $1 AND updated_at > $2"
	if got != want {
		t.Errorf("RewriteQuery() = %q, want %q", got, want)
	}
}
