package service

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"carecall/internal/models"
	"carecall/internal/store"
)

func TestBackupRoundTrip(t *testing.T) {
	dir := t.TempDir()
	source := store.NewFileBackend(filepath.Join(dir, "source.json"))

	doc := models.NewDocument()
	doc.Users = append(doc.Users, models.User{ID: "u1", Username: "asha", Role: models.RoleHead})
	doc.Families = append(doc.Families, models.Family{ID: "f1", Name: "Sharma", HeadIDs: []string{"u1"}})
	doc.Members = append(doc.Members, models.Member{ID: "m1", FamilyID: "f1", Name: "Dadi", AgeGroup: models.AgeGroupSenior})
	if err := source.Save(doc); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	var buf bytes.Buffer
	if err := NewBackupService(source).ExportToWriter(&buf); err != nil {
		t.Fatalf("ExportToWriter() error: %v", err)
	}

	var snapshot BackupData
	if err := json.Unmarshal(buf.Bytes(), &snapshot); err != nil {
		t.Fatalf("snapshot is not JSON: %v", err)
	}
	if snapshot.Version != "1.0" || snapshot.State == nil {
		t.Fatalf("snapshot = %+v, want version 1.0 with state", snapshot)
	}

	target := store.NewFileBackend(filepath.Join(dir, "target.json"))
	if err := NewBackupService(target).ImportFromReader(bytes.NewReader(buf.Bytes())); err != nil {
		t.Fatalf("ImportFromReader() error: %v", err)
	}

	restored, err := target.Load()
	if err != nil {
		t.Fatalf("Load() after import error: %v", err)
	}
	if len(restored.Users) != 1 || restored.Users[0].Username != "asha" {
		t.Errorf("restored users = %+v, want asha", restored.Users)
	}
	if restored.FamilyMember("f1", "m1") == nil {
		t.Error("restored state is missing member m1")
	}
}

func TestImportAcceptsBareStateDocument(t *testing.T) {
	target := store.NewFileBackend(filepath.Join(t.TempDir(), "state.json"))

	raw := `{"version":1,"users":[{"id":"u1","username":"asha","role":"HEAD_OF_FAMILY"}]}`
	if err := NewBackupService(target).ImportFromReader(strings.NewReader(raw)); err != nil {
		t.Fatalf("ImportFromReader() error: %v", err)
	}

	restored, err := target.Load()
	if err != nil {
		t.Fatalf("Load() after import error: %v", err)
	}
	if len(restored.Users) != 1 || restored.Users[0].Username != "asha" {
		t.Errorf("restored users = %+v, want asha", restored.Users)
	}
	if restored.Members == nil || restored.Logs == nil {
		t.Error("missing collections should be initialized empty, not nil")
	}
}

func TestImportRejectsGarbage(t *testing.T) {
	target := store.NewFileBackend(filepath.Join(t.TempDir(), "state.json"))

	err := NewBackupService(target).ImportFromReader(strings.NewReader("not json"))
	if err == nil {
		t.Fatal("expected an error for a non-JSON snapshot")
	}
}
