package service

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"carecall/internal/models"
	"carecall/internal/session"
	"carecall/internal/store"
	"carecall/internal/validation"
)

func newTestStore(t *testing.T) (*store.Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "state.json")
	return store.New(store.NewFileBackend(path)), path
}

func newTestAuth(t *testing.T) (*AuthService, *store.Store) {
	t.Helper()
	st, _ := newTestStore(t)
	return NewAuthService(st, session.NewRegistry(time.Hour)), st
}

func TestRegisterFirstUserBecomesHead(t *testing.T) {
	auth, st := newTestAuth(t)

	user, token, err := auth.Register(RegisterInput{
		Username:   "asha",
		Password:   "password123",
		Phone:      "9876543210",
		FamilyName: "Sharma Family",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if token == "" {
		t.Error("expected a session token")
	}
	if user.Role != models.RoleHead {
		t.Errorf("expected role %s, got %s", models.RoleHead, user.Role)
	}
	if user.Phone != "+919876543210" {
		t.Errorf("expected normalized phone, got %s", user.Phone)
	}

	err = st.View(func(doc *models.Document) error {
		if len(doc.Families) != 1 {
			t.Fatalf("expected 1 family, got %d", len(doc.Families))
		}
		family := doc.Families[0]
		if family.Name != "Sharma Family" {
			t.Errorf("expected family name Sharma Family, got %s", family.Name)
		}
		if len(family.HeadIDs) != 1 || family.HeadIDs[0] != user.ID {
			t.Errorf("expected headIds [%s], got %v", user.ID, family.HeadIDs)
		}
		if user.FamilyID != family.ID {
			t.Errorf("user familyId %s does not match family %s", user.FamilyID, family.ID)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestRegisterDefaultsFamilyName(t *testing.T) {
	auth, st := newTestAuth(t)

	if _, _, err := auth.Register(RegisterInput{Username: "ravi", Password: "password123"}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	st.View(func(doc *models.Document) error {
		if got := doc.Families[0].Name; got != "ravi's family" {
			t.Errorf("expected default family name, got %q", got)
		}
		return nil
	})
}

func TestRegisterDuplicateUsername(t *testing.T) {
	auth, st := newTestAuth(t)

	if _, _, err := auth.Register(RegisterInput{Username: "asha", Password: "password123"}); err != nil {
		t.Fatalf("first register failed: %v", err)
	}

	_, _, err := auth.Register(RegisterInput{Username: "asha", Password: "different456"})
	if !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}

	// The failed attempt must leave the document untouched.
	st.View(func(doc *models.Document) error {
		if len(doc.Users) != 1 {
			t.Errorf("expected 1 user after duplicate register, got %d", len(doc.Users))
		}
		if len(doc.Families) != 1 {
			t.Errorf("expected 1 family after duplicate register, got %d", len(doc.Families))
		}
		return nil
	})
}

func TestRegisterJoinerRoles(t *testing.T) {
	auth, st := newTestAuth(t)

	head, _, err := auth.Register(RegisterInput{Username: "asha", Password: "password123"})
	if err != nil {
		t.Fatalf("register head failed: %v", err)
	}

	adult, _, err := auth.Register(RegisterInput{Username: "ravi", Password: "password123"})
	if err != nil {
		t.Fatalf("register joiner failed: %v", err)
	}
	if adult.Role != models.RoleAdult {
		t.Errorf("expected joiner role %s, got %s", models.RoleAdult, adult.Role)
	}
	if adult.FamilyID != head.FamilyID {
		t.Errorf("joiner should share the family, got %s vs %s", adult.FamilyID, head.FamilyID)
	}

	second, _, err := auth.Register(RegisterInput{Username: "meera", Password: "password123", IsHead: true})
	if err != nil {
		t.Fatalf("register second head failed: %v", err)
	}
	if second.Role != models.RoleHead {
		t.Errorf("expected second head role %s, got %s", models.RoleHead, second.Role)
	}

	st.View(func(doc *models.Document) error {
		heads := doc.Families[0].HeadIDs
		if len(heads) != 2 {
			t.Fatalf("expected 2 head ids, got %v", heads)
		}
		if heads[0] != head.ID || heads[1] != second.ID {
			t.Errorf("unexpected head order: %v", heads)
		}
		return nil
	})
}

func TestRegisterValidation(t *testing.T) {
	auth, _ := newTestAuth(t)

	tests := []struct {
		name  string
		input RegisterInput
	}{
		{"short username", RegisterInput{Username: "ab", Password: "password123"}},
		{"bad username chars", RegisterInput{Username: "asha sharma", Password: "password123"}},
		{"short password", RegisterInput{Username: "asha", Password: "short"}},
		{"empty username", RegisterInput{Username: "", Password: "password123"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := auth.Register(tt.input)
			var verr validation.ValidationError
			if !errors.As(err, &verr) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestLogin(t *testing.T) {
	auth, _ := newTestAuth(t)

	if _, _, err := auth.Register(RegisterInput{Username: "asha", Password: "password123"}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	user, token, err := auth.Login("asha", "password123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if user.Username != "asha" {
		t.Errorf("expected user asha, got %s", user.Username)
	}
	if token == "" {
		t.Error("expected a session token")
	}

	if _, _, err := auth.Login("asha", "wrongpassword"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	if _, _, err := auth.Login("nobody", "password123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestValidateSession(t *testing.T) {
	auth, _ := newTestAuth(t)

	registered, token, err := auth.Register(RegisterInput{Username: "asha", Password: "password123"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	user, err := auth.ValidateSession(token)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if user.ID != registered.ID {
		t.Errorf("expected user %s, got %s", registered.ID, user.ID)
	}

	if _, err := auth.ValidateSession("not-a-token"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}

	auth.Logout(token)
	if _, err := auth.ValidateSession(token); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound after logout, got %v", err)
	}
}

func TestSessionsDoNotSurviveRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	auth := NewAuthService(store.New(store.NewFileBackend(path)), session.NewRegistry(time.Hour))
	_, token, err := auth.Register(RegisterInput{Username: "asha", Password: "password123"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	// A fresh store plus a fresh registry over the same file is a restart.
	restarted := NewAuthService(store.New(store.NewFileBackend(path)), session.NewRegistry(time.Hour))

	if _, err := restarted.ValidateSession(token); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected old token to be invalid after restart, got %v", err)
	}
	if _, _, err := restarted.Login("asha", "password123"); err != nil {
		t.Errorf("expected login to still work after restart, got %v", err)
	}
}
