package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"carecall/internal/models"
	"carecall/internal/phone"
	"carecall/internal/security"
	"carecall/internal/session"
	"carecall/internal/store"
	"carecall/internal/validation"

	"github.com/google/uuid"
)

var (
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrSessionNotFound    = errors.New("session not found")
)

// AuthService handles registration, login and session resolution
type AuthService struct {
	store    *store.Store
	sessions *session.Registry
}

// NewAuthService creates a new auth service
func NewAuthService(st *store.Store, sessions *session.Registry) *AuthService {
	return &AuthService{
		store:    st,
		sessions: sessions,
	}
}

// RegisterInput carries a registration request.
type RegisterInput struct {
	Username   string
	Password   string
	Phone      string
	FamilyName string
	IsHead     bool
}

// Register creates a new user account. The first registrant creates the
// family and becomes its head regardless of the isHead flag; later
// registrants join that family, as heads only when they ask to be.
func (s *AuthService) Register(input RegisterInput) (*models.User, string, error) {
	input.Username = strings.TrimSpace(input.Username)

	// Validate inputs
	if err := validation.ValidateUsername(input.Username); err != nil {
		return nil, "", err
	}
	if err := validation.ValidatePassword(input.Password); err != nil {
		return nil, "", err
	}

	// Hash password before taking the store lock
	passwordHash, err := security.HashPassword(input.Password)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		ID:        uuid.New().String(),
		Username:  input.Username,
		Password:  passwordHash,
		Phone:     phone.Normalize(input.Phone),
		CreatedAt: time.Now(),
	}

	err = s.store.Update(func(doc *models.Document) error {
		if doc.UserByUsername(input.Username) != nil {
			return ErrUsernameTaken
		}

		if len(doc.Families) == 0 {
			familyName := strings.TrimSpace(input.FamilyName)
			if familyName == "" {
				familyName = fmt.Sprintf("%s's family", input.Username)
			}
			family := models.Family{
				ID:      uuid.New().String(),
				Name:    familyName,
				HeadIDs: []string{user.ID},
			}
			user.Role = models.RoleHead
			user.FamilyID = family.ID
			doc.Families = append(doc.Families, family)
		} else {
			family := &doc.Families[0]
			user.FamilyID = family.ID
			if input.IsHead {
				user.Role = models.RoleHead
				family.HeadIDs = append(family.HeadIDs, user.ID)
			} else {
				user.Role = models.RoleAdult
			}
		}

		doc.Users = append(doc.Users, user)
		return nil
	})
	if err != nil {
		return nil, "", err
	}

	token := s.sessions.Create(user.ID)
	return &user, token, nil
}

// Login authenticates a user and creates a session
func (s *AuthService) Login(username, password string) (*models.User, string, error) {
	var user *models.User
	err := s.store.View(func(doc *models.Document) error {
		if u := doc.UserByUsername(strings.TrimSpace(username)); u != nil {
			copied := *u
			user = &copied
		}
		return nil
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to look up user: %w", err)
	}

	if user == nil || !security.CheckPassword(password, user.Password) {
		return nil, "", ErrInvalidCredentials
	}

	token := s.sessions.Create(user.ID)
	return user, token, nil
}

// ValidateSession resolves a bearer token to its user.
func (s *AuthService) ValidateSession(token string) (*models.User, error) {
	userID, ok := s.sessions.Resolve(token)
	if !ok {
		return nil, ErrSessionNotFound
	}

	var user *models.User
	err := s.store.View(func(doc *models.Document) error {
		if u := doc.UserByID(userID); u != nil {
			copied := *u
			user = &copied
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return nil, ErrSessionNotFound
	}
	return user, nil
}

// Logout invalidates a session token. Unknown tokens are ignored.
func (s *AuthService) Logout(token string) {
	s.sessions.Destroy(token)
}
